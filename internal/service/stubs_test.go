package service_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"floreria/internal/dto"
	"floreria/internal/model"
	"floreria/internal/repository"
	"floreria/internal/worker"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func strp(s string) *string { return &s }

// ── Users ─────────────────────────────────────────────────────────────────────

type stubUserRepo struct {
	users  map[uint]*model.User
	resets map[string]*model.PasswordReset
	seq    uint
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: map[uint]*model.User{}, resets: map[string]*model.PasswordReset{}}
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	r.seq++
	u.ID = r.seq
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uint) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *stubUserRepo) FindByLogin(_ context.Context, login string) (*model.User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Username, login) || strings.EqualFold(u.Email, login) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) Taken(_ context.Context, username, email string) (bool, bool, error) {
	var un, em bool
	for _, u := range r.users {
		if username != "" && strings.EqualFold(u.Username, username) {
			un = true
		}
		if email != "" && strings.EqualFold(u.Email, email) {
			em = true
		}
	}
	return un, em, nil
}

func (r *stubUserRepo) List(_ context.Context, _ dto.UserFilter) ([]model.User, error) {
	out := make([]model.User, 0, len(r.users))
	for id := uint(1); id <= r.seq; id++ {
		if u, ok := r.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, u *model.User) error {
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *stubUserRepo) SoftDelete(_ context.Context, id uint) error {
	if u, ok := r.users[id]; ok {
		u.IsActive = false
	}
	return nil
}

func (r *stubUserRepo) CreateReset(_ context.Context, p *model.PasswordReset) error {
	r.resets[p.TokenHash] = p
	return nil
}

func (r *stubUserRepo) FindReset(_ context.Context, hash string) (*model.PasswordReset, error) {
	p, ok := r.resets[hash]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubUserRepo) ConsumeReset(_ context.Context, resetID, userID uint, hash string, at time.Time) error {
	for _, p := range r.resets {
		if p.ID == resetID && p.UserID == userID {
			if p.UsedAt != nil {
				return repository.ErrResetUsed
			}
			p.UsedAt = &at
		}
	}
	r.users[userID].PasswordHash = hash
	return nil
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

// ── Products ──────────────────────────────────────────────────────────────────

type stubProductRepo struct {
	products  map[uint]*model.Product
	movements []model.StockMovement
	seq       uint
}

func newStubProductRepo(products ...model.Product) *stubProductRepo {
	r := &stubProductRepo{products: map[uint]*model.Product{}}
	for i := range products {
		p := products[i]
		if p.ID > r.seq {
			r.seq = p.ID
		}
		r.products[p.ID] = &p
	}
	return r
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	r.seq++
	p.ID = r.seq
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uint) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductRepo) List(_ context.Context, _ dto.Page, includeInactive bool) ([]model.Product, error) {
	var out []model.Product
	for id := uint(1); id <= r.seq; id++ {
		if p, ok := r.products[id]; ok && (includeInactive || p.IsActive) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *stubProductRepo) SoftDelete(_ context.Context, id uint) error {
	r.products[id].IsActive = false
	return nil
}

func (r *stubProductRepo) SetImage(_ context.Context, id uint, url string) error {
	r.products[id].ImageURL = &url
	return nil
}

func (r *stubProductRepo) FindByIDForUpdate(_ *gorm.DB, id uint) (*model.Product, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubProductRepo) UpdateStockTx(_ *gorm.DB, id uint, delta int) error {
	r.products[id].Stock += delta
	return nil
}

func (r *stubProductRepo) SetStockTx(_ *gorm.DB, id uint, stock int) error {
	r.products[id].Stock = stock
	return nil
}

func (r *stubProductRepo) CreateMovementTx(_ *gorm.DB, m *model.StockMovement) error {
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

var _ repository.ProductRepository = (*stubProductRepo)(nil)

// ── Sellers ───────────────────────────────────────────────────────────────────

type stubSellerRepo struct {
	sellers map[uint]*model.Seller
	seq     uint
}

func newStubSellerRepo(sellers ...model.Seller) *stubSellerRepo {
	r := &stubSellerRepo{sellers: map[uint]*model.Seller{}}
	for i := range sellers {
		s := sellers[i]
		if s.ID > r.seq {
			r.seq = s.ID
		}
		r.sellers[s.ID] = &s
	}
	return r
}

func (r *stubSellerRepo) Create(_ context.Context, s *model.Seller) error {
	r.seq++
	s.ID = r.seq
	cp := *s
	r.sellers[s.ID] = &cp
	return nil
}

func (r *stubSellerRepo) FindByID(_ context.Context, id uint) (*model.Seller, error) {
	s, ok := r.sellers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *stubSellerRepo) FindByName(_ context.Context, name string) (*model.Seller, error) {
	for _, s := range r.sellers {
		if s.Name == name {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubSellerRepo) List(_ context.Context, _ dto.Page) ([]model.Seller, error) {
	var out []model.Seller
	for id := uint(1); id <= r.seq; id++ {
		if s, ok := r.sellers[id]; ok {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubSellerRepo) Update(_ context.Context, s *model.Seller) error {
	cp := *s
	r.sellers[s.ID] = &cp
	return nil
}

func (r *stubSellerRepo) SoftDelete(_ context.Context, id uint) error {
	r.sellers[id].IsActive = false
	return nil
}

var _ repository.SellerRepository = (*stubSellerRepo)(nil)

// ── Sales ─────────────────────────────────────────────────────────────────────

type stubSaleRepo struct {
	sales    map[uint]*model.Sale
	payments []model.SalePayment
	seq      uint
}

func newStubSaleRepo() *stubSaleRepo {
	return &stubSaleRepo{sales: map[uint]*model.Sale{}}
}

func (r *stubSaleRepo) CreateTx(_ *gorm.DB, s *model.Sale) error {
	r.seq++
	s.ID = r.seq
	s.CreatedAt = time.Now()
	cp := *s
	r.sales[s.ID] = &cp
	return nil
}

func (r *stubSaleRepo) FindByID(_ context.Context, id uint) (*model.Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *stubSaleRepo) FindByIDForUpdate(_ *gorm.DB, id uint) (*model.Sale, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubSaleRepo) List(_ context.Context, f dto.SaleFilter) ([]model.Sale, error) {
	var out []model.Sale
	for id := r.seq; id >= 1; id-- {
		s, ok := r.sales[id]
		if !ok {
			continue
		}
		if f.Status != "" && s.Status != f.Status {
			continue
		}
		if f.SellerID != 0 && s.SellerID != f.SellerID {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (r *stubSaleRepo) ListOpenDue(_ context.Context, until time.Time) ([]model.Sale, error) {
	var out []model.Sale
	for id := uint(1); id <= r.seq; id++ {
		s := r.sales[id]
		if (s.Status == "PENDING" || s.Status == "PARTIAL") && s.DueDate != nil && !s.DueDate.After(until) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubSaleRepo) Update(_ context.Context, s *model.Sale) error {
	cp := *s
	r.sales[s.ID] = &cp
	return nil
}

func (r *stubSaleRepo) UpdateTx(_ *gorm.DB, s *model.Sale) error {
	return r.Update(context.Background(), s)
}

func (r *stubSaleRepo) CreatePaymentTx(_ *gorm.DB, p *model.SalePayment) error {
	p.ID = uint(len(r.payments) + 1)
	r.payments = append(r.payments, *p)
	return nil
}

func (r *stubSaleRepo) ListPayments(_ context.Context, saleID uint) ([]model.SalePayment, error) {
	var out []model.SalePayment
	for _, p := range r.payments {
		if p.SaleID == saleID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *stubSaleRepo) DB() *gorm.DB { return nil }

var _ repository.SaleRepository = (*stubSaleRepo)(nil)

// ── Earnings ──────────────────────────────────────────────────────────────────

type stubEarningRepo struct {
	earnings    map[uint]*model.Earning
	investments []model.Investment
	seq         uint
}

func newStubEarningRepo() *stubEarningRepo {
	return &stubEarningRepo{earnings: map[uint]*model.Earning{}}
}

func (r *stubEarningRepo) CreateTx(_ *gorm.DB, e *model.Earning) error {
	r.seq++
	e.ID = r.seq
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	cp := *e
	r.earnings[e.ID] = &cp
	return nil
}

func (r *stubEarningRepo) FindByID(_ context.Context, id uint) (*model.Earning, error) {
	e, ok := r.earnings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *stubEarningRepo) FindBySaleID(_ context.Context, saleID uint) (*model.Earning, error) {
	for _, e := range r.earnings {
		if e.SaleID == saleID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubEarningRepo) Update(_ context.Context, e *model.Earning) error {
	cp := *e
	r.earnings[e.ID] = &cp
	return nil
}

func (r *stubEarningRepo) ListRows(_ context.Context, start, end time.Time) ([]model.Earning, error) {
	var out []model.Earning
	for id := uint(1); id <= r.seq; id++ {
		e, ok := r.earnings[id]
		if !ok {
			continue
		}
		if !start.IsZero() && e.CreatedAt.Before(start) {
			continue
		}
		if !end.IsZero() && e.CreatedAt.After(end) {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (r *stubEarningRepo) CreateInvestment(_ context.Context, inv *model.Investment) error {
	inv.ID = uint(len(r.investments) + 1)
	r.investments = append(r.investments, *inv)
	return nil
}

func (r *stubEarningRepo) ListInvestments(_ context.Context, _ dto.Page) ([]model.Investment, error) {
	return r.investments, nil
}

func (r *stubEarningRepo) SumInvestments(_ context.Context) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, inv := range r.investments {
		sum = sum.Add(inv.Amount)
	}
	return sum, nil
}

var _ repository.EarningRepository = (*stubEarningRepo)(nil)

// ── Email queue ───────────────────────────────────────────────────────────────

type stubQueue struct {
	mu   sync.Mutex
	jobs []worker.EmailJob
}

func (q *stubQueue) EnqueueEmail(_ context.Context, job worker.EmailJob) error {
	q.mu.Lock()
	q.jobs = append(q.jobs, job)
	q.mu.Unlock()
	return nil
}
