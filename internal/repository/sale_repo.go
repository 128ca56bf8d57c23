package repository

import (
	"context"
	"time"

	"floreria/internal/dto"
	"floreria/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SaleRepository interface {
	CreateTx(tx *gorm.DB, s *model.Sale) error
	FindByID(ctx context.Context, id uint) (*model.Sale, error)
	FindByIDForUpdate(tx *gorm.DB, id uint) (*model.Sale, error)
	List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, error)
	// ListOpenDue returns PENDING and PARTIAL sales due on or before until.
	ListOpenDue(ctx context.Context, until time.Time) ([]model.Sale, error)
	Update(ctx context.Context, s *model.Sale) error
	UpdateTx(tx *gorm.DB, s *model.Sale) error
	CreatePaymentTx(tx *gorm.DB, p *model.SalePayment) error
	ListPayments(ctx context.Context, saleID uint) ([]model.SalePayment, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

func (r *saleRepo) CreateTx(tx *gorm.DB, s *model.Sale) error {
	return tx.Omit(clause.Associations).Create(s).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uint) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).Preload("Product").Preload("Seller").First(&s, id).Error
	return &s, err
}

func (r *saleRepo) FindByIDForUpdate(tx *gorm.DB, id uint) (*model.Sale, error) {
	var s model.Sale
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&s, id).Error
	return &s, err
}

func (r *saleRepo) List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, error) {
	q := r.db.WithContext(ctx).Model(&model.Sale{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.SellerID != 0 {
		q = q.Where("seller_id = ?", filter.SellerID)
	}
	if start, err := time.Parse(dto.DateLayout, filter.StartDate); err == nil {
		q = q.Where("created_at >= ?", start)
	}
	if end, err := time.Parse(dto.DateLayout, filter.EndDate); err == nil {
		q = q.Where("created_at < ?", end.AddDate(0, 0, 1))
	}
	var sales []model.Sale
	err := q.Preload("Product").Preload("Seller").
		Order("created_at DESC").
		Offset(filter.Skip).Limit(filter.Limit).
		Find(&sales).Error
	return sales, err
}

func (r *saleRepo) ListOpenDue(ctx context.Context, until time.Time) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).
		Preload("Product").Preload("Seller").
		Where("status IN ? AND due_date IS NOT NULL AND due_date <= ?", []string{"PENDING", "PARTIAL"}, until).
		Order("due_date ASC").
		Find(&sales).Error
	return sales, err
}

func (r *saleRepo) Update(ctx context.Context, s *model.Sale) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(s).Error
}

func (r *saleRepo) UpdateTx(tx *gorm.DB, s *model.Sale) error {
	return tx.Omit(clause.Associations).Save(s).Error
}

func (r *saleRepo) CreatePaymentTx(tx *gorm.DB, p *model.SalePayment) error {
	return tx.Create(p).Error
}

func (r *saleRepo) ListPayments(ctx context.Context, saleID uint) ([]model.SalePayment, error) {
	var payments []model.SalePayment
	err := r.db.WithContext(ctx).Where("sale_id = ?", saleID).Order("created_at ASC").Find(&payments).Error
	return payments, err
}
