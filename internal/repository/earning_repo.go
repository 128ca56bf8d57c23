package repository

import (
	"context"
	"time"

	"floreria/internal/dto"
	"floreria/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type EarningRepository interface {
	CreateTx(tx *gorm.DB, e *model.Earning) error
	FindByID(ctx context.Context, id uint) (*model.Earning, error)
	FindBySaleID(ctx context.Context, saleID uint) (*model.Earning, error)
	Update(ctx context.Context, e *model.Earning) error
	// ListRows returns earnings with product and seller preloaded; zero
	// bounds are open.
	ListRows(ctx context.Context, start, end time.Time) ([]model.Earning, error)

	CreateInvestment(ctx context.Context, inv *model.Investment) error
	ListInvestments(ctx context.Context, page dto.Page) ([]model.Investment, error)
	SumInvestments(ctx context.Context) (decimal.Decimal, error)
}

type earningRepo struct{ db *gorm.DB }

func NewEarningRepository(db *gorm.DB) EarningRepository { return &earningRepo{db: db} }

func (r *earningRepo) CreateTx(tx *gorm.DB, e *model.Earning) error {
	return tx.Omit("Product", "Seller").Create(e).Error
}

func (r *earningRepo) FindByID(ctx context.Context, id uint) (*model.Earning, error) {
	var e model.Earning
	err := r.db.WithContext(ctx).First(&e, id).Error
	return &e, err
}

func (r *earningRepo) FindBySaleID(ctx context.Context, saleID uint) (*model.Earning, error) {
	var e model.Earning
	err := r.db.WithContext(ctx).Where("sale_id = ?", saleID).First(&e).Error
	return &e, err
}

func (r *earningRepo) Update(ctx context.Context, e *model.Earning) error {
	return r.db.WithContext(ctx).Omit("Product", "Seller").Save(e).Error
}

func (r *earningRepo) ListRows(ctx context.Context, start, end time.Time) ([]model.Earning, error) {
	q := r.db.WithContext(ctx).Model(&model.Earning{}).Preload("Product").Preload("Seller")
	if !start.IsZero() {
		q = q.Where("created_at >= ?", start)
	}
	if !end.IsZero() {
		q = q.Where("created_at <= ?", end)
	}
	var rows []model.Earning
	err := q.Order("created_at ASC").Find(&rows).Error
	return rows, err
}

func (r *earningRepo) CreateInvestment(ctx context.Context, inv *model.Investment) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *earningRepo) ListInvestments(ctx context.Context, page dto.Page) ([]model.Investment, error) {
	var list []model.Investment
	err := r.db.WithContext(ctx).Order("date DESC, id DESC").Offset(page.Skip).Limit(page.Limit).Find(&list).Error
	return list, err
}

func (r *earningRepo) SumInvestments(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	row := r.db.WithContext(ctx).Model(&model.Investment{}).Select("SUM(amount)").Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
