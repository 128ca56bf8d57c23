package repository

import (
	"context"

	"floreria/internal/dto"
	"floreria/internal/model"

	"gorm.io/gorm"
)

type SellerRepository interface {
	Create(ctx context.Context, s *model.Seller) error
	FindByID(ctx context.Context, id uint) (*model.Seller, error)
	FindByName(ctx context.Context, name string) (*model.Seller, error)
	List(ctx context.Context, page dto.Page) ([]model.Seller, error)
	Update(ctx context.Context, s *model.Seller) error
	SoftDelete(ctx context.Context, id uint) error
}

type sellerRepo struct{ db *gorm.DB }

func NewSellerRepository(db *gorm.DB) SellerRepository { return &sellerRepo{db: db} }

func (r *sellerRepo) Create(ctx context.Context, s *model.Seller) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *sellerRepo) FindByID(ctx context.Context, id uint) (*model.Seller, error) {
	var s model.Seller
	err := r.db.WithContext(ctx).First(&s, id).Error
	return &s, err
}

func (r *sellerRepo) FindByName(ctx context.Context, name string) (*model.Seller, error) {
	var s model.Seller
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&s).Error
	return &s, err
}

// List returns every seller, active or not; callers filter for display.
func (r *sellerRepo) List(ctx context.Context, page dto.Page) ([]model.Seller, error) {
	var sellers []model.Seller
	err := r.db.WithContext(ctx).Order("name ASC").Offset(page.Skip).Limit(page.Limit).Find(&sellers).Error
	return sellers, err
}

func (r *sellerRepo) Update(ctx context.Context, s *model.Seller) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *sellerRepo) SoftDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&model.Seller{}).Where("id = ?", id).Update("is_active", false).Error
}
