package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product payloads carry only length limits as tags; the business rules
// (required name, price against cost) live in catalog.ValidateCreate/Update so
// the Spanish field messages match on both sides of the wire.

type CreateProductRequest struct {
	Name        string          `json:"name"        validate:"max=150"`
	Description *string         `json:"description" validate:"omitempty,max=1000"`
	Price       decimal.Decimal `json:"price"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	Stock       int             `json:"stock"`
	IsActive    *bool           `json:"is_active"`
}

type UpdateProductRequest struct {
	Name        string           `json:"name"        validate:"max=150"`
	Description *string          `json:"description" validate:"omitempty,max=1000"`
	Price       decimal.Decimal  `json:"price"`
	CostPrice   *decimal.Decimal `json:"cost_price"`
	Stock       int              `json:"stock"`
	IsActive    *bool            `json:"is_active"`
}

type ProductResponse struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	Stock       int             `json:"stock"`
	IsActive    bool            `json:"is_active"`
	ImageURL    *string         `json:"image_url"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
