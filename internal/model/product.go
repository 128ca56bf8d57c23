package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is an arrangement offered in the catalog. Inactive products stay
// referenced by old sales.
type Product struct {
	ID          uint            `gorm:"primaryKey"`
	Name        string          `gorm:"type:varchar(150);index;not null"`
	Description *string         `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CostPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Stock       int             `gorm:"not null;default:0"`
	IsActive    bool            `gorm:"not null;default:true"`
	ImageURL    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StockMovement records every change of a product's stock.
// Kind: "sale" | "cancel_restore" | "manual"
type StockMovement struct {
	ID          uint   `gorm:"primaryKey"`
	ProductID   uint   `gorm:"not null;index"`
	Kind        string `gorm:"type:varchar(20);not null"`
	Quantity    int    `gorm:"not null"` // positive = in, negative = out
	StockBefore int    `gorm:"not null"`
	StockAfter  int    `gorm:"not null"`
	Reason      string
	SaleID      *uint `gorm:"index"`
	CreatedAt   time.Time
}
