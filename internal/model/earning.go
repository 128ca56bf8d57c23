package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Earning is written once when a sale reaches COMPLETED.
type Earning struct {
	ID           uint            `gorm:"primaryKey"`
	SaleID       uint            `gorm:"not null;uniqueIndex"`
	ProductID    uint            `gorm:"not null;index"`
	SellerID     uint            `gorm:"not null;index"`
	Quantity     int             `gorm:"not null"`
	CostPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SalePrice    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalCost    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalRevenue decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Profit       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ProfitMargin decimal.Decimal `gorm:"type:decimal(7,2);not null"`
	IsRecorded   bool            `gorm:"not null;default:true"`
	CreatedAt    time.Time       `gorm:"index"`
	UpdatedAt    time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
	Seller  *Seller  `gorm:"foreignKey:SellerID"`
}

// Investment is money put into the business (materials, tools). Append-only.
type Investment struct {
	ID           uint            `gorm:"primaryKey"`
	Amount       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Description  string          `gorm:"type:varchar(500)"`
	Date         time.Time       `gorm:"type:date;not null;index"`
	RegisteredBy string          `gorm:"type:varchar(50)"`
	CreatedAt    time.Time
}
