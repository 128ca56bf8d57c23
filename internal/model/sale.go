package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is one order of a single product. Rows are never deleted; a
// cancellation is a status change.
// Status: "PENDING" | "PARTIAL" | "COMPLETED" | "CANCELLED"
type Sale struct {
	ID              uint            `gorm:"primaryKey"`
	ProductID       uint            `gorm:"not null;index"`
	SellerID        uint            `gorm:"not null;index"`
	Quantity        int             `gorm:"not null"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Discount        decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"` // percent
	Subtotal        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	AmountPaid      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	AmountRemaining decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status          string          `gorm:"type:varchar(20);not null;index"`
	PaymentMethod   string          `gorm:"type:varchar(20);not null"`
	DueDate         *time.Time      `gorm:"type:date;index"`
	Notes           *string         `gorm:"type:text"`
	CancelReason    *string
	CreatedBy       uint      `gorm:"index"`
	CreatedAt       time.Time `gorm:"index"`
	UpdatedAt       time.Time

	Product  *Product      `gorm:"foreignKey:ProductID"`
	Seller   *Seller       `gorm:"foreignKey:SellerID"`
	Payments []SalePayment `gorm:"foreignKey:SaleID"`
}

// SalePayment is an immutable audit row, one per registered payment
// (including the down payment taken when the sale was created).
type SalePayment struct {
	ID            uint            `gorm:"primaryKey"`
	SaleID        uint            `gorm:"not null;index"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentMethod string          `gorm:"type:varchar(20);not null"`
	RegisteredBy  string          `gorm:"type:varchar(50)"`
	CreatedAt     time.Time
}
