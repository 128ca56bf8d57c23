package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Filter / List ──────────────────────────────────────────────────────────

// SaleFilter is bound from the query string of GET /sales/.
type SaleFilter struct {
	Page
	Status    string `form:"status"`
	SellerID  uint   `form:"seller_id"`
	StartDate string `form:"start_date"` // YYYY-MM-DD, inclusive
	EndDate   string `form:"end_date"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CreateSaleRequest is validated by sales.ValidateForm rather than struct tags
// so every field error reaches the client in Spanish.
type CreateSaleRequest struct {
	ProductID     uint            `json:"product_id"`
	SellerID      uint            `json:"seller_id"`
	Quantity      int             `json:"quantity"`
	Discount      decimal.Decimal `json:"discount"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	PaymentMethod string          `json:"payment_method"`
	DueDate       *string         `json:"due_date"` // YYYY-MM-DD
	Notes         *string         `json:"notes"     validate:"omitempty,max=1000"`
}

// UpdateSaleRequest edits the non-monetary fields of a sale.
type UpdateSaleRequest struct {
	SellerID      *uint   `json:"seller_id"`
	PaymentMethod *string `json:"payment_method" validate:"omitempty,oneof=CASH CARD TRANSFER MIXED"`
	DueDate       *string `json:"due_date"`
	Notes         *string `json:"notes"          validate:"omitempty,max=1000"`
}

type UpdateSaleStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING PARTIAL COMPLETED CANCELLED"`
}

type PaymentRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod *string         `json:"payment_method" validate:"omitempty,oneof=CASH CARD TRANSFER MIXED"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleResponse struct {
	ID              uint            `json:"id"`
	ProductID       uint            `json:"product_id"`
	ProductName     string          `json:"product_name,omitempty"`
	SellerID        uint            `json:"seller_id"`
	SellerName      string          `json:"seller_name,omitempty"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Discount        decimal.Decimal `json:"discount"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	AmountPaid      decimal.Decimal `json:"amount_paid"`
	AmountRemaining decimal.Decimal `json:"amount_remaining"`
	Status          string          `json:"status"`
	PaymentMethod   string          `json:"payment_method"`
	DueDate         *string         `json:"due_date"`
	Notes           *string         `json:"notes"`
	CancelReason    *string         `json:"cancel_reason,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type SalePaymentResponse struct {
	ID            uint            `json:"id"`
	SaleID        uint            `json:"sale_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	RegisteredBy  string          `json:"registered_by"`
	CreatedAt     time.Time       `json:"created_at"`
}

// DueAlertResponse is one row of GET /sales/alerts.
type DueAlertResponse struct {
	Sale         SaleResponse `json:"sale"`
	DaysUntilDue int          `json:"days_until_due"`
	Urgency      string       `json:"urgency"`
}
