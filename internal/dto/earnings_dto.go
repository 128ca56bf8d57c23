package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Query DTOs ─────────────────────────────────────────────────────────────

type ByProductQuery struct {
	OrderBy string `form:"order_by,default=profit" validate:"oneof=profit quantity margin"`
}

// PeriodQuery carries dates as YYYY-MM-DD; empty means "last 30 days".
type PeriodQuery struct {
	Period    string `form:"period,default=month" validate:"oneof=day week month year"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

// UpdateEarningQuery is bound from PUT /earnings/earning/:id?cost_price=&sale_price=.
type UpdateEarningQuery struct {
	CostPrice *decimal.Decimal `form:"cost_price"`
	SalePrice *decimal.Decimal `form:"sale_price"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type InvestmentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" validate:"max=500"`
	Date        *time.Time      `json:"date"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// Summary status values.
const (
	StatusProfit    = "PROFIT"
	StatusLoss      = "LOSS"
	StatusBreakEven = "BREAK_EVEN"
)

type EarningsSummary struct {
	TotalInvested       decimal.Decimal  `json:"total_invested"`
	TotalSold           decimal.Decimal  `json:"total_sold"`
	GrossProfit         decimal.Decimal  `json:"gross_profit"`
	NetProfit           *decimal.Decimal `json:"net_profit"`
	AverageProfitMargin decimal.Decimal  `json:"average_profit_margin"`
	Status              string           `json:"status"`
	TotalSales          int64            `json:"total_sales"`
}

type EarningsByProduct struct {
	ProductID      uint            `json:"product_id"`
	ProductName    string          `json:"product_name"`
	QuantitySold   int             `json:"quantity_sold"`
	TotalInvested  decimal.Decimal `json:"total_invested"`
	TotalGenerated decimal.Decimal `json:"total_generated"`
	Profit         decimal.Decimal `json:"profit"`
	ProfitMargin   decimal.Decimal `json:"profit_margin"`
}

type EarningsByPeriod struct {
	Period       string          `json:"period"`
	StartDate    time.Time       `json:"start_date"`
	EndDate      time.Time       `json:"end_date"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	Profit       decimal.Decimal `json:"profit"`
	ProfitMargin decimal.Decimal `json:"profit_margin"`
	SalesCount   int             `json:"sales_count"`
}

type EarningsBySeller struct {
	SellerID     uint             `json:"seller_id"`
	SellerName   string           `json:"seller_name"`
	TotalSales   int              `json:"total_sales"`
	TotalRevenue decimal.Decimal  `json:"total_revenue"`
	TotalCost    decimal.Decimal  `json:"total_cost"`
	Profit       decimal.Decimal  `json:"profit"`
	Commission   *decimal.Decimal `json:"commission"`
}

type EarningResponse struct {
	ID           uint            `json:"id"`
	SaleID       uint            `json:"sale_id"`
	ProductID    uint            `json:"product_id"`
	SellerID     uint            `json:"seller_id"`
	Quantity     int             `json:"quantity"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SalePrice    decimal.Decimal `json:"sale_price"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	Profit       decimal.Decimal `json:"profit"`
	ProfitMargin decimal.Decimal `json:"profit_margin"`
	IsRecorded   bool            `json:"is_recorded"`
	CreatedAt    time.Time       `json:"created_at"`
}

type InvestmentResponse struct {
	ID           uint            `json:"id"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	Date         time.Time       `json:"date"`
	RegisteredBy string          `json:"registered_by"`
	CreatedAt    time.Time       `json:"created_at"`
}
