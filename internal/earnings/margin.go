package earnings

import (
	"floreria/internal/dto"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Margin is profit as a percentage of revenue, rounded to cents; 0 when there
// is no revenue.
func Margin(profit, revenue decimal.Decimal) decimal.Decimal {
	if !revenue.IsPositive() {
		return decimal.Zero
	}
	return profit.Div(revenue).Mul(hundred).Round(2)
}

// StatusOf classifies a gross profit figure.
func StatusOf(gross decimal.Decimal) string {
	switch {
	case gross.IsPositive():
		return dto.StatusProfit
	case gross.IsNegative():
		return dto.StatusLoss
	}
	return dto.StatusBreakEven
}

// Figures are the derived totals of one earning row.
type Figures struct {
	TotalCost    decimal.Decimal
	TotalRevenue decimal.Decimal
	Profit       decimal.Decimal
	ProfitMargin decimal.Decimal
}

// Compute derives the totals of a row from its unit prices and quantity.
func Compute(costPrice, salePrice decimal.Decimal, quantity int) Figures {
	qty := decimal.NewFromInt(int64(quantity))
	cost := costPrice.Mul(qty).Round(2)
	revenue := salePrice.Mul(qty).Round(2)
	profit := revenue.Sub(cost)
	return Figures{TotalCost: cost, TotalRevenue: revenue, Profit: profit, ProfitMargin: Margin(profit, revenue)}
}
