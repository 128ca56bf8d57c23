package sales

import (
	"floreria/internal/dto"

	"github.com/shopspring/decimal"
)

// Totals aggregates a set of sales for a dashboard header.
type Totals struct {
	TotalSales     decimal.Decimal `json:"total_sales"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
	TotalRemaining decimal.Decimal `json:"total_remaining"`
	Count          int             `json:"count"`
}

// Summarize sums every sale in list.
func Summarize(list []dto.SaleResponse) Totals {
	return summarize(list, func(dto.SaleResponse) bool { return true })
}

// SummarizeActive sums every sale except CANCELLED ones.
func SummarizeActive(list []dto.SaleResponse) Totals {
	return summarize(list, func(s dto.SaleResponse) bool { return Status(s.Status) != Cancelled })
}

func summarize(list []dto.SaleResponse, keep func(dto.SaleResponse) bool) Totals {
	t := Totals{TotalSales: decimal.Zero, TotalPaid: decimal.Zero, TotalRemaining: decimal.Zero}
	for _, s := range list {
		if !keep(s) {
			continue
		}
		t.TotalSales = t.TotalSales.Add(s.TotalPrice)
		t.TotalPaid = t.TotalPaid.Add(s.AmountPaid)
		t.TotalRemaining = t.TotalRemaining.Add(s.AmountRemaining)
		t.Count++
	}
	return t
}
