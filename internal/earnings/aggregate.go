package earnings

import (
	"sort"
	"time"

	"floreria/internal/dto"

	"github.com/shopspring/decimal"
)

// Row is one recorded earning joined with the names the reports display.
type Row struct {
	ID           uint
	SaleID       uint
	ProductID    uint
	ProductName  string
	SellerID     uint
	SellerName   string
	Quantity     int
	CostPrice    decimal.Decimal
	SalePrice    decimal.Decimal
	TotalCost    decimal.Decimal
	TotalRevenue decimal.Decimal
	Profit       decimal.Decimal
	ProfitMargin decimal.Decimal
	CreatedAt    time.Time
}

// Summarize builds the global summary. invested is the sum of recorded
// investments; the cost of goods sold is added on top of it.
func Summarize(rows []Row, invested decimal.Decimal) dto.EarningsSummary {
	cost, sold, margins := decimal.Zero, decimal.Zero, decimal.Zero
	for _, r := range rows {
		cost = cost.Add(r.TotalCost)
		sold = sold.Add(r.TotalRevenue)
		margins = margins.Add(r.ProfitMargin)
	}
	totalInvested := invested.Add(cost)
	gross := sold.Sub(totalInvested)
	avg := decimal.Zero
	if len(rows) > 0 {
		avg = margins.Div(decimal.NewFromInt(int64(len(rows)))).Round(2)
	}
	return dto.EarningsSummary{
		TotalInvested:       totalInvested,
		TotalSold:           sold,
		GrossProfit:         gross,
		AverageProfitMargin: avg,
		Status:              StatusOf(gross),
		TotalSales:          int64(len(rows)),
	}
}

// Orderings of the by-product report.
const (
	OrderProfit   = "profit"
	OrderQuantity = "quantity"
	OrderMargin   = "margin"
)

// ByProduct groups rows per product and sorts them descending by orderBy.
// The margin of a group is the mean of its row margins.
func ByProduct(rows []Row, orderBy string) []dto.EarningsByProduct {
	type acc struct {
		out     dto.EarningsByProduct
		margins decimal.Decimal
		n       int64
	}
	groups := map[uint]*acc{}
	var order []uint
	for _, r := range rows {
		g, ok := groups[r.ProductID]
		if !ok {
			g = &acc{out: dto.EarningsByProduct{ProductID: r.ProductID, ProductName: r.ProductName}}
			groups[r.ProductID] = g
			order = append(order, r.ProductID)
		}
		g.out.QuantitySold += r.Quantity
		g.out.TotalInvested = g.out.TotalInvested.Add(r.TotalCost)
		g.out.TotalGenerated = g.out.TotalGenerated.Add(r.TotalRevenue)
		g.out.Profit = g.out.Profit.Add(r.Profit)
		g.margins = g.margins.Add(r.ProfitMargin)
		g.n++
	}

	list := make([]dto.EarningsByProduct, 0, len(order))
	for _, id := range order {
		g := groups[id]
		g.out.ProfitMargin = g.margins.Div(decimal.NewFromInt(g.n)).Round(2)
		list = append(list, g.out)
	}

	less := func(i, j int) bool { return list[i].Profit.GreaterThan(list[j].Profit) }
	switch orderBy {
	case OrderQuantity:
		less = func(i, j int) bool { return list[i].QuantitySold > list[j].QuantitySold }
	case OrderMargin:
		less = func(i, j int) bool { return list[i].ProfitMargin.GreaterThan(list[j].ProfitMargin) }
	}
	sort.SliceStable(list, less)
	return list
}

// ByPeriod buckets the rows created within [start, end] and returns the
// buckets in chronological order.
func ByPeriod(rows []Row, p Period, start, end time.Time) []dto.EarningsByPeriod {
	buckets := map[time.Time]*dto.EarningsByPeriod{}
	for _, r := range rows {
		if r.CreatedAt.Before(start) || r.CreatedAt.After(end) {
			continue
		}
		bs, be := Bucket(r.CreatedAt, p)
		b, ok := buckets[bs]
		if !ok {
			b = &dto.EarningsByPeriod{Period: string(p), StartDate: bs, EndDate: be}
			buckets[bs] = b
		}
		b.TotalRevenue = b.TotalRevenue.Add(r.TotalRevenue)
		b.TotalCost = b.TotalCost.Add(r.TotalCost)
		b.Profit = b.Profit.Add(r.Profit)
		b.SalesCount++
	}

	list := make([]dto.EarningsByPeriod, 0, len(buckets))
	for _, b := range buckets {
		b.ProfitMargin = Margin(b.Profit, b.TotalRevenue)
		list = append(list, *b)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].StartDate.Before(list[j].StartDate) })
	return list
}

// BySeller ranks sellers by profit, highest first. Commission is left nil.
func BySeller(rows []Row) []dto.EarningsBySeller {
	groups := map[uint]*dto.EarningsBySeller{}
	var order []uint
	for _, r := range rows {
		g, ok := groups[r.SellerID]
		if !ok {
			g = &dto.EarningsBySeller{SellerID: r.SellerID, SellerName: r.SellerName}
			groups[r.SellerID] = g
			order = append(order, r.SellerID)
		}
		g.TotalSales++
		g.TotalRevenue = g.TotalRevenue.Add(r.TotalRevenue)
		g.TotalCost = g.TotalCost.Add(r.TotalCost)
		g.Profit = g.Profit.Add(r.Profit)
	}
	list := make([]dto.EarningsBySeller, 0, len(order))
	for _, id := range order {
		list = append(list, *groups[id])
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Profit.GreaterThan(list[j].Profit) })
	return list
}
