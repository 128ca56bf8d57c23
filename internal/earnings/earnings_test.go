package earnings_test

import (
	"context"
	"testing"
	"time"

	"floreria/internal/dto"
	"floreria/internal/earnings"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

var now = time.Date(2026, 5, 14, 12, 0, 0, 0, time.UTC) // a Thursday

// ── Periods ───────────────────────────────────────────────────────────────────

func TestValidateRange(t *testing.T) {
	a := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b := a.AddDate(0, 0, 1)
	assert.NoError(t, earnings.ValidateRange(a, b))
	assert.NoError(t, earnings.ValidateRange(a, a))
	assert.EqualError(t, earnings.ValidateRange(b, a), "La fecha inicial no puede ser posterior a la fecha final.")
}

func TestResolveRange_Defaults(t *testing.T) {
	start, end, err := earnings.ResolveRange(dto.PeriodQuery{}, now)
	require.NoError(t, err)
	assert.Equal(t, now, end)
	assert.Equal(t, now.AddDate(0, 0, -30), start)
}

func TestResolveRange_WholeDays(t *testing.T) {
	start, end, err := earnings.ResolveRange(dto.PeriodQuery{StartDate: "2026-02-01", EndDate: "2026-02-03"}, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 2, 3, 23, 59, 59, 999999999, time.UTC), end)

	_, _, err = earnings.ResolveRange(dto.PeriodQuery{StartDate: "2026-02-04", EndDate: "2026-02-03"}, now)
	assert.ErrorIs(t, err, earnings.ErrInvertedRange)
}

func TestBucket(t *testing.T) {
	ts := time.Date(2026, 5, 14, 18, 45, 0, 0, time.UTC)

	s, e := earnings.Bucket(ts, earnings.Day)
	assert.Equal(t, time.Date(2026, 5, 14, 0, 0, 0, 0, time.UTC), s)
	assert.Equal(t, time.Date(2026, 5, 14, 23, 59, 59, 999999999, time.UTC), e)

	s, e = earnings.Bucket(ts, earnings.Week)
	assert.Equal(t, time.Monday, s.Weekday())
	assert.Equal(t, time.Date(2026, 5, 11, 0, 0, 0, 0, time.UTC), s)
	assert.Equal(t, time.Date(2026, 5, 17, 23, 59, 59, 999999999, time.UTC), e)

	// Sunday belongs to the week that started the previous Monday.
	s, _ = earnings.Bucket(time.Date(2026, 5, 17, 9, 0, 0, 0, time.UTC), earnings.Week)
	assert.Equal(t, time.Date(2026, 5, 11, 0, 0, 0, 0, time.UTC), s)

	s, e = earnings.Bucket(time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC), earnings.Month)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), s)
	assert.Equal(t, time.Date(2026, 2, 28, 23, 59, 59, 999999999, time.UTC), e)

	s, e = earnings.Bucket(ts, earnings.Year)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), s)
	assert.Equal(t, time.Date(2026, 12, 31, 23, 59, 59, 999999999, time.UTC), e)
}

func TestParsePeriod(t *testing.T) {
	p, err := earnings.ParsePeriod("")
	require.NoError(t, err)
	assert.Equal(t, earnings.Month, p)

	p, err = earnings.ParsePeriod("WEEK")
	require.NoError(t, err)
	assert.Equal(t, earnings.Week, p)

	_, err = earnings.ParsePeriod("quarter")
	assert.Error(t, err)
}

// ── Arithmetic ────────────────────────────────────────────────────────────────

func TestCompute_Figures(t *testing.T) {
	f := earnings.Compute(d("60"), d("90"), 3)
	assert.Equal(t, "180", f.TotalCost.String())
	assert.Equal(t, "270", f.TotalRevenue.String())
	assert.Equal(t, "90", f.Profit.String())
	assert.Equal(t, "33.33", f.ProfitMargin.String())
}

func TestMargin_ZeroRevenue(t *testing.T) {
	assert.True(t, earnings.Margin(d("-10"), d("0")).IsZero())
}

func TestValidatePrices(t *testing.T) {
	assert.NoError(t, earnings.ValidatePrices(d("1"), d("2")))
	assert.EqualError(t, earnings.ValidatePrices(d("0"), d("2")), "Los precios deben ser mayores a 0")
	assert.ErrorIs(t, earnings.ValidatePrices(d("3"), d("-1")), earnings.ErrInvalidPrices)
}

func TestEditDefaults(t *testing.T) {
	cost, sale := earnings.EditDefaults(dto.EarningsByProduct{QuantitySold: 4, TotalInvested: d("200"), TotalGenerated: d("330")})
	assert.Equal(t, "50", cost.String())
	assert.Equal(t, "82.5", sale.String())

	cost, _ = earnings.EditDefaults(dto.EarningsByProduct{})
	assert.True(t, cost.IsZero())
}

func TestValidateInvestment(t *testing.T) {
	past := now.Add(-time.Hour)
	future := now.Add(24 * time.Hour)

	assert.Nil(t, earnings.ValidateInvestment(dto.InvestmentRequest{Amount: d("100"), Description: "macetas", Date: &past}, now))

	errs := earnings.ValidateInvestment(dto.InvestmentRequest{Amount: d("0"), Description: " "}, now)
	assert.Equal(t, "Ingresa un monto válido mayor a 0", errs["amount"])
	assert.Equal(t, "Ingresa una descripción de la inversión", errs["description"])
	assert.Equal(t, "Selecciona una fecha", errs["date"])

	errs = earnings.ValidateInvestment(dto.InvestmentRequest{Amount: d("5"), Description: "x", Date: &future}, now)
	assert.Equal(t, "La fecha de inversión no puede ser futura", errs["date"])
}

// ── Aggregations ──────────────────────────────────────────────────────────────

func row(product, seller uint, qty int, cost, sale string, at time.Time) earnings.Row {
	f := earnings.Compute(d(cost), d(sale), qty)
	return earnings.Row{
		ProductID: product, ProductName: map[uint]string{1: "Ramo de rosas", 2: "Girasoles"}[product],
		SellerID: seller, SellerName: map[uint]string{7: "Ana", 8: "Luis"}[seller],
		Quantity: qty, CostPrice: d(cost), SalePrice: d(sale),
		TotalCost: f.TotalCost, TotalRevenue: f.TotalRevenue, Profit: f.Profit, ProfitMargin: f.ProfitMargin,
		CreatedAt: at,
	}
}

func sampleRows() []earnings.Row {
	return []earnings.Row{
		row(1, 7, 2, "50", "100", time.Date(2026, 5, 11, 10, 0, 0, 0, time.UTC)), // profit 100, margin 50
		row(2, 8, 10, "8", "10", time.Date(2026, 5, 12, 10, 0, 0, 0, time.UTC)),  // profit 20, margin 20
		row(1, 8, 1, "50", "80", time.Date(2026, 4, 30, 10, 0, 0, 0, time.UTC)),  // profit 30, margin 37.5
	}
}

func TestSummarize(t *testing.T) {
	s := earnings.Summarize(sampleRows(), d("500"))
	// cost 100+80+50 = 230; invested 500+230
	assert.Equal(t, "730", s.TotalInvested.String())
	assert.Equal(t, "380", s.TotalSold.String())
	assert.Equal(t, "-350", s.GrossProfit.String())
	assert.Equal(t, dto.StatusLoss, s.Status)
	assert.Equal(t, int64(3), s.TotalSales)
	assert.Equal(t, "35.83", s.AverageProfitMargin.String())
	assert.Nil(t, s.NetProfit)

	empty := earnings.Summarize(nil, decimal.Zero)
	assert.Equal(t, dto.StatusBreakEven, empty.Status)
	assert.True(t, empty.AverageProfitMargin.IsZero())
}

func TestByProduct_Ordering(t *testing.T) {
	byProfit := earnings.ByProduct(sampleRows(), earnings.OrderProfit)
	require.Len(t, byProfit, 2)
	assert.Equal(t, uint(1), byProfit[0].ProductID)
	assert.Equal(t, 3, byProfit[0].QuantitySold)
	assert.Equal(t, "130", byProfit[0].Profit.String())
	assert.Equal(t, "43.75", byProfit[0].ProfitMargin.String())

	byQty := earnings.ByProduct(sampleRows(), earnings.OrderQuantity)
	assert.Equal(t, uint(2), byQty[0].ProductID)

	byMargin := earnings.ByProduct(sampleRows(), earnings.OrderMargin)
	assert.Equal(t, uint(1), byMargin[0].ProductID)
}

func TestByPeriod_WeekBuckets(t *testing.T) {
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)

	list := earnings.ByPeriod(sampleRows(), earnings.Week, start, end)
	require.Len(t, list, 2)
	assert.Equal(t, time.Date(2026, 4, 27, 0, 0, 0, 0, time.UTC), list[0].StartDate)
	assert.Equal(t, 1, list[0].SalesCount)
	assert.Equal(t, time.Date(2026, 5, 11, 0, 0, 0, 0, time.UTC), list[1].StartDate)
	assert.Equal(t, 2, list[1].SalesCount)
	assert.Equal(t, "120", list[1].Profit.String())
	assert.Equal(t, "40", list[1].ProfitMargin.String())
	assert.Equal(t, "week", list[1].Period)
}

func TestByPeriod_FiltersRange(t *testing.T) {
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	list := earnings.ByPeriod(sampleRows(), earnings.Month, start, now)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].SalesCount)
}

func TestBySeller_RankedByProfit(t *testing.T) {
	list := earnings.BySeller(sampleRows())
	require.Len(t, list, 2)
	assert.Equal(t, "Ana", list[0].SellerName)
	assert.Equal(t, "100", list[0].Profit.String())
	assert.Equal(t, uint(8), list[1].SellerID)
	assert.Equal(t, 2, list[1].TotalSales)
	assert.Nil(t, list[1].Commission)
}

// ── Reports ───────────────────────────────────────────────────────────────────

type stubEarningsAPI struct {
	earnings.EarningsAPI
	periodCalls int
	investCalls int
	updateCalls int
}

func (s *stubEarningsAPI) ByPeriod(context.Context, dto.PeriodQuery) ([]dto.EarningsByPeriod, error) {
	s.periodCalls++
	return []dto.EarningsByPeriod{}, nil
}

func (s *stubEarningsAPI) RecordInvestment(_ context.Context, req dto.InvestmentRequest) (*dto.InvestmentResponse, error) {
	s.investCalls++
	return &dto.InvestmentResponse{ID: 1, Amount: req.Amount, Description: req.Description}, nil
}

func (s *stubEarningsAPI) UpdateEarning(_ context.Context, id uint, cost, sale decimal.Decimal) (*dto.EarningResponse, error) {
	s.updateCalls++
	return &dto.EarningResponse{ID: id, CostPrice: cost, SalePrice: sale}, nil
}

func TestReports_InvertedPeriodNeverCallsAPI(t *testing.T) {
	api := &stubEarningsAPI{}
	r := earnings.NewReports(api).WithClock(func() time.Time { return now })

	_, err := r.ByPeriod(context.Background(), dto.PeriodQuery{Period: "day", StartDate: "2026-05-10", EndDate: "2026-05-01"})
	assert.ErrorIs(t, err, earnings.ErrInvertedRange)
	assert.Equal(t, 0, api.periodCalls)

	_, err = r.ByPeriod(context.Background(), dto.PeriodQuery{Period: "day", StartDate: "2026-05-01", EndDate: "2026-05-10"})
	require.NoError(t, err)
	assert.Equal(t, 1, api.periodCalls)
}

func TestReports_LoneStartDateCheckedAgainstToday(t *testing.T) {
	api := &stubEarningsAPI{}
	r := earnings.NewReports(api).WithClock(func() time.Time { return now })

	_, err := r.ByPeriod(context.Background(), dto.PeriodQuery{Period: "day", StartDate: "2026-06-01"})
	assert.ErrorIs(t, err, earnings.ErrInvertedRange)
	assert.Equal(t, 0, api.periodCalls)

	_, err = r.ByPeriod(context.Background(), dto.PeriodQuery{Period: "day", StartDate: "2026-05-14"})
	require.NoError(t, err)
	assert.Equal(t, 1, api.periodCalls)
}

func TestReports_RecordInvestment(t *testing.T) {
	api := &stubEarningsAPI{}
	r := earnings.NewReports(api).WithClock(func() time.Time { return now })

	_, _, err := r.RecordInvestment(context.Background(), dto.InvestmentRequest{Amount: d("10")})
	require.Error(t, err)
	assert.Equal(t, 0, api.investCalls)

	date := now.Add(-time.Minute)
	inv, msg, err := r.RecordInvestment(context.Background(), dto.InvestmentRequest{Amount: d("10"), Description: "tierra", Date: &date})
	require.NoError(t, err)
	assert.Equal(t, "Inversión registrada exitosamente", msg)
	assert.Equal(t, uint(1), inv.ID)
}

func TestReports_CorrectPrices(t *testing.T) {
	api := &stubEarningsAPI{}
	r := earnings.NewReports(api)

	_, err := r.CorrectPrices(context.Background(), 3, d("0"), d("10"))
	assert.ErrorIs(t, err, earnings.ErrInvalidPrices)
	assert.Equal(t, 0, api.updateCalls)

	got, err := r.CorrectPrices(context.Background(), 3, d("4"), d("10"))
	require.NoError(t, err)
	assert.Equal(t, uint(3), got.ID)
}
