package earnings

import (
	"context"
	"time"

	"floreria/internal/dto"

	"github.com/shopspring/decimal"
)

// EarningsAPI is the remote side of the dashboard. client.EarningsClient
// implements it.
type EarningsAPI interface {
	Summary(ctx context.Context) (*dto.EarningsSummary, error)
	ByProduct(ctx context.Context, orderBy string) ([]dto.EarningsByProduct, error)
	ByPeriod(ctx context.Context, q dto.PeriodQuery) ([]dto.EarningsByPeriod, error)
	BySeller(ctx context.Context) ([]dto.EarningsBySeller, error)
	RecordInvestment(ctx context.Context, req dto.InvestmentRequest) (*dto.InvestmentResponse, error)
	Investments(ctx context.Context, page dto.Page) ([]dto.InvestmentResponse, error)
	UpdateEarning(ctx context.Context, id uint, cost, sale decimal.Decimal) (*dto.EarningResponse, error)
}

const MsgInvestmentSaved = "Inversión registrada exitosamente"

// Reports validates dashboard input locally before any call goes out.
type Reports struct {
	api EarningsAPI
	now func() time.Time
}

func NewReports(api EarningsAPI) *Reports { return &Reports{api: api, now: time.Now} }

// WithClock replaces the clock used for investment date checks.
func (r *Reports) WithClock(now func() time.Time) *Reports {
	r.now = now
	return r
}

func (r *Reports) Summary(ctx context.Context) (*dto.EarningsSummary, error) {
	return r.api.Summary(ctx)
}

func (r *Reports) ByProduct(ctx context.Context, orderBy string) ([]dto.EarningsByProduct, error) {
	return r.api.ByProduct(ctx, orderBy)
}

// ByPeriod rejects inverted or malformed ranges without calling the API. A
// lone start_date is checked against today.
func (r *Reports) ByPeriod(ctx context.Context, q dto.PeriodQuery) ([]dto.EarningsByPeriod, error) {
	if _, err := ParsePeriod(q.Period); err != nil {
		return nil, err
	}
	if q.StartDate != "" || q.EndDate != "" {
		if _, _, err := ResolveRange(q, r.now()); err != nil {
			return nil, err
		}
	}
	return r.api.ByPeriod(ctx, q)
}

func (r *Reports) BySeller(ctx context.Context) ([]dto.EarningsBySeller, error) {
	return r.api.BySeller(ctx)
}

// RecordInvestment returns the saved investment and the success message.
func (r *Reports) RecordInvestment(ctx context.Context, req dto.InvestmentRequest) (*dto.InvestmentResponse, string, error) {
	if errs := ValidateInvestment(req, r.now()); errs != nil {
		return nil, "", errs
	}
	inv, err := r.api.RecordInvestment(ctx, req)
	if err != nil {
		return nil, "", err
	}
	return inv, MsgInvestmentSaved, nil
}

func (r *Reports) Investments(ctx context.Context, page dto.Page) ([]dto.InvestmentResponse, error) {
	return r.api.Investments(ctx, page)
}

// CorrectPrices overwrites the unit prices of an earning row.
func (r *Reports) CorrectPrices(ctx context.Context, id uint, cost, sale decimal.Decimal) (*dto.EarningResponse, error) {
	if err := ValidatePrices(cost, sale); err != nil {
		return nil, err
	}
	return r.api.UpdateEarning(ctx, id, cost, sale)
}
