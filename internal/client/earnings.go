package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"floreria/internal/dto"
	"floreria/internal/earnings"
)

type EarningsClient struct{ c *Client }

var _ earnings.EarningsAPI = (*EarningsClient)(nil)

func (e *EarningsClient) Summary(ctx context.Context) (*dto.EarningsSummary, error) {
	var out dto.EarningsSummary
	if err := e.c.do(ctx, call{method: http.MethodGet, path: "/earnings/summary"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (e *EarningsClient) ByProduct(ctx context.Context, orderBy string) ([]dto.EarningsByProduct, error) {
	var q url.Values
	if orderBy != "" {
		q = url.Values{"order_by": {orderBy}}
	}
	var out []dto.EarningsByProduct
	err := e.c.do(ctx, call{method: http.MethodGet, path: "/earnings/by-product", query: q}, &out)
	return out, err
}

func (e *EarningsClient) ByPeriod(ctx context.Context, pq dto.PeriodQuery) ([]dto.EarningsByPeriod, error) {
	q := url.Values{}
	if pq.Period != "" {
		q.Set("period", pq.Period)
	}
	if pq.StartDate != "" {
		q.Set("start_date", pq.StartDate)
	}
	if pq.EndDate != "" {
		q.Set("end_date", pq.EndDate)
	}
	var out []dto.EarningsByPeriod
	err := e.c.do(ctx, call{method: http.MethodGet, path: "/earnings/by-period", query: q}, &out)
	return out, err
}

func (e *EarningsClient) BySeller(ctx context.Context) ([]dto.EarningsBySeller, error) {
	var out []dto.EarningsBySeller
	err := e.c.do(ctx, call{method: http.MethodGet, path: "/earnings/by-seller"}, &out)
	return out, err
}

// ForSale returns the earning recorded for a completed sale.
func (e *EarningsClient) ForSale(ctx context.Context, saleID uint) (*dto.EarningResponse, error) {
	var out dto.EarningResponse
	if err := e.c.do(ctx, call{method: http.MethodGet, path: idPath("/earnings", saleID)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (e *EarningsClient) RecordInvestment(ctx context.Context, req dto.InvestmentRequest) (*dto.InvestmentResponse, error) {
	var out dto.InvestmentResponse
	if err := e.c.do(ctx, call{method: http.MethodPost, path: "/earnings/investment", json: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (e *EarningsClient) Investments(ctx context.Context, page dto.Page) ([]dto.InvestmentResponse, error) {
	var out []dto.InvestmentResponse
	err := e.c.do(ctx, call{method: http.MethodGet, path: "/earnings/investments", query: pageQuery(page.Skip, page.Limit)}, &out)
	return out, err
}

// UpdateEarning corrects the prices of an earning; they travel as query params.
func (e *EarningsClient) UpdateEarning(ctx context.Context, id uint, cost, sale decimal.Decimal) (*dto.EarningResponse, error) {
	q := url.Values{}
	q.Set("cost_price", cost.String())
	q.Set("sale_price", sale.String())
	var out dto.EarningResponse
	if err := e.c.do(ctx, call{method: http.MethodPut, path: idPath("/earnings/earning", id), query: q}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Export downloads the earnings workbook (xlsx).
func (e *EarningsClient) Export(ctx context.Context) ([]byte, error) {
	return e.c.bytes(ctx, call{method: http.MethodGet, path: "/earnings/export"})
}
