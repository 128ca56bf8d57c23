package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"floreria/internal/dto"
	"floreria/internal/sales"
)

type SalesClient struct{ c *Client }

var _ sales.SalesAPI = (*SalesClient)(nil)

func (s *SalesClient) Create(ctx context.Context, req dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	var out dto.SaleResponse
	if err := s.c.do(ctx, call{method: http.MethodPost, path: "/sales/", json: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *SalesClient) List(ctx context.Context, f dto.SaleFilter) ([]dto.SaleResponse, error) {
	q := pageQuery(f.Skip, f.Limit)
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.SellerID != 0 {
		q.Set("seller_id", fmt.Sprint(f.SellerID))
	}
	if f.StartDate != "" {
		q.Set("start_date", f.StartDate)
	}
	if f.EndDate != "" {
		q.Set("end_date", f.EndDate)
	}
	var out []dto.SaleResponse
	err := s.c.do(ctx, call{method: http.MethodGet, path: "/sales/", query: q}, &out)
	return out, err
}

func (s *SalesClient) Get(ctx context.Context, id uint) (*dto.SaleResponse, error) {
	var out dto.SaleResponse
	if err := s.c.do(ctx, call{method: http.MethodGet, path: idPath("/sales", id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *SalesClient) Update(ctx context.Context, id uint, req dto.UpdateSaleRequest) (*dto.SaleResponse, error) {
	var out dto.SaleResponse
	if err := s.c.do(ctx, call{method: http.MethodPut, path: idPath("/sales", id), json: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateStatus moves the sale to status; reason is sent only for cancellations.
func (s *SalesClient) UpdateStatus(ctx context.Context, id uint, status, reason string) (*dto.SaleResponse, error) {
	var q url.Values
	if reason != "" {
		q = url.Values{"reason": {reason}}
	}
	var out dto.SaleResponse
	err := s.c.do(ctx, call{
		method: http.MethodPatch,
		path:   idPath("/sales", id, "/status"),
		query:  q,
		json:   dto.UpdateSaleStatusRequest{Status: status},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *SalesClient) RegisterPayment(ctx context.Context, id uint, req dto.PaymentRequest) (*dto.SaleResponse, error) {
	var out dto.SaleResponse
	if err := s.c.do(ctx, call{method: http.MethodPatch, path: idPath("/sales", id, "/payment"), json: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Cancel is DELETE /sales/:id?reason=. The backend restores the stock.
func (s *SalesClient) Cancel(ctx context.Context, id uint, reason string) (*dto.SaleResponse, error) {
	var out dto.SaleResponse
	err := s.c.do(ctx, call{
		method: http.MethodDelete,
		path:   idPath("/sales", id),
		query:  url.Values{"reason": {reason}},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *SalesClient) Payments(ctx context.Context, id uint) ([]dto.SalePaymentResponse, error) {
	var out []dto.SalePaymentResponse
	err := s.c.do(ctx, call{method: http.MethodGet, path: idPath("/sales", id, "/payments")}, &out)
	return out, err
}

// Receipt downloads the PDF receipt of a sale.
func (s *SalesClient) Receipt(ctx context.Context, id uint) ([]byte, error) {
	return s.c.bytes(ctx, call{method: http.MethodGet, path: idPath("/sales", id, "/receipt")})
}

// Alerts lists open sales due within days. A negative days uses the server
// default; zero asks for today only.
func (s *SalesClient) Alerts(ctx context.Context, days int) ([]dto.DueAlertResponse, error) {
	var q url.Values
	if days >= 0 {
		q = url.Values{"days": {fmt.Sprint(days)}}
	}
	var out []dto.DueAlertResponse
	err := s.c.do(ctx, call{method: http.MethodGet, path: "/sales/alerts", query: q}, &out)
	return out, err
}
