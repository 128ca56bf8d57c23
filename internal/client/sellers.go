package client

import (
	"context"
	"net/http"

	"floreria/internal/dto"
)

type SellersClient struct{ c *Client }

// List is public on the backend; the contact page calls it without a session.
func (s *SellersClient) List(ctx context.Context, page dto.Page) ([]dto.SellerResponse, error) {
	var out []dto.SellerResponse
	err := s.c.do(ctx, call{method: http.MethodGet, path: "/sellers/", query: pageQuery(page.Skip, page.Limit)}, &out)
	return out, err
}

func (s *SellersClient) Get(ctx context.Context, id uint) (*dto.SellerResponse, error) {
	var out dto.SellerResponse
	if err := s.c.do(ctx, call{method: http.MethodGet, path: idPath("/sellers", id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *SellersClient) Create(ctx context.Context, req dto.CreateSellerRequest) (*dto.SellerResponse, error) {
	var out dto.SellerResponse
	if err := s.c.do(ctx, call{method: http.MethodPost, path: "/sellers/", json: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *SellersClient) Update(ctx context.Context, id uint, req dto.UpdateSellerRequest) (*dto.SellerResponse, error) {
	var out dto.SellerResponse
	if err := s.c.do(ctx, call{method: http.MethodPut, path: idPath("/sellers", id), json: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *SellersClient) Delete(ctx context.Context, id uint) error {
	return s.c.do(ctx, call{method: http.MethodDelete, path: idPath("/sellers", id)}, nil)
}

func (s *SellersClient) Sales(ctx context.Context, id uint, page dto.Page) ([]dto.SaleResponse, error) {
	var out []dto.SaleResponse
	err := s.c.do(ctx, call{
		method: http.MethodGet,
		path:   idPath("/sellers", id, "/sales"),
		query:  pageQuery(page.Skip, page.Limit),
	}, &out)
	return out, err
}
