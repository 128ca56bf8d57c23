package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"

	"floreria/internal/catalog"
	"floreria/internal/dto"
)

type ProductsClient struct{ c *Client }

var _ catalog.ProductAPI = (*ProductsClient)(nil)

func (p *ProductsClient) List(ctx context.Context, page dto.Page) ([]dto.ProductResponse, error) {
	var out []dto.ProductResponse
	err := p.c.do(ctx, call{method: http.MethodGet, path: "/products/", query: pageQuery(page.Skip, page.Limit)}, &out)
	return out, err
}

func (p *ProductsClient) Get(ctx context.Context, id uint) (*dto.ProductResponse, error) {
	var out dto.ProductResponse
	if err := p.c.do(ctx, call{method: http.MethodGet, path: idPath("/products", id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *ProductsClient) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	var out dto.ProductResponse
	if err := p.c.do(ctx, call{method: http.MethodPost, path: "/products/", json: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *ProductsClient) Update(ctx context.Context, id uint, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	var out dto.ProductResponse
	if err := p.c.do(ctx, call{method: http.MethodPut, path: idPath("/products", id), json: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete deactivates the product; it stays in history.
func (p *ProductsClient) Delete(ctx context.Context, id uint) error {
	return p.c.do(ctx, call{method: http.MethodDelete, path: idPath("/products", id)}, nil)
}

func (p *ProductsClient) UpdateStock(ctx context.Context, id uint, stock int) (*dto.ProductResponse, error) {
	q := url.Values{}
	q.Set("stock", fmt.Sprint(stock))
	var out dto.ProductResponse
	if err := p.c.do(ctx, call{method: http.MethodPatch, path: idPath("/products", id, "/stock"), query: q}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadImage sends r as the multipart "file" field.
func (p *ProductsClient) UploadImage(ctx context.Context, id uint, filename, contentType string, r io.Reader) (*dto.ProductResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("client: image part: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("client: copy image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("client: close multipart: %w", err)
	}

	var out dto.ProductResponse
	err = p.c.do(ctx, call{
		method: http.MethodPost,
		path:   idPath("/products", id, "/image"),
		body:   &buf,
		ctype:  mw.FormDataContentType(),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
