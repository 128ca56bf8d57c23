package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"floreria/internal/catalog"
	"floreria/internal/dto"
	"floreria/internal/model"
	"floreria/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	msgProductNotFound = "Producto no encontrado"
	MsgProductDeleted  = "Producto eliminado correctamente"
	productCachePrefix = "product:"
)

// ImageStore is satisfied by *infra.ImageStore.
type ImageStore interface {
	Save(productID uint, ext string, r io.Reader) (string, error)
	Remove(url string) error
}

// ProductService manages the catalog; product reads are cached in Redis.
type ProductService interface {
	List(ctx context.Context, page dto.Page) ([]dto.ProductResponse, error)
	Get(ctx context.Context, id uint) (*dto.ProductResponse, error)
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Update(ctx context.Context, id uint, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Delete(ctx context.Context, id uint) error
	UpdateStock(ctx context.Context, id uint, stock int) (*dto.ProductResponse, error)
	UploadImage(ctx context.Context, id uint, contentType string, size int64, r io.Reader) (*dto.ProductResponse, error)
}

type productService struct {
	repo   repository.ProductRepository
	rdb    *redis.Client
	ttl    time.Duration
	images ImageStore
}

// NewProductService wires the product rules. rdb may be nil, which disables
// the cache.
func NewProductService(repo repository.ProductRepository, rdb *redis.Client, ttl time.Duration, images ImageStore) ProductService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &productService{repo: repo, rdb: rdb, ttl: ttl, images: images}
}

// List returns every product, active or not; callers filter with
// catalog.Visible.
func (s *productService) List(ctx context.Context, page dto.Page) ([]dto.ProductResponse, error) {
	products, err := s.repo.List(ctx, page, true)
	if err != nil {
		return nil, fmt.Errorf("products: list: %w", err)
	}
	resp := make([]dto.ProductResponse, len(products))
	for i := range products {
		resp[i] = productToResponse(&products[i])
	}
	return resp, nil
}

func (s *productService) Get(ctx context.Context, id uint) (*dto.ProductResponse, error) {
	if cached, ok := s.cached(ctx, id); ok {
		return cached, nil
	}
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := productToResponse(p)
	s.store(ctx, &resp)
	return &resp, nil
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if errs := catalog.ValidateCreate(req); errs != nil {
		return nil, errs
	}
	p := &model.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		CostPrice:   req.CostPrice,
		Stock:       req.Stock,
		IsActive:    true,
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("products: create: %w", err)
	}
	log.Info().Uint("product_id", p.ID).Str("name", p.Name).Msg("products: created")
	resp := productToResponse(p)
	return &resp, nil
}

func (s *productService) Update(ctx context.Context, id uint, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if errs := catalog.ValidateUpdate(req); errs != nil {
		return nil, errs
	}
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Stock != p.Stock {
		if err := s.setStock(ctx, id, req.Stock, "Edición de producto"); err != nil {
			return nil, err
		}
	}

	p.Name = strings.TrimSpace(req.Name)
	p.Description = req.Description
	p.Price = req.Price
	if req.CostPrice != nil {
		p.CostPrice = *req.CostPrice
	}
	p.Stock = req.Stock
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("products: update: %w", err)
	}
	s.invalidate(ctx, id)
	resp := productToResponse(p)
	return &resp, nil
}

func (s *productService) Delete(ctx context.Context, id uint) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("products: delete: %w", err)
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *productService) UpdateStock(ctx context.Context, id uint, stock int) (*dto.ProductResponse, error) {
	if stock < 0 {
		return nil, fieldError("stock", "El stock no puede ser negativo")
	}
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	if err := s.setStock(ctx, id, stock, "Ajuste manual"); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := productToResponse(p)
	return &resp, nil
}

func (s *productService) UploadImage(ctx context.Context, id uint, contentType string, size int64, r io.Reader) (*dto.ProductResponse, error) {
	ext, err := catalog.ValidateImage(contentType, size)
	if err != nil {
		return nil, err
	}
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.images == nil {
		return nil, errors.New("products: image storage not configured")
	}
	url, err := s.images.Save(id, ext, io.LimitReader(r, catalog.MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("products: save image: %w", err)
	}
	if err := s.repo.SetImage(ctx, id, url); err != nil {
		_ = s.images.Remove(url)
		return nil, fmt.Errorf("products: set image: %w", err)
	}
	if p.ImageURL != nil && *p.ImageURL != url {
		if err := s.images.Remove(*p.ImageURL); err != nil {
			log.Warn().Err(err).Uint("product_id", id).Msg("products: old image not removed")
		}
	}
	s.invalidate(ctx, id)
	p.ImageURL = &url
	resp := productToResponse(p)
	return &resp, nil
}

// setStock overwrites the stock and records a manual movement.
func (s *productService) setStock(ctx context.Context, id uint, stock int, reason string) error {
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		p, err := s.repo.FindByIDForUpdate(tx, id)
		if err != nil {
			return fmt.Errorf("products: lock: %w", err)
		}
		if err := s.repo.SetStockTx(tx, id, stock); err != nil {
			return err
		}
		return s.repo.CreateMovementTx(tx, &model.StockMovement{
			ProductID:   id,
			Kind:        "manual",
			Quantity:    stock - p.Stock,
			StockBefore: p.Stock,
			StockAfter:  stock,
			Reason:      reason,
		})
	})
}

func (s *productService) find(ctx context.Context, id uint) (*model.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(msgProductNotFound)
		}
		return nil, fmt.Errorf("products: find: %w", err)
	}
	return p, nil
}

// ── Cache ─────────────────────────────────────────────────────────────────────

func cacheKey(id uint) string { return fmt.Sprintf("%s%d", productCachePrefix, id) }

func (s *productService) cached(ctx context.Context, id uint) (*dto.ProductResponse, bool) {
	if s.rdb == nil {
		return nil, false
	}
	data, err := s.rdb.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Msg("products: cache read failed")
		}
		return nil, false
	}
	var p dto.ProductResponse
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, false
	}
	return &p, true
}

func (s *productService) store(ctx context.Context, p *dto.ProductResponse) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, cacheKey(p.ID), data, s.ttl).Err(); err != nil {
		log.Warn().Err(err).Msg("products: cache write failed")
	}
}

// invalidate drops the cached copy after any write, including the stock
// changes made by the sale service.
func (s *productService) invalidate(ctx context.Context, id uint) {
	invalidateProduct(ctx, s.rdb, id)
}

func invalidateProduct(ctx context.Context, rdb *redis.Client, id uint) {
	if rdb == nil {
		return
	}
	if err := rdb.Del(ctx, cacheKey(id)).Err(); err != nil {
		log.Warn().Err(err).Uint("product_id", id).Msg("products: cache invalidation failed")
	}
}
