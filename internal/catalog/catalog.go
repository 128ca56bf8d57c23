// Package catalog holds the product admin rules: visibility, create/update
// validation, image checks and the two-phase create-then-upload flow.
package catalog

import (
	"context"
	"fmt"
	"io"
	"strings"

	"floreria/internal/apierror"
	"floreria/internal/dto"

	"github.com/shopspring/decimal"
)

// MaxImageSize is the largest accepted product image, in bytes.
const MaxImageSize = 10 << 20

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

const (
	msgImageType = "Formato de imagen no válido. Usa: JPG, PNG o WEBP"
	msgImageSize = "La imagen es muy grande. Tamaño máximo: 10MB"
)

// Visible keeps only active products.
func Visible(products []dto.ProductResponse) []dto.ProductResponse {
	out := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out
}

// ValidateCreate checks a new product. Field keys match the JSON names.
func ValidateCreate(req dto.CreateProductRequest) apierror.FieldErrors {
	errs := apierror.FieldErrors{}
	if strings.TrimSpace(req.Name) == "" {
		errs.Add("name", "El nombre del producto es requerido")
	}
	if !req.Price.IsPositive() {
		errs.Add("price", "El precio debe ser mayor a 0")
	}
	if !req.CostPrice.IsPositive() {
		errs.Add("cost_price", "El precio de costo debe ser mayor a 0")
	}
	if req.Price.IsPositive() && req.CostPrice.IsPositive() && !req.Price.GreaterThan(req.CostPrice) {
		errs.Add("price", "El precio de venta debe ser mayor al precio de costo")
	}
	if req.Stock < 0 {
		errs.Add("stock", "El stock no puede ser negativo")
	}
	return orNil(errs)
}

// ValidateUpdate checks an edit. Updates only require a name and
// non-negative price and stock.
func ValidateUpdate(req dto.UpdateProductRequest) apierror.FieldErrors {
	errs := apierror.FieldErrors{}
	if strings.TrimSpace(req.Name) == "" {
		errs.Add("name", "El nombre del producto es requerido")
	}
	if req.Price.IsNegative() {
		errs.Add("price", "El precio no puede ser negativo")
	}
	if req.CostPrice != nil && req.CostPrice.IsNegative() {
		errs.Add("cost_price", "El precio de costo no puede ser negativo")
	}
	if req.Stock < 0 {
		errs.Add("stock", "El stock no puede ser negativo")
	}
	return orNil(errs)
}

// ValidateImage checks the declared content type and size of an upload and
// returns the file extension to store it under.
func ValidateImage(contentType string, size int64) (string, error) {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	ext, ok := allowedImageTypes[ct]
	if !ok {
		return "", apierror.FieldErrors{"file": msgImageType}
	}
	if size > MaxImageSize {
		return "", apierror.FieldErrors{"file": msgImageSize}
	}
	return ext, nil
}

// Margin is the markup of price over cost as a percentage of cost.
func Margin(price, cost decimal.Decimal) decimal.Decimal {
	if !cost.IsPositive() {
		return decimal.Zero
	}
	return price.Sub(cost).Div(cost).Mul(decimal.NewFromInt(100)).Round(2)
}

func orNil(errs apierror.FieldErrors) apierror.FieldErrors {
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ── Two-phase publishing ──────────────────────────────────────────────────────

// ProductAPI is the remote side of the product admin. client.ProductsClient
// implements it.
type ProductAPI interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	UploadImage(ctx context.Context, id uint, filename, contentType string, r io.Reader) (*dto.ProductResponse, error)
}

// Image is an optional upload attached to a new product.
type Image struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ImageError reports that the product was created but its image was not
// attached. The product in the Publish result is still valid.
type ImageError struct {
	ProductID uint
	Err       error
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("producto %d creado sin imagen: %v", e.ProductID, e.Err)
}

func (e *ImageError) Unwrap() error { return e.Err }

// Publisher creates the product record first and only then uploads the image.
type Publisher struct{ api ProductAPI }

func NewPublisher(api ProductAPI) *Publisher { return &Publisher{api: api} }

// Publish validates everything up front, including the image, so a bad file
// never leaves a half-published product behind. A failed upload after a
// successful create returns the created product together with *ImageError.
func (p *Publisher) Publish(ctx context.Context, req dto.CreateProductRequest, img *Image) (*dto.ProductResponse, error) {
	if errs := ValidateCreate(req); errs != nil {
		return nil, errs
	}
	if img != nil {
		if _, err := ValidateImage(img.ContentType, img.Size); err != nil {
			return nil, err
		}
	}

	created, err := p.api.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return created, nil
	}

	withImage, err := p.api.UploadImage(ctx, created.ID, img.Filename, img.ContentType, img.Body)
	if err != nil {
		return created, &ImageError{ProductID: created.ID, Err: err}
	}
	return withImage, nil
}
