package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"floreria/internal/apierror"
	"floreria/internal/dto"
	"floreria/internal/earnings"
	"floreria/internal/infra"
	"floreria/internal/model"
	"floreria/internal/repository"
	"floreria/internal/sales"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	msgSaleNotFound      = "Venta no encontrada"
	msgInsufficientStock = "Stock insuficiente para la venta"
	msgPartialNeedsMoney = "Una venta parcial debe tener un pago mayor a 0 y menor al total"
)

// SaleService runs the sale lifecycle: creation with stock decrement, payments,
// status changes and cancellation with stock restore.
type SaleService interface {
	Create(ctx context.Context, actor Actor, req dto.CreateSaleRequest) (*dto.SaleResponse, error)
	List(ctx context.Context, filter dto.SaleFilter) ([]dto.SaleResponse, error)
	Get(ctx context.Context, id uint) (*dto.SaleResponse, error)
	Update(ctx context.Context, id uint, req dto.UpdateSaleRequest) (*dto.SaleResponse, error)
	UpdateStatus(ctx context.Context, actor Actor, id uint, status string) (*dto.SaleResponse, error)
	RegisterPayment(ctx context.Context, actor Actor, id uint, req dto.PaymentRequest) (*dto.SaleResponse, error)
	Cancel(ctx context.Context, id uint, reason string) (*dto.SaleResponse, error)
	Payments(ctx context.Context, id uint) ([]dto.SalePaymentResponse, error)
	Receipt(ctx context.Context, id uint, w io.Writer) error
	Alerts(ctx context.Context, days int) ([]dto.DueAlertResponse, error)
}

type saleService struct {
	sales    repository.SaleRepository
	products repository.ProductRepository
	sellers  repository.SellerRepository
	earnings repository.EarningRepository
	rdb      *redis.Client
	now      func() time.Time
}

func NewSaleService(
	salesRepo repository.SaleRepository,
	products repository.ProductRepository,
	sellers repository.SellerRepository,
	earningRepo repository.EarningRepository,
	rdb *redis.Client,
) SaleService {
	return &saleService{
		sales:    salesRepo,
		products: products,
		sellers:  sellers,
		earnings: earningRepo,
		rdb:      rdb,
		now:      time.Now,
	}
}

// ── Create ────────────────────────────────────────────────────────────────────

func (s *saleService) Create(ctx context.Context, actor Actor, req dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	product, err := s.products.FindByID(ctx, req.ProductID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("sales: find product: %w", err)
	}
	if err != nil || !product.IsActive {
		if req.ProductID != 0 {
			return nil, notFound(msgProductNotFound)
		}
		product = &model.Product{}
	}
	if req.SellerID != 0 {
		seller, err := s.sellers.FindByID(ctx, req.SellerID)
		if err != nil || !seller.IsActive {
			return nil, notFound(msgSellerNotFound)
		}
	}

	quote, errs := sales.ValidateForm(req, sales.Offer{Price: product.Price, Stock: product.Stock}, s.now())
	if errs != nil {
		return nil, errs
	}

	sale := &model.Sale{
		ProductID:       req.ProductID,
		SellerID:        req.SellerID,
		Quantity:        req.Quantity,
		UnitPrice:       quote.UnitPrice,
		Discount:        quote.Discount,
		Subtotal:        quote.Subtotal,
		TotalPrice:      quote.Total,
		AmountPaid:      quote.AmountPaid,
		AmountRemaining: quote.Remaining,
		Status:          string(sales.InitialStatus(quote)),
		PaymentMethod:   req.PaymentMethod,
		Notes:           trimmed(req.Notes),
		CreatedBy:       actor.ID,
	}
	if quote.Remaining.IsPositive() {
		due, _ := sales.ParseDueDate(*req.DueDate)
		sale.DueDate = &due
	}

	err = runTx(ctx, s.sales.DB(), func(tx *gorm.DB) error {
		locked, err := s.products.FindByIDForUpdate(tx, req.ProductID)
		if err != nil {
			return fmt.Errorf("sales: lock product: %w", err)
		}
		if locked.Stock < req.Quantity {
			return business(msgInsufficientStock)
		}
		if err := s.products.UpdateStockTx(tx, locked.ID, -req.Quantity); err != nil {
			return fmt.Errorf("sales: decrement stock: %w", err)
		}
		if err := s.sales.CreateTx(tx, sale); err != nil {
			return fmt.Errorf("sales: create: %w", err)
		}
		saleID := sale.ID
		if err := s.products.CreateMovementTx(tx, &model.StockMovement{
			ProductID:   locked.ID,
			Kind:        "sale",
			Quantity:    -req.Quantity,
			StockBefore: locked.Stock,
			StockAfter:  locked.Stock - req.Quantity,
			Reason:      fmt.Sprintf("Venta #%d", saleID),
			SaleID:      &saleID,
		}); err != nil {
			return err
		}
		if sale.AmountPaid.IsPositive() {
			if err := s.sales.CreatePaymentTx(tx, &model.SalePayment{
				SaleID:        sale.ID,
				Amount:        sale.AmountPaid,
				PaymentMethod: sale.PaymentMethod,
				RegisteredBy:  actor.Username,
			}); err != nil {
				return fmt.Errorf("sales: down payment: %w", err)
			}
		}
		if sales.Status(sale.Status) == sales.Completed {
			return s.recordEarning(tx, sale, locked.CostPrice)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidateProduct(ctx, s.rdb, req.ProductID)
	log.Info().Uint("sale_id", sale.ID).Str("status", sale.Status).Str("total", sale.TotalPrice.StringFixed(2)).Msg("Venta registrada")
	return s.reload(ctx, sale)
}

// ── Read ──────────────────────────────────────────────────────────────────────

func (s *saleService) List(ctx context.Context, filter dto.SaleFilter) ([]dto.SaleResponse, error) {
	if filter.Status != "" {
		if _, err := sales.ParseStatus(filter.Status); err != nil {
			return nil, fieldError("status", err.Error())
		}
	}
	list, err := s.sales.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("sales: list: %w", err)
	}
	resp := make([]dto.SaleResponse, len(list))
	for i := range list {
		resp[i] = SaleToResponse(&list[i])
	}
	return resp, nil
}

func (s *saleService) Get(ctx context.Context, id uint) (*dto.SaleResponse, error) {
	sale, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := SaleToResponse(sale)
	return &resp, nil
}

func (s *saleService) Payments(ctx context.Context, id uint) ([]dto.SalePaymentResponse, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	payments, err := s.sales.ListPayments(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("sales: payments: %w", err)
	}
	resp := make([]dto.SalePaymentResponse, len(payments))
	for i := range payments {
		resp[i] = paymentToResponse(&payments[i])
	}
	return resp, nil
}

// Receipt renders the sale and its payment history as a PDF into w.
func (s *saleService) Receipt(ctx context.Context, id uint, w io.Writer) error {
	sale, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	payments, err := s.Payments(ctx, id)
	if err != nil {
		return err
	}
	if err := infra.WriteReceiptPDF(w, *sale, payments); err != nil {
		return fmt.Errorf("sales: receipt: %w", err)
	}
	return nil
}

// Alerts lists open sales due between today and days from now, most urgent
// first. Overdue sales are not alerts. Zero means today only; a negative
// window uses the default.
func (s *saleService) Alerts(ctx context.Context, days int) ([]dto.DueAlertResponse, error) {
	if days < 0 {
		days = sales.DefaultAlertThreshold
	}
	now := s.now()
	open, err := s.sales.ListOpenDue(ctx, sales.Today(now).AddDate(0, 0, days))
	if err != nil {
		return nil, fmt.Errorf("sales: open due: %w", err)
	}
	list := make([]dto.SaleResponse, len(open))
	for i := range open {
		list[i] = SaleToResponse(&open[i])
	}
	return sales.DueAlerts(list, days, now), nil
}

// ── Update ────────────────────────────────────────────────────────────────────

func (s *saleService) Update(ctx context.Context, id uint, req dto.UpdateSaleRequest) (*dto.SaleResponse, error) {
	sale, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if sales.Status(sale.Status) == sales.Cancelled {
		return nil, business("No se puede modificar una venta cancelada")
	}

	errs := apierror.FieldErrors{}
	if req.SellerID != nil && *req.SellerID != sale.SellerID {
		seller, err := s.sellers.FindByID(ctx, *req.SellerID)
		if err != nil || !seller.IsActive {
			errs.Add("seller_id", msgSellerNotFound)
		} else {
			sale.SellerID = seller.ID
			sale.Seller = seller
		}
	}
	if req.PaymentMethod != nil {
		if !sales.ValidMethod(*req.PaymentMethod) {
			errs.Add("payment_method", "Selecciona un método de pago")
		} else {
			sale.PaymentMethod = *req.PaymentMethod
		}
	}
	if req.DueDate != nil {
		switch due, err := sales.ParseDueDate(*req.DueDate); {
		case err != nil:
			errs.Add("due_date", "Fecha de vencimiento inválida")
		case sales.Status(sale.Status).Open() && due.Before(sales.Today(s.now())):
			errs.Add("due_date", "La fecha de vencimiento no puede ser anterior a hoy")
		default:
			sale.DueDate = &due
		}
	}
	if req.Notes != nil {
		sale.Notes = trimmed(req.Notes)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	if err := s.sales.Update(ctx, sale); err != nil {
		return nil, fmt.Errorf("sales: update: %w", err)
	}
	resp := SaleToResponse(sale)
	return &resp, nil
}

// UpdateStatus applies an explicit status change. COMPLETED settles the
// balance with a payment row, CANCELLED puts the stock back and PARTIAL is
// only accepted when the recorded payments already make the sale partial.
func (s *saleService) UpdateStatus(ctx context.Context, actor Actor, id uint, status string) (*dto.SaleResponse, error) {
	to, err := sales.ParseStatus(status)
	if err != nil {
		return nil, fieldError("status", err.Error())
	}
	if to == sales.Cancelled {
		return s.Cancel(ctx, id, "")
	}

	var sale *model.Sale
	err = runTx(ctx, s.sales.DB(), func(tx *gorm.DB) error {
		var err error
		if sale, err = s.lock(tx, id); err != nil {
			return err
		}
		from := sales.Status(sale.Status)
		if err := sales.Transition(from, to); err != nil {
			return business(err.Error())
		}
		if from == to {
			return nil
		}
		switch to {
		case sales.Partial:
			if !sale.AmountPaid.IsPositive() || !sale.AmountPaid.LessThan(sale.TotalPrice) {
				return business(msgPartialNeedsMoney)
			}
			sale.Status = string(sales.Partial)
			return s.sales.UpdateTx(tx, sale)
		case sales.Completed:
			return s.settle(tx, actor, sale, sale.AmountRemaining, sale.PaymentMethod)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, sale)
}

// RegisterPayment records one payment against the open balance.
func (s *saleService) RegisterPayment(ctx context.Context, actor Actor, id uint, req dto.PaymentRequest) (*dto.SaleResponse, error) {
	if req.PaymentMethod != nil && !sales.ValidMethod(*req.PaymentMethod) {
		return nil, fieldError("payment_method", "Selecciona un método de pago")
	}

	var sale *model.Sale
	err := runTx(ctx, s.sales.DB(), func(tx *gorm.DB) error {
		var err error
		if sale, err = s.lock(tx, id); err != nil {
			return err
		}
		method := sale.PaymentMethod
		if req.PaymentMethod != nil {
			method = *req.PaymentMethod
		}
		return s.settle(tx, actor, sale, req.Amount, method)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Uint("sale_id", sale.ID).Str("amount", req.Amount.StringFixed(2)).Str("status", sale.Status).Msg("Pago registrado")
	return s.reload(ctx, sale)
}

// settle applies amount to the sale, writes the payment row and, when the
// balance reaches zero, the earning.
func (s *saleService) settle(tx *gorm.DB, actor Actor, sale *model.Sale, amount decimal.Decimal, method string) error {
	st, err := sales.ApplyPayment(sales.Balance{
		Status:          sales.Status(sale.Status),
		AmountPaid:      sale.AmountPaid,
		AmountRemaining: sale.AmountRemaining,
	}, amount)
	if errors.Is(err, sales.ErrNotPayable) {
		return business(err.Error())
	}
	if err != nil {
		return err
	}
	sale.AmountPaid = st.AmountPaid
	sale.AmountRemaining = st.AmountRemaining
	sale.Status = string(st.Status)
	if err := s.sales.UpdateTx(tx, sale); err != nil {
		return fmt.Errorf("sales: update balance: %w", err)
	}
	if err := s.sales.CreatePaymentTx(tx, &model.SalePayment{
		SaleID:        sale.ID,
		Amount:        amount,
		PaymentMethod: method,
		RegisteredBy:  actor.Username,
	}); err != nil {
		return fmt.Errorf("sales: payment: %w", err)
	}
	if st.Status != sales.Completed {
		return nil
	}
	product, err := s.products.FindByIDForUpdate(tx, sale.ProductID)
	if err != nil {
		return fmt.Errorf("sales: product cost: %w", err)
	}
	return s.recordEarning(tx, sale, product.CostPrice)
}

// Cancel marks an open sale CANCELLED and restores its stock.
func (s *saleService) Cancel(ctx context.Context, id uint, reason string) (*dto.SaleResponse, error) {
	var sale *model.Sale
	err := runTx(ctx, s.sales.DB(), func(tx *gorm.DB) error {
		var err error
		if sale, err = s.lock(tx, id); err != nil {
			return err
		}
		if !sales.CanCancel(sales.Status(sale.Status)) {
			return business(sales.ErrNotCancellable.Error())
		}
		product, err := s.products.FindByIDForUpdate(tx, sale.ProductID)
		if err != nil {
			return fmt.Errorf("sales: lock product: %w", err)
		}
		if err := s.products.UpdateStockTx(tx, product.ID, sale.Quantity); err != nil {
			return fmt.Errorf("sales: restore stock: %w", err)
		}
		saleID := sale.ID
		if err := s.products.CreateMovementTx(tx, &model.StockMovement{
			ProductID:   product.ID,
			Kind:        "cancel_restore",
			Quantity:    sale.Quantity,
			StockBefore: product.Stock,
			StockAfter:  product.Stock + sale.Quantity,
			Reason:      fmt.Sprintf("Cancelación venta #%d", saleID),
			SaleID:      &saleID,
		}); err != nil {
			return err
		}
		why := sales.CancelReason(reason)
		sale.Status = string(sales.Cancelled)
		sale.CancelReason = &why
		return s.sales.UpdateTx(tx, sale)
	})
	if err != nil {
		return nil, err
	}
	invalidateProduct(ctx, s.rdb, sale.ProductID)
	log.Info().Uint("sale_id", sale.ID).Str("reason", *sale.CancelReason).Msg("Venta cancelada")
	return s.reload(ctx, sale)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// recordEarning writes the earning of a completed sale. The sale price is the
// discounted unit price.
func (s *saleService) recordEarning(tx *gorm.DB, sale *model.Sale, cost decimal.Decimal) error {
	price := sale.TotalPrice.Div(decimal.NewFromInt(int64(sale.Quantity))).Round(2)
	f := earnings.Compute(cost, price, sale.Quantity)
	err := s.earnings.CreateTx(tx, &model.Earning{
		SaleID:       sale.ID,
		ProductID:    sale.ProductID,
		SellerID:     sale.SellerID,
		Quantity:     sale.Quantity,
		CostPrice:    cost,
		SalePrice:    price,
		TotalCost:    f.TotalCost,
		TotalRevenue: f.TotalRevenue,
		Profit:       f.Profit,
		ProfitMargin: f.ProfitMargin,
		IsRecorded:   true,
	})
	if err != nil {
		return fmt.Errorf("sales: earning: %w", err)
	}
	return nil
}

func (s *saleService) lock(tx *gorm.DB, id uint) (*model.Sale, error) {
	sale, err := s.sales.FindByIDForUpdate(tx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(msgSaleNotFound)
		}
		return nil, fmt.Errorf("sales: lock: %w", err)
	}
	return sale, nil
}

func (s *saleService) find(ctx context.Context, id uint) (*model.Sale, error) {
	sale, err := s.sales.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(msgSaleNotFound)
		}
		return nil, fmt.Errorf("sales: find: %w", err)
	}
	return sale, nil
}

// reload re-reads the sale with its product and seller names. A failed
// re-read still returns what was written.
func (s *saleService) reload(ctx context.Context, sale *model.Sale) (*dto.SaleResponse, error) {
	if fresh, err := s.sales.FindByID(ctx, sale.ID); err == nil {
		sale = fresh
	}
	resp := SaleToResponse(sale)
	return &resp, nil
}

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}
