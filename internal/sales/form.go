package sales

import (
	"fmt"
	"strings"
	"time"

	"floreria/internal/apierror"
	"floreria/internal/dto"

	"github.com/shopspring/decimal"
)

// Payment methods accepted on a sale.
const (
	MethodCash     = "CASH"
	MethodCard     = "CARD"
	MethodTransfer = "TRANSFER"
	MethodMixed    = "MIXED"
)

// ValidMethod reports whether m is a known payment method.
func ValidMethod(m string) bool {
	switch m {
	case MethodCash, MethodCard, MethodTransfer, MethodMixed:
		return true
	}
	return false
}

// Offer is what the form knows about the selected product.
type Offer struct {
	Price decimal.Decimal
	Stock int
}

// OfferOf builds an Offer from a catalog entry.
func OfferOf(p dto.ProductResponse) Offer { return Offer{Price: p.Price, Stock: p.Stock} }

// ParseDueDate parses a YYYY-MM-DD value as a UTC calendar day.
func ParseDueDate(s string) (time.Time, error) {
	return time.Parse(dto.DateLayout, strings.TrimSpace(s))
}

// ValidateForm checks a sale form against the selected product and returns the
// quote it would produce. Field keys match the JSON names of CreateSaleRequest.
// A zero ProductID skips the stock and price checks.
func ValidateForm(req dto.CreateSaleRequest, offer Offer, now time.Time) (Quote, apierror.FieldErrors) {
	errs := apierror.FieldErrors{}

	if req.ProductID == 0 {
		errs.Add("product_id", "Selecciona un producto")
	}
	if req.SellerID == 0 {
		errs.Add("seller_id", "Selecciona un vendedor")
	}
	if req.Quantity < 1 {
		errs.Add("quantity", "La cantidad debe ser al menos 1")
	} else if req.ProductID != 0 && req.Quantity > offer.Stock {
		errs.Add("quantity", fmt.Sprintf("Stock insuficiente. Disponible: %d", offer.Stock))
	}
	if req.Discount.IsNegative() || req.Discount.GreaterThan(hundred) {
		errs.Add("discount", "El descuento debe estar entre 0 y 100")
	}
	if !ValidMethod(req.PaymentMethod) {
		errs.Add("payment_method", "Selecciona un método de pago")
	}

	q := Compute(offer.Price, max(req.Quantity, 0), req.Discount, req.AmountPaid)

	switch {
	case req.AmountPaid.IsNegative():
		errs.Add("amount_paid", "El monto pagado no puede ser negativo")
	case !IsCents(req.AmountPaid):
		errs.Add("amount_paid", MsgCents)
	case req.ProductID != 0 && req.AmountPaid.GreaterThan(q.Total):
		errs.Add("amount_paid", "El pago no puede ser mayor al total")
	}

	if q.Remaining.IsPositive() {
		switch {
		case req.DueDate == nil || strings.TrimSpace(*req.DueDate) == "":
			errs.Add("due_date", "Ingresa una fecha de vencimiento para el saldo pendiente")
		default:
			due, err := ParseDueDate(*req.DueDate)
			if err != nil {
				errs.Add("due_date", "Fecha de vencimiento inválida")
			} else if due.Before(Today(now)) {
				errs.Add("due_date", "La fecha de vencimiento no puede ser anterior a hoy")
			}
		}
	}

	if len(errs) == 0 {
		return q, nil
	}
	return q, errs
}

// SelectableProducts keeps active products that still have stock.
func SelectableProducts(products []dto.ProductResponse) []dto.ProductResponse {
	out := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		if p.IsActive && p.Stock > 0 {
			out = append(out, p)
		}
	}
	return out
}

// SelectableSellers keeps active sellers.
func SelectableSellers(sellers []dto.SellerResponse) []dto.SellerResponse {
	out := make([]dto.SellerResponse, 0, len(sellers))
	for _, s := range sellers {
		if s.IsActive {
			out = append(out, s)
		}
	}
	return out
}

// Today truncates t to midnight of its UTC calendar day.
func Today(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
