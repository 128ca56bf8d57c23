package sales

import (
	"errors"
	"fmt"
	"strings"

	"floreria/internal/apierror"
	"floreria/internal/dto"

	"github.com/shopspring/decimal"
)

var ErrNotPayable = errors.New("La venta no admite pagos en su estado actual")

// Settlement is the result of applying a payment to a sale.
type Settlement struct {
	AmountPaid      decimal.Decimal
	AmountRemaining decimal.Decimal
	Status          Status
}

// Balance is the part of a sale that payment rules need.
type Balance struct {
	Status          Status
	AmountPaid      decimal.Decimal
	AmountRemaining decimal.Decimal
}

// BalanceOf reads the payable part of a sale from its wire form.
func BalanceOf(s dto.SaleResponse) Balance {
	return Balance{Status: Status(s.Status), AmountPaid: s.AmountPaid, AmountRemaining: s.AmountRemaining}
}

// ValidatePayment checks amount against the open balance. The returned error
// is either ErrNotPayable or an apierror.FieldErrors keyed by "amount".
func ValidatePayment(b Balance, amount decimal.Decimal) error {
	if !b.Status.Open() {
		return ErrNotPayable
	}
	if !amount.IsPositive() {
		return apierror.FieldErrors{"amount": "El pago debe ser mayor a 0"}
	}
	if !IsCents(amount) {
		return apierror.FieldErrors{"amount": MsgCents}
	}
	if amount.GreaterThan(b.AmountRemaining) {
		return apierror.FieldErrors{
			"amount": fmt.Sprintf("El pago no puede exceder el monto restante ($%s)", b.AmountRemaining.StringFixed(2)),
		}
	}
	return nil
}

// ApplyPayment validates and applies amount. Remaining strictly decreases by
// amount; the sale stays PARTIAL while a balance is left and becomes COMPLETED
// when it reaches zero.
func ApplyPayment(b Balance, amount decimal.Decimal) (Settlement, error) {
	if err := ValidatePayment(b, amount); err != nil {
		return Settlement{}, err
	}
	paid := b.AmountPaid.Add(amount)
	remaining := b.AmountRemaining.Sub(amount)
	st := Partial
	if remaining.IsZero() {
		st = Completed
	}
	return Settlement{AmountPaid: paid, AmountRemaining: remaining, Status: st}, nil
}

// MsgCents is the field error for money with more than two decimals.
const MsgCents = "El monto admite como máximo 2 decimales"

// IsCents reports whether v is a whole number of cents. Money columns are
// decimal(12,2), so anything finer would be rounded away on save.
func IsCents(v decimal.Decimal) bool {
	return v.Equal(v.Round(2))
}

// QuickAmounts returns the 25/50/75/100% shortcuts for a remaining balance.
func QuickAmounts(remaining decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, 4)
	for _, pct := range []int64{25, 50, 75} {
		out = append(out, remaining.Mul(decimal.NewFromInt(pct)).Div(hundred).Round(2))
	}
	return append(out, remaining)
}

// DefaultCancelReason is stored when the user confirms a cancellation without
// typing a reason.
const DefaultCancelReason = "Sin motivo especificado"

// CancelReason normalises a user-entered reason.
func CancelReason(input string) string {
	if r := strings.TrimSpace(input); r != "" {
		return r
	}
	return DefaultCancelReason
}
