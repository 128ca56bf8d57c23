package sales

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Quote is the money breakdown of a sale form.
type Quote struct {
	UnitPrice      decimal.Decimal
	Quantity       int
	Discount       decimal.Decimal // percentage, 0-100
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
	AmountPaid     decimal.Decimal
	Remaining      decimal.Decimal
}

// Compute derives subtotal, total and remaining balance:
//
//	subtotal  = price × quantity
//	total     = subtotal − subtotal × discount / 100
//	remaining = total − paid
//
// Amounts are rounded to cents. Remaining may be negative when the paid
// amount exceeds the total; ValidateForm rejects that case.
func Compute(price decimal.Decimal, quantity int, discount, paid decimal.Decimal) Quote {
	subtotal := price.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
	discountAmount := subtotal.Mul(discount).Div(hundred).Round(2)
	total := subtotal.Sub(discountAmount)
	return Quote{
		UnitPrice:      price,
		Quantity:       quantity,
		Discount:       discount,
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		Total:          total,
		AmountPaid:     paid,
		Remaining:      total.Sub(paid),
	}
}

// InitialStatus is the status a freshly created sale starts in.
func InitialStatus(q Quote) Status {
	switch {
	case !q.Remaining.IsPositive():
		return Completed
	case q.AmountPaid.IsPositive():
		return Partial
	default:
		return Pending
	}
}
