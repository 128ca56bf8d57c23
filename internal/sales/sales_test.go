package sales_test

import (
	"testing"
	"time"

	"floreria/internal/apierror"
	"floreria/internal/dto"
	"floreria/internal/sales"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func strp(s string) *string { return &s }

func dayOffset(days int) string { return now.AddDate(0, 0, days).Format(dto.DateLayout) }

func validForm() dto.CreateSaleRequest {
	return dto.CreateSaleRequest{
		ProductID:     1,
		SellerID:      2,
		Quantity:      3,
		Discount:      d("10"),
		AmountPaid:    d("100"),
		PaymentMethod: sales.MethodCash,
		DueDate:       strp(dayOffset(5)),
	}
}

var rosas = sales.Offer{Price: d("100"), Stock: 10}

// ── Quote ─────────────────────────────────────────────────────────────────────

func TestCompute_DiscountAndPartialPayment(t *testing.T) {
	q := sales.Compute(d("100"), 3, d("10"), d("100"))

	assert.Equal(t, "300", q.Subtotal.String())
	assert.Equal(t, "30", q.DiscountAmount.String())
	assert.Equal(t, "270", q.Total.String())
	assert.Equal(t, "170", q.Remaining.String())
	assert.Equal(t, sales.Partial, sales.InitialStatus(q))
}

func TestCompute_RemainingIsTotalMinusPaid(t *testing.T) {
	cases := []struct {
		price, discount, paid string
		qty                   int
	}{
		{"12.50", "0", "0", 4},
		{"99.99", "15", "20", 2},
		{"45", "100", "0", 1},
		{"19.90", "33", "13.33", 7},
	}
	for _, c := range cases {
		q := sales.Compute(d(c.price), c.qty, d(c.discount), d(c.paid))
		assert.True(t, q.Remaining.Equal(q.Total.Sub(q.AmountPaid)), "price=%s qty=%d", c.price, c.qty)
		assert.False(t, q.Total.IsNegative())
	}
}

func TestInitialStatus(t *testing.T) {
	assert.Equal(t, sales.Completed, sales.InitialStatus(sales.Compute(d("50"), 2, d("0"), d("100"))))
	assert.Equal(t, sales.Partial, sales.InitialStatus(sales.Compute(d("50"), 2, d("0"), d("40"))))
	assert.Equal(t, sales.Pending, sales.InitialStatus(sales.Compute(d("50"), 2, d("0"), d("0"))))
	// A full discount leaves nothing to pay.
	assert.Equal(t, sales.Completed, sales.InitialStatus(sales.Compute(d("50"), 2, d("100"), d("0"))))
}

// ── Form validation ───────────────────────────────────────────────────────────

func TestValidateForm_Valid(t *testing.T) {
	q, errs := sales.ValidateForm(validForm(), rosas, now)
	assert.Empty(t, errs)
	assert.Equal(t, "170", q.Remaining.String())
}

func TestValidateForm_MissingSelections(t *testing.T) {
	req := validForm()
	req.ProductID = 0
	req.SellerID = 0
	req.PaymentMethod = ""

	_, errs := sales.ValidateForm(req, sales.Offer{}, now)
	assert.Equal(t, "Selecciona un producto", errs["product_id"])
	assert.Equal(t, "Selecciona un vendedor", errs["seller_id"])
	assert.Equal(t, "Selecciona un método de pago", errs["payment_method"])
}

func TestValidateForm_Quantity(t *testing.T) {
	req := validForm()
	req.Quantity = 0
	_, errs := sales.ValidateForm(req, rosas, now)
	assert.Equal(t, "La cantidad debe ser al menos 1", errs["quantity"])

	req.Quantity = 11
	_, errs = sales.ValidateForm(req, rosas, now)
	assert.Equal(t, "Stock insuficiente. Disponible: 10", errs["quantity"])
}

func TestValidateForm_DiscountRange(t *testing.T) {
	for _, v := range []string{"-1", "100.01", "250"} {
		req := validForm()
		req.Discount = d(v)
		_, errs := sales.ValidateForm(req, rosas, now)
		assert.Equal(t, "El descuento debe estar entre 0 y 100", errs["discount"], v)
	}
}

func TestValidateForm_PaidAboveTotal(t *testing.T) {
	req := validForm()
	req.AmountPaid = d("270.01")
	_, errs := sales.ValidateForm(req, rosas, now)
	assert.Equal(t, "El pago no puede ser mayor al total", errs["amount_paid"])
}

func TestValidateForm_NegativePaid(t *testing.T) {
	req := validForm()
	req.AmountPaid = d("-5")
	_, errs := sales.ValidateForm(req, rosas, now)
	assert.Equal(t, "El monto pagado no puede ser negativo", errs["amount_paid"])
}

func TestValidateForm_PaidFractionOfCent(t *testing.T) {
	req := validForm()
	req.AmountPaid = d("100.005")
	_, errs := sales.ValidateForm(req, rosas, now)
	assert.Equal(t, sales.MsgCents, errs["amount_paid"])
}

func TestValidateForm_DueDateRequiredWhenBalanceLeft(t *testing.T) {
	req := validForm()
	req.DueDate = nil
	_, errs := sales.ValidateForm(req, rosas, now)
	assert.Equal(t, "Ingresa una fecha de vencimiento para el saldo pendiente", errs["due_date"])

	req.DueDate = strp("  ")
	_, errs = sales.ValidateForm(req, rosas, now)
	assert.Contains(t, errs, "due_date")
}

func TestValidateForm_DueDateNotInPast(t *testing.T) {
	req := validForm()
	req.DueDate = strp(dayOffset(-1))
	_, errs := sales.ValidateForm(req, rosas, now)
	assert.Equal(t, "La fecha de vencimiento no puede ser anterior a hoy", errs["due_date"])

	req.DueDate = strp(dayOffset(0))
	_, errs = sales.ValidateForm(req, rosas, now)
	assert.NotContains(t, errs, "due_date")
}

func TestValidateForm_PaidInFullNeedsNoDueDate(t *testing.T) {
	req := validForm()
	req.AmountPaid = d("270")
	req.DueDate = nil
	_, errs := sales.ValidateForm(req, rosas, now)
	assert.Empty(t, errs)
}

func TestSelectableProductsAndSellers(t *testing.T) {
	products := []dto.ProductResponse{
		{ID: 1, IsActive: true, Stock: 3},
		{ID: 2, IsActive: true, Stock: 0},
		{ID: 3, IsActive: false, Stock: 9},
	}
	got := sales.SelectableProducts(products)
	require.Len(t, got, 1)
	assert.Equal(t, uint(1), got[0].ID)

	sellers := []dto.SellerResponse{{ID: 1, IsActive: true}, {ID: 2}}
	assert.Len(t, sales.SelectableSellers(sellers), 1)
}

// ── Payments ──────────────────────────────────────────────────────────────────

func balance(status sales.Status, paid, remaining string) sales.Balance {
	return sales.Balance{Status: status, AmountPaid: d(paid), AmountRemaining: d(remaining)}
}

func TestApplyPayment_DecreasesRemainingByAmount(t *testing.T) {
	b := balance(sales.Partial, "100", "170")
	for _, amt := range []string{"0.01", "50", "169.99"} {
		s, err := sales.ApplyPayment(b, d(amt))
		require.NoError(t, err)
		assert.True(t, s.AmountRemaining.Equal(b.AmountRemaining.Sub(d(amt))))
		assert.True(t, s.AmountPaid.Equal(b.AmountPaid.Add(d(amt))))
		assert.Equal(t, sales.Partial, s.Status)
	}
}

func TestApplyPayment_RejectsFractionsOfCent(t *testing.T) {
	b := balance(sales.Partial, "100", "170")

	_, err := sales.ApplyPayment(b, d("169.999"))
	var fe apierror.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, sales.MsgCents, fe["amount"])

	// trailing zeros are still whole cents
	s, err := sales.ApplyPayment(b, d("170.000"))
	require.NoError(t, err)
	assert.Equal(t, sales.Completed, s.Status)
}

func TestApplyPayment_CompletesAtZero(t *testing.T) {
	s, err := sales.ApplyPayment(balance(sales.Pending, "0", "270"), d("270"))
	require.NoError(t, err)
	assert.True(t, s.AmountRemaining.IsZero())
	assert.Equal(t, sales.Completed, s.Status)
}

func TestValidatePayment_Rejections(t *testing.T) {
	b := balance(sales.Partial, "100", "170")

	err := sales.ValidatePayment(b, d("0"))
	var fe apierror.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "El pago debe ser mayor a 0", fe["amount"])

	err = sales.ValidatePayment(b, d("170.01"))
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "El pago no puede exceder el monto restante ($170.00)", fe["amount"])

	err = sales.ValidatePayment(balance(sales.Completed, "270", "0"), d("1"))
	assert.ErrorIs(t, err, sales.ErrNotPayable)
	err = sales.ValidatePayment(balance(sales.Cancelled, "0", "270"), d("1"))
	assert.ErrorIs(t, err, sales.ErrNotPayable)
}

func TestQuickAmounts(t *testing.T) {
	got := sales.QuickAmounts(d("170"))
	require.Len(t, got, 4)
	assert.Equal(t, "42.5", got[0].String())
	assert.Equal(t, "85", got[1].String())
	assert.Equal(t, "127.5", got[2].String())
	assert.Equal(t, "170", got[3].String())
}

// ── Status machine ────────────────────────────────────────────────────────────

func TestTransition(t *testing.T) {
	allowed := [][2]sales.Status{
		{sales.Pending, sales.Partial},
		{sales.Pending, sales.Completed},
		{sales.Pending, sales.Cancelled},
		{sales.Partial, sales.Completed},
		{sales.Partial, sales.Cancelled},
		{sales.Partial, sales.Partial},
	}
	for _, tr := range allowed {
		assert.NoError(t, sales.Transition(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}

	refused := [][2]sales.Status{
		{sales.Partial, sales.Pending},
		{sales.Completed, sales.Cancelled},
		{sales.Completed, sales.Pending},
		{sales.Cancelled, sales.Pending},
		{sales.Cancelled, sales.Cancelled},
		{sales.Pending, "SHIPPED"},
	}
	for _, tr := range refused {
		assert.ErrorIs(t, sales.Transition(tr[0], tr[1]), sales.ErrInvalidTransition, "%s -> %s", tr[0], tr[1])
	}
}

func TestCanCancelAndReason(t *testing.T) {
	assert.True(t, sales.CanCancel(sales.Pending))
	assert.True(t, sales.CanCancel(sales.Partial))
	assert.False(t, sales.CanCancel(sales.Completed))
	assert.False(t, sales.CanCancel(sales.Cancelled))

	assert.Equal(t, "Sin motivo especificado", sales.CancelReason("   "))
	assert.Equal(t, "cliente desistio", sales.CancelReason(" cliente desistio "))
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "Pendiente", sales.StatusLabel("PENDING"))
	assert.Equal(t, "Parcial", sales.StatusLabel("PARTIAL"))
	assert.Equal(t, "Completado", sales.StatusLabel("COMPLETED"))
	assert.Equal(t, "Cancelado", sales.StatusLabel("CANCELLED"))
}

// ── Alerts and totals ─────────────────────────────────────────────────────────

func saleDue(id uint, status sales.Status, days int) dto.SaleResponse {
	return dto.SaleResponse{ID: id, Status: string(status), DueDate: strp(dayOffset(days))}
}

func TestDueAlerts_Window(t *testing.T) {
	list := []dto.SaleResponse{
		saleDue(3, sales.Pending, 3),
		saleDue(1, sales.Partial, 1),
		saleDue(4, sales.Pending, -1),
		saleDue(2, sales.Pending, 0),
	}

	alerts := sales.DueAlerts(list, sales.DefaultAlertThreshold, now)
	require.Len(t, alerts, 2)
	assert.Equal(t, uint(2), alerts[0].Sale.ID)
	assert.Equal(t, 0, alerts[0].DaysUntilDue)
	assert.Equal(t, sales.UrgencyCritical, alerts[0].Urgency)
	assert.Equal(t, uint(1), alerts[1].Sale.ID)
	assert.Equal(t, sales.UrgencyHigh, alerts[1].Urgency)
}

func TestToday_UsesUTCDay(t *testing.T) {
	// 22:00 on the 9th in UTC-6 is already the 10th in UTC
	local := time.Date(2026, 3, 9, 22, 0, 0, 0, time.FixedZone("CST", -6*3600))
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), sales.Today(local))
	assert.Equal(t, 0, sales.DaysUntil(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), local))
}

func TestDueAlerts_SkipsClosedAndUndated(t *testing.T) {
	list := []dto.SaleResponse{
		saleDue(1, sales.Completed, 0),
		saleDue(2, sales.Cancelled, 1),
		{ID: 3, Status: "PENDING"},
		saleDue(4, sales.Pending, 2),
	}
	alerts := sales.DueAlerts(list, 2, now)
	require.Len(t, alerts, 1)
	assert.Equal(t, sales.UrgencyMedium, alerts[0].Urgency)
}

func TestDueDateClass(t *testing.T) {
	assert.Equal(t, sales.ClassOverdue, sales.DueDateClass(saleDue(1, sales.Pending, -2), now))
	assert.Equal(t, sales.ClassDueToday, sales.DueDateClass(saleDue(1, sales.Pending, 0), now))
	assert.Equal(t, sales.ClassDueSoon, sales.DueDateClass(saleDue(1, sales.Partial, 2), now))
	assert.Equal(t, "", sales.DueDateClass(saleDue(1, sales.Partial, 9), now))
	assert.Equal(t, "", sales.DueDateClass(saleDue(1, sales.Completed, 0), now))
}

func TestSummarizeActive_ExcludesCancelled(t *testing.T) {
	list := []dto.SaleResponse{
		{Status: "COMPLETED", TotalPrice: d("270"), AmountPaid: d("270"), AmountRemaining: d("0")},
		{Status: "PARTIAL", TotalPrice: d("100"), AmountPaid: d("40"), AmountRemaining: d("60")},
		{Status: "CANCELLED", TotalPrice: d("500"), AmountPaid: d("0"), AmountRemaining: d("500")},
	}

	all := sales.Summarize(list)
	assert.Equal(t, 3, all.Count)
	assert.Equal(t, "870", all.TotalSales.String())

	active := sales.SummarizeActive(list)
	assert.Equal(t, 2, active.Count)
	assert.Equal(t, "370", active.TotalSales.String())
	assert.Equal(t, "310", active.TotalPaid.String())
	assert.Equal(t, "60", active.TotalRemaining.String())
}
