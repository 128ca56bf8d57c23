package sales_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"floreria/internal/apierror"
	"floreria/internal/dto"
	"floreria/internal/sales"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── In-memory SalesAPI stub ───────────────────────────────────────────────────

type stubSalesAPI struct {
	mu        sync.Mutex
	sales     map[uint]*dto.SaleResponse
	nextID    uint
	calls     []string
	listErr   error
	lastCause string
}

func newStubSalesAPI() *stubSalesAPI {
	return &stubSalesAPI{sales: make(map[uint]*dto.SaleResponse)}
}

func (a *stubSalesAPI) record(call string) {
	a.mu.Lock()
	a.calls = append(a.calls, call)
	a.mu.Unlock()
}

func (a *stubSalesAPI) Create(_ context.Context, req dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	a.record("create")
	q := sales.Compute(rosas.Price, req.Quantity, req.Discount, req.AmountPaid)
	a.nextID++
	s := &dto.SaleResponse{
		ID: a.nextID, ProductID: req.ProductID, SellerID: req.SellerID, Quantity: req.Quantity,
		Subtotal: q.Subtotal, TotalPrice: q.Total, AmountPaid: q.AmountPaid, AmountRemaining: q.Remaining,
		Status: string(sales.InitialStatus(q)), DueDate: req.DueDate,
	}
	a.sales[s.ID] = s
	return s, nil
}

func (a *stubSalesAPI) List(_ context.Context, _ dto.SaleFilter) ([]dto.SaleResponse, error) {
	a.record("list")
	if a.listErr != nil {
		return nil, a.listErr
	}
	out := make([]dto.SaleResponse, 0, len(a.sales))
	for i := uint(1); i <= a.nextID; i++ {
		if s, ok := a.sales[i]; ok {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (a *stubSalesAPI) Get(_ context.Context, id uint) (*dto.SaleResponse, error) {
	s, ok := a.sales[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return s, nil
}

func (a *stubSalesAPI) RegisterPayment(_ context.Context, id uint, req dto.PaymentRequest) (*dto.SaleResponse, error) {
	a.record("pay")
	s := a.sales[id]
	st, err := sales.ApplyPayment(sales.BalanceOf(*s), req.Amount)
	if err != nil {
		return nil, err
	}
	s.AmountPaid, s.AmountRemaining, s.Status = st.AmountPaid, st.AmountRemaining, string(st.Status)
	return s, nil
}

func (a *stubSalesAPI) Cancel(_ context.Context, id uint, reason string) (*dto.SaleResponse, error) {
	a.record("cancel")
	a.lastCause = reason
	s := a.sales[id]
	s.Status = string(sales.Cancelled)
	return s, nil
}

var _ sales.SalesAPI = (*stubSalesAPI)(nil)

func newDesk(api sales.SalesAPI) *sales.Desk {
	return sales.NewDesk(api, dto.SaleFilter{}).WithClock(func() time.Time { return now })
}

// ── Desk ──────────────────────────────────────────────────────────────────────

func TestDesk_CreateValidatesBeforeSubmitting(t *testing.T) {
	api := newStubSalesAPI()
	desk := newDesk(api)

	req := validForm()
	req.DueDate = nil
	_, err := desk.Create(context.Background(), req, rosas)

	var fe apierror.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "due_date")
	assert.Empty(t, api.calls)
}

func TestDesk_CreateThenRefresh(t *testing.T) {
	api := newStubSalesAPI()
	desk := newDesk(api)

	out, err := desk.Create(context.Background(), validForm(), rosas)
	require.NoError(t, err)
	assert.Equal(t, sales.MsgSaleCreated, out.Message)
	assert.NoError(t, out.RefreshErr)
	assert.Equal(t, []string{"create", "list"}, api.calls)
	assert.Equal(t, "PARTIAL", out.Sale.Status)
	assert.Len(t, desk.Sales(), 1)
}

func TestDesk_RefreshFailureKeepsMutation(t *testing.T) {
	api := newStubSalesAPI()
	api.listErr = errors.New("boom")
	desk := newDesk(api)

	out, err := desk.Create(context.Background(), validForm(), rosas)
	require.NoError(t, err)
	assert.EqualError(t, out.RefreshErr, "boom")
	assert.Len(t, api.sales, 1)
}

func TestDesk_PayRejectsOverRemainingWithoutCall(t *testing.T) {
	api := newStubSalesAPI()
	desk := newDesk(api)
	out, err := desk.Create(context.Background(), validForm(), rosas)
	require.NoError(t, err)
	api.calls = nil

	_, err = desk.Pay(context.Background(), *out.Sale, d("171"), nil)
	require.Error(t, err)
	assert.Empty(t, api.calls)

	paid, err := desk.Pay(context.Background(), *out.Sale, d("170"), nil)
	require.NoError(t, err)
	assert.Equal(t, sales.MsgPaymentSaved, paid.Message)
	assert.Equal(t, "COMPLETED", paid.Sale.Status)
	assert.True(t, paid.Sale.AmountRemaining.IsZero())
}

func TestDesk_CancelOnlyOpenSales(t *testing.T) {
	api := newStubSalesAPI()
	desk := newDesk(api)
	out, err := desk.Create(context.Background(), validForm(), rosas)
	require.NoError(t, err)

	cancelled, err := desk.Cancel(context.Background(), *out.Sale, "")
	require.NoError(t, err)
	assert.Equal(t, sales.MsgSaleCancelled, cancelled.Message)
	assert.Equal(t, sales.DefaultCancelReason, api.lastCause)

	// Cancelled sales drop out of the active totals.
	assert.Equal(t, 0, desk.Totals().Count)

	_, err = desk.Cancel(context.Background(), *cancelled.Sale, "otra vez")
	assert.ErrorIs(t, err, sales.ErrNotCancellable)
}

// ── AlertScheduler ────────────────────────────────────────────────────────────

func TestAlertScheduler_RunsImmediatelyAndStops(t *testing.T) {
	var runs atomic.Int32
	delivered := make(chan []dto.DueAlertResponse, 4)

	sched := sales.NewAlertScheduler(func(context.Context) ([]dto.DueAlertResponse, error) {
		runs.Add(1)
		return []dto.DueAlertResponse{{DaysUntilDue: 0, Urgency: sales.UrgencyCritical}}, nil
	}, time.Hour, func(a []dto.DueAlertResponse) { delivered <- a })

	require.NoError(t, sched.Start(context.Background()))
	assert.ErrorIs(t, sched.Start(context.Background()), sales.ErrSchedulerRunning)

	select {
	case got := <-delivered:
		require.Len(t, got, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("scan did not run on start")
	}

	sched.Stop()
	assert.False(t, sched.Running())
	assert.Equal(t, int32(1), runs.Load())
	sched.Stop() // idempotent
}

func TestAlertScheduler_TicksAndReportsErrors(t *testing.T) {
	var runs atomic.Int32
	errs := make(chan error, 8)

	sched := sales.NewAlertScheduler(func(context.Context) ([]dto.DueAlertResponse, error) {
		runs.Add(1)
		return nil, errors.New("backend down")
	}, 10*time.Millisecond, nil)
	sched.OnError(func(err error) {
		select {
		case errs <- err:
		default:
		}
	})

	require.NoError(t, sched.Start(context.Background()))
	require.Eventually(t, func() bool { return runs.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	sched.Stop()

	assert.EqualError(t, <-errs, "backend down")
}

func TestAlertScheduler_ParentCancelAllowsRestart(t *testing.T) {
	sched := sales.NewAlertScheduler(func(context.Context) ([]dto.DueAlertResponse, error) {
		return nil, nil
	}, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, sched.Start(ctx))
	cancel()
	require.Eventually(t, func() bool { return !sched.Running() }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, sched.Start(context.Background()))
	sched.Stop()
}
