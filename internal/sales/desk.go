package sales

import (
	"context"
	"errors"
	"sync"
	"time"

	"floreria/internal/dto"

	"github.com/shopspring/decimal"
)

// SalesAPI is the remote side of the desk. client.SalesClient implements it.
type SalesAPI interface {
	Create(ctx context.Context, req dto.CreateSaleRequest) (*dto.SaleResponse, error)
	List(ctx context.Context, filter dto.SaleFilter) ([]dto.SaleResponse, error)
	Get(ctx context.Context, id uint) (*dto.SaleResponse, error)
	RegisterPayment(ctx context.Context, id uint, req dto.PaymentRequest) (*dto.SaleResponse, error)
	Cancel(ctx context.Context, id uint, reason string) (*dto.SaleResponse, error)
}

// Messages shown after a successful mutation.
const (
	MsgSaleCreated   = "Venta registrada exitosamente"
	MsgPaymentSaved  = "Pago registrado exitosamente"
	MsgSaleCancelled = "Venta cancelada exitosamente"
)

var ErrNotCancellable = errors.New("Solo se pueden cancelar ventas pendientes o parciales")

// Outcome is what a desk mutation reports back. RefreshErr is set when the
// mutation succeeded but the follow-up re-fetch failed; the mutation stands.
type Outcome struct {
	Sale       *dto.SaleResponse
	Message    string
	RefreshErr error
}

// Desk drives the sales view: it validates locally, submits, then re-fetches
// the list. It keeps the last fetched list so alerts and totals can be derived
// without another round trip.
type Desk struct {
	api    SalesAPI
	filter dto.SaleFilter
	now    func() time.Time

	mu    sync.RWMutex
	sales []dto.SaleResponse
}

// NewDesk lists up to 100 sales per refresh unless filter says otherwise.
// Limits above dto.MaxPageLimit are lowered to it.
func NewDesk(api SalesAPI, filter dto.SaleFilter) *Desk {
	switch {
	case filter.Limit <= 0:
		filter.Limit = 100
	case filter.Limit > dto.MaxPageLimit:
		filter.Limit = dto.MaxPageLimit
	}
	return &Desk{api: api, filter: filter, now: time.Now}
}

// WithClock replaces the clock used for due-date checks.
func (d *Desk) WithClock(now func() time.Time) *Desk {
	d.now = now
	return d
}

// Refresh re-fetches the list with the desk's filter.
func (d *Desk) Refresh(ctx context.Context) ([]dto.SaleResponse, error) {
	list, err := d.api.List(ctx, d.filter)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.sales = list
	d.mu.Unlock()
	return list, nil
}

// Sales returns a copy of the last fetched list.
func (d *Desk) Sales() []dto.SaleResponse {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]dto.SaleResponse, len(d.sales))
	copy(out, d.sales)
	return out
}

// Preview computes the live quote shown while the form is edited.
func (d *Desk) Preview(req dto.CreateSaleRequest, offer Offer) Quote {
	return Compute(offer.Price, req.Quantity, req.Discount, req.AmountPaid)
}

// Create validates req against offer and submits it. Validation failures are
// returned as apierror.FieldErrors and nothing is sent.
func (d *Desk) Create(ctx context.Context, req dto.CreateSaleRequest, offer Offer) (*Outcome, error) {
	if _, errs := ValidateForm(req, offer, d.now()); len(errs) > 0 {
		return nil, errs
	}
	sale, err := d.api.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	return d.after(ctx, sale, MsgSaleCreated), nil
}

// Pay registers amount against sale. Amounts above the remaining balance are
// refused before submission.
func (d *Desk) Pay(ctx context.Context, sale dto.SaleResponse, amount decimal.Decimal, method *string) (*Outcome, error) {
	if err := ValidatePayment(BalanceOf(sale), amount); err != nil {
		return nil, err
	}
	updated, err := d.api.RegisterPayment(ctx, sale.ID, dto.PaymentRequest{Amount: amount, PaymentMethod: method})
	if err != nil {
		return nil, err
	}
	return d.after(ctx, updated, MsgPaymentSaved), nil
}

// Cancel cancels an open sale. A blank reason becomes DefaultCancelReason.
func (d *Desk) Cancel(ctx context.Context, sale dto.SaleResponse, reason string) (*Outcome, error) {
	if !CanCancel(Status(sale.Status)) {
		return nil, ErrNotCancellable
	}
	updated, err := d.api.Cancel(ctx, sale.ID, CancelReason(reason))
	if err != nil {
		return nil, err
	}
	return d.after(ctx, updated, MsgSaleCancelled), nil
}

// Totals sums the non-cancelled sales of the last fetched list.
func (d *Desk) Totals() Totals { return SummarizeActive(d.Sales()) }

// ScanAlerts walks every page of the desk's filter and returns the due alerts
// within threshold days. The fetched list replaces the cached one.
func (d *Desk) ScanAlerts(ctx context.Context, threshold int) ([]dto.DueAlertResponse, error) {
	list, err := d.fetchAll(ctx)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.sales = list
	d.mu.Unlock()
	return DueAlerts(list, threshold, d.now()), nil
}

func (d *Desk) fetchAll(ctx context.Context) ([]dto.SaleResponse, error) {
	f := d.filter
	var all []dto.SaleResponse
	for {
		page, err := d.api.List(ctx, f)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < f.Limit {
			return all, nil
		}
		f.Skip += f.Limit
	}
}

func (d *Desk) after(ctx context.Context, sale *dto.SaleResponse, msg string) *Outcome {
	_, err := d.Refresh(ctx)
	return &Outcome{Sale: sale, Message: msg, RefreshErr: err}
}
