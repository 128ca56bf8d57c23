package infra

import (
	"bytes"
	"errors"
	"net/smtp"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"floreria/internal/config"
	"floreria/internal/dto"

	"github.com/jordan-wright/email"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// ── Circuit breaker ───────────────────────────────────────────────────────────

func TestCircuitBreaker_OpensAndRecovers(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "test", FailureThreshold: 2, SuccessThreshold: 1, OpenTimeout: time.Minute}).
		WithClock(func() time.Time { return now })
	boom := errors.New("boom")

	assert.ErrorIs(t, cb.Execute(func() error { return boom }), boom)
	assert.Equal(t, CBClosed, cb.State())
	assert.ErrorIs(t, cb.Execute(func() error { return boom }), boom)
	assert.Equal(t, CBOpen, cb.State())

	called := false
	assert.ErrorIs(t, cb.Execute(func() error { called = true; return nil }), ErrCircuitOpen)
	assert.False(t, called)

	now = now.Add(time.Minute)
	assert.Equal(t, "half-open", cb.State().String())
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_OneProbeAtATime(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: time.Minute}).
		WithClock(func() time.Time { return now })
	require.Error(t, cb.Execute(func() error { return errors.New("dial tcp") }))

	st := cb.Status()
	assert.Equal(t, CBOpen, st.State)
	assert.Equal(t, now.Add(time.Minute), st.RetryAt)

	now = now.Add(time.Minute)
	started, release := make(chan struct{}), make(chan struct{})
	probeDone := make(chan error)
	go func() {
		probeDone <- cb.Execute(func() error { close(started); <-release; return nil })
	}()
	<-started
	called := false
	assert.ErrorIs(t, cb.Execute(func() error { called = true; return nil }), ErrCircuitOpen)
	assert.False(t, called)

	close(release)
	require.NoError(t, <-probeDone)
	assert.Equal(t, CBClosed, cb.State())
	assert.True(t, cb.Status().RetryAt.IsZero())
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 2, OpenTimeout: time.Minute}).
		WithClock(func() time.Time { return now })
	boom := errors.New("boom")
	_ = cb.Execute(func() error { return boom })
	_ = cb.Execute(func() error { return boom })

	now = now.Add(time.Minute)
	assert.ErrorIs(t, cb.Execute(func() error { return boom }), boom)
	st := cb.Status()
	assert.Equal(t, CBOpen, st.State)
	assert.Equal(t, now.Add(time.Minute), st.RetryAt)
}

// ── Mailer ────────────────────────────────────────────────────────────────────

func TestMailer_RejectedMessagesDoNotTripBreaker(t *testing.T) {
	m := NewMailer(&config.Config{SMTPHost: "smtp.flores.mx", SMTPPort: 587}, nil)
	m.send = func(*email.Email, string, smtp.Auth) error {
		return &textproto.Error{Code: 550, Msg: "mailbox unavailable"}
	}
	for i := 0; i < DefaultCBConfig().FailureThreshold+2; i++ {
		err := m.Send(Message{To: []string{"nadie@flores.mx"}})
		assert.ErrorIs(t, err, ErrMessageRejected)
	}
	assert.Equal(t, CBClosed, m.Breaker().State())
}

func TestMailer(t *testing.T) {
	m := NewMailer(&config.Config{}, nil)
	assert.ErrorIs(t, m.Send(Message{To: []string{"a@b.mx"}}), ErrMailDisabled)

	m = NewMailer(&config.Config{SMTPHost: "smtp.flores.mx", SMTPPort: 587, SMTPUser: "tienda@flores.mx"}, nil)
	var got *email.Email
	var addr string
	m.send = func(e *email.Email, a string, _ smtp.Auth) error {
		got, addr = e, a
		return nil
	}
	err := m.Send(Message{
		To:          []string{"admin@flores.mx"},
		Subject:     "Ventas por vencer",
		Text:        "hola",
		Attachments: []Attachment{{Filename: "venta-1.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "smtp.flores.mx:587", addr)
	assert.Equal(t, "tienda@flores.mx", got.From, "SMTP_FROM falls back to the user")
	assert.Len(t, got.Attachments, 1)

	m.send = func(*email.Email, string, smtp.Auth) error { return errors.New("421") }
	for i := 0; i < DefaultCBConfig().FailureThreshold; i++ {
		require.Error(t, m.Send(Message{To: []string{"x@y.mx"}}))
	}
	assert.Equal(t, CBOpen, m.Breaker().State())
	assert.ErrorIs(t, m.Send(Message{To: []string{"x@y.mx"}}), ErrCircuitOpen)
}

// ── Image store ───────────────────────────────────────────────────────────────

func TestImageStore_SaveAndRemove(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "images")
	s := NewImageStore(dir, "http://localhost:8000/")

	url, err := s.Save(5, ".png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:8000/static/products/5_"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	name := filepath.Base(url)
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, s.Remove(url))
	_, err = os.Stat(filepath.Join(dir, name))
	assert.True(t, os.IsNotExist(err))

	// foreign and already removed urls are ignored
	assert.NoError(t, s.Remove("https://cdn.example.com/x.png"))
	assert.NoError(t, s.Remove(url))
	assert.NoError(t, s.Remove("http://localhost:8000/static/products/../../etc/passwd"))
}

// ── Documents ─────────────────────────────────────────────────────────────────

func TestWriteReceiptPDF(t *testing.T) {
	due := "2026-05-20"
	sale := dto.SaleResponse{
		ID:              3,
		ProductName:     "Ramo de girasoles",
		SellerName:      "Lupita",
		Quantity:        2,
		UnitPrice:       decimal.NewFromInt(150),
		Subtotal:        decimal.NewFromInt(300),
		Discount:        decimal.NewFromInt(30),
		TotalPrice:      decimal.NewFromInt(270),
		AmountPaid:      decimal.NewFromInt(100),
		AmountRemaining: decimal.NewFromInt(170),
		Status:          "PARTIAL",
		PaymentMethod:   "CASH",
		DueDate:         &due,
		CreatedAt:       time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	payments := []dto.SalePaymentResponse{{ID: 1, SaleID: 3, Amount: decimal.NewFromInt(100)}}

	var buf bytes.Buffer
	require.NoError(t, WriteReceiptPDF(&buf, sale, payments))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestWriteEarningsXLSX(t *testing.T) {
	profit := decimal.NewFromInt(70)
	wb := EarningsWorkbook{
		Summary:   dto.EarningsSummary{TotalSold: decimal.NewFromInt(400), GrossProfit: profit, TotalSales: 2},
		ByProduct: []dto.EarningsByProduct{{ProductID: 1, ProductName: "Rosas", Profit: profit}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteEarningsXLSX(&buf, wb))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Resumen", "Por producto", "Por vendedor", "Detalle"}, f.GetSheetList())

	rows, err := f.GetRows("Por producto")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 2)
	assert.Equal(t, "Rosas", rows[1][1])
}
