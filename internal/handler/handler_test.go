package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"floreria/internal/apierror"
	"floreria/internal/dto"
	"floreria/internal/handler"
	"floreria/internal/infra"
	"floreria/internal/middleware"
	"floreria/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubSales overrides what the tests touch; any other call panics on the nil
// embedded interface.
type stubSales struct {
	service.SaleService
	gotActor     service.Actor
	gotStatus    string
	cancelReason *string
	err          error
	listed       []dto.SaleResponse
	gotLimits    []int
}

var _ service.SaleService = (*stubSales)(nil)

func (s *stubSales) Create(_ context.Context, a service.Actor, req dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	s.gotActor = a
	if s.err != nil {
		return nil, s.err
	}
	return &dto.SaleResponse{ID: 1, ProductID: req.ProductID, Quantity: req.Quantity, Status: "PENDING"}, nil
}

func (s *stubSales) Get(_ context.Context, id uint) (*dto.SaleResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.SaleResponse{ID: id}, nil
}

func (s *stubSales) UpdateStatus(_ context.Context, a service.Actor, id uint, status string) (*dto.SaleResponse, error) {
	s.gotActor, s.gotStatus = a, status
	return &dto.SaleResponse{ID: id, Status: status}, nil
}

func (s *stubSales) Cancel(_ context.Context, id uint, reason string) (*dto.SaleResponse, error) {
	s.cancelReason = &reason
	return &dto.SaleResponse{ID: id, Status: "CANCELLED", CancelReason: &reason}, nil
}

func (s *stubSales) Receipt(_ context.Context, _ uint, w io.Writer) error {
	_, err := w.Write([]byte("%PDF-1.3 fake"))
	return err
}

func (s *stubSales) Alerts(_ context.Context, days int) ([]dto.DueAlertResponse, error) {
	return []dto.DueAlertResponse{{DaysUntilDue: days}}, nil
}

type stubEarnings struct {
	service.EarningsService
	gotQuery dto.UpdateEarningQuery
}

var _ service.EarningsService = (*stubEarnings)(nil)

func (s *stubEarnings) UpdateEarning(_ context.Context, id uint, q dto.UpdateEarningQuery) (*dto.EarningResponse, error) {
	s.gotQuery = q
	return &dto.EarningResponse{ID: id}, nil
}

func (s *stubEarnings) ByProduct(_ context.Context, orderBy string) ([]dto.EarningsByProduct, error) {
	if orderBy == "nope" {
		return nil, apierror.FieldErrors{"order_by": "Criterio inválido"}
	}
	return []dto.EarningsByProduct{}, nil
}

func (s *stubEarnings) Export(_ context.Context, w io.Writer) error {
	_, err := w.Write([]byte("PK"))
	return err
}

type stubAuth struct {
	service.AuthService
	got dto.LoginRequest
}

func (s *stubAuth) Login(_ context.Context, req dto.LoginRequest) (*dto.TokenResponse, error) {
	s.got = req
	if req.Password != "Secreta123" {
		return nil, &service.Error{Kind: service.KindUnauthorized, Msg: "Usuario o contraseña incorrectos"}
	}
	return &dto.TokenResponse{AccessToken: "tok", TokenType: "bearer"}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func withClaims(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ClaimsKey, &middleware.JWTClaims{UserID: 7, Username: "flor", Role: role})
		c.Next()
	}
}

func salesRouter(svc service.SaleService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := handler.NewSalesHandler(svc)
	g := r.Group("/sales", withClaims(dto.RoleUser))
	g.POST("/", h.Create)
	g.GET("/alerts", h.Alerts)
	g.GET("/:id", h.Get)
	g.PATCH("/:id/status", h.UpdateStatus)
	g.DELETE("/:id", h.Cancel)
	g.GET("/:id/receipt", h.Receipt)
	return r
}

func do(r http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ── Sales ─────────────────────────────────────────────────────────────────────

func TestSales_CreatePassesActorFromClaims(t *testing.T) {
	svc := &stubSales{}
	w := do(salesRouter(svc), http.MethodPost, "/sales/", dto.CreateSaleRequest{ProductID: 3, SellerID: 1, Quantity: 2})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, service.Actor{ID: 7, Username: "flor", Role: dto.RoleUser}, svc.gotActor)
	var resp dto.SaleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, uint(3), resp.ProductID)
}

func TestSales_ServiceErrorsMapToStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&service.Error{Kind: service.KindNotFound, Msg: "Venta no encontrada"}, http.StatusNotFound},
		{&service.Error{Kind: service.KindBusiness, Msg: "Stock insuficiente para la venta"}, http.StatusBadRequest},
		{&service.Error{Kind: service.KindForbidden, Msg: "no"}, http.StatusForbidden},
		{apierror.FieldErrors{"quantity": "Debe ser mayor a 0"}, http.StatusUnprocessableEntity},
		{errors.New("pq: connection refused"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := do(salesRouter(&stubSales{err: tc.err}), http.MethodGet, "/sales/5", nil)
		assert.Equal(t, tc.want, w.Code, tc.err.Error())
		assert.NotContains(t, w.Body.String(), "pq:")
	}
}

func TestSales_InvalidID(t *testing.T) {
	w := do(salesRouter(&stubSales{}), http.MethodGet, "/sales/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "ID invalido")
}

func TestSales_UpdateStatusCancelledGoesThroughCancel(t *testing.T) {
	svc := &stubSales{}
	w := do(salesRouter(svc), http.MethodPatch, "/sales/4/status?reason="+url.QueryEscape("Cliente desistió"),
		dto.UpdateSaleStatusRequest{Status: "CANCELLED"})

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.cancelReason)
	assert.Equal(t, "Cliente desistió", *svc.cancelReason)
	assert.Empty(t, svc.gotStatus)
}

func TestSales_UpdateStatusValidatesValue(t *testing.T) {
	svc := &stubSales{}
	w := do(salesRouter(svc), http.MethodPatch, "/sales/4/status", dto.UpdateSaleStatusRequest{Status: "OPEN"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body apierror.ValidationError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Fields, "status")

	w = do(salesRouter(svc), http.MethodPatch, "/sales/4/status", dto.UpdateSaleStatusRequest{Status: "COMPLETED"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "COMPLETED", svc.gotStatus)
}

func TestSales_CancelWithoutReason(t *testing.T) {
	svc := &stubSales{}
	w := do(salesRouter(svc), http.MethodDelete, "/sales/9", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "", *svc.cancelReason)
}

func TestSales_Receipt(t *testing.T) {
	w := do(salesRouter(&stubSales{}), http.MethodGet, "/sales/12/receipt", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "venta-12.pdf")
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))
}

func TestSales_AlertsDays(t *testing.T) {
	r := salesRouter(&stubSales{})

	w := do(r, http.MethodGet, "/sales/alerts?days=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var alerts []dto.DueAlertResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &alerts))
	assert.Equal(t, 5, alerts[0].DaysUntilDue)

	w = do(r, http.MethodGet, "/sales/alerts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &alerts))
	assert.Equal(t, 2, alerts[0].DaysUntilDue)

	w = do(r, http.MethodGet, "/sales/alerts?days=0", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &alerts))
	assert.Equal(t, 0, alerts[0].DaysUntilDue)

	w = do(r, http.MethodGet, "/sales/alerts?days=-1", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

// ── Earnings ──────────────────────────────────────────────────────────────────

func earningsRouter(svc service.EarningsService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := handler.NewEarningsHandler(svc)
	r.GET("/earnings/by-product", h.ByProduct)
	r.GET("/earnings/export", h.Export)
	r.PUT("/earnings/earning/:id", h.UpdateEarning)
	return r
}

func TestEarnings_UpdateEarningBindsDecimalQuery(t *testing.T) {
	svc := &stubEarnings{}
	w := do(earningsRouter(svc), http.MethodPut, "/earnings/earning/3?cost_price=120.50&sale_price=200", nil)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.gotQuery.CostPrice)
	require.NotNil(t, svc.gotQuery.SalePrice)
	assert.True(t, decimal.RequireFromString("120.50").Equal(*svc.gotQuery.CostPrice))
	assert.True(t, decimal.NewFromInt(200).Equal(*svc.gotQuery.SalePrice))
}

func TestEarnings_ByProductFieldError(t *testing.T) {
	w := do(earningsRouter(&stubEarnings{}), http.MethodGet, "/earnings/by-product?order_by=nope", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "order_by")
}

func TestEarnings_ExportHeaders(t *testing.T) {
	w := do(earningsRouter(&stubEarnings{}), http.MethodGet, "/earnings/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
}

// ── Auth ──────────────────────────────────────────────────────────────────────

func TestAuth_LoginIsFormEncoded(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &stubAuth{}
	r := gin.New()
	r.POST("/auth/login", handler.NewAuthHandler(svc).Login)

	form := url.Values{"username": {"admin"}, "password": {"Secreta123"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", svc.got.Username)

	form.Set("password", "mala")
	req = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("username=admin"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

// ── Health ────────────────────────────────────────────────────────────────────

func TestHealth_WithoutDependencies(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", handler.Health(nil, nil, nil))

	w := do(r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "disabled", body["db"])
	assert.Equal(t, "disabled", body["smtp"])
	assert.NotContains(t, body, "smtp_retry_at")
}

func TestHealth_ReportsOpenMailBreaker(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cb := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: time.Minute})
	_ = cb.Execute(func() error { return errors.New("dial tcp") })

	r := gin.New()
	r.GET("/health", handler.Health(nil, nil, cb))
	w := do(r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "open", body["smtp"])
	assert.NotEmpty(t, body["smtp_retry_at"])
}
