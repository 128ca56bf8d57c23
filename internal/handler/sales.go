package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"floreria/internal/apierror"
	"floreria/internal/dto"
	"floreria/internal/sales"
	"floreria/internal/service"

	"github.com/gin-gonic/gin"
)

type SalesHandler struct{ svc service.SaleService }

func NewSalesHandler(svc service.SaleService) *SalesHandler { return &SalesHandler{svc: svc} }

// Create godoc
// @Summary Registra una venta
// @Tags sales
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.CreateSaleRequest true "Venta"
// @Success 201 {object} dto.SaleResponse
// @Failure 400 {object} apierror.APIError
// @Failure 422 {object} apierror.ValidationError
// @Router /api/v1/sales/ [post]
func (h *SalesHandler) Create(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary Lista ventas
// @Tags sales
// @Security BearerAuth
// @Param status query string false "PENDING, PARTIAL, COMPLETED o CANCELLED"
// @Param seller_id query int false "Vendedor"
// @Param skip query int false "Desplazamiento"
// @Param limit query int false "Máximo de filas"
// @Success 200 {array} dto.SaleResponse
// @Router /api/v1/sales/ [get]
func (h *SalesHandler) List(c *gin.Context) {
	var filter dto.SaleFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SalesHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SalesHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateStatus godoc
// @Summary Cambia el estado de una venta
// @Tags sales
// @Security BearerAuth
// @Param id path int true "ID de la venta"
// @Param reason query string false "Motivo, solo para CANCELLED"
// @Param body body dto.UpdateSaleStatusRequest true "Nuevo estado"
// @Success 200 {object} dto.SaleResponse
// @Router /api/v1/sales/{id}/status [patch]
func (h *SalesHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateSaleStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	var (
		resp *dto.SaleResponse
		err  error
	)
	if sales.Status(req.Status) == sales.Cancelled {
		resp, err = h.svc.Cancel(c.Request.Context(), id, c.Query("reason"))
	} else {
		resp, err = h.svc.UpdateStatus(c.Request.Context(), actor(c), id, req.Status)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegisterPayment godoc
// @Summary Registra un pago
// @Tags sales
// @Security BearerAuth
// @Param id path int true "ID de la venta"
// @Param body body dto.PaymentRequest true "Pago"
// @Success 200 {object} dto.SaleResponse
// @Failure 422 {object} apierror.ValidationError
// @Router /api/v1/sales/{id}/payment [patch]
func (h *SalesHandler) RegisterPayment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.PaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegisterPayment(c.Request.Context(), actor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancel is DELETE /sales/:id; sales are never removed.
func (h *SalesHandler) Cancel(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Cancel(c.Request.Context(), id, c.Query("reason"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SalesHandler) Payments(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Payments(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Receipt godoc
// @Summary Comprobante PDF de la venta
// @Tags sales
// @Security BearerAuth
// @Produce application/pdf
// @Param id path int true "ID de la venta"
// @Success 200 {file} binary
// @Router /api/v1/sales/{id}/receipt [get]
func (h *SalesHandler) Receipt(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.svc.Receipt(c.Request.Context(), id, &buf); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="venta-%d.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// Alerts lists open sales due within ?days= (default 2).
func (h *SalesHandler) Alerts(c *gin.Context) {
	days := sales.DefaultAlertThreshold
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(map[string]string{"days": "Debe ser un número de días"}))
			return
		}
		days = n
	}
	resp, err := h.svc.Alerts(c.Request.Context(), days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
