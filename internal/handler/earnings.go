package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"floreria/internal/dto"
	"floreria/internal/service"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type EarningsHandler struct{ svc service.EarningsService }

func NewEarningsHandler(svc service.EarningsService) *EarningsHandler {
	return &EarningsHandler{svc: svc}
}

// Summary godoc
// @Summary Resumen de ganancias
// @Tags earnings
// @Security BearerAuth
// @Success 200 {object} dto.EarningsSummary
// @Router /api/v1/earnings/summary [get]
func (h *EarningsHandler) Summary(c *gin.Context) {
	resp, err := h.svc.Summary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *EarningsHandler) ByProduct(c *gin.Context) {
	var q dto.ByProductQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.ByProduct(c.Request.Context(), q.OrderBy)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ByPeriod godoc
// @Summary Ganancias por periodo
// @Tags earnings
// @Security BearerAuth
// @Param period query string false "day, week, month o year"
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD"
// @Success 200 {array} dto.EarningsByPeriod
// @Failure 400 {object} apierror.APIError
// @Router /api/v1/earnings/by-period [get]
func (h *EarningsHandler) ByPeriod(c *gin.Context) {
	var q dto.PeriodQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.ByPeriod(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *EarningsHandler) BySeller(c *gin.Context) {
	resp, err := h.svc.BySeller(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *EarningsHandler) ForSale(c *gin.Context) {
	id, ok := parseID(c, "saleId")
	if !ok {
		return
	}
	resp, err := h.svc.ForSale(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *EarningsHandler) RecordInvestment(c *gin.Context) {
	var req dto.InvestmentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RecordInvestment(c.Request.Context(), actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *EarningsHandler) Investments(c *gin.Context) {
	var page dto.Page
	if !bindQuery(c, &page) {
		return
	}
	resp, err := h.svc.Investments(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateEarning godoc
// @Summary Corrige los precios de una ganancia
// @Tags earnings
// @Security BearerAuth
// @Param id path int true "ID de la ganancia"
// @Param cost_price query number true "Costo unitario"
// @Param sale_price query number true "Precio unitario"
// @Success 200 {object} dto.EarningResponse
// @Router /api/v1/earnings/earning/{id} [put]
func (h *EarningsHandler) UpdateEarning(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var q dto.UpdateEarningQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.UpdateEarning(c.Request.Context(), id, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Export godoc
// @Summary Exporta las ganancias a Excel
// @Tags earnings
// @Security BearerAuth
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Router /api/v1/earnings/export [get]
func (h *EarningsHandler) Export(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.svc.Export(c.Request.Context(), &buf); err != nil {
		respondError(c, err)
		return
	}
	name := fmt.Sprintf("ganancias-%s.xlsx", time.Now().Format(dto.DateLayout))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
