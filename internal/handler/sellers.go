package handler

import (
	"fmt"
	"net/http"

	"floreria/internal/dto"
	"floreria/internal/service"

	"github.com/gin-gonic/gin"
)

type SellersHandler struct{ svc service.SellerService }

func NewSellersHandler(svc service.SellerService) *SellersHandler {
	return &SellersHandler{svc: svc}
}

// List godoc
// @Summary Lista vendedores
// @Tags sellers
// @Produce json
// @Success 200 {array} dto.SellerResponse
// @Router /api/v1/sellers/ [get]
func (h *SellersHandler) List(c *gin.Context) {
	var page dto.Page
	if !bindQuery(c, &page) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SellersHandler) Get(c *gin.Context) {
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

func (h *SellersHandler) Create(c *gin.Context) {
	var req dto.CreateSellerRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *SellersHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateSellerRequest
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

func (h *SellersHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: fmt.Sprintf("Vendedor eliminado correctamente con id %d.", id)})
}

func (h *SellersHandler) Sales(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var page dto.Page
	if !bindQuery(c, &page) {
		return
	}
	resp, err := h.svc.Sales(c.Request.Context(), id, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
