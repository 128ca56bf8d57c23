package handler

import (
	"net/http"
	"strconv"

	"floreria/internal/apierror"
	"floreria/internal/dto"
	"floreria/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductsHandler struct{ svc service.ProductService }

func NewProductsHandler(svc service.ProductService) *ProductsHandler {
	return &ProductsHandler{svc: svc}
}

// List godoc
// @Summary Lista productos
// @Tags products
// @Produce json
// @Param skip query int false "Desplazamiento"
// @Param limit query int false "Máximo de filas"
// @Success 200 {array} dto.ProductResponse
// @Router /api/v1/products/ [get]
func (h *ProductsHandler) List(c *gin.Context) {
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

func (h *ProductsHandler) Get(c *gin.Context) {
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

// Create godoc
// @Summary Crea un producto
// @Tags products
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.CreateProductRequest true "Producto"
// @Success 201 {object} dto.ProductResponse
// @Failure 422 {object} apierror.ValidationError
// @Router /api/v1/products/ [post]
func (h *ProductsHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
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

func (h *ProductsHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
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

func (h *ProductsHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: service.MsgProductDeleted})
}

// UpdateStock godoc
// @Summary Ajusta el stock
// @Tags products
// @Security BearerAuth
// @Param id path int true "ID del producto"
// @Param stock query int true "Nuevo stock"
// @Success 200 {object} dto.ProductResponse
// @Router /api/v1/products/{id}/stock [patch]
func (h *ProductsHandler) UpdateStock(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	stock, err := strconv.Atoi(c.Query("stock"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(map[string]string{"stock": "El stock debe ser un número entero"}))
		return
	}
	resp, err := h.svc.UpdateStock(c.Request.Context(), id, stock)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UploadImage godoc
// @Summary Sube la imagen del producto
// @Tags products
// @Security BearerAuth
// @Accept multipart/form-data
// @Param id path int true "ID del producto"
// @Param file formData file true "JPG, PNG o WEBP, máximo 10MB"
// @Success 200 {object} dto.ProductResponse
// @Router /api/v1/products/{id}/image [post]
func (h *ProductsHandler) UploadImage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(map[string]string{"file": "Selecciona una imagen"}))
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("No se pudo leer la imagen"))
		return
	}
	defer f.Close()

	resp, err := h.svc.UploadImage(c.Request.Context(), id, fh.Header.Get("Content-Type"), fh.Size, f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
