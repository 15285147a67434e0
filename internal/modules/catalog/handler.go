package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"karaoke/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterGuestRoutes exposes the read-only menu.
func (h *Handler) RegisterGuestRoutes(rg *gin.RouterGroup) {
	rg.GET("/products", h.List)
}

func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/products", h.Create)
	rg.GET("/products", h.List)
	rg.GET("/products/:id", h.Get)
	rg.PUT("/products/:id/price", h.UpdatePrice)
	rg.PUT("/products/:id/stock", h.SetStock)
	rg.POST("/products/:id/activate", h.Activate)
	rg.POST("/products/:id/deactivate", h.Deactivate)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	p, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, p)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid product id")
		return
	}

	p, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

func (h *Handler) List(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	products, err := h.svc.List(c.Request.Context(), offset, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, products)
}

func (h *Handler) UpdatePrice(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid product id")
		return
	}

	var req UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	if err := h.svc.UpdatePrice(c.Request.Context(), id, req.Price); err != nil {
		h.respondError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) SetStock(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid product id")
		return
	}

	var req UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	if err := h.svc.SetStock(c.Request.Context(), id, req.Stock); err != nil {
		h.respondError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) Activate(c *gin.Context)   { h.setActive(c, true) }
func (h *Handler) Deactivate(c *gin.Context) { h.setActive(c, false) }

func (h *Handler) setActive(c *gin.Context, active bool) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid product id")
		return
	}

	if err := h.svc.SetActive(c.Request.Context(), id, active); err != nil {
		h.respondError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "product not found")
	case errors.Is(err, ErrDuplicate):
		response.Error(c, http.StatusConflict, "DUPLICATE_NAME", "product name already exists")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

func parseID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
