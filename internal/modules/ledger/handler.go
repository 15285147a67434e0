package ledger

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

// RegisterGuestRoutes mounts the self-service endpoints. Table and guest
// identity come from the session token, never from the body.
func (h *Handler) RegisterGuestRoutes(rg *gin.RouterGroup) {
	rg.POST("/consumptions", h.GuestOrder)
	rg.GET("/tab", h.GuestTab)
}

func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/tables/:id/consumptions", h.RecordConsumption)
	rg.DELETE("/consumptions/:id", h.ReverseConsumption)
	rg.POST("/consumptions/:id/dispatch", h.Dispatch)
	rg.GET("/tables/:id/tab", h.TableTab)
	rg.POST("/tables/:id/payments", h.SettlePayment)
	rg.POST("/tables/:id/tab/close", h.CloseTab)
	rg.GET("/reports/top-products", h.TopProducts)
	rg.GET("/reports/income", h.TotalIncome)
	rg.GET("/reports/income-by-table", h.IncomeByTable)
}

type guestOrderRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

func (h *Handler) GuestOrder(c *gin.Context) {
	tableID := c.GetInt64("table_id")
	if tableID == 0 {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "session is not bound to a table")
		return
	}

	var req guestOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	line, err := h.svc.RecordConsumption(c.Request.Context(), tableID, RecordConsumptionRequest{
		GuestID:   c.GetInt64("guest_id"),
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, line)
}

func (h *Handler) GuestTab(c *gin.Context) {
	tableID := c.GetInt64("table_id")
	if tableID == 0 {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "session is not bound to a table")
		return
	}

	summary, err := h.svc.TabSummary(c.Request.Context(), tableID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, summary)
}

func (h *Handler) RecordConsumption(c *gin.Context) {
	tableID, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid table id")
		return
	}

	var req RecordConsumptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	line, err := h.svc.RecordConsumption(c.Request.Context(), tableID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, line)
}

func (h *Handler) ReverseConsumption(c *gin.Context) {
	lineID, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid consumption id")
		return
	}

	if err := h.svc.ReverseConsumption(c.Request.Context(), lineID); err != nil {
		h.respondError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) Dispatch(c *gin.Context) {
	lineID, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid consumption id")
		return
	}

	if err := h.svc.SetDispatched(c.Request.Context(), lineID, true); err != nil {
		h.respondError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) TableTab(c *gin.Context) {
	tableID, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid table id")
		return
	}

	summary, err := h.svc.TabSummary(c.Request.Context(), tableID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, summary)
}

func (h *Handler) SettlePayment(c *gin.Context) {
	tableID, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid table id")
		return
	}

	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	payment, err := h.svc.SettlePayment(c.Request.Context(), tableID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, payment)
}

func (h *Handler) CloseTab(c *gin.Context) {
	tableID, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid table id")
		return
	}

	summary, err := h.svc.CloseTab(c.Request.Context(), tableID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, summary)
}

func (h *Handler) TopProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	rows, err := h.svc.TopProducts(c.Request.Context(), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows)
}

func (h *Handler) TotalIncome(c *gin.Context) {
	total, err := h.svc.TotalIncome(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"total_income": total})
}

func (h *Handler) IncomeByTable(c *gin.Context) {
	rows, err := h.svc.IncomeByTable(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows)
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "record not found")
	case errors.Is(err, ErrInvalidQuantity):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "quantity must be positive")
	case errors.Is(err, ErrInvalidAmount):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "amount must be positive")
	case errors.Is(err, ErrOutOfStock):
		response.Error(c, http.StatusConflict, "OUT_OF_STOCK", "insufficient stock")
	case errors.Is(err, ErrProductInactive):
		response.Error(c, http.StatusConflict, "PRODUCT_INACTIVE", "product is not active")
	case errors.Is(err, ErrNoOpenTab):
		response.Error(c, http.StatusNotFound, "NO_OPEN_TAB", "table has no open tab")
	case errors.Is(err, ErrConflict):
		response.Error(c, http.StatusConflict, "CONFLICT", "concurrent update, retry the request")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

func parseID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
