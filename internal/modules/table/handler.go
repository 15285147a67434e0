package table

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

// RegisterPublicRoutes mounts the unauthenticated join endpoint reached
// from a scanned QR code.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/join", h.Join)
}

func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/tables", h.CreateTable)
	rg.GET("/tables", h.ListTables)
	rg.POST("/tables/:id/activate", h.Activate)
	rg.POST("/tables/:id/deactivate", h.Deactivate)
}

func (h *Handler) Join(c *gin.Context) {
	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	resp, err := h.svc.Join(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp)
}

func (h *Handler) CreateTable(c *gin.Context) {
	var req CreateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	t, err := h.svc.CreateTable(c.Request.Context(), req.Name)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, t)
}

func (h *Handler) ListTables(c *gin.Context) {
	tables, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, tables)
}

func (h *Handler) Activate(c *gin.Context)   { h.setActive(c, true) }
func (h *Handler) Deactivate(c *gin.Context) { h.setActive(c, false) }

func (h *Handler) setActive(c *gin.Context, active bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid table id")
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
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "table not found")
	case errors.Is(err, ErrTableInactive):
		response.Error(c, http.StatusConflict, "TABLE_INACTIVE", "table is not active")
	case errors.Is(err, ErrNickInvalid):
		response.Error(c, http.StatusBadRequest, "NICK_INVALID", "nickname not allowed")
	case errors.Is(err, ErrNickBanned):
		response.Error(c, http.StatusForbidden, "NICK_BANNED", "nickname is banned")
	case errors.Is(err, ErrNickTaken):
		response.Error(c, http.StatusConflict, "NICK_TAKEN", "nickname already in use")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
