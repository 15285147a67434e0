package guest

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

func (h *Handler) RegisterGuestRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.Me)
	rg.GET("/ranking", h.Ranking)
}

func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/tables/:id/guests", h.TableGuests)
	rg.POST("/guests/:id/silence", h.Silence)
	rg.POST("/guests/:id/unsilence", h.Unsilence)
	rg.DELETE("/guests/:id", h.Evict)
}

func (h *Handler) Me(c *gin.Context) {
	g, err := h.svc.Profile(c.Request.Context(), c.GetInt64("guest_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, g)
}

func (h *Handler) Ranking(c *gin.Context) {
	rows, err := h.svc.Ranking(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows)
}

func (h *Handler) TableGuests(c *gin.Context) {
	tableID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid table id")
		return
	}

	guests, err := h.svc.ListByTable(c.Request.Context(), tableID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, guests)
}

func (h *Handler) Silence(c *gin.Context)   { h.setSilenced(c, true) }
func (h *Handler) Unsilence(c *gin.Context) { h.setSilenced(c, false) }

func (h *Handler) setSilenced(c *gin.Context, silenced bool) {
	guestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid guest id")
		return
	}

	if err := h.svc.Silence(c.Request.Context(), guestID, silenced); err != nil {
		h.respondError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) Evict(c *gin.Context) {
	guestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid guest id")
		return
	}

	if err := h.svc.Evict(c.Request.Context(), guestID, c.Query("reason")); err != nil {
		h.respondError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "guest not found")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
