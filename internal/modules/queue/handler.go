package queue

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

// RegisterGuestRoutes mounts the endpoints available to an authenticated
// table guest.
func (h *Handler) RegisterGuestRoutes(rg *gin.RouterGroup) {
	rg.POST("/songs", h.AdmitSong)
	rg.GET("/songs/mine", h.MySongs)
	rg.GET("/songs/:id/wait", h.WaitEstimate)
	rg.DELETE("/songs/:id", h.DeleteOwnSong)
	rg.GET("/queue", h.Queue)
}

// RegisterAdminRoutes mounts the operator endpoints.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/songs", h.AdminAddSong)
	rg.GET("/songs/pending", h.PendingSongs)
	rg.POST("/songs/:id/approve", h.ApproveSong)
	rg.POST("/songs/:id/reject", h.RejectSong)
	rg.POST("/songs/:id/front", h.MoveToFront)
	rg.PUT("/queue/order", h.Reorder)
	rg.POST("/queue/advance", h.Advance)
	rg.GET("/reports/top-songs", h.TopSongs)
}

func (h *Handler) AdmitSong(c *gin.Context) {
	guestID := c.GetInt64("guest_id")

	var req AdmitSongRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	song, err := h.svc.AdmitRequest(c.Request.Context(), guestID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, song)
}

func (h *Handler) MySongs(c *gin.Context) {
	songs, err := h.svc.GuestSongs(c.Request.Context(), c.GetInt64("guest_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, songs)
}

func (h *Handler) WaitEstimate(c *gin.Context) {
	songID, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid song id")
		return
	}

	wait, err := h.svc.EstimateWait(c.Request.Context(), songID)
	if err != nil && !errors.Is(err, ErrNotQueued) {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, WaitEstimate{SongID: songID, WaitSeconds: wait})
}

func (h *Handler) DeleteOwnSong(c *gin.Context) {
	songID, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid song id")
		return
	}

	if err := h.svc.DeleteOwn(c.Request.Context(), c.GetInt64("guest_id"), songID); err != nil {
		h.respondError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) Queue(c *gin.Context) {
	view, err := h.svc.OrderedQueue(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

func (h *Handler) AdminAddSong(c *gin.Context) {
	var req AdmitSongRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	song, err := h.svc.AdminAddSong(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, song)
}

func (h *Handler) PendingSongs(c *gin.Context) {
	songs, err := h.svc.PendingSongs(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, songs)
}

func (h *Handler) ApproveSong(c *gin.Context) {
	songID, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid song id")
		return
	}

	song, err := h.svc.Approve(c.Request.Context(), songID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, song)
}

func (h *Handler) RejectSong(c *gin.Context) {
	songID, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid song id")
		return
	}

	song, err := h.svc.Reject(c.Request.Context(), songID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, song)
}

func (h *Handler) MoveToFront(c *gin.Context) {
	songID, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid song id")
		return
	}

	if err := h.svc.MoveToFront(c.Request.Context(), songID); err != nil {
		h.respondError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) Reorder(c *gin.Context) {
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	if err := h.svc.SetManualOrder(c.Request.Context(), req.SongIDs); err != nil {
		h.respondError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) Advance(c *gin.Context) {
	started, err := h.svc.Advance(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"now_playing": started})
}

func (h *Handler) TopSongs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	rows, err := h.svc.TopSongs(c.Request.Context(), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows)
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "song not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "song belongs to another guest")
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid song request")
	case errors.Is(err, ErrUserSilenced):
		response.Error(c, http.StatusForbidden, "USER_SILENCED", "guest is silenced")
	case errors.Is(err, ErrPastClosing):
		response.Error(c, http.StatusConflict, "PAST_CLOSING", "venue is past closing time")
	case errors.Is(err, ErrNoTimeBudget):
		response.Error(c, http.StatusConflict, "NO_TIME_BUDGET", "not enough time left before closing")
	case errors.Is(err, ErrDuplicateInTable):
		response.Error(c, http.StatusConflict, "DUPLICATE_IN_TABLE", "track already requested at this table")
	case errors.Is(err, ErrInvalidState):
		response.Error(c, http.StatusConflict, "INVALID_STATE", "song is not in a valid state for this action")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

func parseID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
