package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"karaoke/internal/config"
	"karaoke/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/reset-night", h.ResetNight)
	rg.GET("/settings", h.Settings)
	rg.PUT("/settings/closing-time", h.SetClosingTime)
	rg.PUT("/settings/autoplay", h.SetAutoplay)
	rg.PUT("/settings/approval-mode", h.SetApprovalMode)
}

func (h *Handler) ResetNight(c *gin.Context) {
	if err := h.svc.ResetNight(c.Request.Context()); err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}
	response.NoContent(c)
}

func (h *Handler) Settings(c *gin.Context) {
	response.Success(c, http.StatusOK, h.svc.Settings())
}

func (h *Handler) SetClosingTime(c *gin.Context) {
	var req struct {
		ClosingTime string `json:"closing_time" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	if err := h.svc.SetClosingTime(req.ClosingTime); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	response.Success(c, http.StatusOK, h.svc.Settings())
}

func (h *Handler) SetAutoplay(c *gin.Context) {
	var req struct {
		Autoplay *bool `json:"autoplay" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	h.svc.SetAutoplay(*req.Autoplay)
	response.Success(c, http.StatusOK, h.svc.Settings())
}

func (h *Handler) SetApprovalMode(c *gin.Context) {
	var req struct {
		Mode config.ApprovalMode `json:"mode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	if err := h.svc.SetApprovalMode(req.Mode); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	response.Success(c, http.StatusOK, h.svc.Settings())
}
