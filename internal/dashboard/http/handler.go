package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusbook/classroom-booking-backend/internal/auth"
	"github.com/campusbook/classroom-booking-backend/internal/dashboard"
	"github.com/campusbook/classroom-booking-backend/internal/user"
)

type Handler struct {
	service     dashboard.Service
	userService user.Service
}

func NewHandler(service dashboard.Service, userService user.Service) *Handler {
	return &Handler{service: service, userService: userService}
}

func (h *Handler) Stats(c *gin.Context) {
	userID := auth.GetUserID(c)

	isAdmin := false
	if u, err := h.userService.GetByID(c.Request.Context(), userID); err == nil {
		isAdmin = u.Active && u.IsAdmin()
	}

	stats, err := h.service.Stats(c.Request.Context(), userID, isAdmin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load dashboard stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
