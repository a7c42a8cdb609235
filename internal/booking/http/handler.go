package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusbook/classroom-booking-backend/internal/auth"
	"github.com/campusbook/classroom-booking-backend/internal/booking"
	"github.com/campusbook/classroom-booking-backend/internal/metrics"
	"github.com/campusbook/classroom-booking-backend/internal/pkg/response"
	"github.com/campusbook/classroom-booking-backend/internal/user"
)

type Handler struct {
	service     booking.Service
	userService user.Service
	logger      *zap.Logger
}

func NewHandler(service booking.Service, userService user.Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, userService: userService, logger: logger}
}

// isAdmin resolves the caller's role per request; the token deliberately
// carries no role claim, so a demotion takes effect immediately.
func (h *Handler) isAdmin(c *gin.Context, userID string) bool {
	u, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		return false
	}
	return u.Active && u.IsAdmin()
}

func (h *Handler) List(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}

	callerID := auth.GetUserID(c)
	isAdmin := h.isAdmin(c, callerID)

	filter := booking.Filter{
		UserID:     req.UserID,
		ResourceID: req.ResourceID,
		Status:     req.Status,
		All:        req.All,
		Page:       req.Page,
		PageSize:   req.PageSize,
	}

	bookings, total, err := h.service.List(c.Request.Context(), filter, callerID, isAdmin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list bookings"})
		return
	}

	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b, h.service.CanCancel(b, callerID, isAdmin))
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	callerID := auth.GetUserID(c)

	b, err := h.service.Create(c.Request.Context(), booking.CreateRequest{
		UserID:         callerID,
		ResourceID:     body.ResourceID,
		StartTime:      body.StartTime,
		EndTime:        body.EndTime,
		AttendeesCount: body.AttendeesCount,
		Notes:          body.Notes,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	isAdmin := h.isAdmin(c, callerID)
	c.JSON(http.StatusCreated, NewBookingResponse(b, h.service.CanCancel(b, callerID, isAdmin)))
}

func (h *Handler) Get(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	callerID := auth.GetUserID(c)
	isAdmin := h.isAdmin(c, callerID)

	b, err := h.service.GetByID(c.Request.Context(), id, callerID, isAdmin)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b, h.service.CanCancel(b, callerID, isAdmin)))
}

func (h *Handler) Update(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	var body UpdateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	callerID := auth.GetUserID(c)
	isAdmin := h.isAdmin(c, callerID)

	b, err := h.service.Update(c.Request.Context(), id, booking.UpdateRequest{
		StartTime:      body.StartTime,
		EndTime:        body.EndTime,
		Status:         body.Status,
		AttendeesCount: body.AttendeesCount,
		Notes:          body.Notes,
	}, callerID, isAdmin)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b, h.service.CanCancel(b, callerID, isAdmin)))
}

// respondError maps domain errors onto the HTTP taxonomy. Scheduling
// conflicts are routine outcomes, not faults, so they carry the colliding
// interval instead of a bare message and are never logged as errors.
func (h *Handler) respondError(c *gin.Context, err error) {
	var conflict *booking.ConflictError
	if errors.As(err, &conflict) {
		metrics.RecordBookingConflict()
		c.JSON(http.StatusConflict, NewConflictResponse(conflict))
		return
	}

	var capacity *booking.CapacityError
	if errors.As(err, &capacity) {
		c.JSON(http.StatusBadRequest, gin.H{"error": capacity.Error()})
		return
	}

	var transition *booking.InvalidTransitionError
	if errors.As(err, &transition) {
		c.JSON(http.StatusBadRequest, gin.H{"error": transition.Error()})
		return
	}

	response.Error(c, h.logger, err)
}
