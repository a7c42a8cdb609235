package http

import (
	"time"

	"github.com/campusbook/classroom-booking-backend/internal/booking"
	"github.com/campusbook/classroom-booking-backend/internal/pkg/request"
	resHttp "github.com/campusbook/classroom-booking-backend/internal/resource/http"
	userHttp "github.com/campusbook/classroom-booking-backend/internal/user/http"
)

// ListBookingsRequest defines query parameters for listing bookings.
type ListBookingsRequest struct {
	request.ListParams
	ResourceID string `form:"resource_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=pending confirmed cancelled"`
	UserID     string `form:"user_id" binding:"omitempty,uuid"`
	All        bool   `form:"all"`
}

type BookingResponse struct {
	ID             string              `json:"id"`
	Resource       resHttp.ResourceTag `json:"resource"`
	User           userHttp.UserTag    `json:"user"`
	StartTime      time.Time           `json:"start_time"`
	EndTime        time.Time           `json:"end_time"`
	Status         string              `json:"status"`
	AttendeesCount int                 `json:"attendees_count"`
	Notes          string              `json:"notes"`
	CanCancel      bool                `json:"can_cancel"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking, canCancel bool) BookingResponse {
	return BookingResponse{
		ID: b.ID,
		Resource: resHttp.ResourceTag{
			ID:       b.ResourceID,
			Name:     b.ResourceName,
			Location: b.ResourceLoc,
			Capacity: b.ResourceCap,
		},
		User: userHttp.UserTag{
			ID:       b.UserID,
			Name:     b.UserName,
			Username: b.Username,
		},
		StartTime:      b.StartTime,
		EndTime:        b.EndTime,
		Status:         string(b.Status),
		AttendeesCount: b.AttendeesCount,
		Notes:          b.Notes,
		CanCancel:      canCancel,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

// ConflictResponse is the 409 body carrying the colliding booking's interval.
type ConflictResponse struct {
	Error              string             `json:"error"`
	ConflictingBooking ConflictingBooking `json:"conflicting_booking"`
}

type ConflictingBooking struct {
	ID        string    `json:"id,omitempty"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

func NewConflictResponse(e *booking.ConflictError) ConflictResponse {
	return ConflictResponse{
		Error: e.Error(),
		ConflictingBooking: ConflictingBooking{
			ID:        e.BookingID,
			StartTime: e.StartTime,
			EndTime:   e.EndTime,
		},
	}
}

// CreateBookingRequest carries only shape constraints; semantic rules
// (capacity, time range, conflicts) belong to the service, which checks
// them in a fixed order.
type CreateBookingRequest struct {
	ResourceID     string    `json:"resource_id" binding:"required,uuid"`
	StartTime      time.Time `json:"start_time" binding:"required"`
	EndTime        time.Time `json:"end_time" binding:"required"`
	AttendeesCount int       `json:"attendees_count" binding:"required,min=1"`
	Notes          string    `json:"notes"`
}

type UpdateBookingRequest struct {
	StartTime      *time.Time `json:"start_time"`
	EndTime        *time.Time `json:"end_time"`
	Status         *string    `json:"status" binding:"omitempty,oneof=pending confirmed cancelled"`
	AttendeesCount *int       `json:"attendees_count" binding:"omitempty,min=1"`
	Notes          *string    `json:"notes"`
}
