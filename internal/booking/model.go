package booking

import (
	"fmt"
	"net/http"
	"time"

	"github.com/campusbook/classroom-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "booking not found")
	ErrResourceNotFound = apperror.New(http.StatusNotFound, "resource not found")
	ErrInvalidTimeRange = apperror.New(http.StatusBadRequest, "end time must be after start time")
	ErrStartTimePast    = apperror.New(http.StatusBadRequest, "cannot book in the past")
	ErrInvalidStatus    = apperror.New(http.StatusBadRequest, "invalid booking status")
	ErrInvalidAttendees = apperror.New(http.StatusBadRequest, "attendees count must be at least 1")
	ErrPermissionDenied = apperror.New(http.StatusForbidden, "permission denied")
	ErrCancellationOnly = apperror.New(http.StatusForbidden, "only cancellation is allowed on your own booking")
	ErrCancellationLate = apperror.New(http.StatusForbidden, "bookings can only be cancelled at least 24 hours before start")
)

// ConflictError reports that a proposed interval collides with an existing
// active booking on the same resource. It carries the colliding booking so
// clients can propose an alternative slot.
type ConflictError struct {
	BookingID string
	StartTime time.Time
	EndTime   time.Time
}

func (e *ConflictError) Error() string {
	return "this time slot is already booked"
}

// CapacityError reports an attendee count above the resource capacity.
type CapacityError struct {
	Requested int
	Capacity  int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("attendees count (%d) exceeds resource capacity (%d)", e.Requested, e.Capacity)
}

// InvalidTransitionError reports a status change the state machine forbids.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition booking from %s to %s", e.From, e.To)
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// ValidStatus reports whether s is one of the known booking statuses.
func ValidStatus(s string) bool {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether the status change from -> to is legal.
// Cancelled is terminal, and confirmed bookings can only be cancelled.
func CanTransition(from, to Status) bool {
	if from == to {
		return true // no-op, not a transition
	}
	switch from {
	case StatusPending:
		return to == StatusConfirmed || to == StatusCancelled
	case StatusConfirmed:
		return to == StatusCancelled
	}
	return false
}

// Active reports whether a booking in this status blocks other bookings.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

type Booking struct {
	ID             string
	ResourceID     string
	ResourceName   string
	ResourceLoc    string
	ResourceCap    int
	UserID         string
	UserName       string
	Username       string
	StartTime      time.Time
	EndTime        time.Time
	Status         Status
	AttendeesCount int
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Filter struct {
	UserID     string // empty means all users
	ResourceID string
	Status     string
	All        bool // admin only, lifts the own-bookings default
	Page       int
	PageSize   int
}
