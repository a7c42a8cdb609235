package booking

import (
	"context"
	"errors"
	"time"

	"github.com/campusbook/classroom-booking-backend/internal/audit"
	"github.com/campusbook/classroom-booking-backend/internal/metrics"
	"github.com/campusbook/classroom-booking-backend/internal/resource"
)

// SelfCancelWindow is the minimum lead time before a booking's start for the
// owner to cancel it themselves. Administrators are not bound by it.
const SelfCancelWindow = 24 * time.Hour

type CreateRequest struct {
	UserID         string
	ResourceID     string
	StartTime      time.Time
	EndTime        time.Time
	AttendeesCount int
	Notes          string
}

type UpdateRequest struct {
	StartTime      *time.Time
	EndTime        *time.Time
	Status         *string
	AttendeesCount *int
	Notes          *string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Booking, error)
	GetByID(ctx context.Context, id string, callerID string, isAdmin bool) (*Booking, error)
	List(ctx context.Context, filter Filter, callerID string, isAdmin bool) ([]*Booking, int, error)
	Update(ctx context.Context, id string, req UpdateRequest, callerID string, isAdmin bool) (*Booking, error)

	// CanCancel reports whether the caller may cancel the booking right now.
	// Pure query, performs no mutation; clients use it to decide whether to
	// offer the cancel action at all.
	CanCancel(b *Booking, callerID string, isAdmin bool) bool
}

type service struct {
	repo       Repository
	resService resource.Service
	recorder   audit.Recorder
	now        func() time.Time
}

func NewService(repo Repository, resService resource.Service, recorder audit.Recorder) Service {
	return &service{
		repo:       repo,
		resService: resService,
		recorder:   recorder,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	// Precondition order is part of the contract: resource existence, then
	// capacity, then time range, then past check, then conflict. Callers
	// rely on getting the first violated rule back.
	res, err := s.resService.GetByID(ctx, req.ResourceID)
	if err != nil {
		if errors.Is(err, resource.ErrNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, err
	}

	if req.AttendeesCount < 1 {
		return nil, ErrInvalidAttendees
	}
	if req.AttendeesCount > res.Capacity {
		return nil, &CapacityError{Requested: req.AttendeesCount, Capacity: res.Capacity}
	}

	if !req.EndTime.After(req.StartTime) {
		return nil, ErrInvalidTimeRange
	}
	if req.StartTime.Before(s.now()) {
		return nil, ErrStartTimePast
	}

	b := &Booking{
		ResourceID:     req.ResourceID,
		UserID:         req.UserID,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Status:         StatusPending,
		AttendeesCount: req.AttendeesCount,
		Notes:          req.Notes,
	}

	// The conflict check runs inside the repository's locked transaction so
	// two concurrent requests cannot both pass against a stale snapshot.
	if err := s.repo.CreateExclusive(ctx, b); err != nil {
		return nil, err
	}

	created, err := s.repo.GetByID(ctx, b.ID)
	if err != nil {
		return nil, err
	}

	metrics.RecordBookingCreated()
	s.recorder.Record("create_booking", req.UserID, audit.TargetBooking, created.ID, map[string]any{
		"resource_id": created.ResourceID,
		"start_time":  created.StartTime,
		"end_time":    created.EndTime,
	})

	return created, nil
}

func (s *service) GetByID(ctx context.Context, id string, callerID string, isAdmin bool) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && b.UserID != callerID {
		return nil, ErrPermissionDenied
	}
	return b, nil
}

func (s *service) List(ctx context.Context, filter Filter, callerID string, isAdmin bool) ([]*Booking, int, error) {
	// Everyone defaults to their own bookings; only an admin asking
	// explicitly for all (optionally narrowed to one user) gets more.
	if !isAdmin || !filter.All {
		filter.UserID = callerID
	}
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest, callerID string, isAdmin bool) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	isOwner := b.UserID == callerID
	if !isOwner && !isAdmin {
		return nil, ErrPermissionDenied
	}

	newStart := b.StartTime
	newEnd := b.EndTime
	timeChanged := false
	if req.StartTime != nil {
		newStart = *req.StartTime
		timeChanged = true
	}
	if req.EndTime != nil {
		newEnd = *req.EndTime
		timeChanged = true
	}

	if timeChanged {
		if !newEnd.After(newStart) {
			return nil, ErrInvalidTimeRange
		}
		// The past check applies only when the patch moves the start; an
		// untouched start of an old booking stays amendable.
		if req.StartTime != nil && req.StartTime.Before(s.now()) {
			return nil, ErrStartTimePast
		}
		b.StartTime = newStart
		b.EndTime = newEnd
	}

	if req.AttendeesCount != nil {
		if *req.AttendeesCount < 1 {
			return nil, ErrInvalidAttendees
		}
		res, err := s.resService.GetByID(ctx, b.ResourceID)
		if err != nil {
			return nil, err
		}
		if *req.AttendeesCount > res.Capacity {
			return nil, &CapacityError{Requested: *req.AttendeesCount, Capacity: res.Capacity}
		}
		b.AttendeesCount = *req.AttendeesCount
	}

	if req.Notes != nil {
		b.Notes = *req.Notes
	}

	cancelled := false
	if req.Status != nil {
		if !ValidStatus(*req.Status) {
			return nil, ErrInvalidStatus
		}
		to := Status(*req.Status)
		if !CanTransition(b.Status, to) {
			return nil, &InvalidTransitionError{From: b.Status, To: to}
		}
		if to != b.Status {
			// Owners without the admin role may only cancel, and only
			// outside the self-cancellation window.
			if !isAdmin {
				if to != StatusCancelled {
					return nil, ErrCancellationOnly
				}
				if !s.canCancelAt(b, s.now()) {
					return nil, ErrCancellationLate
				}
			}
			cancelled = to == StatusCancelled
			b.Status = to
		}
	}

	if err := s.repo.UpdateExclusive(ctx, b); err != nil {
		return nil, err
	}

	updated, err := s.repo.GetByID(ctx, b.ID)
	if err != nil {
		return nil, err
	}

	// cancelled is set only when the status actually changed, so a patch
	// that re-sends cancelled neither counts nor audits a new cancellation.
	action := "update_booking"
	if cancelled {
		action = "cancel_booking"
		metrics.RecordBookingCancellation()
	}
	s.recorder.Record(action, callerID, audit.TargetBooking, updated.ID, map[string]any{
		"resource_id": updated.ResourceID,
		"status":      string(updated.Status),
	})

	return updated, nil
}

func (s *service) CanCancel(b *Booking, callerID string, isAdmin bool) bool {
	if !b.Status.Active() {
		return false
	}
	if isAdmin {
		return true
	}
	if b.UserID != callerID {
		return false
	}
	return s.canCancelAt(b, s.now())
}

// canCancelAt is the 24-hour self-service gate.
func (s *service) canCancelAt(b *Booking, now time.Time) bool {
	return b.StartTime.Sub(now) >= SelfCancelWindow
}
