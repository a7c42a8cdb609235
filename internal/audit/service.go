package audit

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Recorder emits audit entries for completed actions. Recording is
// best-effort: it must never block or fail the primary operation, so
// implementations swallow storage errors after logging them.
type Recorder interface {
	Record(action, actorUserID, targetType, targetID string, meta map[string]any)
}

// Service combines recording with the admin-facing listing.
type Service interface {
	Recorder
	List(ctx context.Context, filter Filter) ([]*Entry, int, error)
}

type service struct {
	repo    Repository
	logger  *zap.Logger
	timeout time.Duration
}

// NewService creates the audit service. The recorder writes asynchronously
// with its own timeout so a slow audit store cannot delay request handling.
func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{
		repo:    repo,
		logger:  logger,
		timeout: 5 * time.Second,
	}
}

func (s *service) Record(action, actorUserID, targetType, targetID string, meta map[string]any) {
	e := &Entry{
		Action:      action,
		ActorUserID: actorUserID,
		TargetType:  targetType,
		TargetID:    targetID,
		Meta:        meta,
	}

	// Detached from the request context on purpose: the request may finish
	// (or be cancelled) before the insert completes.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		if err := s.repo.Insert(ctx, e); err != nil {
			s.logger.Warn("audit record failed",
				zap.String("action", action),
				zap.String("actor", actorUserID),
				zap.Error(err),
			)
		}
	}()
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Entry, int, error) {
	return s.repo.List(ctx, filter)
}
