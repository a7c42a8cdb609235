package dashboard

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/campusbook/classroom-booking-backend/internal/pkg/cache"
)

// statsTTL keeps dashboard numbers fresh enough while absorbing page-load
// bursts from the same user.
const statsTTL = 30 * time.Second

// Stats is the per-user dashboard summary.
type Stats struct {
	UpcomingBookings   int  `json:"upcoming_bookings"`
	AvailableResources int  `json:"available_resources"`
	TotalBookings      int  `json:"total_bookings"`
	PendingApprovals   *int `json:"pending_approvals,omitempty"` // admin only
}

type Service interface {
	Stats(ctx context.Context, userID string, isAdmin bool) (*Stats, error)
}

type service struct {
	repo   Repository
	cache  *cache.Client // nil disables caching
	logger *zap.Logger
}

func NewService(repo Repository, cacheClient *cache.Client, logger *zap.Logger) Service {
	return &service{repo: repo, cache: cacheClient, logger: logger}
}

func (s *service) Stats(ctx context.Context, userID string, isAdmin bool) (*Stats, error) {
	key := "dashboard:stats:" + userID

	if s.cache != nil {
		if raw, ok := s.cache.GetString(ctx, key); ok {
			var stats Stats
			if err := json.Unmarshal([]byte(raw), &stats); err == nil {
				return &stats, nil
			}
			s.logger.Warn("dropping malformed cached dashboard stats", zap.String("key", key))
		}
	}

	stats, err := s.compute(ctx, userID, isAdmin)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(stats); err == nil {
			s.cache.SetString(ctx, key, string(raw), statsTTL)
		}
	}

	return stats, nil
}

func (s *service) compute(ctx context.Context, userID string, isAdmin bool) (*Stats, error) {
	upcoming, err := s.repo.CountUpcoming(ctx, userID)
	if err != nil {
		return nil, err
	}
	available, err := s.repo.CountAvailableResources(ctx)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.CountUserBookings(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		UpcomingBookings:   upcoming,
		AvailableResources: available,
		TotalBookings:      total,
	}

	if isAdmin {
		pending, err := s.repo.CountPendingApprovals(ctx)
		if err != nil {
			return nil, err
		}
		stats.PendingApprovals = &pending
	}

	return stats, nil
}
