package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusbook/classroom-booking-backend/internal/pkg/cache"
)

type fakeRepo struct {
	upcoming  int
	available int
	pending   int
	total     int
	err       error
	calls     int
}

func (r *fakeRepo) CountUpcoming(context.Context, string) (int, error) {
	r.calls++
	return r.upcoming, r.err
}

func (r *fakeRepo) CountAvailableResources(context.Context) (int, error) {
	return r.available, r.err
}

func (r *fakeRepo) CountPendingApprovals(context.Context) (int, error) {
	return r.pending, r.err
}

func (r *fakeRepo) CountUserBookings(context.Context, string) (int, error) {
	return r.total, r.err
}

func TestStatsWithoutCache(t *testing.T) {
	repo := &fakeRepo{upcoming: 2, available: 5, pending: 3, total: 7}
	svc := NewService(repo, nil, zap.NewNop())

	t.Run("regular user omits pending approvals", func(t *testing.T) {
		stats, err := svc.Stats(context.Background(), "user-1", false)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.UpcomingBookings)
		assert.Equal(t, 5, stats.AvailableResources)
		assert.Equal(t, 7, stats.TotalBookings)
		assert.Nil(t, stats.PendingApprovals)
	})

	t.Run("admin sees pending approvals", func(t *testing.T) {
		stats, err := svc.Stats(context.Background(), "admin-1", true)
		require.NoError(t, err)
		require.NotNil(t, stats.PendingApprovals)
		assert.Equal(t, 3, *stats.PendingApprovals)
	})

	t.Run("repository errors propagate", func(t *testing.T) {
		broken := &fakeRepo{err: errors.New("db down")}
		svc := NewService(broken, nil, zap.NewNop())
		_, err := svc.Stats(context.Background(), "user-1", false)
		assert.Error(t, err)
	})
}

func TestStatsCaching(t *testing.T) {
	t.Run("cache hit skips the repository", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		repo := &fakeRepo{}
		svc := NewService(repo, cache.Wrap(rdb, zap.NewNop()), zap.NewNop())

		cached, _ := json.Marshal(&Stats{UpcomingBookings: 9, AvailableResources: 4, TotalBookings: 11})
		mock.ExpectGet("dashboard:stats:user-1").SetVal(string(cached))

		stats, err := svc.Stats(context.Background(), "user-1", false)
		require.NoError(t, err)
		assert.Equal(t, 9, stats.UpcomingBookings)
		assert.Zero(t, repo.calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("cache miss computes and stores", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		repo := &fakeRepo{upcoming: 1, available: 2, total: 3}
		svc := NewService(repo, cache.Wrap(rdb, zap.NewNop()), zap.NewNop())

		expected, _ := json.Marshal(&Stats{UpcomingBookings: 1, AvailableResources: 2, TotalBookings: 3})
		mock.ExpectGet("dashboard:stats:user-1").RedisNil()
		mock.ExpectSet("dashboard:stats:user-1", string(expected), statsTTL).SetVal("OK")

		stats, err := svc.Stats(context.Background(), "user-1", false)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.UpcomingBookings)
		assert.Equal(t, 1, repo.calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("malformed cache entry recomputes", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		repo := &fakeRepo{upcoming: 6}
		svc := NewService(repo, cache.Wrap(rdb, zap.NewNop()), zap.NewNop())

		mock.ExpectGet("dashboard:stats:user-1").SetVal("{broken json")
		mock.Regexp().ExpectSet("dashboard:stats:user-1", `.*`, statsTTL).SetVal("OK")

		stats, err := svc.Stats(context.Background(), "user-1", false)
		require.NoError(t, err)
		assert.Equal(t, 6, stats.UpcomingBookings)
		assert.Equal(t, 1, repo.calls)
	})
}
