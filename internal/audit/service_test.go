package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRepo struct {
	mu      sync.Mutex
	entries []*Entry
	err     error
	done    chan struct{}
}

func (r *fakeRepo) Insert(_ context.Context, e *Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer close(r.done)

	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, e)
	return nil
}

func (r *fakeRepo) List(_ context.Context, _ Filter) ([]*Entry, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries, len(r.entries), nil
}

func waitDone(t *testing.T, done chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for async audit insert")
	}
}

func TestRecordWritesAsynchronously(t *testing.T) {
	repo := &fakeRepo{done: make(chan struct{})}
	svc := NewService(repo, zap.NewNop())

	svc.Record("create_booking", "user-1", TargetBooking, "booking-1", map[string]any{"k": "v"})
	waitDone(t, repo.done)

	entries, total, err := svc.List(context.Background(), Filter{})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, "create_booking", entries[0].Action)
	assert.Equal(t, "user-1", entries[0].ActorUserID)
	assert.Equal(t, TargetBooking, entries[0].TargetType)
	assert.Equal(t, "booking-1", entries[0].TargetID)
}

func TestRecordSwallowsFailures(t *testing.T) {
	repo := &fakeRepo{done: make(chan struct{}), err: errors.New("audit store down")}
	svc := NewService(repo, zap.NewNop())

	// Must not panic or surface the error to the caller.
	svc.Record("update_booking", "user-1", TargetBooking, "booking-1", nil)
	waitDone(t, repo.done)

	_, total, err := svc.List(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}
