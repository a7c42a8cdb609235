package booking

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusbook/classroom-booking-backend/internal/metrics"
	"github.com/campusbook/classroom-booking-backend/internal/resource"
)

// fakeRepository is a stateful in-memory Repository that mimics the
// conflict behavior and the read-side resource join of the real one.
type fakeRepository struct {
	mu        sync.Mutex
	bookings  map[string]*Booking
	resources map[string]*resource.Resource
	nextID    int
}

func newFakeRepository(resources map[string]*resource.Resource) *fakeRepository {
	return &fakeRepository{
		bookings:  make(map[string]*Booking),
		resources: resources,
	}
}

// join fills in the resource display fields the SQL repository reads
// through its join on every fetch.
func (r *fakeRepository) join(b Booking) *Booking {
	if res, ok := r.resources[b.ResourceID]; ok {
		b.ResourceName = res.Name
		b.ResourceLoc = res.Location
		b.ResourceCap = res.Capacity
	}
	return &b
}

func (r *fakeRepository) activeOn(resourceID, excludeID string) []*Booking {
	var out []*Booking
	for _, b := range r.bookings {
		if b.ResourceID == resourceID && b.ID != excludeID {
			out = append(out, b)
		}
	}
	return out
}

func (r *fakeRepository) CreateExclusive(_ context.Context, b *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if conflict := FindConflict(b.StartTime, b.EndTime, r.activeOn(b.ResourceID, ""), ""); conflict != nil {
		return conflict
	}

	r.nextID++
	b.ID = fmt.Sprintf("booking-%d", r.nextID)
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = b.CreatedAt

	stored := *b
	r.bookings[b.ID] = &stored
	return nil
}

func (r *fakeRepository) UpdateExclusive(_ context.Context, b *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bookings[b.ID]; !ok {
		return ErrNotFound
	}
	if b.Status.Active() {
		if conflict := FindConflict(b.StartTime, b.EndTime, r.activeOn(b.ResourceID, b.ID), ""); conflict != nil {
			return conflict
		}
	}

	stored := *b
	stored.UpdatedAt = time.Now().UTC()
	r.bookings[b.ID] = &stored
	return nil
}

func (r *fakeRepository) GetByID(_ context.Context, id string) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r.join(*b), nil
}

func (r *fakeRepository) List(_ context.Context, filter Filter) ([]*Booking, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Booking
	for _, b := range r.bookings {
		if filter.UserID != "" && b.UserID != filter.UserID {
			continue
		}
		if filter.ResourceID != "" && b.ResourceID != filter.ResourceID {
			continue
		}
		if filter.Status != "" && string(b.Status) != filter.Status {
			continue
		}
		out = append(out, r.join(*b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, len(out), nil
}

// fakeResourceService resolves resources from a fixed map.
type fakeResourceService struct {
	resources map[string]*resource.Resource
}

func (s *fakeResourceService) GetByID(_ context.Context, id string) (*resource.Resource, error) {
	res, ok := s.resources[id]
	if !ok {
		return nil, resource.ErrNotFound
	}
	return res, nil
}

func (s *fakeResourceService) Create(context.Context, resource.CreateRequest) (*resource.Resource, error) {
	panic("not used")
}

func (s *fakeResourceService) List(context.Context, resource.Filter) ([]*resource.Resource, int, error) {
	panic("not used")
}

func (s *fakeResourceService) Update(context.Context, string, resource.UpdateRequest) (*resource.Resource, error) {
	panic("not used")
}

func (s *fakeResourceService) Delete(context.Context, string) error {
	panic("not used")
}

// fakeRecorder captures audit actions synchronously.
type fakeRecorder struct {
	mu      sync.Mutex
	actions []string
}

func (r *fakeRecorder) Record(action, _, _, _ string, _ map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, action)
}

func (r *fakeRecorder) Actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.actions...)
}

type fixture struct {
	service  Service
	repo     *fakeRepository
	recorder *fakeRecorder
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	catalog := map[string]*resource.Resource{
		"room-101": {ID: "room-101", Name: "Room 101", Location: "Building A", Capacity: 30},
	}
	repo := newFakeRepository(catalog)
	recorder := &fakeRecorder{}
	resources := &fakeResourceService{resources: catalog}

	now := time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)
	svc := NewService(repo, resources, recorder).(*service)
	svc.now = func() time.Time { return now }

	return &fixture{service: svc, repo: repo, recorder: recorder, now: now}
}

func (f *fixture) create(t *testing.T, userID string, start, end time.Time, attendees int) *Booking {
	t.Helper()
	b, err := f.service.Create(context.Background(), CreateRequest{
		UserID:         userID,
		ResourceID:     "room-101",
		StartTime:      start,
		EndTime:        end,
		AttendeesCount: attendees,
	})
	require.NoError(t, err)
	return b
}

func TestCreateBookingScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Room capacity 30. A: 10:00-12:00 with 25 attendees succeeds pending.
	a := f.create(t, "alice", at(10), at(12), 25)
	assert.Equal(t, StatusPending, a.Status)
	assert.Equal(t, "Room 101", a.ResourceName)
	assert.Equal(t, "Building A", a.ResourceLoc)
	assert.Equal(t, 30, a.ResourceCap)

	// B: 11:00-13:00 collides with A.
	_, err := f.service.Create(ctx, CreateRequest{
		UserID: "bob", ResourceID: "room-101",
		StartTime: at(11), EndTime: at(13), AttendeesCount: 10,
	})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, a.ID, conflict.BookingID)
	assert.Equal(t, at(10), conflict.StartTime)
	assert.Equal(t, at(12), conflict.EndTime)

	// C: 12:00-13:00 is boundary-adjacent and succeeds.
	f.create(t, "bob", at(12), at(13), 10)

	// Cancel A, then D on A's exact slot succeeds.
	cancelled := "cancelled"
	_, err = f.service.Update(ctx, a.ID, UpdateRequest{Status: &cancelled}, "admin", true)
	require.NoError(t, err)

	f.create(t, "carol", at(10), at(12), 5)
}

func TestCreateBookingValidationOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("unknown resource", func(t *testing.T) {
		_, err := f.service.Create(ctx, CreateRequest{
			UserID: "alice", ResourceID: "nope",
			StartTime: at(10), EndTime: at(12), AttendeesCount: 1,
		})
		assert.ErrorIs(t, err, ErrResourceNotFound)
	})

	t.Run("capacity beats bad time range", func(t *testing.T) {
		// Capacity violation is reported even though the range is also
		// invalid; the checks run in a fixed order.
		_, err := f.service.Create(ctx, CreateRequest{
			UserID: "alice", ResourceID: "room-101",
			StartTime: at(12), EndTime: at(10), AttendeesCount: 100,
		})
		var capErr *CapacityError
		require.ErrorAs(t, err, &capErr)
		assert.Equal(t, 100, capErr.Requested)
		assert.Equal(t, 30, capErr.Capacity)
		assert.Equal(t, "attendees count (100) exceeds resource capacity (30)", capErr.Error())
	})

	t.Run("invalid range before past check", func(t *testing.T) {
		_, err := f.service.Create(ctx, CreateRequest{
			UserID: "alice", ResourceID: "room-101",
			StartTime: at(12), EndTime: at(12), AttendeesCount: 1,
		})
		assert.ErrorIs(t, err, ErrInvalidTimeRange)
	})

	t.Run("start in the past", func(t *testing.T) {
		_, err := f.service.Create(ctx, CreateRequest{
			UserID: "alice", ResourceID: "room-101",
			StartTime: f.now.Add(-time.Hour), EndTime: f.now.Add(time.Hour), AttendeesCount: 1,
		})
		assert.ErrorIs(t, err, ErrStartTimePast)
	})

	t.Run("zero attendees", func(t *testing.T) {
		_, err := f.service.Create(ctx, CreateRequest{
			UserID: "alice", ResourceID: "room-101",
			StartTime: at(10), EndTime: at(12), AttendeesCount: 0,
		})
		assert.ErrorIs(t, err, ErrInvalidAttendees)
	})
}

func TestCreateBookingRepeatIsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.create(t, "alice", at(10), at(12), 5)

	// The same request again is a new booking attempt, and must collide
	// with the one just created.
	_, err := f.service.Create(ctx, CreateRequest{
		UserID: "alice", ResourceID: "room-101",
		StartTime: at(10), EndTime: at(12), AttendeesCount: 5,
	})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, first.ID, conflict.BookingID)
}

func TestUpdateBookingPermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b := f.create(t, "alice", at(10), at(12), 5)

	t.Run("stranger is forbidden", func(t *testing.T) {
		notes := "mine now"
		_, err := f.service.Update(ctx, b.ID, UpdateRequest{Notes: &notes}, "mallory", false)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("owner may amend fields", func(t *testing.T) {
		notes := "projector needed"
		updated, err := f.service.Update(ctx, b.ID, UpdateRequest{Notes: &notes}, "alice", false)
		require.NoError(t, err)
		assert.Equal(t, "projector needed", updated.Notes)
	})

	t.Run("owner cannot confirm own booking", func(t *testing.T) {
		confirmed := "confirmed"
		_, err := f.service.Update(ctx, b.ID, UpdateRequest{Status: &confirmed}, "alice", false)
		assert.ErrorIs(t, err, ErrCancellationOnly)
	})

	t.Run("admin confirms", func(t *testing.T) {
		confirmed := "confirmed"
		updated, err := f.service.Update(ctx, b.ID, UpdateRequest{Status: &confirmed}, "admin", true)
		require.NoError(t, err)
		assert.Equal(t, StatusConfirmed, updated.Status)
	})

	t.Run("unknown booking", func(t *testing.T) {
		notes := "x"
		_, err := f.service.Update(ctx, "missing", UpdateRequest{Notes: &notes}, "alice", false)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUpdateBookingTimeChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b := f.create(t, "alice", at(10), at(12), 5)
	other := f.create(t, "bob", at(13), at(14), 5)

	t.Run("no past check without time change", func(t *testing.T) {
		// The booking is in the future here, but the point holds: an
		// update that leaves start untouched never trips the past check.
		attendees := 10
		_, err := f.service.Update(ctx, b.ID, UpdateRequest{AttendeesCount: &attendees}, "alice", false)
		require.NoError(t, err)
	})

	t.Run("moved interval collides with neighbor", func(t *testing.T) {
		start, end := at(13), at(15)
		_, err := f.service.Update(ctx, b.ID, UpdateRequest{StartTime: &start, EndTime: &end}, "alice", false)
		var conflict *ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, other.ID, conflict.BookingID)
	})

	t.Run("self overlap is excluded", func(t *testing.T) {
		// Shrinking within its own slot must not conflict with itself.
		start, end := at(10), at(11)
		updated, err := f.service.Update(ctx, b.ID, UpdateRequest{StartTime: &start, EndTime: &end}, "alice", false)
		require.NoError(t, err)
		assert.Equal(t, at(11), updated.EndTime)
	})

	t.Run("effective range validated across patch and existing", func(t *testing.T) {
		// Only end is patched; it must still be after the existing start.
		end := at(9)
		_, err := f.service.Update(ctx, b.ID, UpdateRequest{EndTime: &end}, "alice", false)
		assert.ErrorIs(t, err, ErrInvalidTimeRange)
	})

	t.Run("capacity rechecked on attendee change", func(t *testing.T) {
		attendees := 31
		_, err := f.service.Update(ctx, b.ID, UpdateRequest{AttendeesCount: &attendees}, "alice", false)
		var capErr *CapacityError
		require.ErrorAs(t, err, &capErr)
		assert.Equal(t, 31, capErr.Requested)
	})
}

func TestUpdateBookingTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pending := "pending"
	confirmed := "confirmed"
	cancelled := "cancelled"

	t.Run("confirmed cannot go back to pending", func(t *testing.T) {
		b := f.create(t, "alice", at(10), at(12), 5)
		_, err := f.service.Update(ctx, b.ID, UpdateRequest{Status: &confirmed}, "admin", true)
		require.NoError(t, err)

		_, err = f.service.Update(ctx, b.ID, UpdateRequest{Status: &pending}, "admin", true)
		var trErr *InvalidTransitionError
		require.ErrorAs(t, err, &trErr)
		assert.Equal(t, StatusConfirmed, trErr.From)
		assert.Equal(t, StatusPending, trErr.To)
	})

	t.Run("cancelled is terminal", func(t *testing.T) {
		b := f.create(t, "alice", at(13), at(14), 5)
		_, err := f.service.Update(ctx, b.ID, UpdateRequest{Status: &cancelled}, "admin", true)
		require.NoError(t, err)

		for _, target := range []string{"pending", "confirmed"} {
			target := target
			_, err = f.service.Update(ctx, b.ID, UpdateRequest{Status: &target}, "admin", true)
			var trErr *InvalidTransitionError
			assert.ErrorAs(t, err, &trErr)
		}
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		b := f.create(t, "alice", at(15), at(16), 5)
		updated, err := f.service.Update(ctx, b.ID, UpdateRequest{Status: &pending}, "alice", false)
		require.NoError(t, err)
		assert.Equal(t, StatusPending, updated.Status)
	})
}

func TestSelfCancellationWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cancelled := "cancelled"

	t.Run("owner cancels with enough lead time", func(t *testing.T) {
		b := f.create(t, "alice", f.now.Add(25*time.Hour), f.now.Add(26*time.Hour), 5)
		assert.True(t, f.service.CanCancel(b, "alice", false))

		updated, err := f.service.Update(ctx, b.ID, UpdateRequest{Status: &cancelled}, "alice", false)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, updated.Status)
	})

	t.Run("owner blocked inside 24 hours", func(t *testing.T) {
		b := f.create(t, "alice", f.now.Add(23*time.Hour), f.now.Add(24*time.Hour), 5)
		assert.False(t, f.service.CanCancel(b, "alice", false))

		_, err := f.service.Update(ctx, b.ID, UpdateRequest{Status: &cancelled}, "alice", false)
		assert.ErrorIs(t, err, ErrCancellationLate)
	})

	t.Run("admin cancels regardless of lead time", func(t *testing.T) {
		b := f.create(t, "alice", f.now.Add(time.Hour), f.now.Add(2*time.Hour), 5)
		assert.True(t, f.service.CanCancel(b, "admin", true))

		updated, err := f.service.Update(ctx, b.ID, UpdateRequest{Status: &cancelled}, "admin", true)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, updated.Status)
	})

	t.Run("cancelled booking cannot be cancelled again", func(t *testing.T) {
		b := f.create(t, "alice", f.now.Add(48*time.Hour), f.now.Add(49*time.Hour), 5)
		_, err := f.service.Update(ctx, b.ID, UpdateRequest{Status: &cancelled}, "alice", false)
		require.NoError(t, err)

		got, err := f.service.GetByID(ctx, b.ID, "alice", false)
		require.NoError(t, err)
		assert.False(t, f.service.CanCancel(got, "alice", false))
		assert.False(t, f.service.CanCancel(got, "admin", true))
	})

	t.Run("stranger can never cancel", func(t *testing.T) {
		b := f.create(t, "alice", f.now.Add(48*time.Hour), f.now.Add(49*time.Hour), 5)
		assert.False(t, f.service.CanCancel(b, "mallory", false))
	})
}

func TestListBookingScoping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.create(t, "alice", at(10), at(11), 1)
	f.create(t, "bob", at(11), at(12), 1)
	f.create(t, "bob", at(12), at(13), 1)

	t.Run("non-admin sees only their own", func(t *testing.T) {
		bookings, total, err := f.service.List(ctx, Filter{}, "bob", false)
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		for _, b := range bookings {
			assert.Equal(t, "bob", b.UserID)
		}
	})

	t.Run("non-admin cannot widen with all", func(t *testing.T) {
		_, total, err := f.service.List(ctx, Filter{All: true, UserID: "alice"}, "bob", false)
		require.NoError(t, err)
		assert.Equal(t, 2, total)
	})

	t.Run("admin defaults to own", func(t *testing.T) {
		_, total, err := f.service.List(ctx, Filter{}, "admin", true)
		require.NoError(t, err)
		assert.Equal(t, 0, total)
	})

	t.Run("admin with all sees everything", func(t *testing.T) {
		_, total, err := f.service.List(ctx, Filter{All: true}, "admin", true)
		require.NoError(t, err)
		assert.Equal(t, 3, total)
	})

	t.Run("admin with all filters by user", func(t *testing.T) {
		_, total, err := f.service.List(ctx, Filter{All: true, UserID: "alice"}, "admin", true)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
	})
}

func TestGetBookingOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b := f.create(t, "alice", at(10), at(11), 1)

	_, err := f.service.GetByID(ctx, b.ID, "alice", false)
	assert.NoError(t, err)

	_, err = f.service.GetByID(ctx, b.ID, "admin", true)
	assert.NoError(t, err)

	_, err = f.service.GetByID(ctx, b.ID, "mallory", false)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestCancellationMetricCountsTransitionsOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cancelled := "cancelled"

	b := f.create(t, "alice", f.now.Add(48*time.Hour), f.now.Add(49*time.Hour), 1)

	before := testutil.ToFloat64(metrics.BookingCancellationsTotal)

	_, err := f.service.Update(ctx, b.ID, UpdateRequest{Status: &cancelled}, "admin", true)
	require.NoError(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.BookingCancellationsTotal))

	// Re-sending cancelled is a legal no-op and must not count again.
	_, err = f.service.Update(ctx, b.ID, UpdateRequest{Status: &cancelled}, "admin", true)
	require.NoError(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.BookingCancellationsTotal))
}

func TestBookingAuditActions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b := f.create(t, "alice", at(10), at(11), 1)

	confirmed := "confirmed"
	_, err := f.service.Update(ctx, b.ID, UpdateRequest{Status: &confirmed}, "admin", true)
	require.NoError(t, err)

	cancelled := "cancelled"
	_, err = f.service.Update(ctx, b.ID, UpdateRequest{Status: &cancelled}, "admin", true)
	require.NoError(t, err)

	assert.Equal(t, []string{"create_booking", "update_booking", "cancel_booking"}, f.recorder.Actions())
}
