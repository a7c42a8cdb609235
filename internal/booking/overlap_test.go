package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour int) time.Time {
	return time.Date(2026, 3, 10, hour, 0, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{
			name: "partial overlap",
			a:    Interval{Start: at(10), End: at(12)},
			b:    Interval{Start: at(11), End: at(13)},
			want: true,
		},
		{
			name: "containment",
			a:    Interval{Start: at(9), End: at(17)},
			b:    Interval{Start: at(11), End: at(12)},
			want: true,
		},
		{
			name: "identical intervals",
			a:    Interval{Start: at(10), End: at(12)},
			b:    Interval{Start: at(10), End: at(12)},
			want: true,
		},
		{
			name: "back to back does not conflict",
			a:    Interval{Start: at(8), End: at(10)},
			b:    Interval{Start: at(10), End: at(12)},
			want: false,
		},
		{
			name: "disjoint",
			a:    Interval{Start: at(8), End: at(9)},
			b:    Interval{Start: at(14), End: at(15)},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.a, tt.b))
			// The predicate is symmetric.
			assert.Equal(t, tt.want, Overlaps(tt.b, tt.a))
		})
	}
}

func TestFindConflict(t *testing.T) {
	existing := []*Booking{
		{ID: "b1", StartTime: at(10), EndTime: at(12), Status: StatusConfirmed},
		{ID: "b2", StartTime: at(13), EndTime: at(14), Status: StatusPending},
		{ID: "b3", StartTime: at(15), EndTime: at(16), Status: StatusCancelled},
	}

	t.Run("reports the colliding booking", func(t *testing.T) {
		conflict := FindConflict(at(11), at(13), existing, "")
		require.NotNil(t, conflict)
		assert.Equal(t, "b1", conflict.BookingID)
		assert.Equal(t, at(10), conflict.StartTime)
		assert.Equal(t, at(12), conflict.EndTime)
	})

	t.Run("boundary adjacency is free", func(t *testing.T) {
		assert.Nil(t, FindConflict(at(12), at(13), existing, ""))
	})

	t.Run("cancelled bookings never block", func(t *testing.T) {
		assert.Nil(t, FindConflict(at(15), at(16), existing, ""))
	})

	t.Run("excludes the booking being updated", func(t *testing.T) {
		assert.Nil(t, FindConflict(at(10), at(12), existing, "b1"))

		conflict := FindConflict(at(10), at(14), existing, "b1")
		require.NotNil(t, conflict)
		assert.Equal(t, "b2", conflict.BookingID)
	})

	t.Run("empty set has no conflicts", func(t *testing.T) {
		assert.Nil(t, FindConflict(at(10), at(12), nil, ""))
	})
}

func TestCanTransition(t *testing.T) {
	allowed := [][2]Status{
		{StatusPending, StatusConfirmed},
		{StatusPending, StatusCancelled},
		{StatusConfirmed, StatusCancelled},
		{StatusPending, StatusPending},
		{StatusConfirmed, StatusConfirmed},
		{StatusCancelled, StatusCancelled},
	}
	for _, tr := range allowed {
		assert.True(t, CanTransition(tr[0], tr[1]), "%s -> %s should be allowed", tr[0], tr[1])
	}

	forbidden := [][2]Status{
		{StatusConfirmed, StatusPending},
		{StatusCancelled, StatusPending},
		{StatusCancelled, StatusConfirmed},
	}
	for _, tr := range forbidden {
		assert.False(t, CanTransition(tr[0], tr[1]), "%s -> %s should be rejected", tr[0], tr[1])
	}
}
