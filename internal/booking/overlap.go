package booking

import "time"

// Interval is a half-open time range [Start, End). The end instant itself is
// excluded, so back-to-back bookings on the same resource never conflict.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals intersect:
// [a1,a2) and [b1,b2) overlap iff a1 < b2 AND b1 < a2.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// FindConflict scans existing bookings for the first one whose interval
// overlaps the proposed [start, end) range. Cancelled bookings never block.
// excludeID ignores one booking id, used when re-validating an update of a
// booking against itself. Returns nil when no active booking collides.
//
// The caller is responsible for rejecting malformed ranges (end <= start)
// before calling; the predicate is exact and applies no boundary tolerance.
func FindConflict(start, end time.Time, existing []*Booking, excludeID string) *ConflictError {
	proposed := Interval{Start: start, End: end}
	for _, b := range existing {
		if b.ID == excludeID {
			continue
		}
		if !b.Status.Active() {
			continue
		}
		if Overlaps(proposed, Interval{Start: b.StartTime, End: b.EndTime}) {
			return &ConflictError{
				BookingID: b.ID,
				StartTime: b.StartTime,
				EndTime:   b.EndTime,
			}
		}
	}
	return nil
}
