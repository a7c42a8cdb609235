package audit

import "time"

// Target types for audit entries.
const (
	TargetUser     = "user"
	TargetResource = "resource"
	TargetBooking  = "booking"
	TargetSystem   = "system"
)

// Entry is a single append-only audit record.
type Entry struct {
	ID          string
	Action      string
	ActorUserID string
	TargetType  string
	TargetID    string // empty when the action has no single target
	Meta        map[string]any
	CreatedAt   time.Time
}

// Filter defines parameters for listing audit entries.
type Filter struct {
	ActorUserID string
	Action      string
	TargetType  string
	Page        int
	PageSize    int
}
