package resource

import (
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("resource not found")
	ErrEmptyName       = errors.New("name cannot be empty")
	ErrEmptyLocation   = errors.New("location cannot be empty")
	ErrInvalidCapacity = errors.New("capacity must be at least 1")
)

// Resource represents a bookable physical asset (e.g., Room 101, Physics Lab).
type Resource struct {
	ID        string
	Name      string
	Location  string
	Capacity  int
	Amenities []string
	Tags      []string
	Images    []string
	CreatedBy string // user ID of the creating administrator, attribution only
	CreatedAt time.Time

	// Available reports whether the resource has no active booking covering
	// the time of the query. Populated on reads only.
	Available bool
}

// Filter defines parameters for listing resources.
type Filter struct {
	Query       string // matches name, location, and tags
	MaxCapacity int    // 0 means no capacity filter
	Tag         string
	Page        int
	PageSize    int
}
