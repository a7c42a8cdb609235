package report

import (
	"errors"
	"time"
)

var ErrInvalidPeriod = errors.New("report period end must be after start")

// UsageReport summarizes booking activity over a period.
type UsageReport struct {
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	TotalBookings int             `json:"total_bookings"`
	ByStatus      StatusTotals    `json:"by_status"`
	ByResource    []ResourceUsage `json:"by_resource"`
	ByDay         []DailyUsage    `json:"by_day"`
}

type StatusTotals struct {
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Cancelled int `json:"cancelled"`
}

// ResourceUsage counts bookings per resource, busiest first.
type ResourceUsage struct {
	ResourceID   string  `json:"resource_id"`
	ResourceName string  `json:"resource_name"`
	Bookings     int     `json:"bookings"`
	HoursBooked  float64 `json:"hours_booked"`
}

type DailyUsage struct {
	Day      time.Time `json:"day"`
	Bookings int       `json:"bookings"`
}

// Query bounds a usage report. ResourceID narrows to one resource.
type Query struct {
	From       time.Time
	To         time.Time
	ResourceID string
}
