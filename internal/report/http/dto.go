package http

import "time"

// UsageReportRequest defines query parameters for the usage report.
type UsageReportRequest struct {
	From       *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To         *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	ResourceID string     `form:"resource_id" binding:"omitempty,uuid"`
	Format     string     `form:"format" binding:"omitempty,oneof=json csv"`
}
