package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

type Service interface {
	Usage(ctx context.Context, q Query) (*UsageReport, error)

	// WriteCSV renders the per-resource section of a report as CSV.
	WriteCSV(w io.Writer, report *UsageReport) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Usage(ctx context.Context, q Query) (*UsageReport, error) {
	if !q.To.After(q.From) {
		return nil, ErrInvalidPeriod
	}

	byStatus, err := s.repo.StatusTotals(ctx, q)
	if err != nil {
		return nil, err
	}
	byResource, err := s.repo.ResourceUsage(ctx, q)
	if err != nil {
		return nil, err
	}
	byDay, err := s.repo.DailyUsage(ctx, q)
	if err != nil {
		return nil, err
	}

	return &UsageReport{
		From:          q.From,
		To:            q.To,
		TotalBookings: byStatus.Pending + byStatus.Confirmed + byStatus.Cancelled,
		ByStatus:      byStatus,
		ByResource:    byResource,
		ByDay:         byDay,
	}, nil
}

func (s *service) WriteCSV(w io.Writer, report *UsageReport) error {
	cw := csv.NewWriter(w)

	header := []string{"resource_id", "resource_name", "bookings", "hours_booked"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header failed: %w", err)
	}

	for _, u := range report.ByResource {
		record := []string{
			u.ResourceID,
			u.ResourceName,
			strconv.Itoa(u.Bookings),
			strconv.FormatFloat(u.HoursBooked, 'f', 2, 64),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record failed: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// DefaultPeriod is the trailing 30-day window used when a report request
// names no explicit bounds.
func DefaultPeriod(now time.Time) (time.Time, time.Time) {
	return now.AddDate(0, 0, -30), now
}
