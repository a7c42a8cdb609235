package report

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	StatusTotals(ctx context.Context, q Query) (StatusTotals, error)
	ResourceUsage(ctx context.Context, q Query) ([]ResourceUsage, error)
	DailyUsage(ctx context.Context, q Query) ([]DailyUsage, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func periodWhere(b squirrel.SelectBuilder, q Query, prefix string) squirrel.SelectBuilder {
	b = b.Where(squirrel.GtOrEq{prefix + "start_time": q.From}).
		Where(squirrel.Lt{prefix + "start_time": q.To})
	if q.ResourceID != "" {
		b = b.Where(squirrel.Eq{prefix + "resource_id": q.ResourceID})
	}
	return b
}

func (r *pgxRepository) StatusTotals(ctx context.Context, q Query) (StatusTotals, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(
		"count(*) FILTER (WHERE status = 'pending')",
		"count(*) FILTER (WHERE status = 'confirmed')",
		"count(*) FILTER (WHERE status = 'cancelled')",
	).From("public.bookings")
	query = periodWhere(query, q, "")

	sql, args, err := query.ToSql()
	if err != nil {
		return StatusTotals{}, fmt.Errorf("build status totals query failed: %w", err)
	}

	var totals StatusTotals
	if err := r.pool.QueryRow(ctx, sql, args...).
		Scan(&totals.Pending, &totals.Confirmed, &totals.Cancelled); err != nil {
		return StatusTotals{}, fmt.Errorf("status totals failed: %w", err)
	}
	return totals, nil
}

func (r *pgxRepository) ResourceUsage(ctx context.Context, q Query) ([]ResourceUsage, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(
		"b.resource_id", "r.name", "count(*)",
		"coalesce(sum(extract(epoch FROM (b.end_time - b.start_time)) / 3600), 0)",
	).
		From("public.bookings b").
		Join("public.resources r ON b.resource_id = r.id")
	query = periodWhere(query, q, "b.")
	query = query.GroupBy("b.resource_id", "r.name").OrderBy("count(*) DESC")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build resource usage query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("resource usage failed: %w", err)
	}
	defer rows.Close()

	var usage []ResourceUsage
	for rows.Next() {
		var u ResourceUsage
		if err := rows.Scan(&u.ResourceID, &u.ResourceName, &u.Bookings, &u.HoursBooked); err != nil {
			return nil, fmt.Errorf("scan resource usage failed: %w", err)
		}
		usage = append(usage, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read resource usage failed: %w", err)
	}
	return usage, nil
}

func (r *pgxRepository) DailyUsage(ctx context.Context, q Query) ([]DailyUsage, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select("date_trunc('day', start_time) AS day", "count(*)").
		From("public.bookings")
	query = periodWhere(query, q, "")
	query = query.GroupBy("day").OrderBy("day ASC")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build daily usage query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("daily usage failed: %w", err)
	}
	defer rows.Close()

	var usage []DailyUsage
	for rows.Next() {
		var u DailyUsage
		if err := rows.Scan(&u.Day, &u.Bookings); err != nil {
			return nil, fmt.Errorf("scan daily usage failed: %w", err)
		}
		usage = append(usage, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read daily usage failed: %w", err)
	}
	return usage, nil
}
