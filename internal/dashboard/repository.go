package dashboard

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	// CountUpcoming counts a user's active bookings starting within the
	// next seven days.
	CountUpcoming(ctx context.Context, userID string) (int, error)

	// CountAvailableResources counts resources with no active booking
	// covering the current instant.
	CountAvailableResources(ctx context.Context) (int, error)

	// CountPendingApprovals counts bookings awaiting an admin decision.
	CountPendingApprovals(ctx context.Context) (int, error)

	// CountUserBookings counts all of a user's bookings regardless of status.
	CountUserBookings(ctx context.Context, userID string) (int, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) CountUpcoming(ctx context.Context, userID string) (int, error) {
	const query = `
		SELECT count(*) FROM public.bookings
		WHERE user_id = $1
		  AND status <> 'cancelled'
		  AND start_time >= now()
		  AND start_time < now() + interval '7 days'
	`
	var n int
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count upcoming bookings failed: %w", err)
	}
	return n, nil
}

func (r *pgxRepository) CountAvailableResources(ctx context.Context) (int, error) {
	const query = `
		SELECT count(*) FROM public.resources r
		WHERE NOT EXISTS (
			SELECT 1 FROM public.bookings b
			WHERE b.resource_id = r.id
			  AND b.status <> 'cancelled'
			  AND b.start_time <= now()
			  AND b.end_time > now()
		)
	`
	var n int
	if err := r.pool.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count available resources failed: %w", err)
	}
	return n, nil
}

func (r *pgxRepository) CountPendingApprovals(ctx context.Context) (int, error) {
	const query = `SELECT count(*) FROM public.bookings WHERE status = 'pending'`
	var n int
	if err := r.pool.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count pending approvals failed: %w", err)
	}
	return n, nil
}

func (r *pgxRepository) CountUserBookings(ctx context.Context, userID string) (int, error) {
	const query = `SELECT count(*) FROM public.bookings WHERE user_id = $1`
	var n int
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count user bookings failed: %w", err)
	}
	return n, nil
}
