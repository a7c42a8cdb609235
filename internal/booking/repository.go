package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	// CreateExclusive inserts the booking after re-checking for overlaps
	// inside a transaction that holds a per-resource advisory lock. On
	// collision it returns a *ConflictError describing the blocking booking.
	CreateExclusive(ctx context.Context, b *Booking) error

	// UpdateExclusive persists the booking under the same per-resource lock,
	// re-checking overlaps while excluding the booking's own id.
	UpdateExclusive(ctx context.Context, b *Booking) error

	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

const bookingColumns = `b.id, b.resource_id, r.name, r.location, r.capacity,
	b.user_id, u.name, u.username,
	b.start_time, b.end_time, b.status, b.attendees_count, b.notes,
	b.created_at, b.updated_at`

func scanBooking(row pgx.Row, b *Booking, extra ...any) error {
	dest := []any{
		&b.ID, &b.ResourceID, &b.ResourceName, &b.ResourceLoc, &b.ResourceCap,
		&b.UserID, &b.UserName, &b.Username,
		&b.StartTime, &b.EndTime, &b.Status, &b.AttendeesCount, &b.Notes,
		&b.CreatedAt, &b.UpdatedAt,
	}
	dest = append(dest, extra...)
	return row.Scan(dest...)
}

// lockResource serializes concurrent writers on the same resource for the
// duration of the transaction. hashtext folds the UUID into the bigint key
// space pg_advisory_xact_lock expects.
func lockResource(ctx context.Context, tx pgx.Tx, resourceID string) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1::text))`, resourceID); err != nil {
		return fmt.Errorf("acquire resource lock failed: %w", err)
	}
	return nil
}

// findConflictTx reports the first active booking colliding with
// [start, end) on the resource, or nil. Must run inside the locked
// transaction so the answer cannot go stale before the write.
func findConflictTx(ctx context.Context, tx pgx.Tx, resourceID string, start, end time.Time, excludeID string) (*ConflictError, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select("id", "start_time", "end_time").
		From("public.bookings").
		Where(squirrel.Eq{"resource_id": resourceID}).
		Where(squirrel.NotEq{"status": StatusCancelled}).
		Where(squirrel.Lt{"start_time": end}).
		Where(squirrel.Gt{"end_time": start}).
		Limit(1)

	if excludeID != "" {
		query = query.Where(squirrel.NotEq{"id": excludeID})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build conflict query failed: %w", err)
	}

	var conflict ConflictError
	err = tx.QueryRow(ctx, sql, args...).Scan(&conflict.BookingID, &conflict.StartTime, &conflict.EndTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("check conflict failed: %w", err)
	}
	return &conflict, nil
}

func (r *pgxRepository) CreateExclusive(ctx context.Context, b *Booking) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create booking tx failed: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockResource(ctx, tx, b.ResourceID); err != nil {
		return err
	}

	conflict, err := findConflictTx(ctx, tx, b.ResourceID, b.StartTime, b.EndTime, "")
	if err != nil {
		return err
	}
	if conflict != nil {
		return conflict
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.bookings").
		Columns("resource_id", "user_id", "start_time", "end_time", "status", "attendees_count", "notes").
		Values(b.ResourceID, b.UserID, b.StartTime, b.EndTime, b.Status, b.AttendeesCount, b.Notes).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := tx.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return mapExclusion(ctx, r.pool, b, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create booking tx failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) UpdateExclusive(ctx context.Context, b *Booking) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin update booking tx failed: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockResource(ctx, tx, b.ResourceID); err != nil {
		return err
	}

	// A cancelled booking no longer occupies the slot, so only re-check
	// overlaps when the booking stays active.
	if b.Status.Active() {
		conflict, err := findConflictTx(ctx, tx, b.ResourceID, b.StartTime, b.EndTime, b.ID)
		if err != nil {
			return err
		}
		if conflict != nil {
			return conflict
		}
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.bookings").
		Set("start_time", b.StartTime).
		Set("end_time", b.EndTime).
		Set("status", b.Status).
		Set("attendees_count", b.AttendeesCount).
		Set("notes", b.Notes).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": b.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update booking query failed: %w", err)
	}

	ct, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return mapExclusion(ctx, r.pool, b, err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit update booking tx failed: %w", err)
	}
	return nil
}

// mapExclusion translates a violation of the bookings_no_overlap exclusion
// constraint into a *ConflictError. The constraint is the storage-level
// backstop behind the advisory lock; reaching it is rare but possible when
// writes arrive through paths that skip the lock.
func mapExclusion(ctx context.Context, pool *pgxpool.Pool, b *Booking, err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.ExclusionViolation {
		return fmt.Errorf("write booking failed: %w", err)
	}

	conflict := &ConflictError{}
	lookupErr := pool.QueryRow(ctx, `
		SELECT id, start_time, end_time FROM public.bookings
		WHERE resource_id = $1 AND status <> 'cancelled'
		  AND start_time < $3 AND end_time > $2
		  AND id <> coalesce(nullif($4, ''), '00000000-0000-0000-0000-000000000000')::uuid
		LIMIT 1`,
		b.ResourceID, b.StartTime, b.EndTime, b.ID,
	).Scan(&conflict.BookingID, &conflict.StartTime, &conflict.EndTime)
	if lookupErr != nil {
		// Still a conflict even if the blocking row cannot be identified.
		return &ConflictError{StartTime: b.StartTime, EndTime: b.EndTime}
	}
	return conflict
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM public.bookings b
		JOIN public.resources r ON b.resource_id = r.id
		JOIN public.users u ON b.user_id = u.id
		WHERE b.id = $1
	`
	var b Booking
	if err := scanBooking(r.pool.QueryRow(ctx, query, id), &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return &b, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(
		"b.id", "b.resource_id", "r.name", "r.location", "r.capacity",
		"b.user_id", "u.name", "u.username",
		"b.start_time", "b.end_time", "b.status", "b.attendees_count", "b.notes",
		"b.created_at", "b.updated_at",
		"count(*) OVER() as total_count",
	).
		From("public.bookings b").
		Join("public.resources r ON b.resource_id = r.id").
		Join("public.users u ON b.user_id = u.id")

	if filter.UserID != "" {
		query = query.Where(squirrel.Eq{"b.user_id": filter.UserID})
	}
	if filter.ResourceID != "" {
		query = query.Where(squirrel.Eq{"b.resource_id": filter.ResourceID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"b.status": filter.Status})
	}

	query = query.OrderBy("b.created_at DESC")

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	var total int

	for rows.Next() {
		var b Booking
		if err := scanBooking(rows, &b, &total); err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}

	return bookings, total, nil
}
