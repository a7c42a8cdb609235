package audit

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Insert(ctx context.Context, e *Entry) error
	List(ctx context.Context, filter Filter) ([]*Entry, int, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Insert(ctx context.Context, e *Entry) error {
	meta := e.Meta
	if meta == nil {
		meta = map[string]any{}
	}

	// target_id is nullable; pass nil rather than an empty string so the
	// uuid column accepts it.
	var targetID any
	if e.TargetID != "" {
		targetID = e.TargetID
	}

	const query = `
		INSERT INTO public.audit_logs (action, actor_user_id, target_type, target_id, meta)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.pool.QueryRow(ctx, query, e.Action, e.ActorUserID, e.TargetType, targetID, meta).
		Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit entry failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Entry, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(
		"id", "action", "actor_user_id", "coalesce(target_type, '')", "coalesce(target_id::text, '')",
		"meta", "created_at",
		"count(*) OVER() as total_count",
	).From("public.audit_logs")

	if filter.ActorUserID != "" {
		query = query.Where(squirrel.Eq{"actor_user_id": filter.ActorUserID})
	}
	if filter.Action != "" {
		query = query.Where(squirrel.Eq{"action": filter.Action})
	}
	if filter.TargetType != "" {
		query = query.Where(squirrel.Eq{"target_type": filter.TargetType})
	}

	query = query.OrderBy("created_at DESC")

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
		return nil, 0, fmt.Errorf("build list audit query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit entries failed: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	var total int

	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Action, &e.ActorUserID, &e.TargetType, &e.TargetID,
			&e.Meta, &e.CreatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan audit entry failed: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list audit entries failed: %w", err)
	}

	return entries, total, nil
}
