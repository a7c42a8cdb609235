package resource

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, res *Resource) error
	GetByID(ctx context.Context, id string) (*Resource, error)
	List(ctx context.Context, filter Filter) ([]*Resource, int, error)
	Update(ctx context.Context, res *Resource) error
	// Delete removes the resource; its bookings are removed by the
	// ON DELETE CASCADE constraint on public.bookings.
	Delete(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

// availableExpr reports whether no active booking covers now().
const availableExpr = `NOT EXISTS (
	SELECT 1 FROM public.bookings b
	WHERE b.resource_id = r.id
	  AND b.status <> 'cancelled'
	  AND b.start_time <= now()
	  AND b.end_time > now()
) AS available`

func (r *pgxRepository) Create(ctx context.Context, res *Resource) error {
	const query = `
		INSERT INTO public.resources (name, location, capacity, amenities, tags, images, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := r.pool.QueryRow(ctx, query,
		res.Name, res.Location, res.Capacity, res.Amenities, res.Tags, res.Images, res.CreatedBy).
		Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		return fmt.Errorf("create resource failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Resource, error) {
	query := `
		SELECT r.id, r.name, r.location, r.capacity, r.amenities, r.tags, r.images,
		       r.created_by, r.created_at, ` + availableExpr + `
		FROM public.resources r
		WHERE r.id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)

	var res Resource
	if err := row.Scan(&res.ID, &res.Name, &res.Location, &res.Capacity, &res.Amenities,
		&res.Tags, &res.Images, &res.CreatedBy, &res.CreatedAt, &res.Available); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get resource failed: %w", err)
	}
	return &res, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Resource, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(
		"r.id", "r.name", "r.location", "r.capacity", "r.amenities", "r.tags", "r.images",
		"r.created_by", "r.created_at", availableExpr,
		"count(*) OVER() as total_count",
	).From("public.resources r")

	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		query = query.Where(squirrel.Or{
			squirrel.ILike{"r.name": pattern},
			squirrel.ILike{"r.location": pattern},
			squirrel.Expr("EXISTS (SELECT 1 FROM unnest(r.tags) t WHERE t ILIKE ?)", pattern),
		})
	}
	if filter.MaxCapacity > 0 {
		query = query.Where(squirrel.LtOrEq{"r.capacity": filter.MaxCapacity})
	}
	if filter.Tag != "" {
		query = query.Where(squirrel.Expr("? = ANY(r.tags)", filter.Tag))
	}

	query = query.OrderBy("r.created_at DESC")

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
		return nil, 0, fmt.Errorf("build list resources query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list resources failed: %w", err)
	}
	defer rows.Close()

	var result []*Resource
	var total int

	for rows.Next() {
		var res Resource
		if err := rows.Scan(&res.ID, &res.Name, &res.Location, &res.Capacity, &res.Amenities,
			&res.Tags, &res.Images, &res.CreatedBy, &res.CreatedAt, &res.Available, &total); err != nil {
			return nil, 0, fmt.Errorf("scan resource failed: %w", err)
		}
		result = append(result, &res)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list resources failed: %w", err)
	}

	return result, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, res *Resource) error {
	const query = `
		UPDATE public.resources
		SET name = $1, location = $2, capacity = $3, amenities = $4, tags = $5, images = $6
		WHERE id = $7
	`
	ct, err := r.pool.Exec(ctx, query,
		res.Name, res.Location, res.Capacity, res.Amenities, res.Tags, res.Images, res.ID)
	if err != nil {
		return fmt.Errorf("update resource failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM public.resources WHERE id = $1`
	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete resource failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
