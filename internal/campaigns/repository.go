package campaigns

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reachloop/reachloop/internal/shared"
)

// Repository defines persistence for campaigns.
type Repository interface {
	List(ctx context.Context, limit, offset int) ([]Campaign, int, error)
	Get(ctx context.Context, id string) (*Campaign, error)
	Create(ctx context.Context, c Campaign) error
	Update(ctx context.Context, c Campaign) (*Campaign, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const columns = `id, name, brand, owner_id, budget_cents, status, starts_at, ends_at, created_at, updated_at`

func (r *repository) List(ctx context.Context, limit, offset int) ([]Campaign, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM campaigns`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+columns+` FROM campaigns ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []Campaign
	for rows.Next() {
		var c Campaign
		if err := rows.Scan(&c.ID, &c.Name, &c.Brand, &c.OwnerID, &c.BudgetCents,
			&c.Status, &c.StartsAt, &c.EndsAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repository) Get(ctx context.Context, id string) (*Campaign, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+columns+` FROM campaigns WHERE id = $1`, id)
	var c Campaign
	if err := row.Scan(&c.ID, &c.Name, &c.Brand, &c.OwnerID, &c.BudgetCents,
		&c.Status, &c.StartsAt, &c.EndsAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) Create(ctx context.Context, c Campaign) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO campaigns (id, name, brand, owner_id, budget_cents, status, starts_at, ends_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID, c.Name, c.Brand, c.OwnerID, c.BudgetCents, c.Status,
		c.StartsAt, c.EndsAt, c.CreatedAt, c.UpdatedAt)
	return err
}

func (r *repository) Update(ctx context.Context, c Campaign) (*Campaign, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE campaigns SET name = $2, brand = $3, budget_cents = $4, status = $5, starts_at = $6, ends_at = $7, updated_at = $8
		WHERE id = $1
		RETURNING `+columns,
		c.ID, c.Name, c.Brand, c.BudgetCents, c.Status, c.StartsAt, c.EndsAt, time.Now().UTC())
	var out Campaign
	if err := row.Scan(&out.ID, &out.Name, &out.Brand, &out.OwnerID, &out.BudgetCents,
		&out.Status, &out.StartsAt, &out.EndsAt, &out.CreatedAt, &out.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
