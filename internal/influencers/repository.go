package influencers

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reachloop/reachloop/internal/shared"
)

// Repository defines persistence for influencer profiles.
type Repository interface {
	List(ctx context.Context, limit, offset int) ([]Influencer, int, error)
	Get(ctx context.Context, id string) (*Influencer, error)
	Create(ctx context.Context, inf Influencer) error
	Update(ctx context.Context, inf Influencer) (*Influencer, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const columns = `id, name, handle, platform, followers, niche, is_active, created_at, updated_at`

func (r *repository) List(ctx context.Context, limit, offset int) ([]Influencer, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM influencers`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+columns+` FROM influencers ORDER BY followers DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []Influencer
	for rows.Next() {
		var inf Influencer
		if err := rows.Scan(&inf.ID, &inf.Name, &inf.Handle, &inf.Platform, &inf.Followers,
			&inf.Niche, &inf.IsActive, &inf.CreatedAt, &inf.UpdatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, inf)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repository) Get(ctx context.Context, id string) (*Influencer, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+columns+` FROM influencers WHERE id = $1`, id)
	var inf Influencer
	if err := row.Scan(&inf.ID, &inf.Name, &inf.Handle, &inf.Platform, &inf.Followers,
		&inf.Niche, &inf.IsActive, &inf.CreatedAt, &inf.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &inf, nil
}

func (r *repository) Create(ctx context.Context, inf Influencer) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO influencers (id, name, handle, platform, followers, niche, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		inf.ID, inf.Name, inf.Handle, inf.Platform, inf.Followers, inf.Niche,
		inf.IsActive, inf.CreatedAt, inf.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return shared.ErrDuplicate
		}
	}
	return err
}

func (r *repository) Update(ctx context.Context, inf Influencer) (*Influencer, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE influencers SET name = $2, handle = $3, platform = $4, followers = $5, niche = $6, updated_at = $7
		WHERE id = $1
		RETURNING `+columns,
		inf.ID, inf.Name, inf.Handle, inf.Platform, inf.Followers, inf.Niche, time.Now().UTC())
	var out Influencer
	if err := row.Scan(&out.ID, &out.Name, &out.Handle, &out.Platform, &out.Followers,
		&out.Niche, &out.IsActive, &out.CreatedAt, &out.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM influencers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
