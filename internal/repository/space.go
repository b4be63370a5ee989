package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hivemindhq/hivemind/internal/domain"
)

type SpaceRepository struct {
	pool *pgxpool.Pool
}

func NewSpaceRepository(pool *pgxpool.Pool) *SpaceRepository {
	return &SpaceRepository{pool: pool}
}

func (r *SpaceRepository) Create(ctx context.Context, space *domain.Space) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO spaces (id, name, created_at) VALUES ($1, $2, $3)`,
		space.ID, space.Name, space.CreatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrSpaceAlreadyExists
	}
	return err
}

func (r *SpaceRepository) GetByID(ctx context.Context, id string) (*domain.Space, error) {
	var space domain.Space
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, created_at FROM spaces WHERE id = $1`,
		id,
	).Scan(&space.ID, &space.Name, &space.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSpaceNotFound
		}
		return nil, err
	}
	return &space, nil
}

func (r *SpaceRepository) GetByName(ctx context.Context, name string) (*domain.Space, error) {
	var space domain.Space
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, created_at FROM spaces WHERE name = $1`,
		name,
	).Scan(&space.ID, &space.Name, &space.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSpaceNotFound
		}
		return nil, err
	}
	return &space, nil
}

func (r *SpaceRepository) List(ctx context.Context) ([]*domain.Space, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, created_at FROM spaces ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var spaces []*domain.Space
	for rows.Next() {
		var space domain.Space
		if err := rows.Scan(&space.ID, &space.Name, &space.CreatedAt); err != nil {
			return nil, err
		}
		spaces = append(spaces, &space)
	}
	return spaces, rows.Err()
}

func (r *SpaceRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM spaces WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrSpaceNotFound
	}
	return nil
}
