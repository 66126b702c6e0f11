package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/live-campaigns/backend/internal/models"
)

type ComponentRepo struct {
	pool *pgxpool.Pool
}

func NewComponentRepo(pool *pgxpool.Pool) *ComponentRepo {
	return &ComponentRepo{pool: pool}
}

func (r *ComponentRepo) Create(ctx context.Context, c *models.Component) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO components (id, name, type, config)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`, c.ID, c.Name, c.Type, c.Config).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (r *ComponentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Component, error) {
	var c models.Component
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, type, config, created_at, updated_at
		FROM components WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Type, &c.Config, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("component %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

type ComponentFilter struct {
	Type   *string
	Limit  int
	Offset int
}

func (r *ComponentRepo) List(ctx context.Context, f ComponentFilter) ([]models.Component, error) {
	query := `SELECT id, name, type, config, created_at, updated_at FROM components`
	args := []any{}
	argIdx := 1

	if f.Type != nil {
		query += fmt.Sprintf(" WHERE type = $%d", argIdx)
		args = append(args, *f.Type)
		argIdx++
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var components []models.Component
	for rows.Next() {
		var c models.Component
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.Config, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		components = append(components, c)
	}
	return components, rows.Err()
}

func (r *ComponentRepo) Update(ctx context.Context, c *models.Component) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE components SET name = $1, type = $2, config = $3, updated_at = now()
		WHERE id = $4
	`, c.Name, c.Type, c.Config, c.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("component %s: %w", c.ID, ErrNotFound)
	}
	return nil
}

func (r *ComponentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM components WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("component %s: %w", id, ErrNotFound)
	}
	return nil
}
