package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/live-campaigns/backend/internal/models"
)

type ScheduledComponentRepo struct {
	pool *pgxpool.Pool
}

func NewScheduledComponentRepo(pool *pgxpool.Pool) *ScheduledComponentRepo {
	return &ScheduledComponentRepo{pool: pool}
}

func (r *ScheduledComponentRepo) Create(ctx context.Context, sc *models.ScheduledComponent) error {
	if sc.Status == "" {
		sc.Status = models.ScheduledStatusPending
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO scheduled_components (campaign_id, type, scheduled_time, end_time, data, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, sc.CampaignID, sc.Type, sc.ScheduledTime, sc.EndTime, sc.Data, sc.Status,
	).Scan(&sc.ID, &sc.CreatedAt, &sc.UpdatedAt)
}

func (r *ScheduledComponentRepo) GetByID(ctx context.Context, id int64) (*models.ScheduledComponent, error) {
	var sc models.ScheduledComponent
	err := r.pool.QueryRow(ctx, `
		SELECT id, campaign_id, type, scheduled_time, end_time, data, status, created_at, updated_at
		FROM scheduled_components WHERE id = $1
	`, id).Scan(&sc.ID, &sc.CampaignID, &sc.Type, &sc.ScheduledTime, &sc.EndTime,
		&sc.Data, &sc.Status, &sc.CreatedAt, &sc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("scheduled component %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

type ScheduledComponentFilter struct {
	CampaignID *int64
	Status     *string
	Limit      int
	Offset     int
}

func (r *ScheduledComponentRepo) List(ctx context.Context, f ScheduledComponentFilter) ([]models.ScheduledComponent, error) {
	query := `
		SELECT id, campaign_id, type, scheduled_time, end_time, data, status, created_at, updated_at
		FROM scheduled_components
	`
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.CampaignID != nil {
		where = append(where, fmt.Sprintf("campaign_id = $%d", argIdx))
		args = append(args, *f.CampaignID)
		argIdx++
	}
	if f.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *f.Status)
		argIdx++
	}

	if len(where) > 0 {
		query += " WHERE "
		for i, w := range where {
			if i > 0 {
				query += " AND "
			}
			query += w
		}
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	query += fmt.Sprintf(" ORDER BY scheduled_time LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.ScheduledComponent
	for rows.Next() {
		var sc models.ScheduledComponent
		if err := rows.Scan(&sc.ID, &sc.CampaignID, &sc.Type, &sc.ScheduledTime, &sc.EndTime,
			&sc.Data, &sc.Status, &sc.CreatedAt, &sc.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, sc)
	}
	return items, rows.Err()
}

func (r *ScheduledComponentRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE scheduled_components SET status = $1, updated_at = now() WHERE id = $2
	`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("scheduled component %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *ScheduledComponentRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM scheduled_components WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("scheduled component %d: %w", id, ErrNotFound)
	}
	return nil
}
