package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/live-campaigns/backend/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

type CampaignRepo struct {
	pool *pgxpool.Pool
}

func NewCampaignRepo(pool *pgxpool.Pool) *CampaignRepo {
	return &CampaignRepo{pool: pool}
}

func (r *CampaignRepo) Create(ctx context.Context, c *models.Campaign) error {
	if c.IntegrationIDs == nil {
		c.IntegrationIDs = map[string]string{}
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO campaigns (name, logo, description, start_date, end_date, integration_ids)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, c.Name, c.Logo, c.Description, c.StartDate, c.EndDate, c.IntegrationIDs,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *CampaignRepo) GetByID(ctx context.Context, id int64) (*models.Campaign, error) {
	var c models.Campaign
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, logo, description, start_date, end_date, integration_ids, created_at, updated_at
		FROM campaigns WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Logo, &c.Description, &c.StartDate, &c.EndDate,
		&c.IntegrationIDs, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("campaign %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Exists is the cheap pre-side-effect check the trigger pipeline runs.
func (r *CampaignRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM campaigns WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// ListAll returns every campaign; the scheduler filters inactive ones itself
// so the activity rule lives in one place (models.Campaign.IsActive).
func (r *CampaignRepo) ListAll(ctx context.Context) ([]models.Campaign, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, logo, description, start_date, end_date, integration_ids, created_at, updated_at
		FROM campaigns ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var campaigns []models.Campaign
	for rows.Next() {
		var c models.Campaign
		if err := rows.Scan(&c.ID, &c.Name, &c.Logo, &c.Description, &c.StartDate,
			&c.EndDate, &c.IntegrationIDs, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

func (r *CampaignRepo) Update(ctx context.Context, c *models.Campaign) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE campaigns SET name = $1, logo = $2, description = $3,
		       start_date = $4, end_date = $5, integration_ids = $6, updated_at = now()
		WHERE id = $7
	`, c.Name, c.Logo, c.Description, c.StartDate, c.EndDate, c.IntegrationIDs, c.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("campaign %d: %w", c.ID, ErrNotFound)
	}
	return nil
}

// Delete removes the campaign; events, component links and scheduled entries
// cascade away with it.
func (r *CampaignRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("campaign %d: %w", id, ErrNotFound)
	}
	return nil
}
