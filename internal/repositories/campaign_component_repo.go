package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/live-campaigns/backend/internal/models"
)

type CampaignComponentRepo struct {
	pool *pgxpool.Pool
}

func NewCampaignComponentRepo(pool *pgxpool.Pool) *CampaignComponentRepo {
	return &CampaignComponentRepo{pool: pool}
}

func (r *CampaignComponentRepo) Link(ctx context.Context, cc *models.CampaignComponent) error {
	if cc.Status == "" {
		cc.Status = models.ComponentStatusInactive
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO campaign_components (campaign_id, component_id, status, custom_config, scheduled_time, end_time)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, updated_at
	`, cc.CampaignID, cc.ComponentID, cc.Status, cc.CustomConfig, cc.ScheduledTime, cc.EndTime,
	).Scan(&cc.ID, &cc.UpdatedAt)
}

const linkSelect = `
	SELECT cc.id, cc.campaign_id, cc.component_id, cc.status, cc.custom_config,
	       cc.scheduled_time, cc.end_time, cc.activated_at, cc.updated_at,
	       c.id, c.name, c.type, c.config, c.created_at, c.updated_at
	FROM campaign_components cc
	JOIN components c ON c.id = cc.component_id
`

func scanLink(row pgx.Row) (*models.CampaignComponent, error) {
	var cc models.CampaignComponent
	var comp models.Component
	err := row.Scan(&cc.ID, &cc.CampaignID, &cc.ComponentID, &cc.Status, &cc.CustomConfig,
		&cc.ScheduledTime, &cc.EndTime, &cc.ActivatedAt, &cc.UpdatedAt,
		&comp.ID, &comp.Name, &comp.Type, &comp.Config, &comp.CreatedAt, &comp.UpdatedAt)
	if err != nil {
		return nil, err
	}
	cc.Component = &comp
	return &cc, nil
}

func (r *CampaignComponentRepo) GetByID(ctx context.Context, id int64) (*models.CampaignComponent, error) {
	cc, err := scanLink(r.pool.QueryRow(ctx, linkSelect+` WHERE cc.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("campaign component %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return cc, nil
}

func (r *CampaignComponentRepo) Get(ctx context.Context, campaignID int64, componentID uuid.UUID) (*models.CampaignComponent, error) {
	cc, err := scanLink(r.pool.QueryRow(ctx, linkSelect+` WHERE cc.campaign_id = $1 AND cc.component_id = $2`,
		campaignID, componentID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("component %s in campaign %d: %w", componentID, campaignID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return cc, nil
}

// ListByCampaign returns every link of one campaign joined with its component
// definition, the shape each scheduler tick iterates.
func (r *CampaignComponentRepo) ListByCampaign(ctx context.Context, campaignID int64) ([]models.CampaignComponent, error) {
	rows, err := r.pool.Query(ctx, linkSelect+` WHERE cc.campaign_id = $1 ORDER BY cc.id`, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []models.CampaignComponent
	for rows.Next() {
		cc, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, *cc)
	}
	return links, rows.Err()
}

// ActiveHolder reports which other campaign currently holds componentID
// active, nil when the component is free. The querying campaign is excluded
// so re-activation within the same campaign never conflicts with itself.
func (r *CampaignComponentRepo) ActiveHolder(ctx context.Context, componentID uuid.UUID, excludeCampaignID int64) (*int64, error) {
	var holder int64
	err := r.pool.QueryRow(ctx, `
		SELECT campaign_id FROM campaign_components
		WHERE component_id = $1 AND status = $2 AND campaign_id <> $3
		LIMIT 1
	`, componentID, models.ComponentStatusActive, excludeCampaignID).Scan(&holder)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &holder, nil
}

// Activate flips the link to active and stamps activated_at. The NOT EXISTS
// guard closes the window between the availability check and this write: if
// another campaign grabbed the component in between, zero rows update and the
// caller sees false.
func (r *CampaignComponentRepo) Activate(ctx context.Context, linkID int64, componentID uuid.UUID, campaignID int64, at time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE campaign_components SET status = $1, activated_at = $2, updated_at = now()
		WHERE id = $3
		  AND NOT EXISTS (
			SELECT 1 FROM campaign_components
			WHERE component_id = $4 AND status = $1 AND campaign_id <> $5
		  )
	`, models.ComponentStatusActive, at, linkID, componentID, campaignID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *CampaignComponentRepo) Deactivate(ctx context.Context, linkID int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE campaign_components SET status = $1, updated_at = now()
		WHERE id = $2
	`, models.ComponentStatusInactive, linkID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("campaign component %d: %w", linkID, ErrNotFound)
	}
	return nil
}

// UpdateSettings replaces the per-campaign override and schedule window.
func (r *CampaignComponentRepo) UpdateSettings(ctx context.Context, linkID int64, customConfig json.RawMessage, scheduledTime, endTime *time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE campaign_components SET custom_config = $1, scheduled_time = $2, end_time = $3, updated_at = now()
		WHERE id = $4
	`, customConfig, scheduledTime, endTime, linkID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("campaign component %d: %w", linkID, ErrNotFound)
	}
	return nil
}

func (r *CampaignComponentRepo) Unlink(ctx context.Context, campaignID int64, componentID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM campaign_components WHERE campaign_id = $1 AND component_id = $2
	`, campaignID, componentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("component %s in campaign %d: %w", componentID, campaignID, ErrNotFound)
	}
	return nil
}
