package repositories

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/live-campaigns/backend/internal/models"
)

type EventRepo struct {
	pool *pgxpool.Pool
}

func NewEventRepo(pool *pgxpool.Pool) *EventRepo {
	return &EventRepo{pool: pool}
}

// Append writes one event to the campaign's durable log. The log is
// append-only: there is no update or single-delete path, rows only go away
// when the campaign cascade-deletes them.
func (r *EventRepo) Append(ctx context.Context, campaignID int64, e *models.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO events (id, campaign_id, type, payload)
		VALUES ($1, $2, $3, $4)
	`, e.ID, campaignID, e.Type, payload)
	return err
}

// ListByCampaign returns the stored event payloads, oldest first.
func (r *EventRepo) ListByCampaign(ctx context.Context, campaignID int64, limit int) ([]json.RawMessage, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT payload FROM events
		WHERE campaign_id = $1
		ORDER BY created_at
		LIMIT $2
	`, campaignID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payloads []json.RawMessage
	for rows.Next() {
		var p json.RawMessage
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		payloads = append(payloads, p)
	}
	return payloads, rows.Err()
}
