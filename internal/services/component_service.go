package services

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/live-campaigns/backend/internal/events"
	"github.com/live-campaigns/backend/internal/models"
	"github.com/live-campaigns/backend/internal/urlnorm"
)

type LinkStore interface {
	Link(ctx context.Context, cc *models.CampaignComponent) error
	Get(ctx context.Context, campaignID int64, componentID uuid.UUID) (*models.CampaignComponent, error)
	ListByCampaign(ctx context.Context, campaignID int64) ([]models.CampaignComponent, error)
	ActiveHolder(ctx context.Context, componentID uuid.UUID, excludeCampaignID int64) (*int64, error)
	Activate(ctx context.Context, linkID int64, componentID uuid.UUID, campaignID int64, at time.Time) (bool, error)
	Deactivate(ctx context.Context, linkID int64) error
	UpdateSettings(ctx context.Context, linkID int64, customConfig json.RawMessage, scheduledTime, endTime *time.Time) error
	Unlink(ctx context.Context, campaignID int64, componentID uuid.UUID) error
}

// ComponentService owns campaign-component links: linking, schedule settings
// and manual status toggles under the global single-activation invariant.
type ComponentService struct {
	campaigns CampaignStore
	links     LinkStore
	publisher events.Publisher
	log       *zap.Logger
	now       func() time.Time
}

func NewComponentService(campaigns CampaignStore, links LinkStore, publisher events.Publisher, log *zap.Logger) *ComponentService {
	return &ComponentService{
		campaigns: campaigns,
		links:     links,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

func (s *ComponentService) Link(ctx context.Context, cc *models.CampaignComponent) error {
	if _, err := s.campaigns.GetByID(ctx, cc.CampaignID); err != nil {
		return err
	}
	return s.links.Link(ctx, cc)
}

func (s *ComponentService) ListByCampaign(ctx context.Context, campaignID int64) ([]models.CampaignComponent, error) {
	if _, err := s.campaigns.GetByID(ctx, campaignID); err != nil {
		return nil, err
	}
	return s.links.ListByCampaign(ctx, campaignID)
}

func (s *ComponentService) UpdateSettings(ctx context.Context, campaignID int64, componentID uuid.UUID, customConfig json.RawMessage, scheduledTime, endTime *time.Time) (*models.CampaignComponent, error) {
	link, err := s.links.Get(ctx, campaignID, componentID)
	if err != nil {
		return nil, err
	}
	if err := s.links.UpdateSettings(ctx, link.ID, customConfig, scheduledTime, endTime); err != nil {
		return nil, err
	}
	return s.links.Get(ctx, campaignID, componentID)
}

func (s *ComponentService) Unlink(ctx context.Context, campaignID int64, componentID uuid.UUID) error {
	return s.links.Unlink(ctx, campaignID, componentID)
}

// Availability reports whether componentID could be activated by
// excludeCampaignID right now, and which campaign holds it otherwise.
func (s *ComponentService) Availability(ctx context.Context, componentID uuid.UUID, excludeCampaignID int64) (*int64, error) {
	return s.links.ActiveHolder(ctx, componentID, excludeCampaignID)
}

// SetStatus is the manual toggle path. Activation enforces the availability
// invariant and surfaces the conflicting campaign id on refusal; both
// directions broadcast component_status_changed to the campaign's room.
func (s *ComponentService) SetStatus(ctx context.Context, base *url.URL, campaignID int64, componentID uuid.UUID, status string) (*models.CampaignComponent, error) {
	if status != models.ComponentStatusActive && status != models.ComponentStatusInactive {
		return nil, validationErrorf("status must be %q or %q", models.ComponentStatusActive, models.ComponentStatusInactive)
	}

	link, err := s.links.Get(ctx, campaignID, componentID)
	if err != nil {
		return nil, err
	}

	if link.Status == status {
		return link, nil
	}

	switch status {
	case models.ComponentStatusActive:
		holder, err := s.links.ActiveHolder(ctx, componentID, campaignID)
		if err != nil {
			return nil, err
		}
		if holder != nil {
			return nil, &ComponentConflictError{CampaignID: *holder}
		}

		ok, err := s.links.Activate(ctx, link.ID, componentID, campaignID, s.now())
		if err != nil {
			return nil, err
		}
		if !ok {
			// Another campaign won the race between the check and the write.
			holder, herr := s.links.ActiveHolder(ctx, componentID, campaignID)
			if herr == nil && holder != nil {
				return nil, &ComponentConflictError{CampaignID: *holder}
			}
			return nil, validationErrorf("component activation conflicted, retry")
		}

	case models.ComponentStatusInactive:
		if err := s.links.Deactivate(ctx, link.ID); err != nil {
			return nil, err
		}
	}

	updated, err := s.links.Get(ctx, campaignID, componentID)
	if err != nil {
		return nil, err
	}

	BroadcastStatusChange(ctx, s.publisher, s.log, base, updated)
	return updated, nil
}

// BroadcastStatusChange publishes a component_status_changed message for the
// link's campaign room, with the effective config's URLs normalized. Shared
// by the manual toggle and the scheduler loop.
func BroadcastStatusChange(ctx context.Context, publisher events.Publisher, log *zap.Logger, base *url.URL, link *models.CampaignComponent) {
	if link.Component == nil {
		return
	}

	config := normalizedEffectiveConfig(link, base)
	msg := events.NewComponentStatusChanged(link.CampaignID, link.Component, link.Status, config)

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Error("failed to marshal component status message", zap.Error(err))
		return
	}
	if err := publisher.Publish(ctx, events.Envelope{Room: link.CampaignID, Payload: payload}); err != nil {
		log.Error("failed to publish component status message",
			zap.Int64("campaign_id", link.CampaignID),
			zap.String("component_id", link.ComponentID.String()),
			zap.Error(err))
	}
}

func normalizedEffectiveConfig(link *models.CampaignComponent, base *url.URL) json.RawMessage {
	return urlnorm.NormalizeJSON(link.EffectiveConfig(), base)
}
