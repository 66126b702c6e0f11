// Package scheduler drives time-based activation and deactivation of
// campaign components. A recurring tick scans every active campaign's links
// and fires the due transitions; failures are logged per item and never stop
// the loop.
package scheduler

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/live-campaigns/backend/internal/events"
	"github.com/live-campaigns/backend/internal/models"
	"github.com/live-campaigns/backend/internal/services"
)

type CampaignSource interface {
	ListAll(ctx context.Context) ([]models.Campaign, error)
}

type LinkSource interface {
	ListByCampaign(ctx context.Context, campaignID int64) ([]models.CampaignComponent, error)
	ActiveHolder(ctx context.Context, componentID uuid.UUID, excludeCampaignID int64) (*int64, error)
	Activate(ctx context.Context, linkID int64, componentID uuid.UUID, campaignID int64, at time.Time) (bool, error)
	Deactivate(ctx context.Context, linkID int64) error
}

// Scheduler is either stopped or running. Start on a running scheduler and
// Stop on a stopped one are no-ops. Stopping clears the pending tick but
// lets an in-flight pass finish: per-link writes are idempotent.
type Scheduler struct {
	campaigns CampaignSource
	links     LinkSource
	publisher events.Publisher
	base      *url.URL
	interval  time.Duration
	log       *zap.Logger
	now       func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
}

func New(campaigns CampaignSource, links LinkSource, publisher events.Publisher, base *url.URL, interval time.Duration, log *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		campaigns: campaigns,
		links:     links,
		publisher: publisher,
		base:      base,
		interval:  interval,
		log:       log,
		now:       time.Now,
	}
}

// Start arms the timer and runs one pass immediately so freshly deployed
// schedules are not a full interval late.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.log.Info("scheduler started", zap.Duration("interval", s.interval))

	go func() {
		s.Tick(runCtx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				s.Tick(runCtx)
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.cancel = nil
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Tick runs one full pass. Exported so a standalone runner or a test can
// drive passes without the timer.
func (s *Scheduler) Tick(ctx context.Context) {
	campaigns, err := s.campaigns.ListAll(ctx)
	if err != nil {
		s.log.Error("scheduler: failed to list campaigns", zap.Error(err))
		return
	}

	now := s.now()
	for i := range campaigns {
		campaign := &campaigns[i]
		if !campaign.IsActive(now) {
			continue
		}
		if err := s.processCampaign(ctx, campaign, now); err != nil {
			s.log.Error("scheduler: campaign pass failed",
				zap.Int64("campaign_id", campaign.ID), zap.Error(err))
		}
	}
}

func (s *Scheduler) processCampaign(ctx context.Context, campaign *models.Campaign, now time.Time) error {
	links, err := s.links.ListByCampaign(ctx, campaign.ID)
	if err != nil {
		return err
	}

	for i := range links {
		link := &links[i]
		// Links without a scheduled time are manual-toggle-only.
		if link.ScheduledTime == nil {
			continue
		}
		if err := s.processLink(ctx, link, now); err != nil {
			s.log.Error("scheduler: link transition failed",
				zap.Int64("campaign_id", link.CampaignID),
				zap.String("component_id", link.ComponentID.String()),
				zap.Error(err))
		}
	}
	return nil
}

// processLink fires at most one transition: the branches are mutually
// exclusive on the link's current status.
func (s *Scheduler) processLink(ctx context.Context, link *models.CampaignComponent, now time.Time) error {
	switch link.Status {
	case models.ComponentStatusInactive:
		if now.Before(*link.ScheduledTime) {
			return nil
		}
		// If the whole window already elapsed, never flicker on.
		if link.EndTime != nil && !now.Before(*link.EndTime) {
			return nil
		}

		holder, err := s.links.ActiveHolder(ctx, link.ComponentID, link.CampaignID)
		if err != nil {
			return err
		}
		if holder != nil {
			s.log.Warn("scheduler: activation blocked, component active elsewhere",
				zap.Int64("campaign_id", link.CampaignID),
				zap.String("component_id", link.ComponentID.String()),
				zap.Int64("holder_campaign_id", *holder))
			return nil
		}

		ok, err := s.links.Activate(ctx, link.ID, link.ComponentID, link.CampaignID, now)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		link.Status = models.ComponentStatusActive
		link.ActivatedAt = &now
		s.log.Info("scheduler: component activated",
			zap.Int64("campaign_id", link.CampaignID),
			zap.String("component_id", link.ComponentID.String()))
		services.BroadcastStatusChange(ctx, s.publisher, s.log, s.base, link)

	case models.ComponentStatusActive:
		if link.EndTime == nil || now.Before(*link.EndTime) {
			return nil
		}
		if err := s.links.Deactivate(ctx, link.ID); err != nil {
			return err
		}

		link.Status = models.ComponentStatusInactive
		s.log.Info("scheduler: component deactivated",
			zap.Int64("campaign_id", link.CampaignID),
			zap.String("component_id", link.ComponentID.String()))
		services.BroadcastStatusChange(ctx, s.publisher, s.log, s.base, link)
	}
	return nil
}
