package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/live-campaigns/backend/internal/models"
	"github.com/live-campaigns/backend/internal/repositories"
)

type CampaignService struct {
	campaignRepo *repositories.CampaignRepo
	log          *zap.Logger
}

func NewCampaignService(campaignRepo *repositories.CampaignRepo, log *zap.Logger) *CampaignService {
	return &CampaignService{campaignRepo: campaignRepo, log: log}
}

func (s *CampaignService) Create(ctx context.Context, c *models.Campaign) error {
	if c.Name == "" {
		return validationErrorf("campaign name is required")
	}
	if c.StartDate != nil && c.EndDate != nil && !c.EndDate.After(*c.StartDate) {
		return validationErrorf("campaign end date must be after start date")
	}
	return s.campaignRepo.Create(ctx, c)
}

func (s *CampaignService) GetByID(ctx context.Context, id int64) (*models.Campaign, error) {
	return s.campaignRepo.GetByID(ctx, id)
}

func (s *CampaignService) List(ctx context.Context) ([]models.Campaign, error) {
	return s.campaignRepo.ListAll(ctx)
}

func (s *CampaignService) Update(ctx context.Context, id int64, c *models.Campaign) error {
	existing, err := s.campaignRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	c.ID = existing.ID
	if c.Name == "" {
		c.Name = existing.Name
	}
	return s.campaignRepo.Update(ctx, c)
}

func (s *CampaignService) Delete(ctx context.Context, id int64) error {
	return s.campaignRepo.Delete(ctx, id)
}
