package handlers

import (
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/live-campaigns/backend/internal/http/dto"
	"github.com/live-campaigns/backend/internal/models"
	"github.com/live-campaigns/backend/internal/repositories"
	"github.com/live-campaigns/backend/internal/services"
)

type ComponentHandler struct {
	componentRepo    *repositories.ComponentRepo
	componentService *services.ComponentService
	log              *zap.Logger
}

func NewComponentHandler(componentRepo *repositories.ComponentRepo, componentService *services.ComponentService, log *zap.Logger) *ComponentHandler {
	return &ComponentHandler{componentRepo: componentRepo, componentService: componentService, log: log}
}

func (h *ComponentHandler) CreateComponent(c *fiber.Ctx) error {
	var req dto.CreateComponentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "name is required"})
	}
	if !models.IsValidComponentType(req.Type) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "unknown component type"})
	}

	config := req.Config
	if len(config) == 0 {
		config = json.RawMessage(`{}`)
	}

	component := &models.Component{Name: req.Name, Type: req.Type, Config: config}
	if err := h.componentRepo.Create(c.Context(), component); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{Success: true, Data: component})
}

func (h *ComponentHandler) GetComponent(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid component id"})
	}

	component, err := h.componentRepo.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true, Data: component})
}

func (h *ComponentHandler) ListComponents(c *fiber.Ctx) error {
	filter := repositories.ComponentFilter{}
	if v := c.Query("type"); v != "" {
		filter.Type = &v
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	components, err := h.componentRepo.List(c.Context(), filter)
	if err != nil {
		h.log.Error("list components failed", zap.Error(err))
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true, Data: components})
}

func (h *ComponentHandler) UpdateComponent(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid component id"})
	}

	var req dto.UpdateComponentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	existing, err := h.componentRepo.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	if req.Name != "" {
		existing.Name = req.Name
	}
	if req.Type != "" {
		if !models.IsValidComponentType(req.Type) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "unknown component type"})
		}
		existing.Type = req.Type
	}
	if len(req.Config) > 0 {
		existing.Config = req.Config
	}

	if err := h.componentRepo.Update(c.Context(), existing); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true, Data: existing})
}

func (h *ComponentHandler) DeleteComponent(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid component id"})
	}

	if err := h.componentRepo.Delete(c.Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}

func (h *ComponentHandler) GetAvailability(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid component id"})
	}

	var exclude int64
	if v := c.Query("excludeCampaignId"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			exclude = n
		}
	}

	holder, err := h.componentService.Availability(c.Context(), id, exclude)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.AvailabilityResponse{Available: holder == nil, ConflictingCampaignID: holder})
}

func (h *ComponentHandler) LinkComponent(c *fiber.Ctx) error {
	cid, err := campaignID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid campaign id"})
	}

	var req dto.LinkComponentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	componentID, err := uuid.Parse(req.ComponentID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid component id"})
	}

	link := &models.CampaignComponent{
		CampaignID:    cid,
		ComponentID:   componentID,
		CustomConfig:  req.CustomConfig,
		ScheduledTime: req.ScheduledTime,
		EndTime:       req.EndTime,
	}
	if err := h.componentService.Link(c.Context(), link); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{Success: true, Data: link})
}

func (h *ComponentHandler) ListCampaignComponents(c *fiber.Ctx) error {
	cid, err := campaignID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid campaign id"})
	}

	links, err := h.componentService.ListByCampaign(c.Context(), cid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true, Data: links})
}

// UpdateLink toggles status or edits the link's schedule and config override.
func (h *ComponentHandler) UpdateLink(c *fiber.Ctx) error {
	cid, err := campaignID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid campaign id"})
	}
	componentID, err := uuid.Parse(c.Params("componentId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid component id"})
	}

	var req dto.UpdateLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	if req.Status != "" {
		link, err := h.componentService.SetStatus(c.Context(), requestBase(c), cid, componentID, req.Status)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(dto.SuccessResponse{Success: true, Data: link})
	}

	link, err := h.componentService.UpdateSettings(c.Context(), cid, componentID, req.CustomConfig, req.ScheduledTime, req.EndTime)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true, Data: link})
}

func (h *ComponentHandler) UnlinkComponent(c *fiber.Ctx) error {
	cid, err := campaignID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid campaign id"})
	}
	componentID, err := uuid.Parse(c.Params("componentId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid component id"})
	}

	if err := h.componentService.Unlink(c.Context(), cid, componentID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}
