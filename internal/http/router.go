package http

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/live-campaigns/backend/internal/config"
	"github.com/live-campaigns/backend/internal/http/handlers"
	"github.com/live-campaigns/backend/internal/middleware"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	eventHandler *handlers.EventHandler,
	campaignHandler *handlers.CampaignHandler,
	componentHandler *handlers.ComponentHandler,
	scheduledHandler *handlers.ScheduledHandler,
	statusHandler *handlers.StatusHandler,
	wsHandler *handlers.WSHandler,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")
	api.Use(middleware.RateLimitMiddleware(rdb, cfg.RateLimitPerMinute, time.Minute))

	// Status
	api.Get("/status", statusHandler.GetStatus)

	// Event triggers + feeds
	api.Post("/events/product", eventHandler.TriggerProduct)
	api.Post("/events/poll", eventHandler.TriggerPoll)
	api.Post("/events/contest", eventHandler.TriggerContest)
	api.Get("/events", eventHandler.ListEvents)

	// Campaigns
	api.Post("/campaigns", campaignHandler.CreateCampaign)
	api.Get("/campaigns", campaignHandler.ListCampaigns)
	api.Get("/campaigns/:id", campaignHandler.GetCampaign)
	api.Put("/campaigns/:id", campaignHandler.UpdateCampaign)
	api.Delete("/campaigns/:id", campaignHandler.DeleteCampaign)

	// Component library
	api.Post("/components", componentHandler.CreateComponent)
	api.Get("/components", componentHandler.ListComponents)
	api.Get("/components/:id", componentHandler.GetComponent)
	api.Put("/components/:id", componentHandler.UpdateComponent)
	api.Delete("/components/:id", componentHandler.DeleteComponent)
	api.Get("/components/:id/availability", componentHandler.GetAvailability)

	// Campaign-component links
	api.Post("/campaigns/:id/components", componentHandler.LinkComponent)
	api.Get("/campaigns/:id/components", componentHandler.ListCampaignComponents)
	api.Put("/campaigns/:id/components/:componentId", componentHandler.UpdateLink)
	api.Delete("/campaigns/:id/components/:componentId", componentHandler.UnlinkComponent)

	// Legacy scheduled entries
	api.Post("/scheduled-components", scheduledHandler.Create)
	api.Get("/scheduled-components", scheduledHandler.List)
	api.Put("/scheduled-components/:id", scheduledHandler.UpdateStatus)
	api.Delete("/scheduled-components/:id", scheduledHandler.Delete)

	// WebSocket: campaign-scoped rooms plus the legacy ungrouped path.
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(wsHandler.HandleLegacy))
	app.Get("/ws/:campaignId<int>", websocket.New(wsHandler.HandleCampaign))
}
