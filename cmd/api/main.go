package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/live-campaigns/backend/internal/config"
	"github.com/live-campaigns/backend/internal/db"
	"github.com/live-campaigns/backend/internal/events"
	apphttp "github.com/live-campaigns/backend/internal/http"
	"github.com/live-campaigns/backend/internal/http/handlers"
	"github.com/live-campaigns/backend/internal/repositories"
	"github.com/live-campaigns/backend/internal/scheduler"
	"github.com/live-campaigns/backend/internal/services"
	"github.com/live-campaigns/backend/internal/ws"
	"github.com/live-campaigns/backend/migrations"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, pool, migrations.Files, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repositories
	campaignRepo := repositories.NewCampaignRepo(pool)
	componentRepo := repositories.NewComponentRepo(pool)
	linkRepo := repositories.NewCampaignComponentRepo(pool)
	eventRepo := repositories.NewEventRepo(pool)
	scheduledRepo := repositories.NewScheduledComponentRepo(pool)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	// Services
	campaignService := services.NewCampaignService(campaignRepo, log)
	componentService := services.NewComponentService(campaignRepo, linkRepo, publisher, log)
	eventService := services.NewEventService(campaignRepo, eventRepo, publisher, cfg.EventBufferSize, log)

	// WS hub
	hub := ws.NewHub(subscriber, log)
	hub.Start(ctx)

	// Handlers
	eventHandler := handlers.NewEventHandler(eventService, log)
	campaignHandler := handlers.NewCampaignHandler(campaignService, log)
	componentHandler := handlers.NewComponentHandler(componentRepo, componentService, log)
	scheduledHandler := handlers.NewScheduledHandler(scheduledRepo, campaignRepo, log)
	statusHandler := handlers.NewStatusHandler(cfg, hub)
	wsHandler := handlers.NewWSHandler(hub, log)

	// Scheduler (disable when a standalone scheduler process drives activations)
	var sched *scheduler.Scheduler
	if cfg.SchedulerEnabled {
		base, err := url.Parse(cfg.PublicBaseURL)
		if err != nil {
			log.Fatal("invalid PUBLIC_BASE_URL", zap.Error(err))
		}
		sched = scheduler.New(campaignRepo, linkRepo, publisher, base, cfg.SchedulerInterval, log)
		sched.Start(ctx)
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb, eventHandler, campaignHandler, componentHandler, scheduledHandler, statusHandler, wsHandler)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		if sched != nil {
			sched.Stop()
		}
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
