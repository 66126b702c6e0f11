// Standalone scheduler process. Run with SCHEDULER_ENABLED=false on the API
// instances so activations are driven from exactly one place.
package main

import (
	"context"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/live-campaigns/backend/internal/config"
	"github.com/live-campaigns/backend/internal/db"
	"github.com/live-campaigns/backend/internal/events"
	"github.com/live-campaigns/backend/internal/repositories"
	"github.com/live-campaigns/backend/internal/scheduler"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	campaignRepo := repositories.NewCampaignRepo(pool)
	linkRepo := repositories.NewCampaignComponentRepo(pool)
	publisher := events.NewRedisPublisher(rdb, log)

	base, err := url.Parse(cfg.PublicBaseURL)
	if err != nil {
		log.Fatal("invalid PUBLIC_BASE_URL", zap.Error(err))
	}

	sched := scheduler.New(campaignRepo, linkRepo, publisher, base, cfg.SchedulerInterval, log)
	sched.Start(ctx)

	log.Info("scheduler started", zap.Duration("interval", cfg.SchedulerInterval))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down scheduler")
	sched.Stop()
}
