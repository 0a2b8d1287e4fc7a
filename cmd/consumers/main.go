package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"mytickets/cmd/consumers/jobs"
	"mytickets/internal/config"
	"mytickets/internal/consumers"
	"mytickets/internal/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	slog.Info("Starting consumers service...")

	// Override NATS client ID for consumers
	cfg.NATS.ClientID = "mytickets-consumers"

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumerService, err := consumers.NewConsumerService(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to create consumer service", "error", err)
	}

	if err := consumerService.Start(); err != nil {
		logger.Fatal("Failed to start consumers", "error", err)
	}

	var reconcile *jobs.IndexReconcileJob
	if reindexer := consumerService.Reindexer(); reindexer != nil {
		reconcile = jobs.NewIndexReconcileJob(reindexer, 10*time.Minute)
		reconcile.Start(ctx)
	}

	slog.Info("Consumers service started successfully")

	<-ctx.Done()
	slog.Info("Shutting down consumers service...")

	if reconcile != nil {
		reconcile.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := consumerService.Shutdown(shutdownCtx); err != nil {
		slog.Error("Error during shutdown", "error", err)
	}

	slog.Info("Consumers service stopped")
}
