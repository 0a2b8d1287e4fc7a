package main

import (
	"context"
	"flag"
	"log/slog"
	"time"

	"mytickets/internal/config"
	"mytickets/internal/consumers"
	"mytickets/internal/database"
	"mytickets/internal/logger"
	"mytickets/internal/repository"
	"mytickets/internal/search"
)

func main() {
	var reset bool
	flag.BoolVar(&reset, "reset", false, "Drop and recreate the events index before indexing")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Starting events reindex", "reset", reset)

	ctx := context.Background()

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	es, err := search.NewElasticsearchClient(ctx, cfg.Elasticsearch)
	if err != nil {
		logger.Fatal("Failed to connect to Elasticsearch", "error", err)
	}

	start := time.Now()
	indexed, err := consumers.NewReindexer(repository.NewEventRepository(db), es).Run(ctx, reset)
	if err != nil {
		logger.Fatal("Reindex failed", "error", err)
	}

	elapsed := time.Since(start)
	slog.Info("Reindex completed",
		"indexed", indexed,
		"duration", elapsed.String(),
		"events_per_second", float64(indexed)/elapsed.Seconds())
}
