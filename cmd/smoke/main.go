package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"mytickets/internal/logger"
	"mytickets/internal/smoke"
)

func main() {
	var (
		baseURL string
		timeout time.Duration
	)
	flag.StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the running API")
	flag.DurationVar(&timeout, "timeout", 2*time.Minute, "Overall timeout")
	flag.Parse()

	logger.Init("info", "text")
	slog.Info("Starting smoke checks", "url", baseURL)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	report := smoke.NewChecker(smoke.NewClient(baseURL)).Run(ctx)

	if failed := report.Failed(); len(failed) > 0 {
		for _, res := range failed {
			slog.Error("❌ "+res.Name, "detail", res.Detail)
		}
		slog.Error("Smoke checks failed", "failed", len(failed), "total", len(report.Results))
		os.Exit(1)
	}

	slog.Info("✅ Smoke checks passed", "total", len(report.Results))
}
