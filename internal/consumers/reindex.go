package consumers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mytickets/internal/models"
)

type EventLister interface {
	List(ctx context.Context) ([]models.Event, error)
}

type BulkIndex interface {
	ResetIndex(ctx context.Context) error
	BulkIndex(ctx context.Context, events []models.Event) (uint64, error)
}

// Reindexer copies every event from the database into the search index
type Reindexer struct {
	events EventLister
	index  BulkIndex
}

func NewReindexer(events EventLister, index BulkIndex) *Reindexer {
	return &Reindexer{events: events, index: index}
}

// Run indexes all events. With reset the index is dropped and recreated
// first, which also removes documents of deleted events.
func (r *Reindexer) Run(ctx context.Context, reset bool) (uint64, error) {
	start := time.Now()

	if reset {
		if err := r.index.ResetIndex(ctx); err != nil {
			return 0, fmt.Errorf("failed to reset index: %w", err)
		}
	}

	events, err := r.events.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list events: %w", err)
	}

	indexed, err := r.index.BulkIndex(ctx, events)
	if err != nil {
		return indexed, err
	}

	slog.Info("Reindex completed",
		"events", len(events),
		"indexed", indexed,
		"reset", reset,
		"duration", time.Since(start).String())

	return indexed, nil
}
