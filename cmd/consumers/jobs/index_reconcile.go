package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Reindexer rebuilds the search index from the database
type Reindexer interface {
	Run(ctx context.Context, reset bool) (uint64, error)
}

// IndexReconcileJob periodically rewrites every event into the search index,
// catching up on messages that were lost or dropped.
type IndexReconcileJob struct {
	reindexer Reindexer
	interval  time.Duration
	ticker    *time.Ticker
	done      chan struct{}
	wg        sync.WaitGroup
}

func NewIndexReconcileJob(reindexer Reindexer, interval time.Duration) *IndexReconcileJob {
	return &IndexReconcileJob{
		reindexer: reindexer,
		interval:  interval,
		done:      make(chan struct{}),
	}
}

// Start runs one pass immediately and then one per interval
func (j *IndexReconcileJob) Start(ctx context.Context) {
	slog.Info("Starting index reconcile job", "interval", j.interval.String())

	j.ticker = time.NewTicker(j.interval)

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()

		j.reconcile(ctx)
		for {
			select {
			case <-j.ticker.C:
				j.reconcile(ctx)
			case <-j.done:
				slog.Info("Index reconcile job stopped")
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop gracefully stops the background job
func (j *IndexReconcileJob) Stop() {
	if j.ticker != nil {
		j.ticker.Stop()
	}
	close(j.done)
	j.wg.Wait()
}

func (j *IndexReconcileJob) reconcile(ctx context.Context) {
	indexed, err := j.reindexer.Run(ctx, false)
	if err != nil {
		slog.Error("Index reconcile failed", "error", err, "indexed", indexed)
		return
	}
	slog.Debug("Index reconciled", "indexed", indexed)
}
