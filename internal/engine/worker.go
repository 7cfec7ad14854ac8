package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/CaiJingLong/Tally/internal/config"
	"github.com/CaiJingLong/Tally/internal/metrics"
	"github.com/CaiJingLong/Tally/internal/resource"
)

// Publisher receives the result of every successful synchronization.
type Publisher interface {
	Publish(ics []byte, resources []resource.Summary)
}

// Worker refreshes the feed on a fixed interval.
type Worker struct {
	Generator *Generator
	Config    SyncConfig
	Interval  time.Duration // <= 0 syncs once and then waits for cancellation
	Publisher Publisher
	Metrics   *metrics.Metrics // optional

	// Trigger forces an immediate refresh when signalled.
	Trigger <-chan struct{}
}

// Run syncs immediately, then on every tick until ctx is cancelled.
// Sync failures are logged and do not stop the worker.
func (w *Worker) Run(ctx context.Context) error {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	_ = w.SyncOnce(ctx)

	var tick <-chan time.Time
	if w.Interval > 0 {
		ticker := time.NewTicker(w.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	log.Info(config.MsgWorkerStart, config.LogKeyInterval, w.Interval)

	for {
		select {
		case <-ctx.Done():
			log.Info(config.MsgWorkerStop)
			return nil
		case <-w.Trigger:
			_ = w.SyncOnce(ctx)
		case <-tick:
			_ = w.SyncOnce(ctx)
		}
	}
}

// SyncOnce runs one synchronization and publishes it on success.
func (w *Worker) SyncOnce(ctx context.Context) error {
	start := time.Now()
	ics, list, expiring, err := w.Generator.RunSync(ctx, w.Config)
	w.Metrics.ObserveSync(start, err, len(list), expiring, len(ics))
	if err != nil {
		if ctx.Err() == nil {
			slog.Error(config.MsgSyncFailed,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompWorker)
		}
		return err
	}

	if w.Publisher != nil {
		w.Publisher.Publish(ics, list)
	}
	slog.Debug(config.MsgSyncFinished,
		config.LogKeyTotal, len(list),
		config.LogKeyExpiring, expiring,
		config.LogKeyDuration, time.Since(start).Milliseconds(),
		config.LogKeyComponent, config.CompWorker)
	return nil
}
