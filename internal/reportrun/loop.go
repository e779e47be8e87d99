package reportrun

import (
	"context"
	"errors"
	"time"

	obsmetrics "github.com/finvue/finvue/internal/observability/metrics"
	"github.com/finvue/finvue/internal/reportrun/domain"
	"go.uber.org/zap"
)

// ErrRunInProgress is returned when another instance holds the run lock.
var ErrRunInProgress = errors.New("reportrun: run already in progress")

// Trigger takes the cross-instance run lock and performs one run. A lock
// backend failure degrades to an unlocked run rather than blocking the
// schedule.
func (r *Runner) Trigger(ctx context.Context, ref time.Time) (*domain.RunSummary, error) {
	token, ok, err := r.lock.TryAcquire(ctx, r.cfg.LockTTL)
	if err != nil {
		r.log.Warn("reportrun.lock.unavailable", zap.Error(err))
	} else if !ok {
		return nil, ErrRunInProgress
	}
	defer func() {
		if token == "" {
			return
		}
		if err := r.lock.Release(context.WithoutCancel(ctx), token); err != nil {
			r.log.Warn("reportrun.lock.release_failed", zap.Error(err))
		}
	}()

	return r.Run(ctx, ref), nil
}

// RunForever triggers a run every RunInterval until ctx is canceled.
func (r *Runner) RunForever(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.RunInterval)
	defer ticker.Stop()
	nextRun := r.clock.Now().Add(r.cfg.RunInterval)
	runMetrics := obsmetrics.ReportRun()

	for {
		runLag := time.Since(nextRun)
		if runLag > 0 {
			runMetrics.ObserveRunLoopLag(runLag)
		}
		summary, err := r.Trigger(ctx, time.Time{})
		switch {
		case errors.Is(err, ErrRunInProgress):
			r.log.Debug("reportrun.skipped", zap.String("reason", "lock_held"))
		case summary != nil && !summary.Succeeded:
			r.log.Warn("report run finished with errors",
				zap.String("run_id", summary.RunID),
				zap.Int("error_count", len(summary.Errors)),
			)
		}
		nextRun = nextRun.Add(r.cfg.RunInterval)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
