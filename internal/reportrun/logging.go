package reportrun

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	obscontext "github.com/finvue/finvue/internal/observability/context"
	obslogger "github.com/finvue/finvue/internal/observability/logger"
	"go.uber.org/zap"
)

type runAccounting struct {
	runID        string
	startedAt    time.Time
	tenantCount  int
	skippedCount int
	reportCount  int
	errorCount   int
}

func (r *runAccounting) AddReports(count int) {
	if r == nil || count <= 0 {
		return
	}
	r.reportCount += count
}

func (r *runAccounting) IncTenant() {
	if r == nil {
		return
	}
	r.tenantCount++
}

func (r *runAccounting) IncSkipped() {
	if r == nil {
		return
	}
	r.skippedCount++
}

func (r *runAccounting) IncError() {
	if r == nil {
		return
	}
	r.errorCount++
}

func (r *Runner) withLogContext(ctx context.Context, tenantID snowflake.ID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = obscontext.WithActor(ctx, "system", "reportrun")
	if tenantID != 0 {
		ctx = obscontext.WithTenantID(ctx, tenantID.String())
	}
	return ctx
}

func (r *Runner) logger(ctx context.Context) *zap.Logger {
	return obslogger.WithContext(ctx, r.log)
}

func (r *Runner) logRunStart(ctx context.Context, run *runAccounting, ref time.Time) {
	if run == nil {
		return
	}
	r.logger(ctx).Info("reportrun.start",
		zap.String("run_id", run.runID),
		zap.Time("reference_time", ref),
	)
}

func (r *Runner) logRunFinish(ctx context.Context, run *runAccounting) {
	if run == nil {
		return
	}
	fields := []zap.Field{
		zap.String("run_id", run.runID),
		zap.Int64("duration_ms", time.Since(run.startedAt).Milliseconds()),
		zap.Int("tenant_count", run.tenantCount),
		zap.Int("skipped_count", run.skippedCount),
		zap.Int("report_count", run.reportCount),
		zap.Int("error_count", run.errorCount),
	}
	log := r.logger(ctx)
	if run.errorCount > 0 {
		log.Warn("reportrun.finish", fields...)
		return
	}
	log.Info("reportrun.finish", fields...)
}

func (r *Runner) logRunError(ctx context.Context, run *runAccounting, msg string, tenantID snowflake.ID, err error, fields ...zap.Field) {
	if err == nil {
		return
	}
	run.IncError()
	ctx = r.withLogContext(ctx, tenantID)
	baseFields := []zap.Field{
		zap.String("tenant_id", idString(tenantID)),
		zap.String("error", err.Error()),
	}
	r.logger(ctx).Error(msg, append(baseFields, fields...)...)
}

func idString(id snowflake.ID) string {
	if id == 0 {
		return ""
	}
	return id.String()
}
