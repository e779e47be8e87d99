// Package reportrun fans scheduled report generation out across every paying
// tenant's linked accounts. One run resolves each tenant's cadences from its
// subscription tier, computes the previous calendar periods in UTC and asks
// the reporting provider for one report per account, cadence and report type.
package reportrun

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/finvue/finvue/internal/clock"
	obsmetrics "github.com/finvue/finvue/internal/observability/metrics"
	"github.com/finvue/finvue/internal/reportrun/domain"
	tenantdomain "github.com/finvue/finvue/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("reportrun: invalid configuration")

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Tenants  tenantdomain.Repository
	Provider domain.Provider
	GenID    *snowflake.Node
	Clock    clock.Clock
	Lock     *RunLock `optional:"true"`
	Config   Config   `optional:"true"`
}

type Runner struct {
	db       *gorm.DB
	log      *zap.Logger
	cfg      Config
	genID    *snowflake.Node
	clock    clock.Clock
	tenants  tenantdomain.Repository
	provider domain.Provider
	policy   CadencePolicy
	lock     *RunLock
}

func New(p Params) (*Runner, error) {
	if p.DB == nil || p.Log == nil || p.Tenants == nil || p.Provider == nil || p.GenID == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	return &Runner{
		db:       p.DB,
		log:      p.Log.Named("reportrun").With(zap.String("component", "reportrun")),
		cfg:      p.Config.withDefaults(),
		genID:    p.GenID,
		clock:    p.Clock,
		tenants:  p.Tenants,
		provider: p.Provider,
		policy:   DefaultCadencePolicy(),
		lock:     p.Lock,
	}, nil
}

// accountFailure is one recorded per failed provider attempt. The message is
// attributed to the account in the summary error list.
type accountFailure struct {
	accountID snowflake.ID
	kind      string
	message   string
}

type accountOutcome struct {
	results  []domain.ReportResult
	failures []accountFailure
}

// Run performs one full fan-out relative to ref. A zero ref means "now".
// Run never returns an error: a failure to even list the tenant directory is
// reported through the summary with Succeeded set to false.
func (r *Runner) Run(ctx context.Context, ref time.Time) *domain.RunSummary {
	if ref.IsZero() {
		ref = r.clock.Now()
	}
	ref = ref.UTC()
	start := time.Now()

	run := &runAccounting{runID: r.genID.Generate().String(), startedAt: start}
	ctx = r.withLogContext(ctx, 0)
	r.logRunStart(ctx, run, ref)

	runMetrics := obsmetrics.ReportRun()
	runMetrics.IncRun()
	defer func() {
		runMetrics.ObserveRunDuration(time.Since(start))
		r.logRunFinish(ctx, run)
	}()

	builder := newSummaryBuilder(run.runID, ref)

	tenants, err := r.tenants.ListTenantsWithAccounts(ctx, r.db, r.policy.Tiers(), tenantdomain.ProviderBilling)
	if err != nil {
		runMetrics.IncReportError(obsmetrics.ReportErrorKindFatal)
		r.logRunError(ctx, run, "reportrun.directory.failed", 0, err)
		builder.addFatal(err)
		return builder.build(r.clock.Now())
	}

	for _, tenant := range tenants {
		if ctx.Err() != nil {
			runMetrics.IncReportError(obsmetrics.ReportErrorKindFatal)
			r.logRunError(ctx, run, "reportrun.canceled", tenant.Tenant.ID, ctx.Err())
			builder.addFatal(ctx.Err())
			break
		}

		cadences := r.policy.Resolve(tenant.Tenant.SubscriptionTier, ref)
		if !cadences.Any() {
			run.IncSkipped()
			runMetrics.IncTenantSkipped()
			r.logger(r.withLogContext(ctx, tenant.Tenant.ID)).Debug("reportrun.tenant.skipped",
				zap.String("tenant_id", idString(tenant.Tenant.ID)),
				zap.String("tier", string(tenant.Tenant.SubscriptionTier)),
			)
			continue
		}

		run.IncTenant()
		runMetrics.IncTenantProcessed()
		builder.addTenant(r.runTenant(ctx, run, builder, tenant, cadences, ref))
	}

	return builder.build(r.clock.Now())
}

// runTenant fans out across the tenant's linked accounts with a bounded
// worker pool, then folds the per-account outcomes back into the builder in
// directory order so summaries stay deterministic.
func (r *Runner) runTenant(
	ctx context.Context,
	run *runAccounting,
	builder *summaryBuilder,
	tenant tenantdomain.TenantWithAccounts,
	cadences domain.CadenceSet,
	ref time.Time,
) domain.TenantReports {
	outcomes := make([]accountOutcome, len(tenant.Accounts))

	var wg sync.WaitGroup
	sem := make(chan struct{}, r.cfg.MaxAccountWorkers)
	for i, account := range tenant.Accounts {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, account tenantdomain.LinkedAccount) {
			defer wg.Done()
			defer func() { <-sem }()
			outcomes[i] = r.runAccount(ctx, account, cadences, ref)
		}(i, account)
	}
	wg.Wait()

	runMetrics := obsmetrics.ReportRun()
	reports := domain.TenantReports{
		TenantID:   tenant.Tenant.ID,
		TenantName: tenant.Tenant.Name,
		Cadences:   cadences,
	}
	for i, outcome := range outcomes {
		reports.Accounts = append(reports.Accounts, domain.AccountReports{
			AccountID: tenant.Accounts[i].ID,
			Results:   outcome.results,
		})
		for _, result := range outcome.results {
			if result.Failed() {
				continue
			}
			run.AddReports(1)
			builder.countGenerated(result.Cadence)
			runMetrics.IncReportGenerated(string(result.Cadence), string(result.Type))
		}
		for _, failure := range outcome.failures {
			run.IncError()
			runMetrics.IncReportError(failure.kind)
			builder.addError(failure.accountID, failure.message)
			r.logger(r.withLogContext(ctx, tenant.Tenant.ID)).Error("reportrun.report.failed",
				zap.String("tenant_id", idString(tenant.Tenant.ID)),
				zap.String("account_id", idString(failure.accountID)),
				zap.String("error_kind", failure.kind),
				zap.String("error", failure.message),
			)
		}
	}
	return reports
}

// runAccount requests every enabled cadence and report type for one linked
// account. Failures never abort the account: each attempt is recorded and the
// remaining work continues.
func (r *Runner) runAccount(
	ctx context.Context,
	account tenantdomain.LinkedAccount,
	cadences domain.CadenceSet,
	ref time.Time,
) (outcome accountOutcome) {
	defer func() {
		if rec := recover(); rec != nil {
			outcome.failures = append(outcome.failures, accountFailure{
				accountID: account.ID,
				kind:      obsmetrics.ReportErrorKindUnknown,
				message:   fmt.Sprintf("panic: %v", rec),
			})
		}
	}()

	runMetrics := obsmetrics.ReportRun()
	for _, cadence := range cadences.Enabled() {
		interval := intervalFor(cadence, ref)
		for _, reportType := range r.cfg.ReportTypes {
			callStart := time.Now()
			result, err := r.provider.CreateReport(ctx, account.AccessToken, reportType, interval)
			runMetrics.ObserveProviderLatency(string(reportType), time.Since(callStart))

			if err != nil {
				outcome.failures = append(outcome.failures, accountFailure{
					accountID: account.ID,
					kind:      obsmetrics.ReportErrorKindTransport,
					message:   err.Error(),
				})
				continue
			}

			result.AccountID = account.ID
			result.Type = reportType
			result.Cadence = cadence
			outcome.results = append(outcome.results, result)
			if result.Failed() {
				message := result.ErrorMessage
				if message == "" {
					message = "provider reported an error"
				}
				outcome.failures = append(outcome.failures, accountFailure{
					accountID: account.ID,
					kind:      obsmetrics.ReportErrorKindProvider,
					message:   message,
				})
			}
		}
	}
	return outcome
}
