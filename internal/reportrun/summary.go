package reportrun

import (
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/finvue/finvue/internal/reportrun/domain"
)

// summaryBuilder accumulates a RunSummary while the fan-out progresses.
// It is only touched from the tenant loop goroutine, so it needs no locking.
type summaryBuilder struct {
	runID     string
	reference time.Time
	counts    domain.CadenceCounts
	tenants   []domain.TenantReports
	errors    []string
}

func newSummaryBuilder(runID string, reference time.Time) *summaryBuilder {
	return &summaryBuilder{runID: runID, reference: reference}
}

func (b *summaryBuilder) addTenant(tenant domain.TenantReports) {
	b.tenants = append(b.tenants, tenant)
}

// addError records one failure. Every error message carries the linked
// account it originated from so the summary stays actionable.
func (b *summaryBuilder) addError(accountID snowflake.ID, message string) {
	b.errors = append(b.errors, fmt.Sprintf("%s: %s", accountID, message))
}

func (b *summaryBuilder) addFatal(err error) {
	b.errors = append(b.errors, fmt.Sprintf("run aborted: %s", err.Error()))
}

func (b *summaryBuilder) countGenerated(cadence domain.Cadence) {
	switch cadence {
	case domain.CadenceWeekly:
		b.counts.Weekly++
	case domain.CadenceMonthly:
		b.counts.Monthly++
	case domain.CadenceQuarterly:
		b.counts.Quarterly++
	case domain.CadenceYearly:
		b.counts.Yearly++
	}
}

func (b *summaryBuilder) build(generatedAt time.Time) *domain.RunSummary {
	return &domain.RunSummary{
		RunID:       b.runID,
		Succeeded:   len(b.errors) == 0,
		GeneratedAt: generatedAt,
		Reference:   b.reference,
		Counts:      b.counts,
		Tenants:     b.tenants,
		Errors:      b.errors,
	}
}
