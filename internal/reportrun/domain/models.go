// Package domain contains the report run model shared by the runner,
// the provider adapters and the HTTP surface.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Cadence is a reporting frequency.
type Cadence string

const (
	CadenceWeekly    Cadence = "weekly"
	CadenceMonthly   Cadence = "monthly"
	CadenceQuarterly Cadence = "quarterly"
	CadenceYearly    Cadence = "yearly"
)

// ReportType identifies a kind of report the external provider can produce.
type ReportType string

const (
	ReportTypeBalanceSummary       ReportType = "balance_summary"
	ReportTypePayoutReconciliation ReportType = "payout_reconciliation"
)

// DefaultReportTypes is applied to every cadence unless the caller overrides it.
func DefaultReportTypes() []ReportType {
	return []ReportType{ReportTypeBalanceSummary, ReportTypePayoutReconciliation}
}

// ReportStatus values reported back by the provider.
const (
	ReportStatusPending = "pending"
	ReportStatusError   = "error"
)

// Interval is one calendar-aligned reporting period as inclusive UTC Unix
// seconds. Start is the first second of the period, End the last.
type Interval struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// StartTime returns the interval start as a UTC time.
func (i Interval) StartTime() time.Time { return time.Unix(i.Start, 0).UTC() }

// EndTime returns the interval end as a UTC time.
func (i Interval) EndTime() time.Time { return time.Unix(i.End, 0).UTC() }

// CadenceSet flags the cadences that apply to one tenant on one run.
type CadenceSet struct {
	Weekly    bool `json:"weekly"`
	Monthly   bool `json:"monthly"`
	Quarterly bool `json:"quarterly"`
	Yearly    bool `json:"yearly"`
}

// Any reports whether at least one cadence applies.
func (s CadenceSet) Any() bool {
	return s.Weekly || s.Monthly || s.Quarterly || s.Yearly
}

// Enabled returns the applicable cadences in fixed order.
func (s CadenceSet) Enabled() []Cadence {
	out := make([]Cadence, 0, 4)
	if s.Weekly {
		out = append(out, CadenceWeekly)
	}
	if s.Monthly {
		out = append(out, CadenceMonthly)
	}
	if s.Quarterly {
		out = append(out, CadenceQuarterly)
	}
	if s.Yearly {
		out = append(out, CadenceYearly)
	}
	return out
}

// ReportResult is the outcome of one report creation attempt.
type ReportResult struct {
	AccountID    snowflake.ID `json:"account_id"`
	ReportRunID  string       `json:"report_run_id,omitempty"`
	Type         ReportType   `json:"report_type"`
	Cadence      Cadence      `json:"cadence"`
	Status       string       `json:"status"`
	ErrorMessage string       `json:"error_message,omitempty"`
}

// Failed reports whether the provider reported an error for this attempt.
func (r ReportResult) Failed() bool { return r.Status == ReportStatusError }

// CadenceCounts tracks generated reports per cadence.
type CadenceCounts struct {
	Weekly    int `json:"weekly"`
	Monthly   int `json:"monthly"`
	Quarterly int `json:"quarterly"`
	Yearly    int `json:"yearly"`
}

// AccountReports groups the results of one linked account.
type AccountReports struct {
	AccountID snowflake.ID   `json:"account_id"`
	Results   []ReportResult `json:"results"`
}

// TenantReports groups one tenant's per-account results.
type TenantReports struct {
	TenantID   snowflake.ID     `json:"tenant_id"`
	TenantName string           `json:"tenant_name"`
	Cadences   CadenceSet       `json:"cadences"`
	Accounts   []AccountReports `json:"accounts"`
}

// RunSummary is the aggregate outcome of one fan-out invocation.
type RunSummary struct {
	RunID       string          `json:"run_id"`
	Succeeded   bool            `json:"succeeded"`
	GeneratedAt time.Time       `json:"generated_at"`
	Reference   time.Time       `json:"reference_time"`
	Counts      CadenceCounts   `json:"counts"`
	Tenants     []TenantReports `json:"tenants"`
	Errors      []string        `json:"errors"`
}

// HasResults reports whether any account produced a result.
func (s *RunSummary) HasResults() bool {
	if s == nil {
		return false
	}
	for _, tenant := range s.Tenants {
		if len(tenant.Accounts) > 0 {
			return true
		}
	}
	return false
}
