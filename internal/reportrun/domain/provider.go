package domain

import "context"

// Provider creates reports on the external reporting backend on behalf of a
// linked account. Implementations must be safe for concurrent use: the runner
// fans out across accounts.
type Provider interface {
	// CreateReport requests one report for the given period. It returns an
	// error only for transport-level failures; a provider-side rejection is
	// reported through ReportResult.Status and ErrorMessage.
	CreateReport(ctx context.Context, accessToken string, reportType ReportType, interval Interval) (ReportResult, error)
}
