package reportrun

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/finvue/finvue/internal/clock"
	obsmetrics "github.com/finvue/finvue/internal/observability/metrics"
	"github.com/finvue/finvue/internal/reportrun/domain"
	tenantdomain "github.com/finvue/finvue/internal/tenant/domain"
	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type fakeTenantRepo struct {
	tenants []tenantdomain.TenantWithAccounts
	err     error
}

func (f *fakeTenantRepo) ListTenantsWithAccounts(ctx context.Context, db *gorm.DB, tiers []tenantdomain.SubscriptionTier, provider string) ([]tenantdomain.TenantWithAccounts, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tenants, nil
}

func (f *fakeTenantRepo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*tenantdomain.Tenant, error) {
	return nil, nil
}

func (f *fakeTenantRepo) List(ctx context.Context, db *gorm.DB) ([]tenantdomain.Tenant, error) {
	return nil, nil
}

// fakeProvider records every call and fails tokens listed in failTokens.
type fakeProvider struct {
	mu         sync.Mutex
	calls      []providerCall
	failTokens map[string]string
	transport  map[string]error
}

type providerCall struct {
	token      string
	reportType domain.ReportType
	interval   domain.Interval
}

func (f *fakeProvider) CreateReport(ctx context.Context, accessToken string, reportType domain.ReportType, interval domain.Interval) (domain.ReportResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, providerCall{token: accessToken, reportType: reportType, interval: interval})
	seq := len(f.calls)
	f.mu.Unlock()

	if err, ok := f.transport[accessToken]; ok {
		return domain.ReportResult{}, err
	}
	if msg, ok := f.failTokens[accessToken]; ok {
		return domain.ReportResult{Status: domain.ReportStatusError, ErrorMessage: msg}, nil
	}
	return domain.ReportResult{
		ReportRunID: fmt.Sprintf("frr_%d", seq),
		Status:      domain.ReportStatusPending,
	}, nil
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func setupTestMetrics(t *testing.T) {
	t.Helper()
	obsmetrics.ResetReportRunMetricsForTest()
	prev := prometheus.DefaultRegisterer
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	t.Cleanup(func() {
		prometheus.DefaultRegisterer = prev
		obsmetrics.ResetReportRunMetricsForTest()
	})
}

func newTestRunner(t *testing.T, repo tenantdomain.Repository, provider domain.Provider) *Runner {
	t.Helper()
	setupTestMetrics(t)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	runner, err := New(Params{
		DB:       db,
		Log:      zaptest.NewLogger(t),
		Tenants:  repo,
		Provider: provider,
		GenID:    node,
		Clock:    clock.NewFakeClock(utc(2025, time.April, 1, 0, 0, 0)),
	})
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	return runner
}

func testTenant(id int64, name string, tier tenantdomain.SubscriptionTier, accounts ...tenantdomain.LinkedAccount) tenantdomain.TenantWithAccounts {
	return tenantdomain.TenantWithAccounts{
		Tenant: tenantdomain.Tenant{
			ID:               snowflake.ID(id),
			Name:             name,
			SubscriptionTier: tier,
		},
		Accounts: accounts,
	}
}

func testAccount(id int64, token string) tenantdomain.LinkedAccount {
	return tenantdomain.LinkedAccount{
		ID:          snowflake.ID(id),
		Provider:    tenantdomain.ProviderBilling,
		Status:      tenantdomain.AccountStatusConnected,
		AccessToken: token,
	}
}

func TestRunner_Run_QuarterBoundaryFanOut(t *testing.T) {
	repo := &fakeTenantRepo{tenants: []tenantdomain.TenantWithAccounts{
		testTenant(100, "acme", tenantdomain.TierGrowth,
			testAccount(1001, "tok-acme-1"),
			testAccount(1002, "tok-acme-2"),
		),
		testTenant(200, "globex", tenantdomain.TierStarter,
			testAccount(2001, "tok-globex-1"),
		),
	}}
	provider := &fakeProvider{}
	runner := newTestRunner(t, repo, provider)

	// April 1st 00:00 UTC: month and quarter boundaries, not a year boundary.
	summary := runner.Run(context.Background(), utc(2025, time.April, 1, 0, 0, 0))

	assert.True(t, summary.Succeeded)
	assert.Empty(t, summary.Errors)
	assert.NotEmpty(t, summary.RunID)

	// Growth tenant: 2 accounts x 3 cadences x 2 report types. Starter: 1x1x2.
	assert.Equal(t, 14, provider.callCount())
	assert.Equal(t, 6, summary.Counts.Weekly)
	assert.Equal(t, 4, summary.Counts.Monthly)
	assert.Equal(t, 4, summary.Counts.Quarterly)
	assert.Equal(t, 0, summary.Counts.Yearly)

	assert.Len(t, summary.Tenants, 2)
	assert.Equal(t, "acme", summary.Tenants[0].TenantName)
	assert.Len(t, summary.Tenants[0].Accounts, 2)
	assert.Len(t, summary.Tenants[1].Accounts, 1)
	for _, account := range summary.Tenants[0].Accounts {
		assert.Len(t, account.Results, 6)
	}
}

func TestRunner_Run_SkipsTenantsWithoutCadence(t *testing.T) {
	repo := &fakeTenantRepo{tenants: []tenantdomain.TenantWithAccounts{
		testTenant(100, "freeloader", tenantdomain.TierFree, testAccount(1001, "tok-free")),
		testTenant(200, "globex", tenantdomain.TierStarter, testAccount(2001, "tok-globex")),
	}}
	provider := &fakeProvider{}
	runner := newTestRunner(t, repo, provider)

	summary := runner.Run(context.Background(), utc(2025, time.April, 15, 9, 0, 0))

	assert.True(t, summary.Succeeded)
	assert.Len(t, summary.Tenants, 1)
	assert.Equal(t, "globex", summary.Tenants[0].TenantName)
	assert.Equal(t, 2, provider.callCount())
}

func TestRunner_Run_TenantWithNoAccountsYieldsNoResults(t *testing.T) {
	repo := &fakeTenantRepo{tenants: []tenantdomain.TenantWithAccounts{
		testTenant(100, "empty", tenantdomain.TierStarter),
	}}
	provider := &fakeProvider{}
	runner := newTestRunner(t, repo, provider)

	summary := runner.Run(context.Background(), utc(2025, time.April, 15, 9, 0, 0))

	assert.True(t, summary.Succeeded)
	assert.Zero(t, provider.callCount())
	assert.False(t, summary.HasResults())
}

func TestRunner_Run_ProviderErrorIsIsolated(t *testing.T) {
	repo := &fakeTenantRepo{tenants: []tenantdomain.TenantWithAccounts{
		testTenant(100, "acme", tenantdomain.TierStarter,
			testAccount(1001, "tok-good"),
			testAccount(1002, "tok-bad"),
		),
	}}
	provider := &fakeProvider{failTokens: map[string]string{"tok-bad": "account disconnected"}}
	runner := newTestRunner(t, repo, provider)

	summary := runner.Run(context.Background(), utc(2025, time.April, 15, 9, 0, 0))

	assert.False(t, summary.Succeeded)
	assert.Len(t, summary.Errors, 2)
	for _, msg := range summary.Errors {
		assert.True(t, strings.HasPrefix(msg, snowflake.ID(1002).String()+": "), msg)
		assert.Contains(t, msg, "account disconnected")
	}
	// The healthy account still produced its reports.
	assert.Equal(t, 2, summary.Counts.Weekly)
	assert.Equal(t, 4, provider.callCount())
}

func TestRunner_Run_TransportErrorIsIsolated(t *testing.T) {
	repo := &fakeTenantRepo{tenants: []tenantdomain.TenantWithAccounts{
		testTenant(100, "acme", tenantdomain.TierStarter,
			testAccount(1001, "tok-good"),
			testAccount(1002, "tok-flaky"),
		),
	}}
	provider := &fakeProvider{transport: map[string]error{"tok-flaky": errors.New("connection refused")}}
	runner := newTestRunner(t, repo, provider)

	summary := runner.Run(context.Background(), utc(2025, time.April, 15, 9, 0, 0))

	assert.False(t, summary.Succeeded)
	assert.Len(t, summary.Errors, 2)
	assert.Contains(t, summary.Errors[0], "connection refused")
	// Transport failures produce no result rows for the failing account.
	for _, tenant := range summary.Tenants {
		for _, account := range tenant.Accounts {
			if account.AccountID == snowflake.ID(1002) {
				assert.Empty(t, account.Results)
			}
		}
	}
	assert.Equal(t, 2, summary.Counts.Weekly)
}

func TestRunner_Run_DirectoryFailureIsFatal(t *testing.T) {
	repo := &fakeTenantRepo{err: errors.New("database unavailable")}
	provider := &fakeProvider{}
	runner := newTestRunner(t, repo, provider)

	summary := runner.Run(context.Background(), utc(2025, time.April, 15, 9, 0, 0))

	assert.False(t, summary.Succeeded)
	assert.False(t, summary.HasResults())
	assert.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "database unavailable")
	assert.Zero(t, provider.callCount())
}

func TestRunner_Run_DefaultsReferenceToClock(t *testing.T) {
	repo := &fakeTenantRepo{}
	runner := newTestRunner(t, repo, &fakeProvider{})

	summary := runner.Run(context.Background(), time.Time{})

	assert.Equal(t, utc(2025, time.April, 1, 0, 0, 0), summary.Reference)
}

func TestRunner_Trigger_WithoutRedisRuns(t *testing.T) {
	repo := &fakeTenantRepo{}
	runner := newTestRunner(t, repo, &fakeProvider{})

	summary, err := runner.Trigger(context.Background(), utc(2025, time.April, 15, 9, 0, 0))

	assert.NoError(t, err)
	assert.NotNil(t, summary)
	assert.True(t, summary.Succeeded)
}
