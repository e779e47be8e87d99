package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config carries the constant labels attached to every metric.
type Config struct {
	ServiceName string
	Environment string
}

const (
	ReportErrorKindProvider  = "provider"
	ReportErrorKindTransport = "transport"
	ReportErrorKindFatal     = "fatal_setup"
	ReportErrorKindUnknown   = "unknown"
)

// ReportRunMetrics captures report fan-out health signals.
type ReportRunMetrics struct {
	runsTotal        prometheus.Counter
	runDuration      prometheus.Histogram
	runLoopLag       prometheus.Histogram
	tenantsProcessed prometheus.Counter
	tenantsSkipped   prometheus.Counter
	reportsGenerated *prometheus.CounterVec
	reportErrors     *prometheus.CounterVec
	providerLatency  *prometheus.HistogramVec
}

var (
	reportRunMetricsOnce sync.Once
	reportRunMetrics     *ReportRunMetrics
)

// ReportRun returns the singleton report run metrics registry.
func ReportRun() *ReportRunMetrics {
	return ReportRunWithConfig(Config{})
}

// ReportRunWithConfig returns the singleton report run metrics using config labels.
func ReportRunWithConfig(cfg Config) *ReportRunMetrics {
	reportRunMetricsOnce.Do(func() {
		reportRunMetrics = newReportRunMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return reportRunMetrics
}

// ResetReportRunMetricsForTest resets the report run metrics singleton for tests.
func ResetReportRunMetricsForTest() {
	reportRunMetricsOnce = sync.Once{}
	reportRunMetrics = nil
}

func newReportRunMetrics(registerer prometheus.Registerer, cfg Config) *ReportRunMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "finvue"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	runsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "finvue_report_runs_total",
		Help:        "Report fan-out invocations.",
		ConstLabels: constLabels,
	})
	runDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:        "finvue_report_run_duration_seconds",
		Help:        "Report fan-out latency to protect reporting SLOs.",
		Buckets:     []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60, 120, 300, 600},
		ConstLabels: constLabels,
	})
	runLoopLag := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:        "finvue_report_runloop_lag_seconds",
		Help:        "Report run loop lag beyond the configured interval.",
		Buckets:     []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		ConstLabels: constLabels,
	})
	tenantsProcessed := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "finvue_report_tenants_processed_total",
		Help:        "Tenants whose linked accounts were fanned out in a run.",
		ConstLabels: constLabels,
	})
	tenantsSkipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "finvue_report_tenants_skipped_total",
		Help:        "Tenants skipped because no cadence applied.",
		ConstLabels: constLabels,
	})
	reportsGenerated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "finvue_reports_generated_total",
		Help:        "Reports generated by cadence and report type.",
		ConstLabels: constLabels,
	}, []string{"cadence", "report_type"})
	reportErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "finvue_report_errors_total",
		Help:        "Report creation errors by low-cardinality kind.",
		ConstLabels: constLabels,
	}, []string{"kind"})
	providerLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "finvue_report_provider_latency_seconds",
		Help:        "External report provider call latency.",
		Buckets:     []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		ConstLabels: constLabels,
	}, []string{"report_type"})

	registerer.MustRegister(
		runsTotal,
		runDuration,
		runLoopLag,
		tenantsProcessed,
		tenantsSkipped,
		reportsGenerated,
		reportErrors,
		providerLatency,
	)

	return &ReportRunMetrics{
		runsTotal:        runsTotal,
		runDuration:      runDuration,
		runLoopLag:       runLoopLag,
		tenantsProcessed: tenantsProcessed,
		tenantsSkipped:   tenantsSkipped,
		reportsGenerated: reportsGenerated,
		reportErrors:     reportErrors,
		providerLatency:  providerLatency,
	}
}

// IncRun increments the run counter.
func (m *ReportRunMetrics) IncRun() {
	if m == nil || m.runsTotal == nil {
		return
	}
	m.runsTotal.Inc()
}

// ObserveRunDuration records run latency in seconds.
func (m *ReportRunMetrics) ObserveRunDuration(duration time.Duration) {
	if m == nil || m.runDuration == nil {
		return
	}
	m.runDuration.Observe(duration.Seconds())
}

// ObserveRunLoopLag records lag between the scheduled tick and actual run start.
func (m *ReportRunMetrics) ObserveRunLoopLag(duration time.Duration) {
	if m == nil || m.runLoopLag == nil {
		return
	}
	lag := duration
	if lag < 0 {
		lag = 0
	}
	m.runLoopLag.Observe(lag.Seconds())
}

// IncTenantProcessed increments the processed tenant counter.
func (m *ReportRunMetrics) IncTenantProcessed() {
	if m == nil || m.tenantsProcessed == nil {
		return
	}
	m.tenantsProcessed.Inc()
}

// IncTenantSkipped increments the skipped tenant counter.
func (m *ReportRunMetrics) IncTenantSkipped() {
	if m == nil || m.tenantsSkipped == nil {
		return
	}
	m.tenantsSkipped.Inc()
}

// IncReportGenerated increments generated report counts.
func (m *ReportRunMetrics) IncReportGenerated(cadence, reportType string) {
	if m == nil || m.reportsGenerated == nil {
		return
	}
	m.reportsGenerated.WithLabelValues(cadence, reportType).Inc()
}

// IncReportError increments the error counter with classification.
func (m *ReportRunMetrics) IncReportError(kind string) {
	if m == nil || m.reportErrors == nil {
		return
	}
	if strings.TrimSpace(kind) == "" {
		kind = ReportErrorKindUnknown
	}
	m.reportErrors.WithLabelValues(kind).Inc()
}

// ObserveProviderLatency records a single provider call latency.
func (m *ReportRunMetrics) ObserveProviderLatency(reportType string, duration time.Duration) {
	if m == nil || m.providerLatency == nil {
		return
	}
	m.providerLatency.WithLabelValues(reportType).Observe(duration.Seconds())
}
