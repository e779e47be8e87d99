// Package reporting talks to the hosted reporting backend that actually
// renders the financial reports. The runner only needs report creation, so
// the surface stays small.
package reporting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/finvue/finvue/internal/config"
	"github.com/finvue/finvue/internal/observability/tracing"
	"github.com/finvue/finvue/internal/reportrun/domain"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

// HTTPProvider creates report runs over the backend's REST API. Each linked
// account authenticates with its own access token.
type HTTPProvider struct {
	baseURL      string
	serviceToken string
	client       *http.Client
	log          *zap.Logger
}

func NewHTTPProvider(cfg config.Config, log *zap.Logger) *HTTPProvider {
	timeout := cfg.ProviderTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPProvider{
		baseURL:      cfg.ProviderBaseURL,
		serviceToken: cfg.ProviderToken,
		client:       &http.Client{Timeout: timeout},
		log:          log.Named("reporting"),
	}
}

type createReportRequest struct {
	ReportType    string `json:"report_type"`
	IntervalStart int64  `json:"interval_start"`
	IntervalEnd   int64  `json:"interval_end"`
}

type createReportResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (p *HTTPProvider) CreateReport(ctx context.Context, accessToken string, reportType domain.ReportType, interval domain.Interval) (domain.ReportResult, error) {
	payload, err := json.Marshal(createReportRequest{
		ReportType:    string(reportType),
		IntervalStart: interval.Start,
		IntervalEnd:   interval.End,
	})
	if err != nil {
		return domain.ReportResult{}, fmt.Errorf("reporting: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/report_runs", bytes.NewReader(payload))
	if err != nil {
		return domain.ReportResult{}, fmt.Errorf("reporting: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if p.serviceToken != "" {
		req.Header.Set("X-Service-Token", p.serviceToken)
	}
	tracing.InjectContext(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := p.client.Do(req)
	if err != nil {
		return domain.ReportResult{}, fmt.Errorf("reporting: create report: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.ReportResult{}, fmt.Errorf("reporting: read response: %w", err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return domain.ReportResult{}, fmt.Errorf("reporting: backend returned %d", resp.StatusCode)
	}

	var decoded createReportResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return domain.ReportResult{}, fmt.Errorf("reporting: decode response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest || decoded.Error.Message != "" {
		message := decoded.Error.Message
		if message == "" {
			message = fmt.Sprintf("backend returned %d", resp.StatusCode)
		}
		return domain.ReportResult{
			ReportRunID:  decoded.ID,
			Status:       domain.ReportStatusError,
			ErrorMessage: message,
		}, nil
	}

	status := decoded.Status
	if status == "" {
		status = domain.ReportStatusPending
	}
	return domain.ReportResult{ReportRunID: decoded.ID, Status: status}, nil
}

// NoOpProvider accepts every request without calling anything. Used when no
// backend is configured, typically in local development.
type NoOpProvider struct{}

func (p *NoOpProvider) CreateReport(ctx context.Context, accessToken string, reportType domain.ReportType, interval domain.Interval) (domain.ReportResult, error) {
	return domain.ReportResult{ReportRunID: "noop", Status: domain.ReportStatusPending}, nil
}
