package reportrun

import (
	"os"
	"strconv"
	"time"

	"github.com/finvue/finvue/internal/reportrun/domain"
)

// Config tunes the report runner.
type Config struct {
	// RunInterval is how often the background loop wakes up. Boundary
	// detection only looks at hour and minute, so anything coarser than a
	// minute risks skipping a month boundary.
	RunInterval time.Duration

	// MaxAccountWorkers caps concurrent provider calls per tenant.
	MaxAccountWorkers int

	// ReportTypes is the set requested for every enabled cadence.
	ReportTypes []domain.ReportType

	// LockTTL bounds how long a run may hold the cross-instance run lock.
	LockTTL time.Duration
}

func (c Config) withDefaults() Config {
	if c.RunInterval <= 0 {
		c.RunInterval = time.Minute
	}
	if c.MaxAccountWorkers <= 0 {
		c.MaxAccountWorkers = 8
	}
	if len(c.ReportTypes) == 0 {
		c.ReportTypes = domain.DefaultReportTypes()
	}
	if c.LockTTL <= 0 {
		c.LockTTL = 10 * time.Minute
	}
	return c
}

// ProvideConfig builds the runner configuration from the environment.
func ProvideConfig() Config {
	return Config{
		RunInterval:       getenvDuration("REPORT_RUN_INTERVAL", 0),
		MaxAccountWorkers: getenvInt("REPORT_RUN_MAX_WORKERS", 0),
		LockTTL:           getenvDuration("REPORT_RUN_LOCK_TTL", 0),
	}.withDefaults()
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
