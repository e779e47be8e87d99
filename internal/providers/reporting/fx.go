package reporting

import (
	"github.com/finvue/finvue/internal/config"
	"github.com/finvue/finvue/internal/reportrun/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("reporting",
	fx.Provide(ProvideProvider),
)

func ProvideProvider(cfg config.Config, log *zap.Logger) domain.Provider {
	if cfg.ProviderBaseURL == "" {
		log.Warn("reporting backend not configured, using no-op provider")
		return &NoOpProvider{}
	}
	return NewHTTPProvider(cfg, log)
}
