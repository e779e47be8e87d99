package reportrun

import (
	"context"

	"github.com/finvue/finvue/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var Module = fx.Module("reportrun",
	fx.Provide(ProvideConfig),
	fx.Provide(provideRunLock),
	fx.Provide(New),
)

func provideRunLock(cfg config.Config) *RunLock {
	if cfg.RedisAddr == "" {
		return NewRunLock(nil)
	}
	return NewRunLock(redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}))
}

// StartLoop runs the background schedule for the lifetime of the app. Apps
// that only expose the HTTP trigger omit this invoke.
func StartLoop(lc fx.Lifecycle, runner *Runner) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ctx, cancel := context.WithCancel(context.Background())
			go runner.RunForever(ctx)
			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})
			return nil
		},
	})
}
