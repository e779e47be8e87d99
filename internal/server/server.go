package server

import (
	"context"
	"net/http"
	"time"

	"github.com/finvue/finvue/internal/config"
	"github.com/finvue/finvue/internal/observability"
	obsmiddleware "github.com/finvue/finvue/internal/observability/logger"
	obsmetrics "github.com/finvue/finvue/internal/observability/metrics"
	obstracing "github.com/finvue/finvue/internal/observability/tracing"
	"github.com/finvue/finvue/internal/reportrun"
	tenantdomain "github.com/finvue/finvue/internal/tenant/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(provideHTTPMetrics),
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug: obsCfg.Debug(),
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func provideHTTPMetrics(obsCfg observability.Config) *obsmetrics.HTTPMetrics {
	return obsmetrics.HTTPWithConfig(obsmetrics.Config{
		ServiceName: obsCfg.ServiceName,
		Environment: obsCfg.Environment,
	})
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine  *gin.Engine
	cfg     config.Config
	db      *gorm.DB
	log     *zap.Logger
	runner  *reportrun.Runner
	tenants tenantdomain.Repository
}

type ServerParams struct {
	fx.In

	Gin     *gin.Engine
	Cfg     config.Config
	DB      *gorm.DB
	Log     *zap.Logger
	Runner  *reportrun.Runner
	Tenants tenantdomain.Repository
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:  p.Gin,
		cfg:     p.Cfg,
		db:      p.DB,
		log:     p.Log.Named("server"),
		runner:  p.Runner,
		tenants: p.Tenants,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1")

	v1.POST("/report-runs", s.TriggerReportRun)
	v1.GET("/tenants", s.ListTenants)
	v1.GET("/tenants/:id", s.GetTenantByID)
}
