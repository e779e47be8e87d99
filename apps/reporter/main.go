package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/finvue/finvue/internal/clock"
	"github.com/finvue/finvue/internal/config"
	"github.com/finvue/finvue/internal/migration"
	"github.com/finvue/finvue/internal/observability"
	"github.com/finvue/finvue/internal/providers/reporting"
	"github.com/finvue/finvue/internal/reportrun"
	"github.com/finvue/finvue/internal/tenant"
	"github.com/finvue/finvue/pkg/db"
	"go.uber.org/fx"
)

// Scheduler-only binary for split deployments. No HTTP server.
func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		tenant.Module,
		reporting.Module,
		reportrun.Module,

		fx.Invoke(reportrun.StartLoop),
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
