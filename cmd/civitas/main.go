package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/civitas/internal/audit"
	"github.com/smallbiznis/civitas/internal/authorization"
	"github.com/smallbiznis/civitas/internal/clock"
	"github.com/smallbiznis/civitas/internal/company"
	"github.com/smallbiznis/civitas/internal/config"
	"github.com/smallbiznis/civitas/internal/contract"
	"github.com/smallbiznis/civitas/internal/guild"
	"github.com/smallbiznis/civitas/internal/migration"
	"github.com/smallbiznis/civitas/internal/notify"
	"github.com/smallbiznis/civitas/internal/observability"
	"github.com/smallbiznis/civitas/internal/ratelimit"
	"github.com/smallbiznis/civitas/internal/sale"
	"github.com/smallbiznis/civitas/internal/scheduler"
	"github.com/smallbiznis/civitas/internal/server"
	"github.com/smallbiznis/civitas/internal/taxes"
	"github.com/smallbiznis/civitas/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		fx.Provide(clock.NewSystemClock),
		db.Module,
		migration.Module,
		ratelimit.Module,
		notify.Module,
		authorization.Module,
		audit.Module,

		// Functional Domains
		guild.Module,
		company.Module,
		sale.Module,
		contract.Module,
		taxes.Module,

		scheduler.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) *snowflake.Node {
	node, err := snowflake.NewNode(cfg.SnowflakeNode)
	if err != nil {
		panic(err)
	}
	return node
}
