package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/joseikin-rescue/server/internal/advisor"
	"github.com/joseikin-rescue/server/internal/billing"
	"github.com/joseikin-rescue/server/internal/clock"
	"github.com/joseikin-rescue/server/internal/config"
	"github.com/joseikin-rescue/server/internal/gate"
	"github.com/joseikin-rescue/server/internal/identity"
	"github.com/joseikin-rescue/server/internal/logger"
	"github.com/joseikin-rescue/server/internal/metrics"
	"github.com/joseikin-rescue/server/internal/migration"
	"github.com/joseikin-rescue/server/internal/quota"
	"github.com/joseikin-rescue/server/internal/server"
	"github.com/joseikin-rescue/server/internal/user"
	"github.com/joseikin-rescue/server/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		clock.Module,
		db.Module,
		metrics.Module,
		identity.Module,
		migration.Module,

		// Domain services
		quota.Module,
		gate.Module,
		billing.Module,
		user.Module,
		advisor.Module,

		server.Module,
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
