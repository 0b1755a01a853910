package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/paperflow/internal/clock"
	"github.com/smallbiznis/paperflow/internal/config"
	"github.com/smallbiznis/paperflow/internal/observability"
	"github.com/smallbiznis/paperflow/internal/plancatalog"
	"github.com/smallbiznis/paperflow/internal/quota"
	"github.com/smallbiznis/paperflow/internal/ratelimit"
	"github.com/smallbiznis/paperflow/internal/scheduler"
	"github.com/smallbiznis/paperflow/pkg/db"
	"github.com/smallbiznis/paperflow/pkg/log"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		log.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		plancatalog.Module,
		quota.Module,
		ratelimit.Module,
		scheduler.Module,
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
