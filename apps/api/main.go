package main

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/paperflow/internal/clock"
	"github.com/smallbiznis/paperflow/internal/config"
	"github.com/smallbiznis/paperflow/internal/observability"
	plancatalogdomain "github.com/smallbiznis/paperflow/internal/plancatalog/domain"
	"github.com/smallbiznis/paperflow/internal/seed"
	"github.com/smallbiznis/paperflow/internal/server"
	"github.com/smallbiznis/paperflow/pkg/db"
	"github.com/smallbiznis/paperflow/pkg/log"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func main() {
	app := fx.New(
		config.Module,
		log.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		server.Module,
		fx.Invoke(bootstrap),
	)
	app.Run()
}

func bootstrap(lc fx.Lifecycle, gdb *gorm.DB, catalog plancatalogdomain.Service) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return seed.Bootstrap(ctx, gdb, catalog)
		},
	})
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
