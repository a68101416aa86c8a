package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/sortelabs/promo/internal/config"
	"github.com/sortelabs/promo/internal/migration"
	"github.com/sortelabs/promo/internal/observability"
	"github.com/sortelabs/promo/internal/server"
	"github.com/sortelabs/promo/pkg/db"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		server.Module,
	).Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
