package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/homefridge/fridgely/internal/clock"
	"github.com/homefridge/fridgely/internal/config"
	"github.com/homefridge/fridgely/internal/server"
	"github.com/homefridge/fridgely/pkg/db"
	"github.com/homefridge/fridgely/pkg/log"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		log.Module,
		db.Module,
		clock.Module,
		fx.Provide(RegisterSnowflake),
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
