package fridge

import (
	"github.com/homefridge/fridgely/internal/fridge/service"
	"go.uber.org/fx"
)

var Module = fx.Module("fridge.service",
	fx.Provide(service.New),
)
