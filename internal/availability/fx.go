package availability

import (
	"github.com/homefridge/fridgely/internal/availability/service"
	"go.uber.org/fx"
)

var Module = fx.Module("availability.service",
	fx.Provide(service.New),
)
