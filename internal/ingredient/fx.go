package ingredient

import (
	"github.com/homefridge/fridgely/internal/ingredient/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ingredient.service",
	fx.Provide(service.New),
)
