package recipe

import (
	"github.com/homefridge/fridgely/internal/recipe/service"
	"go.uber.org/fx"
)

var Module = fx.Module("recipe.service",
	fx.Provide(service.New),
)
