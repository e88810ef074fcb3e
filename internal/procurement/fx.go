package procurement

import (
	"github.com/homefridge/fridgely/internal/procurement/service"
	"go.uber.org/fx"
)

var Module = fx.Module("procurement.service",
	fx.Provide(service.New),
)
