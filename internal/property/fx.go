package property

import (
	"github.com/smallbiznis/tenora/internal/property/service"
	"go.uber.org/fx"
)

var Module = fx.Module("property.service",
	fx.Provide(service.New),
)
