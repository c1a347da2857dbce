package waterreading

import (
	"github.com/smallbiznis/tenora/internal/waterreading/service"
	"go.uber.org/fx"
)

var Module = fx.Module("waterreading.service",
	fx.Provide(service.New),
)
