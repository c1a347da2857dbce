package housetype

import (
	"github.com/smallbiznis/tenora/internal/housetype/service"
	"go.uber.org/fx"
)

var Module = fx.Module("housetype.service",
	fx.Provide(service.New),
)
