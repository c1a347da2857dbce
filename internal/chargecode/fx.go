package chargecode

import (
	"github.com/smallbiznis/tenora/internal/chargecode/service"
	"go.uber.org/fx"
)

var Module = fx.Module("chargecode.service",
	fx.Provide(service.New),
)
