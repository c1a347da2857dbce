package lease

import (
	"github.com/smallbiznis/tenora/internal/lease/service"
	"go.uber.org/fx"
)

var Module = fx.Module("lease.service",
	fx.Provide(service.New),
)
