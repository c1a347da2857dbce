package seed

import (
	"github.com/smallbiznis/tenora/internal/config"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Module seeds demo data on startup in development only.
var Module = fx.Module("seed",
	fx.Invoke(func(cfg config.Config, db *gorm.DB) error {
		if cfg.Environment != "development" {
			return nil
		}
		return EnsureDemoData(db)
	}),
)
