package migration

import (
	chargecodedomain "github.com/smallbiznis/tenora/internal/chargecode/domain"
	"github.com/smallbiznis/tenora/internal/config"
	housetypedomain "github.com/smallbiznis/tenora/internal/housetype/domain"
	invoicedomain "github.com/smallbiznis/tenora/internal/invoice/domain"
	leasedomain "github.com/smallbiznis/tenora/internal/lease/domain"
	paymentdomain "github.com/smallbiznis/tenora/internal/payment/domain"
	propertydomain "github.com/smallbiznis/tenora/internal/property/domain"
	tenantdomain "github.com/smallbiznis/tenora/internal/tenant/domain"
	unitdomain "github.com/smallbiznis/tenora/internal/unit/domain"
	waterreadingdomain "github.com/smallbiznis/tenora/internal/waterreading/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// The versioned migrations target postgres. Other dialects, used for
		// local development, fall back to gorm's auto migration.
		if cfg.DBType != "postgres" {
			return conn.AutoMigrate(
				&propertydomain.Property{},
				&housetypedomain.HouseType{},
				&chargecodedomain.ChargeCode{},
				&tenantdomain.Tenant{},
				&unitdomain.Unit{},
				&leasedomain.Lease{},
				&waterreadingdomain.WaterReading{},
				&invoicedomain.Invoice{},
				&invoicedomain.InvoiceItem{},
				&paymentdomain.Payment{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
