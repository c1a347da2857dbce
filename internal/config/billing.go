package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// BillingConfig holds the billing policy knobs that operators tune per
// deployment: the water rate applied when a unit has no active lease, the
// day of month rent invoices fall due, and the invoice number prefix.
type BillingConfig struct {
	DefaultWaterRate float64 `mapstructure:"defaultWaterRate"`
	InvoiceDueDay    int     `mapstructure:"invoiceDueDay"`
	InvoicePrefix    string  `mapstructure:"invoicePrefix"`
}

func DefaultBillingConfig() BillingConfig {
	return BillingConfig{
		DefaultWaterRate: 15.50,
		InvoiceDueDay:    5,
		InvoicePrefix:    "INV",
	}
}

// BillingConfigHolder keeps the current billing config and reloads it when
// the file changes on disk.
type BillingConfigHolder struct {
	current atomic.Value // holds BillingConfig
}

func NewBillingConfigHolder() (*BillingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("billing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/tenora/config") // Volume-mounted config
	v.AddConfigPath("/etc/tenora")            // System config
	v.AddConfigPath(".")                      // Current directory (dev mode)

	v.SetEnvPrefix("TENORA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultBillingConfig()
	v.SetDefault("billing.defaultWaterRate", defaults.DefaultWaterRate)
	v.SetDefault("billing.invoiceDueDay", defaults.InvoiceDueDay)
	v.SetDefault("billing.invoicePrefix", defaults.InvoicePrefix)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg BillingConfig
	if err := v.UnmarshalKey("billing", &cfg); err != nil {
		return nil, err
	}
	if err := validateBillingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated BillingConfig
		if err := v.UnmarshalKey("billing", &updated); err != nil {
			log.Printf("[billing-config] reload failed: %v", err)
			return
		}
		if err := validateBillingConfig(updated); err != nil {
			log.Printf("[billing-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[billing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticBillingConfigHolder wraps a fixed config with no file watching.
func NewStaticBillingConfigHolder(cfg BillingConfig) *BillingConfigHolder {
	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *BillingConfigHolder) Get() BillingConfig {
	return h.current.Load().(BillingConfig)
}

func validateBillingConfig(cfg BillingConfig) error {
	if cfg.DefaultWaterRate < 0 {
		return errors.New("billing.defaultWaterRate cannot be negative")
	}
	if cfg.InvoiceDueDay < 1 || cfg.InvoiceDueDay > 28 {
		return errors.New("billing.invoiceDueDay must be between 1 and 28")
	}
	if strings.TrimSpace(cfg.InvoicePrefix) == "" {
		return errors.New("billing.invoicePrefix cannot be empty")
	}
	return nil
}
