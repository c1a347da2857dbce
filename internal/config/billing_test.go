package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultBillingConfig(t *testing.T) {
	cfg := DefaultBillingConfig()
	assert.Equal(t, 15.50, cfg.DefaultWaterRate)
	assert.Equal(t, 5, cfg.InvoiceDueDay)
	assert.Equal(t, "INV", cfg.InvoicePrefix)
}

func TestStaticBillingConfigHolder(t *testing.T) {
	holder := NewStaticBillingConfigHolder(BillingConfig{
		DefaultWaterRate: 22.25,
		InvoiceDueDay:    10,
		InvoicePrefix:    "RNT",
	})

	got := holder.Get()
	assert.Equal(t, 22.25, got.DefaultWaterRate)
	assert.Equal(t, 10, got.InvoiceDueDay)
	assert.Equal(t, "RNT", got.InvoicePrefix)
}
