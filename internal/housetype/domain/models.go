package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type WaterRateType string

const (
	WaterRateUnitBased WaterRateType = "unit_based"
	WaterRateFlat      WaterRateType = "flat_rate"
)

// HouseType is a rentable unit category within a property, e.g. "Bedsitter"
// or "2 Bedroom". New units inherit its rent, deposit and water pricing.
type HouseType struct {
	ID                string            `gorm:"primaryKey;type:varchar(36)" json:"id"`
	PropertyID        string            `gorm:"not null;index" json:"property_id"`
	Name              string            `gorm:"not null" json:"name"`
	Description       string            `json:"description,omitempty"`
	BaseRentAmount    decimal.Decimal   `gorm:"type:numeric(12,2);not null" json:"base_rent_amount"`
	RentDepositAmount decimal.Decimal   `gorm:"type:numeric(12,2);not null;default:0" json:"rent_deposit_amount"`
	WaterRatePerUnit  decimal.Decimal   `gorm:"type:numeric(8,2);not null" json:"water_rate_per_unit"`
	WaterRateType     WaterRateType     `gorm:"type:text;not null;default:'unit_based'" json:"water_rate_type"`
	WaterFlatRate     decimal.Decimal   `gorm:"type:numeric(8,2);not null;default:0" json:"water_flat_rate"`
	ChargeAmounts     datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"charge_amounts,omitempty"`
	IsActive          bool              `gorm:"not null;default:true" json:"is_active"`
	CreatedAt         time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (HouseType) TableName() string {
	return "house_types"
}
