package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type UnitStatus string

const (
	UnitVacant      UnitStatus = "vacant"
	UnitOccupied    UnitStatus = "occupied"
	UnitMaintenance UnitStatus = "maintenance"
)

// Unit is a single rentable room or house. Pricing fields are snapshots
// taken from the house type at creation time; editing the house type later
// does not reprice existing units.
type Unit struct {
	ID                string            `gorm:"primaryKey;type:varchar(36)" json:"id"`
	PropertyID        string            `gorm:"not null;index" json:"property_id"`
	HouseTypeID       string            `gorm:"not null;index" json:"house_type_id"`
	UnitNumber        string            `gorm:"not null" json:"unit_number"`
	RentAmount        decimal.Decimal   `gorm:"type:numeric(12,2);not null" json:"rent_amount"`
	RentDepositAmount decimal.Decimal   `gorm:"type:numeric(12,2);not null;default:0" json:"rent_deposit_amount"`
	WaterRateAmount   decimal.Decimal   `gorm:"type:numeric(12,2);not null;default:0" json:"water_rate_amount"`
	ChargeAmounts     datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"charge_amounts,omitempty"`
	Status            UnitStatus        `gorm:"type:text;not null;default:'vacant'" json:"status"`
	CreatedAt         time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Unit) TableName() string {
	return "units"
}
