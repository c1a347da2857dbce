package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ReadingStatus string

const (
	ReadingPending  ReadingStatus = "pending"
	ReadingInvoiced ReadingStatus = "invoiced"
	ReadingPaid     ReadingStatus = "paid"
)

// WaterReading is one meter capture for a unit. Previous reading, consumption
// and total amount are always derived server side; the client only submits
// the current meter value.
type WaterReading struct {
	ID              string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UnitID          string          `gorm:"not null;index" json:"unit_id"`
	ReadingDate     time.Time       `gorm:"type:date;not null" json:"reading_date"`
	PreviousReading decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"previous_reading"`
	CurrentReading  decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"current_reading"`
	Consumption     decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"consumption"`
	RatePerUnit     decimal.Decimal `gorm:"type:numeric(8,2);not null" json:"rate_per_unit"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	Status          ReadingStatus   `gorm:"type:text;not null;default:'pending'" json:"status"`
	Notes           string          `json:"notes,omitempty"`
	LastModifiedAt  time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"last_modified_at"`
	CreatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (WaterReading) TableName() string {
	return "water_readings"
}
