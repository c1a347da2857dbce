package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type LeaseStatus string

const (
	LeaseActive     LeaseStatus = "active"
	LeaseSuspended  LeaseStatus = "suspended"
	LeaseTerminated LeaseStatus = "terminated"
	LeaseExpired    LeaseStatus = "expired"
)

// Lease binds a tenant to a unit for a date range. Both bounds are
// inclusive: a lease ending June 30 still occupies the unit on June 30.
type Lease struct {
	ID               string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UnitID           string          `gorm:"not null;index" json:"unit_id"`
	TenantID         string          `gorm:"not null;index" json:"tenant_id"`
	StartDate        time.Time       `gorm:"type:date;not null" json:"start_date"`
	EndDate          time.Time       `gorm:"type:date;not null" json:"end_date"`
	RentAmount       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"rent_amount"`
	DepositAmount    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"deposit_amount"`
	WaterRatePerUnit decimal.Decimal `gorm:"type:numeric(8,2);not null" json:"water_rate_per_unit"`
	Status           LeaseStatus     `gorm:"type:text;not null;default:'active'" json:"status"`
	CreatedAt        time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Lease) TableName() string {
	return "leases"
}

// DateOnly normalizes a timestamp to midnight UTC. Date columns are stored
// this way, so query arguments built with the same normalization compare
// exactly at the period bounds on every dialect.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Covers reports whether the date falls inside the lease period, bounds
// inclusive.
func (l Lease) Covers(date time.Time) bool {
	day := DateOnly(date)
	return !day.Before(l.StartDate) && !day.After(l.EndDate)
}
