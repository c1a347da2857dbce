package domain

import "time"

// ChargeCode is a recurring fee definition scoped to a property, e.g.
// "Garbage Fee" or "Security Fee". House types and units store the amount
// charged per code in their charge_amounts maps keyed by the code's ID.
type ChargeCode struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	PropertyID  string    `gorm:"not null;index" json:"property_id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (ChargeCode) TableName() string {
	return "charge_codes"
}
