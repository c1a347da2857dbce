package domain

import "time"

type PropertyStatus string

const (
	PropertyActive   PropertyStatus = "active"
	PropertyInactive PropertyStatus = "inactive"
)

type Property struct {
	ID            string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name          string         `gorm:"not null" json:"name"`
	Address       string         `gorm:"not null" json:"address"`
	LandlordName  string         `gorm:"not null" json:"landlord_name"`
	LandlordPhone string         `json:"landlord_phone,omitempty"`
	LandlordEmail string         `json:"landlord_email,omitempty"`
	Status        PropertyStatus `gorm:"type:text;not null;default:'active'" json:"status"`
	CreatedAt     time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Property) TableName() string {
	return "properties"
}
