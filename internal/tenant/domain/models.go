package domain

import "time"

type Tenant struct {
	ID               string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	FullName         string    `gorm:"not null" json:"full_name"`
	Email            string    `gorm:"not null;uniqueIndex" json:"email"`
	Phone            string    `gorm:"not null" json:"phone"`
	IDNumber         string    `gorm:"column:id_number;not null;uniqueIndex" json:"id_number"`
	EmergencyContact string    `json:"emergency_contact,omitempty"`
	EmergencyPhone   string    `json:"emergency_phone,omitempty"`
	CreatedAt        time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Tenant) TableName() string {
	return "tenants"
}
