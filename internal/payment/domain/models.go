package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodMpesa        PaymentMethod = "mpesa"
	MethodCheck        PaymentMethod = "check"
)

// Payment records money received against a lease. InvoiceID is optional;
// tenants sometimes pay on account before an invoice exists.
type Payment struct {
	ID            string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	LeaseID       string          `gorm:"not null;index" json:"lease_id"`
	InvoiceID     *string         `gorm:"index" json:"invoice_id,omitempty"`
	Amount        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	PaymentDate   time.Time       `gorm:"type:date;not null" json:"payment_date"`
	PaymentMethod PaymentMethod   `gorm:"type:text;not null" json:"payment_method"`
	Reference     string          `json:"reference,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Payment) TableName() string {
	return "payments"
}
