package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoicePending InvoiceStatus = "pending"
	InvoicePartial InvoiceStatus = "partial"
	InvoicePaid    InvoiceStatus = "paid"
)

// Invoice is a billing document against a lease. Amount is the sum of the
// invoice's line items whenever items exist; status is always re-derived
// from recorded payments, never set directly by callers.
type Invoice struct {
	ID            string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	LeaseID       string          `gorm:"not null;index" json:"lease_id"`
	InvoiceNumber string          `gorm:"not null;uniqueIndex" json:"invoice_number"`
	Description   string          `gorm:"not null" json:"description"`
	Amount        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	IssueDate     time.Time       `gorm:"type:date;not null" json:"issue_date"`
	DueDate       time.Time       `gorm:"type:date;not null" json:"due_date"`
	Status        InvoiceStatus   `gorm:"type:text;not null;default:'pending'" json:"status"`
	CreatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Invoice) TableName() string {
	return "invoices"
}

type InvoiceItem struct {
	ID          string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	InvoiceID   string          `gorm:"not null;index" json:"invoice_id"`
	ChargeCode  string          `gorm:"not null" json:"charge_code"`
	Description string          `gorm:"not null" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:numeric(10,2);not null;default:1" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (InvoiceItem) TableName() string {
	return "invoice_items"
}
