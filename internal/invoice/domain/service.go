package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/tenora/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListInvoiceRequest struct {
	PageToken string
	PageSize  int32
	LeaseID   string
	Status    string
	Overdue   bool
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []Invoice `json:"invoices"`
}

type CreateInvoiceRequest struct {
	LeaseID       string
	InvoiceNumber string
	Description   string
	Amount        decimal.Decimal
	IssueDate     time.Time
	DueDate       time.Time
}

type UpdateInvoiceRequest struct {
	ID          string
	Description *string
	Amount      *decimal.Decimal
	IssueDate   *time.Time
	DueDate     *time.Time
}

type GetInvoiceRequest struct {
	ID string
}

type InvoiceWithItems struct {
	Invoice
	Items []InvoiceItem `json:"items"`
}

type AddItemRequest struct {
	InvoiceID   string
	ChargeCode  string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

type UpdateItemRequest struct {
	ID          string
	ChargeCode  *string
	Description *string
	Quantity    *decimal.Decimal
	UnitPrice   *decimal.Decimal
}

// GenerateRequest names the billing period. Month is 1 through 12.
type GenerateRequest struct {
	Month int
	Year  int
}

type GenerateResult struct {
	Generated []Invoice `json:"generated"`
	Skipped   int       `json:"skipped"`
}

type Service interface {
	List(context.Context, ListInvoiceRequest) (ListInvoiceResponse, error)
	GetByID(context.Context, GetInvoiceRequest) (InvoiceWithItems, error)
	Create(context.Context, CreateInvoiceRequest) (Invoice, error)
	Update(context.Context, UpdateInvoiceRequest) (Invoice, error)
	Delete(ctx context.Context, id string) error

	AddItem(context.Context, AddItemRequest) (InvoiceItem, error)
	UpdateItem(context.Context, UpdateItemRequest) (InvoiceItem, error)
	DeleteItem(ctx context.Context, id string) error
	ListItems(ctx context.Context, invoiceID string) ([]InvoiceItem, error)

	Overdue(ctx context.Context) ([]Invoice, error)
	GenerateMonthly(context.Context, GenerateRequest) (GenerateResult, error)

	// ReconcileStatus re-derives the invoice status from its payments.
	// Callers already inside a transaction pass their tx.
	ReconcileStatus(ctx context.Context, tx *gorm.DB, invoiceID string) error
}

var (
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidNumber    = errors.New("invalid_invoice_number")
	ErrInvalidAmount    = errors.New("invalid_amount")
	ErrInvalidPeriod    = errors.New("invalid_period")
	ErrInvalidQuantity  = errors.New("invalid_quantity")
	ErrInvalidUnitPrice = errors.New("invalid_unit_price")
	ErrNotFound         = errors.New("invoice_not_found")
	ErrItemNotFound     = errors.New("invoice_item_not_found")
	ErrDuplicateNumber  = errors.New("duplicate_invoice_number")
	ErrGenerationLocked = errors.New("generation_in_progress")
)
