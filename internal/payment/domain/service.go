package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/tenora/pkg/db/pagination"
)

type ListPaymentRequest struct {
	PageToken string
	PageSize  int32
	LeaseID   string
	InvoiceID string
}

type ListPaymentResponse struct {
	pagination.PageInfo
	Payments []Payment `json:"payments"`
}

type CreatePaymentRequest struct {
	LeaseID       string
	InvoiceID     string
	Amount        decimal.Decimal
	PaymentDate   time.Time
	PaymentMethod string
	Reference     string
	Notes         string
}

type GetPaymentRequest struct {
	ID string
}

type Service interface {
	List(context.Context, ListPaymentRequest) (ListPaymentResponse, error)
	GetByID(context.Context, GetPaymentRequest) (Payment, error)
	Create(context.Context, CreatePaymentRequest) (Payment, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidID     = errors.New("invalid_id")
	ErrInvalidAmount = errors.New("invalid_amount")
	ErrInvalidDate   = errors.New("invalid_payment_date")
	ErrInvalidMethod = errors.New("invalid_payment_method")
	ErrNotFound      = errors.New("payment_not_found")
)
