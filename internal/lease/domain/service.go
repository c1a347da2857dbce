package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/tenora/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListLeaseRequest struct {
	PageToken string
	PageSize  int32
	UnitID    string
	TenantID  string
	Status    string
}

type ListLeaseResponse struct {
	pagination.PageInfo
	Leases []Lease `json:"leases"`
}

type CreateLeaseRequest struct {
	UnitID           string
	TenantID         string
	StartDate        time.Time
	EndDate          time.Time
	RentAmount       *decimal.Decimal
	DepositAmount    *decimal.Decimal
	WaterRatePerUnit *decimal.Decimal
}

type UpdateLeaseRequest struct {
	ID               string
	StartDate        *time.Time
	EndDate          *time.Time
	RentAmount       *decimal.Decimal
	DepositAmount    *decimal.Decimal
	WaterRatePerUnit *decimal.Decimal
	Status           *string
}

type GetLeaseRequest struct {
	ID string
}

// LeaseBalance is total invoiced minus total paid across the lease's
// lifetime. Negative means the tenant is in credit.
type LeaseBalance struct {
	LeaseID       string          `json:"lease_id"`
	TotalInvoiced decimal.Decimal `json:"total_invoiced"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	Balance       decimal.Decimal `json:"balance"`
}

type Service interface {
	List(context.Context, ListLeaseRequest) (ListLeaseResponse, error)
	GetByID(context.Context, GetLeaseRequest) (Lease, error)
	Create(context.Context, CreateLeaseRequest) (Lease, error)
	Update(context.Context, UpdateLeaseRequest) (Lease, error)
	Delete(ctx context.Context, id string) error
	Balance(ctx context.Context, leaseID string) (LeaseBalance, error)

	// RecomputeUnitOccupancy re-derives a unit's vacant/occupied status from
	// its active leases. Callers already inside a transaction pass their tx.
	RecomputeUnitOccupancy(ctx context.Context, tx *gorm.DB, unitID string) error
}

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidPeriod   = errors.New("invalid_period")
	ErrInvalidStatus   = errors.New("invalid_status")
	ErrInvalidRent     = errors.New("invalid_rent_amount")
	ErrNotFound        = errors.New("lease_not_found")
	ErrLeaseOverlap    = errors.New("lease_overlap")
	ErrUnitNotRentable = errors.New("unit_not_rentable")
)
