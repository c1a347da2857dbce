package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/tenora/pkg/db/pagination"
	"gorm.io/datatypes"
)

type ListUnitRequest struct {
	PageToken   string
	PageSize    int32
	PropertyID  string
	HouseTypeID string
	Status      string
}

type ListUnitResponse struct {
	pagination.PageInfo
	Units []Unit `json:"units"`
}

type CreateUnitRequest struct {
	PropertyID        string
	HouseTypeID       string
	UnitNumber        string
	RentAmount        *decimal.Decimal
	RentDepositAmount *decimal.Decimal
	WaterRateAmount   *decimal.Decimal
	ChargeAmounts     datatypes.JSONMap
}

type UpdateUnitRequest struct {
	ID                string
	UnitNumber        *string
	RentAmount        *decimal.Decimal
	RentDepositAmount *decimal.Decimal
	WaterRateAmount   *decimal.Decimal
	ChargeAmounts     datatypes.JSONMap
	Status            *string
}

type GetUnitRequest struct {
	ID string
}

// BulkDeleteResult records the per-unit outcome of a bulk delete. Units with
// an active lease are reported under Failed and everything else is removed.
type BulkDeleteResult struct {
	Success []string          `json:"success"`
	Failed  []BulkDeleteError `json:"failed"`
}

type BulkDeleteError struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

type Service interface {
	List(context.Context, ListUnitRequest) (ListUnitResponse, error)
	GetByID(context.Context, GetUnitRequest) (Unit, error)
	Create(context.Context, CreateUnitRequest) (Unit, error)
	Update(context.Context, UpdateUnitRequest) (Unit, error)
	Delete(ctx context.Context, id string) error
	BulkDelete(ctx context.Context, ids []string) (BulkDeleteResult, error)
}

var (
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidUnitNumber = errors.New("invalid_unit_number")
	ErrInvalidProperty   = errors.New("invalid_property")
	ErrInvalidHouseType  = errors.New("invalid_house_type")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrNotFound          = errors.New("unit_not_found")
	ErrActiveLeaseExists = errors.New("active_lease_exists")
	ErrDuplicateNumber   = errors.New("duplicate_unit_number")
	ErrEmptyBulkRequest  = errors.New("empty_bulk_request")
)
