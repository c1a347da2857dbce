package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/tenora/pkg/db/pagination"
	"gorm.io/datatypes"
)

type ListHouseTypeRequest struct {
	PageToken  string
	PageSize   int32
	PropertyID string
	ActiveOnly bool
}

type ListHouseTypeResponse struct {
	pagination.PageInfo
	HouseTypes []HouseType `json:"house_types"`
}

type CreateHouseTypeRequest struct {
	PropertyID        string
	Name              string
	Description       string
	BaseRentAmount    decimal.Decimal
	RentDepositAmount decimal.Decimal
	WaterRatePerUnit  *decimal.Decimal
	WaterRateType     string
	WaterFlatRate     decimal.Decimal
	ChargeAmounts     datatypes.JSONMap
}

type UpdateHouseTypeRequest struct {
	ID                string
	Name              *string
	Description       *string
	BaseRentAmount    *decimal.Decimal
	RentDepositAmount *decimal.Decimal
	WaterRatePerUnit  *decimal.Decimal
	WaterRateType     *string
	WaterFlatRate     *decimal.Decimal
	ChargeAmounts     datatypes.JSONMap
	IsActive          *bool
}

type GetHouseTypeRequest struct {
	ID string
}

type Service interface {
	List(context.Context, ListHouseTypeRequest) (ListHouseTypeResponse, error)
	GetByID(context.Context, GetHouseTypeRequest) (HouseType, error)
	Create(context.Context, CreateHouseTypeRequest) (HouseType, error)
	Update(context.Context, UpdateHouseTypeRequest) (HouseType, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidProperty = errors.New("invalid_property")
	ErrInvalidRent     = errors.New("invalid_base_rent_amount")
	ErrInvalidRateType = errors.New("invalid_water_rate_type")
	ErrNotFound        = errors.New("house_type_not_found")
	ErrUnitsExist      = errors.New("units_exist")
)
