package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/tenora/pkg/db/pagination"
)

type ListWaterReadingRequest struct {
	PageToken string
	PageSize  int32
	UnitID    string
	Status    string
}

type ListWaterReadingResponse struct {
	pagination.PageInfo
	Readings []WaterReading `json:"water_readings"`
}

type CreateWaterReadingRequest struct {
	UnitID         string
	ReadingDate    time.Time
	CurrentReading decimal.Decimal
	Notes          string
}

type UpdateWaterReadingRequest struct {
	ID              string
	CurrentReading  *decimal.Decimal
	PreviousReading *decimal.Decimal
	RatePerUnit     *decimal.Decimal
	Status          *string
	Notes           *string
}

type GetWaterReadingRequest struct {
	ID string
}

type Service interface {
	List(context.Context, ListWaterReadingRequest) (ListWaterReadingResponse, error)
	GetByID(context.Context, GetWaterReadingRequest) (WaterReading, error)
	Create(context.Context, CreateWaterReadingRequest) (WaterReading, error)
	Update(context.Context, UpdateWaterReadingRequest) (WaterReading, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidDate     = errors.New("invalid_reading_date")
	ErrInvalidReading  = errors.New("invalid_current_reading")
	ErrInvalidStatus   = errors.New("invalid_status")
	ErrNotFound        = errors.New("water_reading_not_found")
	ErrMeterRegression = errors.New("meter_regression")
)
