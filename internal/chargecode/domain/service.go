package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/tenora/pkg/db/pagination"
)

type ListChargeCodeRequest struct {
	PageToken  string
	PageSize   int32
	PropertyID string
	ActiveOnly bool
}

type ListChargeCodeResponse struct {
	pagination.PageInfo
	ChargeCodes []ChargeCode `json:"charge_codes"`
}

type CreateChargeCodeRequest struct {
	PropertyID  string
	Name        string
	Description string
}

type UpdateChargeCodeRequest struct {
	ID          string
	Name        *string
	Description *string
	IsActive    *bool
}

type GetChargeCodeRequest struct {
	ID string
}

type Service interface {
	List(context.Context, ListChargeCodeRequest) (ListChargeCodeResponse, error)
	GetByID(context.Context, GetChargeCodeRequest) (ChargeCode, error)
	Create(context.Context, CreateChargeCodeRequest) (ChargeCode, error)
	Update(context.Context, UpdateChargeCodeRequest) (ChargeCode, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidProperty = errors.New("invalid_property")
	ErrNotFound        = errors.New("charge_code_not_found")
)
