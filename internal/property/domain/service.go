package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/tenora/pkg/db/pagination"
)

type ListPropertyRequest struct {
	PageToken string
	PageSize  int32
	Status    string
}

type ListPropertyResponse struct {
	pagination.PageInfo
	Properties []Property `json:"properties"`
}

type CreatePropertyRequest struct {
	Name          string
	Address       string
	LandlordName  string
	LandlordPhone string
	LandlordEmail string
}

type UpdatePropertyRequest struct {
	ID            string
	Name          *string
	Address       *string
	LandlordName  *string
	LandlordPhone *string
	LandlordEmail *string
}

type GetPropertyRequest struct {
	ID string
}

// DisableResult reports how many dependent rows a status change touched.
type DisableResult struct {
	Property        Property `json:"property"`
	SuspendedLeases int64    `json:"suspended_leases"`
	VacatedUnits    int64    `json:"vacated_units"`
}

type EnableResult struct {
	Property      Property `json:"property"`
	ResumedLeases int64    `json:"resumed_leases"`
	OccupiedUnits int64    `json:"occupied_units"`
}

type Service interface {
	List(context.Context, ListPropertyRequest) (ListPropertyResponse, error)
	GetByID(context.Context, GetPropertyRequest) (Property, error)
	Create(context.Context, CreatePropertyRequest) (Property, error)
	Update(context.Context, UpdatePropertyRequest) (Property, error)
	Delete(ctx context.Context, id string) error
	Disable(ctx context.Context, id string) (DisableResult, error)
	Enable(ctx context.Context, id string) (EnableResult, error)
}

var (
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidAddress    = errors.New("invalid_address")
	ErrInvalidLandlord   = errors.New("invalid_landlord_name")
	ErrNotFound          = errors.New("property_not_found")
	ErrActiveLeaseExists = errors.New("active_lease_exists")
	ErrAlreadyInactive   = errors.New("property_already_inactive")
	ErrAlreadyActive     = errors.New("property_already_active")
)
