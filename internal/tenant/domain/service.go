package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/tenora/pkg/db/pagination"
)

type ListTenantRequest struct {
	PageToken string
	PageSize  int32
	Email     string
}

type ListTenantResponse struct {
	pagination.PageInfo
	Tenants []Tenant `json:"tenants"`
}

type CreateTenantRequest struct {
	FullName         string
	Email            string
	Phone            string
	IDNumber         string
	EmergencyContact string
	EmergencyPhone   string
}

type UpdateTenantRequest struct {
	ID               string
	FullName         *string
	Email            *string
	Phone            *string
	IDNumber         *string
	EmergencyContact *string
	EmergencyPhone   *string
}

type GetTenantRequest struct {
	ID string
}

type Service interface {
	List(context.Context, ListTenantRequest) (ListTenantResponse, error)
	GetByID(context.Context, GetTenantRequest) (Tenant, error)
	Create(context.Context, CreateTenantRequest) (Tenant, error)
	Update(context.Context, UpdateTenantRequest) (Tenant, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidFullName   = errors.New("invalid_full_name")
	ErrInvalidEmail      = errors.New("invalid_email")
	ErrInvalidPhone      = errors.New("invalid_phone")
	ErrInvalidIDNumber   = errors.New("invalid_id_number")
	ErrNotFound          = errors.New("tenant_not_found")
	ErrDuplicateEmail    = errors.New("duplicate_email")
	ErrDuplicateIDNumber = errors.New("duplicate_id_number")
	ErrActiveLeaseExists = errors.New("active_lease_exists")
)
