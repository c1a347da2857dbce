package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/tenora/internal/clock"
	leasedomain "github.com/smallbiznis/tenora/internal/lease/domain"
	"github.com/smallbiznis/tenora/internal/tenant/domain"
	"github.com/smallbiznis/tenora/pkg/db/option"
	"github.com/smallbiznis/tenora/pkg/db/pagination"
	"github.com/smallbiznis/tenora/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  repository.Repository[domain.Tenant]
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("tenant.service"),
		clock: p.Clock,
		repo:  repository.ProvideStore[domain.Tenant](p.DB),
	}
}

func (s *Service) List(ctx context.Context, req domain.ListTenantRequest) (domain.ListTenantResponse, error) {
	filter := &domain.Tenant{}
	if email := strings.TrimSpace(req.Email); email != "" {
		filter.Email = email
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.Find(ctx, filter,
		option.WithSortBy("created_at DESC"),
		option.ApplyPagination(pagination.Pagination{PageToken: req.PageToken, PageSize: int(pageSize)}),
	)
	if err != nil {
		return domain.ListTenantResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int(pageSize), func(t *domain.Tenant) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        t.ID,
			CreatedAt: t.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	tenants := make([]domain.Tenant, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		tenants = append(tenants, *item)
	}

	resp := domain.ListTenantResponse{Tenants: tenants}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetTenantRequest) (domain.Tenant, error) {
	tenant, err := s.find(ctx, req.ID)
	if err != nil {
		return domain.Tenant{}, err
	}
	return *tenant, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateTenantRequest) (domain.Tenant, error) {
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return domain.Tenant{}, domain.ErrInvalidFullName
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.Tenant{}, domain.ErrInvalidEmail
	}

	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		return domain.Tenant{}, domain.ErrInvalidPhone
	}

	idNumber := strings.TrimSpace(req.IDNumber)
	if idNumber == "" {
		return domain.Tenant{}, domain.ErrInvalidIDNumber
	}

	if err := s.checkUnique(ctx, "", email, idNumber); err != nil {
		return domain.Tenant{}, err
	}

	now := s.clock.Now()
	tenant := domain.Tenant{
		ID:               uuid.NewString(),
		FullName:         fullName,
		Email:            email,
		Phone:            phone,
		IDNumber:         idNumber,
		EmergencyContact: strings.TrimSpace(req.EmergencyContact),
		EmergencyPhone:   strings.TrimSpace(req.EmergencyPhone),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(ctx, &tenant); err != nil {
		return domain.Tenant{}, err
	}
	return tenant, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateTenantRequest) (domain.Tenant, error) {
	tenant, err := s.find(ctx, req.ID)
	if err != nil {
		return domain.Tenant{}, err
	}

	patch := map[string]any{}
	email, idNumber := "", ""
	if req.FullName != nil {
		fullName := strings.TrimSpace(*req.FullName)
		if fullName == "" {
			return domain.Tenant{}, domain.ErrInvalidFullName
		}
		patch["full_name"] = fullName
	}
	if req.Email != nil {
		email = strings.ToLower(strings.TrimSpace(*req.Email))
		if email == "" || !strings.Contains(email, "@") {
			return domain.Tenant{}, domain.ErrInvalidEmail
		}
		patch["email"] = email
	}
	if req.Phone != nil {
		phone := strings.TrimSpace(*req.Phone)
		if phone == "" {
			return domain.Tenant{}, domain.ErrInvalidPhone
		}
		patch["phone"] = phone
	}
	if req.IDNumber != nil {
		idNumber = strings.TrimSpace(*req.IDNumber)
		if idNumber == "" {
			return domain.Tenant{}, domain.ErrInvalidIDNumber
		}
		patch["id_number"] = idNumber
	}
	if req.EmergencyContact != nil {
		patch["emergency_contact"] = strings.TrimSpace(*req.EmergencyContact)
	}
	if req.EmergencyPhone != nil {
		patch["emergency_phone"] = strings.TrimSpace(*req.EmergencyPhone)
	}

	if len(patch) == 0 {
		return *tenant, nil
	}

	if email != "" || idNumber != "" {
		if err := s.checkUnique(ctx, tenant.ID, email, idNumber); err != nil {
			return domain.Tenant{}, err
		}
	}

	patch["updated_at"] = s.clock.Now()
	if err := s.db.WithContext(ctx).Model(&domain.Tenant{}).
		Where("id = ?", tenant.ID).
		Updates(patch).Error; err != nil {
		return domain.Tenant{}, err
	}
	return s.GetByID(ctx, domain.GetTenantRequest{ID: tenant.ID})
}

// Delete refuses while the tenant still holds an active or suspended lease.
func (s *Service) Delete(ctx context.Context, id string) error {
	tenant, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	var leaseCount int64
	if err := s.db.WithContext(ctx).Model(&leasedomain.Lease{}).
		Where("tenant_id = ?", tenant.ID).
		Where("status IN ?", []leasedomain.LeaseStatus{leasedomain.LeaseActive, leasedomain.LeaseSuspended}).
		Count(&leaseCount).Error; err != nil {
		return err
	}
	if leaseCount > 0 {
		return domain.ErrActiveLeaseExists
	}

	return s.repo.Delete(ctx, tenant.ID)
}

func (s *Service) checkUnique(ctx context.Context, excludeID, email, idNumber string) error {
	if email != "" {
		stmt := s.db.WithContext(ctx).Model(&domain.Tenant{}).Where("email = ?", email)
		if excludeID != "" {
			stmt = stmt.Where("id <> ?", excludeID)
		}
		var count int64
		if err := stmt.Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrDuplicateEmail
		}
	}

	if idNumber != "" {
		stmt := s.db.WithContext(ctx).Model(&domain.Tenant{}).Where("id_number = ?", idNumber)
		if excludeID != "" {
			stmt = stmt.Where("id <> ?", excludeID)
		}
		var count int64
		if err := stmt.Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrDuplicateIDNumber
		}
	}

	return nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.Tenant, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrInvalidID
	}
	tenant, err := s.repo.FindOne(ctx, &domain.Tenant{ID: id})
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, domain.ErrNotFound
	}
	return tenant, nil
}
