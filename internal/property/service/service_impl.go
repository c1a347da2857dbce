package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/tenora/internal/clock"
	leasedomain "github.com/smallbiznis/tenora/internal/lease/domain"
	"github.com/smallbiznis/tenora/internal/property/domain"
	unitdomain "github.com/smallbiznis/tenora/internal/unit/domain"
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
	repo  repository.Repository[domain.Property]
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("property.service"),
		clock: p.Clock,
		repo:  repository.ProvideStore[domain.Property](p.DB),
	}
}

func (s *Service) List(ctx context.Context, req domain.ListPropertyRequest) (domain.ListPropertyResponse, error) {
	filter := &domain.Property{}
	if status := strings.TrimSpace(req.Status); status != "" {
		filter.Status = domain.PropertyStatus(status)
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
		return domain.ListPropertyResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int(pageSize), func(p *domain.Property) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        p.ID,
			CreatedAt: p.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	properties := make([]domain.Property, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		properties = append(properties, *item)
	}

	resp := domain.ListPropertyResponse{Properties: properties}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetPropertyRequest) (domain.Property, error) {
	property, err := s.find(ctx, req.ID)
	if err != nil {
		return domain.Property{}, err
	}
	return *property, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreatePropertyRequest) (domain.Property, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Property{}, domain.ErrInvalidName
	}

	address := strings.TrimSpace(req.Address)
	if address == "" {
		return domain.Property{}, domain.ErrInvalidAddress
	}

	landlord := strings.TrimSpace(req.LandlordName)
	if landlord == "" {
		return domain.Property{}, domain.ErrInvalidLandlord
	}

	now := s.clock.Now()
	property := domain.Property{
		ID:            uuid.NewString(),
		Name:          name,
		Address:       address,
		LandlordName:  landlord,
		LandlordPhone: strings.TrimSpace(req.LandlordPhone),
		LandlordEmail: strings.TrimSpace(req.LandlordEmail),
		Status:        domain.PropertyActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, &property); err != nil {
		return domain.Property{}, err
	}
	return property, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdatePropertyRequest) (domain.Property, error) {
	property, err := s.find(ctx, req.ID)
	if err != nil {
		return domain.Property{}, err
	}

	patch := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Property{}, domain.ErrInvalidName
		}
		patch["name"] = name
	}
	if req.Address != nil {
		address := strings.TrimSpace(*req.Address)
		if address == "" {
			return domain.Property{}, domain.ErrInvalidAddress
		}
		patch["address"] = address
	}
	if req.LandlordName != nil {
		landlord := strings.TrimSpace(*req.LandlordName)
		if landlord == "" {
			return domain.Property{}, domain.ErrInvalidLandlord
		}
		patch["landlord_name"] = landlord
	}
	if req.LandlordPhone != nil {
		patch["landlord_phone"] = strings.TrimSpace(*req.LandlordPhone)
	}
	if req.LandlordEmail != nil {
		patch["landlord_email"] = strings.TrimSpace(*req.LandlordEmail)
	}

	if len(patch) == 0 {
		return *property, nil
	}
	patch["updated_at"] = s.clock.Now()

	if err := s.db.WithContext(ctx).Model(&domain.Property{}).
		Where("id = ?", property.ID).
		Updates(patch).Error; err != nil {
		return domain.Property{}, err
	}
	return s.GetByID(ctx, domain.GetPropertyRequest{ID: property.ID})
}

// Delete removes a property together with its units, house types and charge
// codes. It refuses when any unit under the property still has an active lease.
func (s *Service) Delete(ctx context.Context, id string) error {
	property, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var activeLeases int64
		if err := tx.Model(&leasedomain.Lease{}).
			Where("unit_id IN (?)", tx.Model(&unitdomain.Unit{}).Select("id").Where("property_id = ?", property.ID)).
			Where("status = ?", leasedomain.LeaseActive).
			Count(&activeLeases).Error; err != nil {
			return err
		}
		if activeLeases > 0 {
			return domain.ErrActiveLeaseExists
		}

		if err := tx.Where("property_id = ?", property.ID).Delete(&unitdomain.Unit{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM charge_codes WHERE property_id = ?", property.ID).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM house_types WHERE property_id = ?", property.ID).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", property.ID).Delete(&domain.Property{}).Error
	})
}

// Disable marks the property inactive, suspends every active lease under it
// and flips the affected units back to vacant.
func (s *Service) Disable(ctx context.Context, id string) (domain.DisableResult, error) {
	property, err := s.find(ctx, id)
	if err != nil {
		return domain.DisableResult{}, err
	}
	if property.Status == domain.PropertyInactive {
		return domain.DisableResult{}, domain.ErrAlreadyInactive
	}

	result := domain.DisableResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		leases := tx.Model(&leasedomain.Lease{}).
			Where("unit_id IN (?)", tx.Model(&unitdomain.Unit{}).Select("id").Where("property_id = ?", property.ID)).
			Where("status = ?", leasedomain.LeaseActive).
			Update("status", leasedomain.LeaseSuspended)
		if leases.Error != nil {
			return leases.Error
		}
		result.SuspendedLeases = leases.RowsAffected

		units := tx.Model(&unitdomain.Unit{}).
			Where("property_id = ?", property.ID).
			Where("status = ?", unitdomain.UnitOccupied).
			Update("status", unitdomain.UnitVacant)
		if units.Error != nil {
			return units.Error
		}
		result.VacatedUnits = units.RowsAffected

		return tx.Model(&domain.Property{}).
			Where("id = ?", property.ID).
			Updates(map[string]any{"status": domain.PropertyInactive, "updated_at": s.clock.Now()}).Error
	})
	if err != nil {
		return domain.DisableResult{}, err
	}

	s.log.Info("property disabled",
		zap.String("property_id", property.ID),
		zap.Int64("suspended_leases", result.SuspendedLeases),
	)

	property, err = s.find(ctx, property.ID)
	if err != nil {
		return domain.DisableResult{}, err
	}
	result.Property = *property
	return result, nil
}

// Enable marks the property active again and resumes the leases that Disable
// suspended. Terminated and expired leases stay as they are. Units whose
// resumed lease covers today become occupied again, except units under
// maintenance, which keep that status.
func (s *Service) Enable(ctx context.Context, id string) (domain.EnableResult, error) {
	property, err := s.find(ctx, id)
	if err != nil {
		return domain.EnableResult{}, err
	}
	if property.Status == domain.PropertyActive {
		return domain.EnableResult{}, domain.ErrAlreadyActive
	}

	today := s.clock.Now()
	result := domain.EnableResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var suspended []leasedomain.Lease
		if err := tx.
			Where("unit_id IN (?)", tx.Model(&unitdomain.Unit{}).Select("id").Where("property_id = ?", property.ID)).
			Where("status = ?", leasedomain.LeaseSuspended).
			Find(&suspended).Error; err != nil {
			return err
		}

		if len(suspended) > 0 {
			leaseIDs := make([]string, 0, len(suspended))
			coveredUnits := make([]string, 0, len(suspended))
			for _, lease := range suspended {
				leaseIDs = append(leaseIDs, lease.ID)
				if lease.Covers(today) {
					coveredUnits = append(coveredUnits, lease.UnitID)
				}
			}

			if err := tx.Model(&leasedomain.Lease{}).
				Where("id IN ?", leaseIDs).
				Update("status", leasedomain.LeaseActive).Error; err != nil {
				return err
			}
			result.ResumedLeases = int64(len(leaseIDs))

			if len(coveredUnits) > 0 {
				units := tx.Model(&unitdomain.Unit{}).
					Where("id IN ?", coveredUnits).
					Where("status <> ?", unitdomain.UnitMaintenance).
					Update("status", unitdomain.UnitOccupied)
				if units.Error != nil {
					return units.Error
				}
				result.OccupiedUnits = units.RowsAffected
			}
		}

		return tx.Model(&domain.Property{}).
			Where("id = ?", property.ID).
			Updates(map[string]any{"status": domain.PropertyActive, "updated_at": s.clock.Now()}).Error
	})
	if err != nil {
		return domain.EnableResult{}, err
	}

	s.log.Info("property enabled",
		zap.String("property_id", property.ID),
		zap.Int64("resumed_leases", result.ResumedLeases),
	)

	property, err = s.find(ctx, property.ID)
	if err != nil {
		return domain.EnableResult{}, err
	}
	result.Property = *property
	return result, nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.Property, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrInvalidID
	}
	property, err := s.repo.FindOne(ctx, &domain.Property{ID: id})
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, domain.ErrNotFound
	}
	return property, nil
}
