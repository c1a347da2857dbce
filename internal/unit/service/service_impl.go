package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/tenora/internal/clock"
	housetypedomain "github.com/smallbiznis/tenora/internal/housetype/domain"
	leasedomain "github.com/smallbiznis/tenora/internal/lease/domain"
	propertydomain "github.com/smallbiznis/tenora/internal/property/domain"
	"github.com/smallbiznis/tenora/internal/unit/domain"
	"github.com/smallbiznis/tenora/pkg/db/option"
	"github.com/smallbiznis/tenora/pkg/db/pagination"
	"github.com/smallbiznis/tenora/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
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
	repo  repository.Repository[domain.Unit]
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("unit.service"),
		clock: p.Clock,
		repo:  repository.ProvideStore[domain.Unit](p.DB),
	}
}

func (s *Service) List(ctx context.Context, req domain.ListUnitRequest) (domain.ListUnitResponse, error) {
	filter := &domain.Unit{}
	if propertyID := strings.TrimSpace(req.PropertyID); propertyID != "" {
		filter.PropertyID = propertyID
	}
	if houseTypeID := strings.TrimSpace(req.HouseTypeID); houseTypeID != "" {
		filter.HouseTypeID = houseTypeID
	}
	if status := strings.TrimSpace(req.Status); status != "" {
		filter.Status = domain.UnitStatus(status)
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
		return domain.ListUnitResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int(pageSize), func(u *domain.Unit) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        u.ID,
			CreatedAt: u.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	units := make([]domain.Unit, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		units = append(units, *item)
	}

	resp := domain.ListUnitResponse{Units: units}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetUnitRequest) (domain.Unit, error) {
	unit, err := s.find(ctx, req.ID)
	if err != nil {
		return domain.Unit{}, err
	}
	return *unit, nil
}

// Create snapshots pricing from the house type when the request leaves the
// corresponding field unset.
func (s *Service) Create(ctx context.Context, req domain.CreateUnitRequest) (domain.Unit, error) {
	unitNumber := strings.TrimSpace(req.UnitNumber)
	if unitNumber == "" {
		return domain.Unit{}, domain.ErrInvalidUnitNumber
	}

	propertyID := strings.TrimSpace(req.PropertyID)
	if propertyID == "" {
		return domain.Unit{}, domain.ErrInvalidProperty
	}
	var propertyCount int64
	if err := s.db.WithContext(ctx).Model(&propertydomain.Property{}).
		Where("id = ?", propertyID).Count(&propertyCount).Error; err != nil {
		return domain.Unit{}, err
	}
	if propertyCount == 0 {
		return domain.Unit{}, propertydomain.ErrNotFound
	}

	houseTypeID := strings.TrimSpace(req.HouseTypeID)
	if houseTypeID == "" {
		return domain.Unit{}, domain.ErrInvalidHouseType
	}
	var houseType housetypedomain.HouseType
	if err := s.db.WithContext(ctx).
		Where("id = ? AND property_id = ?", houseTypeID, propertyID).
		First(&houseType).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Unit{}, housetypedomain.ErrNotFound
		}
		return domain.Unit{}, err
	}

	var numberCount int64
	if err := s.db.WithContext(ctx).Model(&domain.Unit{}).
		Where("property_id = ? AND unit_number = ?", propertyID, unitNumber).
		Count(&numberCount).Error; err != nil {
		return domain.Unit{}, err
	}
	if numberCount > 0 {
		return domain.Unit{}, domain.ErrDuplicateNumber
	}

	unit := domain.Unit{
		ID:                uuid.NewString(),
		PropertyID:        propertyID,
		HouseTypeID:       houseTypeID,
		UnitNumber:        unitNumber,
		RentAmount:        houseType.BaseRentAmount,
		RentDepositAmount: houseType.RentDepositAmount,
		WaterRateAmount:   houseType.WaterRatePerUnit,
		ChargeAmounts:     houseType.ChargeAmounts,
		Status:            domain.UnitVacant,
	}
	if req.RentAmount != nil {
		unit.RentAmount = *req.RentAmount
	}
	if req.RentDepositAmount != nil {
		unit.RentDepositAmount = *req.RentDepositAmount
	}
	if req.WaterRateAmount != nil {
		unit.WaterRateAmount = *req.WaterRateAmount
	}
	if req.ChargeAmounts != nil {
		unit.ChargeAmounts = req.ChargeAmounts
	}
	if unit.ChargeAmounts == nil {
		unit.ChargeAmounts = datatypes.JSONMap{}
	}

	now := s.clock.Now()
	unit.CreatedAt = now
	unit.UpdatedAt = now

	if err := s.repo.Create(ctx, &unit); err != nil {
		return domain.Unit{}, err
	}
	return unit, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateUnitRequest) (domain.Unit, error) {
	unit, err := s.find(ctx, req.ID)
	if err != nil {
		return domain.Unit{}, err
	}

	patch := map[string]any{}
	if req.UnitNumber != nil {
		unitNumber := strings.TrimSpace(*req.UnitNumber)
		if unitNumber == "" {
			return domain.Unit{}, domain.ErrInvalidUnitNumber
		}
		if unitNumber != unit.UnitNumber {
			var numberCount int64
			if err := s.db.WithContext(ctx).Model(&domain.Unit{}).
				Where("property_id = ? AND unit_number = ? AND id <> ?", unit.PropertyID, unitNumber, unit.ID).
				Count(&numberCount).Error; err != nil {
				return domain.Unit{}, err
			}
			if numberCount > 0 {
				return domain.Unit{}, domain.ErrDuplicateNumber
			}
		}
		patch["unit_number"] = unitNumber
	}
	if req.RentAmount != nil {
		patch["rent_amount"] = *req.RentAmount
	}
	if req.RentDepositAmount != nil {
		patch["rent_deposit_amount"] = *req.RentDepositAmount
	}
	if req.WaterRateAmount != nil {
		patch["water_rate_amount"] = *req.WaterRateAmount
	}
	if req.ChargeAmounts != nil {
		patch["charge_amounts"] = req.ChargeAmounts
	}
	if req.Status != nil {
		status := domain.UnitStatus(strings.TrimSpace(*req.Status))
		switch status {
		case domain.UnitVacant, domain.UnitOccupied, domain.UnitMaintenance:
			patch["status"] = status
		default:
			return domain.Unit{}, domain.ErrInvalidStatus
		}
	}

	if len(patch) == 0 {
		return *unit, nil
	}
	patch["updated_at"] = s.clock.Now()

	if err := s.db.WithContext(ctx).Model(&domain.Unit{}).
		Where("id = ?", unit.ID).
		Updates(patch).Error; err != nil {
		return domain.Unit{}, err
	}
	return s.GetByID(ctx, domain.GetUnitRequest{ID: unit.ID})
}

// Delete refuses while an active lease references the unit. Historical
// leases, water readings and the unit itself go together.
func (s *Service) Delete(ctx context.Context, id string) error {
	unit, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.deleteOne(tx, unit.ID)
	})
}

// BulkDelete deletes each unit independently so one failure does not abort
// the rest of the batch.
func (s *Service) BulkDelete(ctx context.Context, ids []string) (domain.BulkDeleteResult, error) {
	seen := map[string]bool{}
	cleaned := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		cleaned = append(cleaned, id)
	}
	if len(cleaned) == 0 {
		return domain.BulkDeleteResult{}, domain.ErrEmptyBulkRequest
	}

	result := domain.BulkDeleteResult{
		Success: []string{},
		Failed:  []domain.BulkDeleteError{},
	}
	for _, id := range cleaned {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var count int64
			if err := tx.Model(&domain.Unit{}).Where("id = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return domain.ErrNotFound
			}
			return s.deleteOne(tx, id)
		})
		if err != nil {
			result.Failed = append(result.Failed, domain.BulkDeleteError{ID: id, Error: err.Error()})
			continue
		}
		result.Success = append(result.Success, id)
	}

	s.log.Info("bulk unit delete",
		zap.Int("requested", len(cleaned)),
		zap.Int("deleted", len(result.Success)),
		zap.Int("failed", len(result.Failed)),
	)
	return result, nil
}

func (s *Service) deleteOne(tx *gorm.DB, unitID string) error {
	var activeLeases int64
	if err := tx.Model(&leasedomain.Lease{}).
		Where("unit_id = ?", unitID).
		Where("status IN ?", []leasedomain.LeaseStatus{leasedomain.LeaseActive, leasedomain.LeaseSuspended}).
		Count(&activeLeases).Error; err != nil {
		return err
	}
	if activeLeases > 0 {
		return domain.ErrActiveLeaseExists
	}

	if err := tx.Exec("DELETE FROM water_readings WHERE unit_id = ?", unitID).Error; err != nil {
		return err
	}
	if err := tx.Where("unit_id = ?", unitID).Delete(&leasedomain.Lease{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", unitID).Delete(&domain.Unit{}).Error
}

func (s *Service) find(ctx context.Context, id string) (*domain.Unit, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrInvalidID
	}
	unit, err := s.repo.FindOne(ctx, &domain.Unit{ID: id})
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, domain.ErrNotFound
	}
	return unit, nil
}
