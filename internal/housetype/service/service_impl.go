package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/tenora/internal/clock"
	"github.com/smallbiznis/tenora/internal/config"
	"github.com/smallbiznis/tenora/internal/housetype/domain"
	propertydomain "github.com/smallbiznis/tenora/internal/property/domain"
	unitdomain "github.com/smallbiznis/tenora/internal/unit/domain"
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

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	Billing *config.BillingConfigHolder
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	billing *config.BillingConfigHolder
	repo    repository.Repository[domain.HouseType]
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("housetype.service"),
		clock:   p.Clock,
		billing: p.Billing,
		repo:    repository.ProvideStore[domain.HouseType](p.DB),
	}
}

func (s *Service) List(ctx context.Context, req domain.ListHouseTypeRequest) (domain.ListHouseTypeResponse, error) {
	filter := &domain.HouseType{}
	if propertyID := strings.TrimSpace(req.PropertyID); propertyID != "" {
		filter.PropertyID = propertyID
	}
	if req.ActiveOnly {
		filter.IsActive = true
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
		return domain.ListHouseTypeResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int(pageSize), func(ht *domain.HouseType) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        ht.ID,
			CreatedAt: ht.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	houseTypes := make([]domain.HouseType, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		houseTypes = append(houseTypes, *item)
	}

	resp := domain.ListHouseTypeResponse{HouseTypes: houseTypes}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetHouseTypeRequest) (domain.HouseType, error) {
	houseType, err := s.find(ctx, req.ID)
	if err != nil {
		return domain.HouseType{}, err
	}
	return *houseType, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateHouseTypeRequest) (domain.HouseType, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.HouseType{}, domain.ErrInvalidName
	}
	if req.BaseRentAmount.IsNegative() || req.BaseRentAmount.IsZero() {
		return domain.HouseType{}, domain.ErrInvalidRent
	}

	propertyID := strings.TrimSpace(req.PropertyID)
	if propertyID == "" {
		return domain.HouseType{}, domain.ErrInvalidProperty
	}
	var propertyCount int64
	if err := s.db.WithContext(ctx).Model(&propertydomain.Property{}).
		Where("id = ?", propertyID).Count(&propertyCount).Error; err != nil {
		return domain.HouseType{}, err
	}
	if propertyCount == 0 {
		return domain.HouseType{}, propertydomain.ErrNotFound
	}

	rateType := domain.WaterRateUnitBased
	if req.WaterRateType != "" {
		rateType = domain.WaterRateType(req.WaterRateType)
		if rateType != domain.WaterRateUnitBased && rateType != domain.WaterRateFlat {
			return domain.HouseType{}, domain.ErrInvalidRateType
		}
	}

	waterRate := decimal.NewFromFloat(s.billing.Get().DefaultWaterRate)
	if req.WaterRatePerUnit != nil {
		waterRate = *req.WaterRatePerUnit
	}

	chargeAmounts := req.ChargeAmounts
	if chargeAmounts == nil {
		chargeAmounts = datatypes.JSONMap{}
	}

	now := s.clock.Now()
	houseType := domain.HouseType{
		ID:                uuid.NewString(),
		PropertyID:        propertyID,
		Name:              name,
		Description:       strings.TrimSpace(req.Description),
		BaseRentAmount:    req.BaseRentAmount,
		RentDepositAmount: req.RentDepositAmount,
		WaterRatePerUnit:  waterRate,
		WaterRateType:     rateType,
		WaterFlatRate:     req.WaterFlatRate,
		ChargeAmounts:     chargeAmounts,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.Create(ctx, &houseType); err != nil {
		return domain.HouseType{}, err
	}
	return houseType, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateHouseTypeRequest) (domain.HouseType, error) {
	houseType, err := s.find(ctx, req.ID)
	if err != nil {
		return domain.HouseType{}, err
	}

	patch := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.HouseType{}, domain.ErrInvalidName
		}
		patch["name"] = name
	}
	if req.Description != nil {
		patch["description"] = strings.TrimSpace(*req.Description)
	}
	if req.BaseRentAmount != nil {
		if req.BaseRentAmount.IsNegative() || req.BaseRentAmount.IsZero() {
			return domain.HouseType{}, domain.ErrInvalidRent
		}
		patch["base_rent_amount"] = *req.BaseRentAmount
	}
	if req.RentDepositAmount != nil {
		patch["rent_deposit_amount"] = *req.RentDepositAmount
	}
	if req.WaterRatePerUnit != nil {
		patch["water_rate_per_unit"] = *req.WaterRatePerUnit
	}
	if req.WaterRateType != nil {
		rateType := domain.WaterRateType(*req.WaterRateType)
		if rateType != domain.WaterRateUnitBased && rateType != domain.WaterRateFlat {
			return domain.HouseType{}, domain.ErrInvalidRateType
		}
		patch["water_rate_type"] = rateType
	}
	if req.WaterFlatRate != nil {
		patch["water_flat_rate"] = *req.WaterFlatRate
	}
	if req.ChargeAmounts != nil {
		patch["charge_amounts"] = req.ChargeAmounts
	}
	if req.IsActive != nil {
		patch["is_active"] = *req.IsActive
	}

	if len(patch) == 0 {
		return *houseType, nil
	}
	patch["updated_at"] = s.clock.Now()

	if err := s.db.WithContext(ctx).Model(&domain.HouseType{}).
		Where("id = ?", houseType.ID).
		Updates(patch).Error; err != nil {
		return domain.HouseType{}, err
	}
	return s.GetByID(ctx, domain.GetHouseTypeRequest{ID: houseType.ID})
}

// Delete refuses when units still reference the house type.
func (s *Service) Delete(ctx context.Context, id string) error {
	houseType, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	var unitCount int64
	if err := s.db.WithContext(ctx).Model(&unitdomain.Unit{}).
		Where("house_type_id = ?", houseType.ID).Count(&unitCount).Error; err != nil {
		return err
	}
	if unitCount > 0 {
		return domain.ErrUnitsExist
	}

	return s.repo.Delete(ctx, houseType.ID)
}

func (s *Service) find(ctx context.Context, id string) (*domain.HouseType, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrInvalidID
	}
	houseType, err := s.repo.FindOne(ctx, &domain.HouseType{ID: id})
	if err != nil {
		return nil, err
	}
	if houseType == nil {
		return nil, domain.ErrNotFound
	}
	return houseType, nil
}
