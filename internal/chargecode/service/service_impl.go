package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/tenora/internal/chargecode/domain"
	"github.com/smallbiznis/tenora/internal/clock"
	propertydomain "github.com/smallbiznis/tenora/internal/property/domain"
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
	repo  repository.Repository[domain.ChargeCode]
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("chargecode.service"),
		clock: p.Clock,
		repo:  repository.ProvideStore[domain.ChargeCode](p.DB),
	}
}

func (s *Service) List(ctx context.Context, req domain.ListChargeCodeRequest) (domain.ListChargeCodeResponse, error) {
	filter := &domain.ChargeCode{}
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
		return domain.ListChargeCodeResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int(pageSize), func(cc *domain.ChargeCode) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        cc.ID,
			CreatedAt: cc.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	chargeCodes := make([]domain.ChargeCode, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		chargeCodes = append(chargeCodes, *item)
	}

	resp := domain.ListChargeCodeResponse{ChargeCodes: chargeCodes}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetChargeCodeRequest) (domain.ChargeCode, error) {
	chargeCode, err := s.find(ctx, req.ID)
	if err != nil {
		return domain.ChargeCode{}, err
	}
	return *chargeCode, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateChargeCodeRequest) (domain.ChargeCode, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.ChargeCode{}, domain.ErrInvalidName
	}

	propertyID := strings.TrimSpace(req.PropertyID)
	if propertyID == "" {
		return domain.ChargeCode{}, domain.ErrInvalidProperty
	}
	var propertyCount int64
	if err := s.db.WithContext(ctx).Model(&propertydomain.Property{}).
		Where("id = ?", propertyID).Count(&propertyCount).Error; err != nil {
		return domain.ChargeCode{}, err
	}
	if propertyCount == 0 {
		return domain.ChargeCode{}, propertydomain.ErrNotFound
	}

	now := s.clock.Now()
	chargeCode := domain.ChargeCode{
		ID:          uuid.NewString(),
		PropertyID:  propertyID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, &chargeCode); err != nil {
		return domain.ChargeCode{}, err
	}
	return chargeCode, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateChargeCodeRequest) (domain.ChargeCode, error) {
	chargeCode, err := s.find(ctx, req.ID)
	if err != nil {
		return domain.ChargeCode{}, err
	}

	patch := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.ChargeCode{}, domain.ErrInvalidName
		}
		patch["name"] = name
	}
	if req.Description != nil {
		patch["description"] = strings.TrimSpace(*req.Description)
	}
	if req.IsActive != nil {
		patch["is_active"] = *req.IsActive
	}

	if len(patch) == 0 {
		return *chargeCode, nil
	}
	patch["updated_at"] = s.clock.Now()

	if err := s.db.WithContext(ctx).Model(&domain.ChargeCode{}).
		Where("id = ?", chargeCode.ID).
		Updates(patch).Error; err != nil {
		return domain.ChargeCode{}, err
	}
	return s.GetByID(ctx, domain.GetChargeCodeRequest{ID: chargeCode.ID})
}

func (s *Service) Delete(ctx context.Context, id string) error {
	chargeCode, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, chargeCode.ID)
}

func (s *Service) find(ctx context.Context, id string) (*domain.ChargeCode, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrInvalidID
	}
	chargeCode, err := s.repo.FindOne(ctx, &domain.ChargeCode{ID: id})
	if err != nil {
		return nil, err
	}
	if chargeCode == nil {
		return nil, domain.ErrNotFound
	}
	return chargeCode, nil
}
