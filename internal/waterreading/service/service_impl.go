package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/tenora/internal/clock"
	"github.com/smallbiznis/tenora/internal/config"
	leasedomain "github.com/smallbiznis/tenora/internal/lease/domain"
	unitdomain "github.com/smallbiznis/tenora/internal/unit/domain"
	"github.com/smallbiznis/tenora/internal/waterreading/domain"
	"github.com/smallbiznis/tenora/pkg/db/option"
	"github.com/smallbiznis/tenora/pkg/db/pagination"
	"github.com/smallbiznis/tenora/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
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
	repo    repository.Repository[domain.WaterReading]
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("waterreading.service"),
		clock:   p.Clock,
		billing: p.Billing,
		repo:    repository.ProvideStore[domain.WaterReading](p.DB),
	}
}

func (s *Service) List(ctx context.Context, req domain.ListWaterReadingRequest) (domain.ListWaterReadingResponse, error) {
	filter := &domain.WaterReading{}
	if unitID := strings.TrimSpace(req.UnitID); unitID != "" {
		filter.UnitID = unitID
	}
	if status := strings.TrimSpace(req.Status); status != "" {
		filter.Status = domain.ReadingStatus(status)
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.Find(ctx, filter,
		option.WithSortBy("reading_date DESC, created_at DESC"),
		option.ApplyPagination(pagination.Pagination{PageToken: req.PageToken, PageSize: int(pageSize)}),
	)
	if err != nil {
		return domain.ListWaterReadingResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int(pageSize), func(r *domain.WaterReading) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        r.ID,
			CreatedAt: r.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	readings := make([]domain.WaterReading, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		readings = append(readings, *item)
	}

	resp := domain.ListWaterReadingResponse{Readings: readings}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetWaterReadingRequest) (domain.WaterReading, error) {
	reading, err := s.find(ctx, req.ID)
	if err != nil {
		return domain.WaterReading{}, err
	}
	return *reading, nil
}

// Create derives everything but the submitted meter value on the server.
// The previous reading is the unit's latest stored reading, the rate comes
// from the lease active on the reading date, and a meter value below the
// previous reading is rejected without persisting anything.
func (s *Service) Create(ctx context.Context, req domain.CreateWaterReadingRequest) (domain.WaterReading, error) {
	if req.ReadingDate.IsZero() {
		return domain.WaterReading{}, domain.ErrInvalidDate
	}
	if req.CurrentReading.IsNegative() {
		return domain.WaterReading{}, domain.ErrInvalidReading
	}

	unitID := strings.TrimSpace(req.UnitID)
	var unitCount int64
	if err := s.db.WithContext(ctx).Model(&unitdomain.Unit{}).
		Where("id = ?", unitID).Count(&unitCount).Error; err != nil {
		return domain.WaterReading{}, err
	}
	if unitCount == 0 {
		return domain.WaterReading{}, unitdomain.ErrNotFound
	}

	readingDate := leasedomain.DateOnly(req.ReadingDate)

	// The previous-reading lookup and the insert share one transaction so a
	// concurrent submission cannot slip between them.
	var reading domain.WaterReading
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		previous := decimal.Zero
		var latest domain.WaterReading
		err := tx.
			Where("unit_id = ?", unitID).
			Order("reading_date DESC, created_at DESC").
			First(&latest).Error
		switch err {
		case nil:
			previous = latest.CurrentReading
		case gorm.ErrRecordNotFound:
		default:
			return err
		}

		if req.CurrentReading.LessThan(previous) {
			return domain.ErrMeterRegression
		}

		rate, err := s.rateForUnit(tx, unitID, readingDate)
		if err != nil {
			return err
		}

		consumption := req.CurrentReading.Sub(previous)
		now := s.clock.Now()
		reading = domain.WaterReading{
			ID:              uuid.NewString(),
			UnitID:          unitID,
			ReadingDate:     readingDate,
			PreviousReading: previous,
			CurrentReading:  req.CurrentReading,
			Consumption:     consumption,
			RatePerUnit:     rate,
			TotalAmount:     consumption.Mul(rate).Round(2),
			Status:          domain.ReadingPending,
			Notes:           strings.TrimSpace(req.Notes),
			LastModifiedAt:  now,
			CreatedAt:       now,
		}
		return tx.Create(&reading).Error
	})
	if err != nil {
		return domain.WaterReading{}, err
	}
	return reading, nil
}

// Update recalculates consumption and total whenever a calculation input
// changes, and always refreshes last_modified_at.
func (s *Service) Update(ctx context.Context, req domain.UpdateWaterReadingRequest) (domain.WaterReading, error) {
	reading, err := s.find(ctx, req.ID)
	if err != nil {
		return domain.WaterReading{}, err
	}

	patch := map[string]any{}
	current := reading.CurrentReading
	previous := reading.PreviousReading
	rate := reading.RatePerUnit
	recalc := false

	if req.CurrentReading != nil {
		current = *req.CurrentReading
		patch["current_reading"] = current
		recalc = true
	}
	if req.PreviousReading != nil {
		previous = *req.PreviousReading
		patch["previous_reading"] = previous
		recalc = true
	}
	if req.RatePerUnit != nil {
		rate = *req.RatePerUnit
		patch["rate_per_unit"] = rate
		recalc = true
	}
	if req.Status != nil {
		status := domain.ReadingStatus(strings.TrimSpace(*req.Status))
		switch status {
		case domain.ReadingPending, domain.ReadingInvoiced, domain.ReadingPaid:
			patch["status"] = status
		default:
			return domain.WaterReading{}, domain.ErrInvalidStatus
		}
	}
	if req.Notes != nil {
		patch["notes"] = strings.TrimSpace(*req.Notes)
	}

	if recalc {
		if current.LessThan(previous) {
			return domain.WaterReading{}, domain.ErrMeterRegression
		}
		consumption := current.Sub(previous)
		patch["consumption"] = consumption
		patch["total_amount"] = consumption.Mul(rate).Round(2)
	}

	patch["last_modified_at"] = s.clock.Now()

	if err := s.db.WithContext(ctx).Model(&domain.WaterReading{}).
		Where("id = ?", reading.ID).
		Updates(patch).Error; err != nil {
		return domain.WaterReading{}, err
	}
	return s.GetByID(ctx, domain.GetWaterReadingRequest{ID: reading.ID})
}

func (s *Service) Delete(ctx context.Context, id string) error {
	reading, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, reading.ID)
}

// rateForUnit resolves the billing rate from the lease active on the reading
// date, falling back to the configured default when the unit is between
// leases.
func (s *Service) rateForUnit(tx *gorm.DB, unitID string, readingDate time.Time) (decimal.Decimal, error) {
	var lease leasedomain.Lease
	err := tx.
		Where("unit_id = ?", unitID).
		Where("status = ?", leasedomain.LeaseActive).
		Where("start_date <= ? AND end_date >= ?", readingDate, readingDate).
		Order("start_date DESC").
		First(&lease).Error
	switch err {
	case nil:
		return lease.WaterRatePerUnit, nil
	case gorm.ErrRecordNotFound:
		return decimal.NewFromFloat(s.billing.Get().DefaultWaterRate), nil
	default:
		return decimal.Zero, err
	}
}

func (s *Service) find(ctx context.Context, id string) (*domain.WaterReading, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrInvalidID
	}
	reading, err := s.repo.FindOne(ctx, &domain.WaterReading{ID: id})
	if err != nil {
		return nil, err
	}
	if reading == nil {
		return nil, domain.ErrNotFound
	}
	return reading, nil
}
