package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/tenora/internal/clock"
	"github.com/smallbiznis/tenora/internal/config"
	housetypedomain "github.com/smallbiznis/tenora/internal/housetype/domain"
	"github.com/smallbiznis/tenora/internal/lease/domain"
	propertydomain "github.com/smallbiznis/tenora/internal/property/domain"
	tenantdomain "github.com/smallbiznis/tenora/internal/tenant/domain"
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
	repo    repository.Repository[domain.Lease]
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("lease.service"),
		clock:   p.Clock,
		billing: p.Billing,
		repo:    repository.ProvideStore[domain.Lease](p.DB),
	}
}

func (s *Service) List(ctx context.Context, req domain.ListLeaseRequest) (domain.ListLeaseResponse, error) {
	filter := &domain.Lease{}
	if unitID := strings.TrimSpace(req.UnitID); unitID != "" {
		filter.UnitID = unitID
	}
	if tenantID := strings.TrimSpace(req.TenantID); tenantID != "" {
		filter.TenantID = tenantID
	}
	if status := strings.TrimSpace(req.Status); status != "" {
		filter.Status = domain.LeaseStatus(status)
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
		return domain.ListLeaseResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int(pageSize), func(l *domain.Lease) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        l.ID,
			CreatedAt: l.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	leases := make([]domain.Lease, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		leases = append(leases, *item)
	}

	resp := domain.ListLeaseResponse{Leases: leases}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetLeaseRequest) (domain.Lease, error) {
	lease, err := s.find(ctx, req.ID)
	if err != nil {
		return domain.Lease{}, err
	}
	return *lease, nil
}

// Create validates the period against every active or suspended lease on the
// unit. Overlap bounds are inclusive on both ends, so back-to-back leases
// must not share a day.
func (s *Service) Create(ctx context.Context, req domain.CreateLeaseRequest) (domain.Lease, error) {
	start := domain.DateOnly(req.StartDate)
	end := domain.DateOnly(req.EndDate)
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return domain.Lease{}, domain.ErrInvalidPeriod
	}

	unitID := strings.TrimSpace(req.UnitID)
	var unit unitdomain.Unit
	if err := s.db.WithContext(ctx).Where("id = ?", unitID).First(&unit).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Lease{}, unitdomain.ErrNotFound
		}
		return domain.Lease{}, err
	}

	var property propertydomain.Property
	if err := s.db.WithContext(ctx).Where("id = ?", unit.PropertyID).First(&property).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Lease{}, propertydomain.ErrNotFound
		}
		return domain.Lease{}, err
	}
	if property.Status != propertydomain.PropertyActive {
		return domain.Lease{}, domain.ErrUnitNotRentable
	}

	tenantID := strings.TrimSpace(req.TenantID)
	var tenantCount int64
	if err := s.db.WithContext(ctx).Model(&tenantdomain.Tenant{}).
		Where("id = ?", tenantID).Count(&tenantCount).Error; err != nil {
		return domain.Lease{}, err
	}
	if tenantCount == 0 {
		return domain.Lease{}, tenantdomain.ErrNotFound
	}

	rent := unit.RentAmount
	if req.RentAmount != nil {
		rent = *req.RentAmount
	}
	if rent.IsNegative() || rent.IsZero() {
		return domain.Lease{}, domain.ErrInvalidRent
	}

	deposit := unit.RentDepositAmount
	if req.DepositAmount != nil {
		deposit = *req.DepositAmount
	}

	waterRate, err := s.waterRateForUnit(ctx, unit)
	if err != nil {
		return domain.Lease{}, err
	}
	if req.WaterRatePerUnit != nil {
		waterRate = *req.WaterRatePerUnit
	}

	now := s.clock.Now()
	lease := domain.Lease{
		ID:               uuid.NewString(),
		UnitID:           unit.ID,
		TenantID:         tenantID,
		StartDate:        start,
		EndDate:          end,
		RentAmount:       rent,
		DepositAmount:    deposit,
		WaterRatePerUnit: waterRate,
		Status:           domain.LeaseActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		overlap, err := s.hasOverlap(tx, unit.ID, "", start, end)
		if err != nil {
			return err
		}
		if overlap {
			return domain.ErrLeaseOverlap
		}
		if err := tx.Create(&lease).Error; err != nil {
			return err
		}
		return s.RecomputeUnitOccupancy(ctx, tx, unit.ID)
	})
	if err != nil {
		return domain.Lease{}, err
	}

	s.log.Info("lease created",
		zap.String("lease_id", lease.ID),
		zap.String("unit_id", lease.UnitID),
		zap.String("tenant_id", lease.TenantID),
	)
	return lease, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateLeaseRequest) (domain.Lease, error) {
	lease, err := s.find(ctx, req.ID)
	if err != nil {
		return domain.Lease{}, err
	}

	start := lease.StartDate
	end := lease.EndDate
	if req.StartDate != nil {
		start = domain.DateOnly(*req.StartDate)
	}
	if req.EndDate != nil {
		end = domain.DateOnly(*req.EndDate)
	}
	if end.Before(start) {
		return domain.Lease{}, domain.ErrInvalidPeriod
	}

	patch := map[string]any{}
	if req.StartDate != nil {
		patch["start_date"] = start
	}
	if req.EndDate != nil {
		patch["end_date"] = end
	}
	if req.RentAmount != nil {
		if req.RentAmount.IsNegative() || req.RentAmount.IsZero() {
			return domain.Lease{}, domain.ErrInvalidRent
		}
		patch["rent_amount"] = *req.RentAmount
	}
	if req.DepositAmount != nil {
		patch["deposit_amount"] = *req.DepositAmount
	}
	if req.WaterRatePerUnit != nil {
		patch["water_rate_per_unit"] = *req.WaterRatePerUnit
	}
	if req.Status != nil {
		status := domain.LeaseStatus(strings.TrimSpace(*req.Status))
		switch status {
		case domain.LeaseActive, domain.LeaseSuspended, domain.LeaseTerminated, domain.LeaseExpired:
			patch["status"] = status
		default:
			return domain.Lease{}, domain.ErrInvalidStatus
		}
	}

	if len(patch) == 0 {
		return *lease, nil
	}
	patch["updated_at"] = s.clock.Now()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// A period change, or a move back to active, must re-clear the
		// overlap check against the unit's other leases.
		nextStatus := lease.Status
		if v, ok := patch["status"]; ok {
			nextStatus = v.(domain.LeaseStatus)
		}
		periodChanged := req.StartDate != nil || req.EndDate != nil
		if nextStatus == domain.LeaseActive && (periodChanged || lease.Status != domain.LeaseActive) {
			overlap, err := s.hasOverlap(tx, lease.UnitID, lease.ID, start, end)
			if err != nil {
				return err
			}
			if overlap {
				return domain.ErrLeaseOverlap
			}
		}

		if err := tx.Model(&domain.Lease{}).Where("id = ?", lease.ID).Updates(patch).Error; err != nil {
			return err
		}
		return s.RecomputeUnitOccupancy(ctx, tx, lease.UnitID)
	})
	if err != nil {
		return domain.Lease{}, err
	}

	return s.GetByID(ctx, domain.GetLeaseRequest{ID: lease.ID})
}

// Delete removes the lease and re-derives the unit's occupancy. Invoices and
// payments that reference the lease are kept for the books.
func (s *Service) Delete(ctx context.Context, id string) error {
	lease, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", lease.ID).Delete(&domain.Lease{}).Error; err != nil {
			return err
		}
		return s.RecomputeUnitOccupancy(ctx, tx, lease.UnitID)
	})
}

func (s *Service) Balance(ctx context.Context, leaseID string) (domain.LeaseBalance, error) {
	lease, err := s.find(ctx, leaseID)
	if err != nil {
		return domain.LeaseBalance{}, err
	}

	var invoiced, paid decimal.NullDecimal
	if err := s.db.WithContext(ctx).
		Raw("SELECT SUM(amount) FROM invoices WHERE lease_id = ?", lease.ID).
		Scan(&invoiced).Error; err != nil {
		return domain.LeaseBalance{}, err
	}
	if err := s.db.WithContext(ctx).
		Raw("SELECT SUM(amount) FROM payments WHERE lease_id = ?", lease.ID).
		Scan(&paid).Error; err != nil {
		return domain.LeaseBalance{}, err
	}

	balance := domain.LeaseBalance{LeaseID: lease.ID}
	if invoiced.Valid {
		balance.TotalInvoiced = invoiced.Decimal
	}
	if paid.Valid {
		balance.TotalPaid = paid.Decimal
	}
	balance.Balance = balance.TotalInvoiced.Sub(balance.TotalPaid)
	return balance, nil
}

// RecomputeUnitOccupancy marks the unit occupied when an active lease covers
// today and vacant otherwise. Suspended, terminated and expired leases do
// not hold a unit.
func (s *Service) RecomputeUnitOccupancy(ctx context.Context, tx *gorm.DB, unitID string) error {
	if tx == nil {
		tx = s.db.WithContext(ctx)
	}

	today := domain.DateOnly(s.clock.Now())
	var covering int64
	if err := tx.Model(&domain.Lease{}).
		Where("unit_id = ?", unitID).
		Where("status = ?", domain.LeaseActive).
		Where("start_date <= ? AND end_date >= ?", today, today).
		Count(&covering).Error; err != nil {
		return err
	}

	status := unitdomain.UnitVacant
	if covering > 0 {
		status = unitdomain.UnitOccupied
	}
	return tx.Model(&unitdomain.Unit{}).
		Where("id = ?", unitID).
		Where("status <> ?", unitdomain.UnitMaintenance).
		Update("status", status).Error
}

func (s *Service) hasOverlap(tx *gorm.DB, unitID, excludeID string, start, end time.Time) (bool, error) {
	stmt := tx.Model(&domain.Lease{}).
		Where("unit_id = ?", unitID).
		Where("status IN ?", []domain.LeaseStatus{domain.LeaseActive, domain.LeaseSuspended}).
		Where("start_date <= ? AND end_date >= ?", domain.DateOnly(end), domain.DateOnly(start))
	if excludeID != "" {
		stmt = stmt.Where("id <> ?", excludeID)
	}
	var count int64
	if err := stmt.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// waterRateForUnit prefers the unit's snapshot, then the house type, then
// the configured default.
func (s *Service) waterRateForUnit(ctx context.Context, unit unitdomain.Unit) (decimal.Decimal, error) {
	if unit.WaterRateAmount.IsPositive() {
		return unit.WaterRateAmount, nil
	}

	var houseType housetypedomain.HouseType
	err := s.db.WithContext(ctx).Where("id = ?", unit.HouseTypeID).First(&houseType).Error
	if err == nil && houseType.WaterRatePerUnit.IsPositive() {
		return houseType.WaterRatePerUnit, nil
	}
	if err != nil && err != gorm.ErrRecordNotFound {
		return decimal.Zero, err
	}
	return decimal.NewFromFloat(s.billing.Get().DefaultWaterRate), nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.Lease, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrInvalidID
	}
	lease, err := s.repo.FindOne(ctx, &domain.Lease{ID: id})
	if err != nil {
		return nil, err
	}
	if lease == nil {
		return nil, domain.ErrNotFound
	}
	return lease, nil
}

