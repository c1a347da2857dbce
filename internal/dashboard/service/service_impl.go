package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/tenora/internal/clock"
	"github.com/smallbiznis/tenora/internal/dashboard/domain"
	leasedomain "github.com/smallbiznis/tenora/internal/lease/domain"
	propertydomain "github.com/smallbiznis/tenora/internal/property/domain"
	tenantdomain "github.com/smallbiznis/tenora/internal/tenant/domain"
	unitdomain "github.com/smallbiznis/tenora/internal/unit/domain"
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
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("dashboard.service"),
		clock: p.Clock,
	}
}

func (s *Service) Stats(ctx context.Context) (domain.Stats, error) {
	db := s.db.WithContext(ctx)
	stats := domain.Stats{}

	if err := db.Model(&propertydomain.Property{}).Count(&stats.TotalProperties).Error; err != nil {
		return domain.Stats{}, err
	}
	if err := db.Model(&unitdomain.Unit{}).Count(&stats.TotalUnits).Error; err != nil {
		return domain.Stats{}, err
	}
	if err := db.Model(&unitdomain.Unit{}).
		Where("status = ?", unitdomain.UnitOccupied).
		Count(&stats.OccupiedUnits).Error; err != nil {
		return domain.Stats{}, err
	}
	if err := db.Model(&unitdomain.Unit{}).
		Where("status = ?", unitdomain.UnitVacant).
		Count(&stats.VacantUnits).Error; err != nil {
		return domain.Stats{}, err
	}
	if err := db.Model(&tenantdomain.Tenant{}).Count(&stats.TotalTenants).Error; err != nil {
		return domain.Stats{}, err
	}
	if err := db.Model(&leasedomain.Lease{}).
		Where("status = ?", leasedomain.LeaseActive).
		Count(&stats.ActiveLeases).Error; err != nil {
		return domain.Stats{}, err
	}

	var revenue decimal.NullDecimal
	if err := db.Raw("SELECT SUM(rent_amount) FROM leases WHERE status = ?", leasedomain.LeaseActive).
		Scan(&revenue).Error; err != nil {
		return domain.Stats{}, err
	}
	if revenue.Valid {
		stats.MonthlyRevenue = revenue.Decimal
	}

	rate, err := s.collectionRate(ctx)
	if err != nil {
		return domain.Stats{}, err
	}
	stats.CollectionRate = rate

	return stats, nil
}

// collectionRate covers invoices issued in the current calendar month. An
// empty month reports zero rather than dividing by it.
func (s *Service) collectionRate(ctx context.Context) (decimal.Decimal, error) {
	now := s.clock.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	nextMonth := monthStart.AddDate(0, 1, 0)

	var invoiced decimal.NullDecimal
	if err := s.db.WithContext(ctx).
		Raw("SELECT SUM(amount) FROM invoices WHERE issue_date >= ? AND issue_date < ?",
			monthStart, nextMonth).
		Scan(&invoiced).Error; err != nil {
		return decimal.Zero, err
	}
	if !invoiced.Valid || !invoiced.Decimal.IsPositive() {
		return decimal.Zero, nil
	}

	var paid decimal.NullDecimal
	if err := s.db.WithContext(ctx).
		Raw(`SELECT SUM(p.amount) FROM payments p
			JOIN invoices i ON i.id = p.invoice_id
			WHERE i.issue_date >= ? AND i.issue_date < ?`,
			monthStart, nextMonth).
		Scan(&paid).Error; err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	if paid.Valid {
		total = paid.Decimal
	}
	return total.Div(invoiced.Decimal).Mul(decimal.NewFromInt(100)).Round(2), nil
}
