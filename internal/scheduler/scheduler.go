package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/tenora/internal/clock"
	invoicedomain "github.com/smallbiznis/tenora/internal/invoice/domain"
	leasedomain "github.com/smallbiznis/tenora/internal/lease/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("scheduler dependencies missing")

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Clock      clock.Clock
	LeaseSvc   leasedomain.Service
	InvoiceSvc invoicedomain.Service
	Config     Config `optional:"true"`
}

// Scheduler drives the periodic housekeeping jobs: expiring leases whose
// end date has passed and generating the monthly rent invoices.
type Scheduler struct {
	db         *gorm.DB
	log        *zap.Logger
	cfg        Config
	clock      clock.Clock
	leaseSvc   leasedomain.Service
	invoiceSvc invoicedomain.Service
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.Clock == nil || p.LeaseSvc == nil || p.InvoiceSvc == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:         p.DB,
		log:        p.Log.Named("scheduler"),
		cfg:        p.Config.withDefaults(),
		clock:      p.Clock,
		leaseSvc:   p.LeaseSvc,
		invoiceSvc: p.InvoiceSvc,
	}, nil
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	s.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

func (s *Scheduler) RunOnce(ctx context.Context) {
	s.runJob(ctx, "lease.expire", s.expireLeases)
	s.runJob(ctx, "invoice.generate", s.generateMonthlyInvoices)
}

func (s *Scheduler) runJob(parent context.Context, name string, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	start := s.clock.Now()
	err := fn(ctx)
	if err != nil {
		s.log.Error("job failed",
			zap.String("job", name),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return
	}
	s.log.Debug("job finished",
		zap.String("job", name),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// expireLeases flips active leases whose end date has passed to expired and
// re-derives occupancy for the units they covered.
func (s *Scheduler) expireLeases(ctx context.Context) error {
	today := leasedomain.DateOnly(s.clock.Now())

	var unitIDs []string
	err := s.db.WithContext(ctx).
		Model(&leasedomain.Lease{}).
		Where("status = ? AND end_date < ?", leasedomain.LeaseActive, today).
		Distinct().
		Pluck("unit_id", &unitIDs).Error
	if err != nil {
		return err
	}
	if len(unitIDs) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&leasedomain.Lease{}).
			Where("status = ? AND end_date < ?", leasedomain.LeaseActive, today).
			Updates(map[string]any{
				"status":     leasedomain.LeaseExpired,
				"updated_at": s.clock.Now().UTC(),
			})
		if result.Error != nil {
			return result.Error
		}

		for _, unitID := range unitIDs {
			if err := s.leaseSvc.RecomputeUnitOccupancy(ctx, tx, unitID); err != nil {
				return err
			}
		}

		s.log.Info("expired leases",
			zap.Int64("leases", result.RowsAffected),
			zap.Int("units", len(unitIDs)),
		)
		return nil
	})
}

// generateMonthlyInvoices runs the idempotent monthly generation for the
// current period. Already-billed leases are skipped inside the service, so
// running every interval only does work once per month.
func (s *Scheduler) generateMonthlyInvoices(ctx context.Context) error {
	now := s.clock.Now().UTC()
	result, err := s.invoiceSvc.GenerateMonthly(ctx, invoicedomain.GenerateRequest{
		Month: int(now.Month()),
		Year:  now.Year(),
	})
	if err != nil {
		if errors.Is(err, invoicedomain.ErrGenerationLocked) {
			return nil
		}
		return err
	}

	if len(result.Generated) > 0 {
		s.log.Info("generated monthly invoices",
			zap.Int("generated", len(result.Generated)),
			zap.Int("skipped", result.Skipped),
		)
	}
	return nil
}
