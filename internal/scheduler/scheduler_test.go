package scheduler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/tenora/internal/clock"
	"github.com/smallbiznis/tenora/internal/config"
	housetypedomain "github.com/smallbiznis/tenora/internal/housetype/domain"
	invoicedomain "github.com/smallbiznis/tenora/internal/invoice/domain"
	invoiceservice "github.com/smallbiznis/tenora/internal/invoice/service"
	leasedomain "github.com/smallbiznis/tenora/internal/lease/domain"
	leaseservice "github.com/smallbiznis/tenora/internal/lease/service"
	"github.com/smallbiznis/tenora/internal/lock"
	paymentdomain "github.com/smallbiznis/tenora/internal/payment/domain"
	propertydomain "github.com/smallbiznis/tenora/internal/property/domain"
	tenantdomain "github.com/smallbiznis/tenora/internal/tenant/domain"
	unitdomain "github.com/smallbiznis/tenora/internal/unit/domain"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func setupScheduler(t *testing.T) (*Scheduler, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&propertydomain.Property{},
		&housetypedomain.HouseType{},
		&unitdomain.Unit{},
		&tenantdomain.Tenant{},
		&leasedomain.Lease{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
		&paymentdomain.Payment{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	fake := clock.NewFakeClock(time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC))
	holder := config.NewStaticBillingConfigHolder(config.DefaultBillingConfig())
	leaseSvc := leaseservice.New(leaseservice.Params{
		DB:      db,
		Log:     zap.NewNop(),
		Clock:   fake,
		Billing: holder,
	})
	invoiceSvc := invoiceservice.NewService(invoiceservice.Params{
		DB:      db,
		Log:     zap.NewNop(),
		Clock:   fake,
		Billing: holder,
		Locker:  lock.NewLocker(config.Config{}),
	})

	sched, err := New(Params{
		DB:         db,
		Log:        zap.NewNop(),
		Clock:      fake,
		LeaseSvc:   leaseSvc,
		InvoiceSvc: invoiceSvc,
	})
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	return sched, db
}

func seedSchedulerLease(t *testing.T, db *gorm.DB, start, end time.Time) leasedomain.Lease {
	t.Helper()

	unit := unitdomain.Unit{
		ID:            uuid.NewString(),
		PropertyID:    uuid.NewString(),
		HouseTypeID:   uuid.NewString(),
		UnitNumber:    uuid.NewString()[:8],
		RentAmount:    decimal.NewFromInt(12000),
		ChargeAmounts: datatypes.JSONMap{},
		Status:        unitdomain.UnitOccupied,
	}
	if err := db.Create(&unit).Error; err != nil {
		t.Fatalf("seed unit: %v", err)
	}

	lease := leasedomain.Lease{
		ID:               uuid.NewString(),
		UnitID:           unit.ID,
		TenantID:         uuid.NewString(),
		StartDate:        start,
		EndDate:          end,
		RentAmount:       decimal.NewFromInt(12000),
		WaterRatePerUnit: decimal.NewFromInt(20),
		Status:           leasedomain.LeaseActive,
	}
	if err := db.Create(&lease).Error; err != nil {
		t.Fatalf("seed lease: %v", err)
	}
	return lease
}

func TestRunOnceExpiresLeasesAndBillsCurrentMonth(t *testing.T) {
	sched, db := setupScheduler(t)

	ended := seedSchedulerLease(t, db,
		time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.May, 31, 0, 0, 0, 0, time.UTC),
	)
	ongoing := seedSchedulerLease(t, db,
		time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC),
	)

	sched.RunOnce(context.Background())

	var expired leasedomain.Lease
	if err := db.Where("id = ?", ended.ID).First(&expired).Error; err != nil {
		t.Fatalf("load ended lease: %v", err)
	}
	if expired.Status != leasedomain.LeaseExpired {
		t.Fatalf("expected expired lease, got %s", expired.Status)
	}

	var vacated unitdomain.Unit
	if err := db.Where("id = ?", ended.UnitID).First(&vacated).Error; err != nil {
		t.Fatalf("load vacated unit: %v", err)
	}
	if vacated.Status != unitdomain.UnitVacant {
		t.Fatalf("expected vacant unit after expiry, got %s", vacated.Status)
	}

	var kept leasedomain.Lease
	if err := db.Where("id = ?", ongoing.ID).First(&kept).Error; err != nil {
		t.Fatalf("load ongoing lease: %v", err)
	}
	if kept.Status != leasedomain.LeaseActive {
		t.Fatalf("expected ongoing lease untouched, got %s", kept.Status)
	}

	// The invoice job bills the clock's current month for leases still
	// active after the expiry pass.
	var invoices []invoicedomain.Invoice
	if err := db.Find(&invoices).Error; err != nil {
		t.Fatalf("load invoices: %v", err)
	}
	if len(invoices) != 1 {
		t.Fatalf("expected 1 invoice, got %d", len(invoices))
	}
	if invoices[0].LeaseID != ongoing.ID {
		t.Fatalf("expected invoice for ongoing lease, got %s", invoices[0].LeaseID)
	}

	// A second pass is a no-op.
	sched.RunOnce(context.Background())
	var count int64
	if err := db.Model(&invoicedomain.Invoice{}).Count(&count).Error; err != nil {
		t.Fatalf("count invoices: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 invoice after rerun, got %d", count)
	}
}

func TestRunOnceKeepsLeaseEndingToday(t *testing.T) {
	sched, db := setupScheduler(t)

	// The clock sits on June 15. A lease whose last day is today has not
	// ended yet, so the expiry pass must leave it alone.
	endingToday := seedSchedulerLease(t, db,
		time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC),
	)

	sched.RunOnce(context.Background())

	var lease leasedomain.Lease
	if err := db.Where("id = ?", endingToday.ID).First(&lease).Error; err != nil {
		t.Fatalf("load lease: %v", err)
	}
	if lease.Status != leasedomain.LeaseActive {
		t.Fatalf("expected lease ending today to stay active, got %s", lease.Status)
	}

	var unit unitdomain.Unit
	if err := db.Where("id = ?", endingToday.UnitID).First(&unit).Error; err != nil {
		t.Fatalf("load unit: %v", err)
	}
	if unit.Status != unitdomain.UnitOccupied {
		t.Fatalf("expected occupied unit, got %s", unit.Status)
	}
}

func TestNewSchedulerRequiresDependencies(t *testing.T) {
	if _, err := New(Params{}); err != ErrInvalidConfig {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}
