package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/tenora/internal/clock"
	"github.com/smallbiznis/tenora/internal/config"
	leasedomain "github.com/smallbiznis/tenora/internal/lease/domain"
	unitdomain "github.com/smallbiznis/tenora/internal/unit/domain"
	"github.com/smallbiznis/tenora/internal/waterreading/domain"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func setupWaterReadingService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&unitdomain.Unit{},
		&leasedomain.Lease{},
		&domain.WaterReading{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc := New(Params{
		DB:      db,
		Log:     zap.NewNop(),
		Clock:   clock.NewFakeClock(time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)),
		Billing: config.NewStaticBillingConfigHolder(config.DefaultBillingConfig()),
	})
	return svc, db
}

func seedMeteredUnit(t *testing.T, db *gorm.DB, withLease bool) unitdomain.Unit {
	t.Helper()
	unit := unitdomain.Unit{
		ID:            uuid.NewString(),
		PropertyID:    uuid.NewString(),
		HouseTypeID:   uuid.NewString(),
		UnitNumber:    "A-1",
		RentAmount:    decimal.NewFromInt(12000),
		ChargeAmounts: datatypes.JSONMap{},
		Status:        unitdomain.UnitOccupied,
	}
	if err := db.Create(&unit).Error; err != nil {
		t.Fatalf("seed unit: %v", err)
	}
	if withLease {
		lease := leasedomain.Lease{
			ID:               uuid.NewString(),
			UnitID:           unit.ID,
			TenantID:         uuid.NewString(),
			StartDate:        time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
			EndDate:          time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC),
			RentAmount:       decimal.NewFromInt(12000),
			WaterRatePerUnit: decimal.NewFromInt(20),
			Status:           leasedomain.LeaseActive,
		}
		if err := db.Create(&lease).Error; err != nil {
			t.Fatalf("seed lease: %v", err)
		}
	}
	return unit
}

func TestFirstReadingStartsFromZero(t *testing.T) {
	svc, db := setupWaterReadingService(t)
	unit := seedMeteredUnit(t, db, true)

	reading, err := svc.Create(context.Background(), domain.CreateWaterReadingRequest{
		UnitID:         unit.ID,
		ReadingDate:    time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC),
		CurrentReading: decimal.NewFromInt(120),
	})
	if err != nil {
		t.Fatalf("create reading: %v", err)
	}

	if !reading.PreviousReading.IsZero() {
		t.Fatalf("expected previous reading 0, got %s", reading.PreviousReading)
	}
	if !reading.Consumption.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("expected consumption 120, got %s", reading.Consumption)
	}
	if !reading.RatePerUnit.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected lease water rate 20, got %s", reading.RatePerUnit)
	}
	if !reading.TotalAmount.Equal(decimal.NewFromInt(2400)) {
		t.Fatalf("expected total 2400, got %s", reading.TotalAmount)
	}
	if reading.Status != domain.ReadingPending {
		t.Fatalf("expected pending reading, got %s", reading.Status)
	}
}

func TestReadingChainsFromLatest(t *testing.T) {
	svc, db := setupWaterReadingService(t)
	unit := seedMeteredUnit(t, db, true)
	ctx := context.Background()

	if _, err := svc.Create(ctx, domain.CreateWaterReadingRequest{
		UnitID:         unit.ID,
		ReadingDate:    time.Date(2026, time.May, 10, 0, 0, 0, 0, time.UTC),
		CurrentReading: decimal.NewFromInt(120),
	}); err != nil {
		t.Fatalf("create first reading: %v", err)
	}

	second, err := svc.Create(ctx, domain.CreateWaterReadingRequest{
		UnitID:         unit.ID,
		ReadingDate:    time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC),
		CurrentReading: decimal.NewFromInt(135),
	})
	if err != nil {
		t.Fatalf("create second reading: %v", err)
	}

	if !second.PreviousReading.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("expected previous reading 120, got %s", second.PreviousReading)
	}
	if !second.Consumption.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("expected consumption 15, got %s", second.Consumption)
	}
	if !second.TotalAmount.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("expected total 300, got %s", second.TotalAmount)
	}
}

func TestMeterRegressionPersistsNothing(t *testing.T) {
	svc, db := setupWaterReadingService(t)
	unit := seedMeteredUnit(t, db, true)
	ctx := context.Background()

	if _, err := svc.Create(ctx, domain.CreateWaterReadingRequest{
		UnitID:         unit.ID,
		ReadingDate:    time.Date(2026, time.May, 10, 0, 0, 0, 0, time.UTC),
		CurrentReading: decimal.NewFromInt(120),
	}); err != nil {
		t.Fatalf("create first reading: %v", err)
	}

	_, err := svc.Create(ctx, domain.CreateWaterReadingRequest{
		UnitID:         unit.ID,
		ReadingDate:    time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC),
		CurrentReading: decimal.NewFromInt(110),
	})
	if !errors.Is(err, domain.ErrMeterRegression) {
		t.Fatalf("expected ErrMeterRegression, got %v", err)
	}

	var count int64
	if err := db.Model(&domain.WaterReading{}).Count(&count).Error; err != nil {
		t.Fatalf("count readings: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 reading, got %d", count)
	}
}

func TestReadingOnLeaseStartUsesLeaseRate(t *testing.T) {
	svc, db := setupWaterReadingService(t)
	unit := seedMeteredUnit(t, db, true)

	// The seeded lease starts January 1, so a reading taken that same day
	// bills at the lease rate rather than the configured default.
	reading, err := svc.Create(context.Background(), domain.CreateWaterReadingRequest{
		UnitID:         unit.ID,
		ReadingDate:    time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		CurrentReading: decimal.NewFromInt(10),
	})
	if err != nil {
		t.Fatalf("create reading: %v", err)
	}
	if !reading.RatePerUnit.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected lease water rate 20, got %s", reading.RatePerUnit)
	}
	if !reading.TotalAmount.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("expected total 200, got %s", reading.TotalAmount)
	}
}

func TestReadingFallsBackToDefaultRate(t *testing.T) {
	svc, db := setupWaterReadingService(t)
	unit := seedMeteredUnit(t, db, false)

	reading, err := svc.Create(context.Background(), domain.CreateWaterReadingRequest{
		UnitID:         unit.ID,
		ReadingDate:    time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC),
		CurrentReading: decimal.NewFromInt(10),
	})
	if err != nil {
		t.Fatalf("create reading: %v", err)
	}

	if !reading.RatePerUnit.Equal(decimal.NewFromFloat(15.50)) {
		t.Fatalf("expected default rate 15.50, got %s", reading.RatePerUnit)
	}
	if !reading.TotalAmount.Equal(decimal.NewFromInt(155)) {
		t.Fatalf("expected total 155, got %s", reading.TotalAmount)
	}
}

func TestUpdateReadingRecalculates(t *testing.T) {
	svc, db := setupWaterReadingService(t)
	unit := seedMeteredUnit(t, db, true)
	ctx := context.Background()

	reading, err := svc.Create(ctx, domain.CreateWaterReadingRequest{
		UnitID:         unit.ID,
		ReadingDate:    time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC),
		CurrentReading: decimal.NewFromInt(120),
	})
	if err != nil {
		t.Fatalf("create reading: %v", err)
	}

	corrected := decimal.NewFromInt(130)
	updated, err := svc.Update(ctx, domain.UpdateWaterReadingRequest{
		ID:             reading.ID,
		CurrentReading: &corrected,
	})
	if err != nil {
		t.Fatalf("update reading: %v", err)
	}
	if !updated.Consumption.Equal(decimal.NewFromInt(130)) {
		t.Fatalf("expected consumption 130, got %s", updated.Consumption)
	}
	if !updated.TotalAmount.Equal(decimal.NewFromInt(2600)) {
		t.Fatalf("expected total 2600, got %s", updated.TotalAmount)
	}

	bad := decimal.NewFromInt(-5)
	if _, err := svc.Update(ctx, domain.UpdateWaterReadingRequest{
		ID:             reading.ID,
		CurrentReading: &bad,
	}); !errors.Is(err, domain.ErrMeterRegression) {
		t.Fatalf("expected ErrMeterRegression, got %v", err)
	}
}

func TestUpdateReadingRejectsUnknownStatus(t *testing.T) {
	svc, db := setupWaterReadingService(t)
	unit := seedMeteredUnit(t, db, true)
	ctx := context.Background()

	reading, err := svc.Create(ctx, domain.CreateWaterReadingRequest{
		UnitID:         unit.ID,
		ReadingDate:    time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC),
		CurrentReading: decimal.NewFromInt(120),
	})
	if err != nil {
		t.Fatalf("create reading: %v", err)
	}

	status := "archived"
	if _, err := svc.Update(ctx, domain.UpdateWaterReadingRequest{
		ID:     reading.ID,
		Status: &status,
	}); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}
