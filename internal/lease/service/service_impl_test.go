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
	housetypedomain "github.com/smallbiznis/tenora/internal/housetype/domain"
	invoicedomain "github.com/smallbiznis/tenora/internal/invoice/domain"
	"github.com/smallbiznis/tenora/internal/lease/domain"
	paymentdomain "github.com/smallbiznis/tenora/internal/payment/domain"
	propertydomain "github.com/smallbiznis/tenora/internal/property/domain"
	tenantdomain "github.com/smallbiznis/tenora/internal/tenant/domain"
	unitdomain "github.com/smallbiznis/tenora/internal/unit/domain"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func setupLeaseService(t *testing.T) (domain.Service, *gorm.DB, *clock.FakeClock) {
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
		&domain.Lease{},
		&invoicedomain.Invoice{},
		&paymentdomain.Payment{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	fake := clock.NewFakeClock(time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:      db,
		Log:     zap.NewNop(),
		Clock:   fake,
		Billing: config.NewStaticBillingConfigHolder(config.DefaultBillingConfig()),
	})
	return svc, db, fake
}

type leaseFixtures struct {
	propertyID string
	unitID     string
	tenantID   string
}

func seedLeaseFixtures(t *testing.T, db *gorm.DB) leaseFixtures {
	t.Helper()

	property := propertydomain.Property{
		ID:           uuid.NewString(),
		Name:         "Sunrise Apartments",
		Address:      "14 Acacia Road",
		LandlordName: "J. Wanjiku",
		Status:       propertydomain.PropertyActive,
	}
	if err := db.Create(&property).Error; err != nil {
		t.Fatalf("seed property: %v", err)
	}

	houseType := housetypedomain.HouseType{
		ID:               uuid.NewString(),
		PropertyID:       property.ID,
		Name:             "One Bedroom",
		BaseRentAmount:   decimal.NewFromInt(12000),
		WaterRatePerUnit: decimal.NewFromFloat(18.50),
		WaterRateType:    housetypedomain.WaterRateUnitBased,
		ChargeAmounts:    datatypes.JSONMap{},
		IsActive:         true,
	}
	if err := db.Create(&houseType).Error; err != nil {
		t.Fatalf("seed house type: %v", err)
	}

	unit := unitdomain.Unit{
		ID:              uuid.NewString(),
		PropertyID:      property.ID,
		HouseTypeID:     houseType.ID,
		UnitNumber:      "A-1",
		RentAmount:      decimal.NewFromInt(12000),
		WaterRateAmount: decimal.NewFromInt(20),
		ChargeAmounts:   datatypes.JSONMap{},
		Status:          unitdomain.UnitVacant,
	}
	if err := db.Create(&unit).Error; err != nil {
		t.Fatalf("seed unit: %v", err)
	}

	tenant := tenantdomain.Tenant{
		ID:       uuid.NewString(),
		FullName: "Jane Doe",
		Email:    "jane.doe@example.com",
		Phone:    "+254700000001",
		IDNumber: "12345678",
	}
	if err := db.Create(&tenant).Error; err != nil {
		t.Fatalf("seed tenant: %v", err)
	}

	return leaseFixtures{propertyID: property.ID, unitID: unit.ID, tenantID: tenant.ID}
}

func unitStatus(t *testing.T, db *gorm.DB, unitID string) unitdomain.UnitStatus {
	t.Helper()
	var unit unitdomain.Unit
	if err := db.Where("id = ?", unitID).First(&unit).Error; err != nil {
		t.Fatalf("load unit: %v", err)
	}
	return unit.Status
}

func TestCreateLeaseOccupiesUnit(t *testing.T) {
	svc, db, _ := setupLeaseService(t)
	fx := seedLeaseFixtures(t, db)
	ctx := context.Background()

	lease, err := svc.Create(ctx, domain.CreateLeaseRequest{
		UnitID:    fx.unitID,
		TenantID:  fx.tenantID,
		StartDate: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create lease: %v", err)
	}

	if lease.Status != domain.LeaseActive {
		t.Fatalf("expected active lease, got %s", lease.Status)
	}
	if !lease.RentAmount.Equal(decimal.NewFromInt(12000)) {
		t.Fatalf("expected rent from unit snapshot, got %s", lease.RentAmount)
	}
	if !lease.WaterRatePerUnit.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected water rate from unit snapshot, got %s", lease.WaterRatePerUnit)
	}
	if status := unitStatus(t, db, fx.unitID); status != unitdomain.UnitOccupied {
		t.Fatalf("expected occupied unit, got %s", status)
	}
}

func TestCreateLeaseStartingTodayOccupiesUnit(t *testing.T) {
	svc, db, _ := setupLeaseService(t)
	fx := seedLeaseFixtures(t, db)
	ctx := context.Background()

	// A single-day lease on the clock's date exercises both period bounds.
	today := time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)
	if _, err := svc.Create(ctx, domain.CreateLeaseRequest{
		UnitID:    fx.unitID,
		TenantID:  fx.tenantID,
		StartDate: today,
		EndDate:   today,
	}); err != nil {
		t.Fatalf("create lease: %v", err)
	}

	if status := unitStatus(t, db, fx.unitID); status != unitdomain.UnitOccupied {
		t.Fatalf("expected occupied unit on lease start day, got %s", status)
	}
}

func TestCreateLeaseRejectsOverlap(t *testing.T) {
	svc, db, _ := setupLeaseService(t)
	fx := seedLeaseFixtures(t, db)
	ctx := context.Background()

	if _, err := svc.Create(ctx, domain.CreateLeaseRequest{
		UnitID:    fx.unitID,
		TenantID:  fx.tenantID,
		StartDate: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("create first lease: %v", err)
	}

	_, err := svc.Create(ctx, domain.CreateLeaseRequest{
		UnitID:    fx.unitID,
		TenantID:  fx.tenantID,
		StartDate: time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, domain.ErrLeaseOverlap) {
		t.Fatalf("expected ErrLeaseOverlap, got %v", err)
	}

	var count int64
	if err := db.Model(&domain.Lease{}).Count(&count).Error; err != nil {
		t.Fatalf("count leases: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 lease, got %d", count)
	}
}

func TestCreateLeaseRejectsInactivePropertyUnit(t *testing.T) {
	svc, db, _ := setupLeaseService(t)
	fx := seedLeaseFixtures(t, db)
	ctx := context.Background()

	if err := db.Model(&propertydomain.Property{}).
		Where("id = ?", fx.propertyID).
		Update("status", propertydomain.PropertyInactive).Error; err != nil {
		t.Fatalf("deactivate property: %v", err)
	}

	_, err := svc.Create(ctx, domain.CreateLeaseRequest{
		UnitID:    fx.unitID,
		TenantID:  fx.tenantID,
		StartDate: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, domain.ErrUnitNotRentable) {
		t.Fatalf("expected ErrUnitNotRentable, got %v", err)
	}
}

func TestCreateLeaseRejectsInvertedPeriod(t *testing.T) {
	svc, db, _ := setupLeaseService(t)
	fx := seedLeaseFixtures(t, db)

	_, err := svc.Create(context.Background(), domain.CreateLeaseRequest{
		UnitID:    fx.unitID,
		TenantID:  fx.tenantID,
		StartDate: time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, domain.ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestTerminateLeaseVacatesUnit(t *testing.T) {
	svc, db, _ := setupLeaseService(t)
	fx := seedLeaseFixtures(t, db)
	ctx := context.Background()

	lease, err := svc.Create(ctx, domain.CreateLeaseRequest{
		UnitID:    fx.unitID,
		TenantID:  fx.tenantID,
		StartDate: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create lease: %v", err)
	}

	terminated := string(domain.LeaseTerminated)
	if _, err := svc.Update(ctx, domain.UpdateLeaseRequest{ID: lease.ID, Status: &terminated}); err != nil {
		t.Fatalf("terminate lease: %v", err)
	}
	if status := unitStatus(t, db, fx.unitID); status != unitdomain.UnitVacant {
		t.Fatalf("expected vacant unit after termination, got %s", status)
	}

	// A terminated lease no longer blocks a replacement tenant.
	if _, err := svc.Create(ctx, domain.CreateLeaseRequest{
		UnitID:    fx.unitID,
		TenantID:  fx.tenantID,
		StartDate: time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, time.November, 30, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("create replacement lease: %v", err)
	}
	if status := unitStatus(t, db, fx.unitID); status != unitdomain.UnitOccupied {
		t.Fatalf("expected occupied unit after replacement, got %s", status)
	}
}

func TestDeleteLeaseVacatesUnitAndKeepsBooks(t *testing.T) {
	svc, db, _ := setupLeaseService(t)
	fx := seedLeaseFixtures(t, db)
	ctx := context.Background()

	lease, err := svc.Create(ctx, domain.CreateLeaseRequest{
		UnitID:    fx.unitID,
		TenantID:  fx.tenantID,
		StartDate: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create lease: %v", err)
	}

	invoice := invoicedomain.Invoice{
		ID:            uuid.NewString(),
		LeaseID:       lease.ID,
		InvoiceNumber: "INV-2026-06-TEST01",
		Description:   "Monthly Rent - June 2026",
		Amount:        decimal.NewFromInt(12000),
		IssueDate:     time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2026, time.June, 5, 0, 0, 0, 0, time.UTC),
		Status:        invoicedomain.InvoicePending,
	}
	if err := db.Create(&invoice).Error; err != nil {
		t.Fatalf("seed invoice: %v", err)
	}

	if err := svc.Delete(ctx, lease.ID); err != nil {
		t.Fatalf("delete lease: %v", err)
	}
	if status := unitStatus(t, db, fx.unitID); status != unitdomain.UnitVacant {
		t.Fatalf("expected vacant unit after delete, got %s", status)
	}

	var invoices int64
	if err := db.Model(&invoicedomain.Invoice{}).Where("lease_id = ?", lease.ID).Count(&invoices).Error; err != nil {
		t.Fatalf("count invoices: %v", err)
	}
	if invoices != 1 {
		t.Fatalf("expected invoice to survive lease deletion, got %d", invoices)
	}
}

func TestLeaseBalance(t *testing.T) {
	svc, db, _ := setupLeaseService(t)
	fx := seedLeaseFixtures(t, db)
	ctx := context.Background()

	lease, err := svc.Create(ctx, domain.CreateLeaseRequest{
		UnitID:    fx.unitID,
		TenantID:  fx.tenantID,
		StartDate: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create lease: %v", err)
	}

	for i, amount := range []int64{12000, 12000} {
		invoice := invoicedomain.Invoice{
			ID:            uuid.NewString(),
			LeaseID:       lease.ID,
			InvoiceNumber: fmt.Sprintf("INV-2026-%02d-TEST", i+1),
			Description:   "Monthly Rent",
			Amount:        decimal.NewFromInt(amount),
			IssueDate:     time.Date(2026, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC),
			DueDate:       time.Date(2026, time.Month(i+1), 5, 0, 0, 0, 0, time.UTC),
			Status:        invoicedomain.InvoicePending,
		}
		if err := db.Create(&invoice).Error; err != nil {
			t.Fatalf("seed invoice: %v", err)
		}
	}
	payment := paymentdomain.Payment{
		ID:            uuid.NewString(),
		LeaseID:       lease.ID,
		Amount:        decimal.NewFromInt(15000),
		PaymentDate:   time.Date(2026, time.February, 3, 0, 0, 0, 0, time.UTC),
		PaymentMethod: paymentdomain.MethodMpesa,
	}
	if err := db.Create(&payment).Error; err != nil {
		t.Fatalf("seed payment: %v", err)
	}

	balance, err := svc.Balance(ctx, lease.ID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !balance.TotalInvoiced.Equal(decimal.NewFromInt(24000)) {
		t.Fatalf("expected 24000 invoiced, got %s", balance.TotalInvoiced)
	}
	if !balance.TotalPaid.Equal(decimal.NewFromInt(15000)) {
		t.Fatalf("expected 15000 paid, got %s", balance.TotalPaid)
	}
	if !balance.Balance.Equal(decimal.NewFromInt(9000)) {
		t.Fatalf("expected 9000 outstanding, got %s", balance.Balance)
	}
}
