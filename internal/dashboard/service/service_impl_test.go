package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/tenora/internal/clock"
	"github.com/smallbiznis/tenora/internal/dashboard/domain"
	invoicedomain "github.com/smallbiznis/tenora/internal/invoice/domain"
	leasedomain "github.com/smallbiznis/tenora/internal/lease/domain"
	paymentdomain "github.com/smallbiznis/tenora/internal/payment/domain"
	propertydomain "github.com/smallbiznis/tenora/internal/property/domain"
	tenantdomain "github.com/smallbiznis/tenora/internal/tenant/domain"
	unitdomain "github.com/smallbiznis/tenora/internal/unit/domain"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func setupDashboardService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&propertydomain.Property{},
		&unitdomain.Unit{},
		&tenantdomain.Tenant{},
		&leasedomain.Lease{},
		&invoicedomain.Invoice{},
		&paymentdomain.Payment{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)),
	})
	return svc, db
}

func TestStats(t *testing.T) {
	svc, db := setupDashboardService(t)

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

	units := []unitdomain.Unit{
		{ID: uuid.NewString(), PropertyID: property.ID, HouseTypeID: uuid.NewString(), UnitNumber: "A-1", RentAmount: decimal.NewFromInt(12000), ChargeAmounts: datatypes.JSONMap{}, Status: unitdomain.UnitOccupied},
		{ID: uuid.NewString(), PropertyID: property.ID, HouseTypeID: uuid.NewString(), UnitNumber: "A-2", RentAmount: decimal.NewFromInt(12000), ChargeAmounts: datatypes.JSONMap{}, Status: unitdomain.UnitVacant},
		{ID: uuid.NewString(), PropertyID: property.ID, HouseTypeID: uuid.NewString(), UnitNumber: "A-3", RentAmount: decimal.NewFromInt(12000), ChargeAmounts: datatypes.JSONMap{}, Status: unitdomain.UnitMaintenance},
	}
	for i := range units {
		if err := db.Create(&units[i]).Error; err != nil {
			t.Fatalf("seed unit: %v", err)
		}
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

	lease := leasedomain.Lease{
		ID:               uuid.NewString(),
		UnitID:           units[0].ID,
		TenantID:         tenant.ID,
		StartDate:        time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		EndDate:          time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC),
		RentAmount:       decimal.NewFromInt(12000),
		WaterRatePerUnit: decimal.NewFromInt(20),
		Status:           leasedomain.LeaseActive,
	}
	if err := db.Create(&lease).Error; err != nil {
		t.Fatalf("seed lease: %v", err)
	}

	invoice := invoicedomain.Invoice{
		ID:            uuid.NewString(),
		LeaseID:       lease.ID,
		InvoiceNumber: "INV-2026-06-TEST",
		Description:   "Monthly Rent - June 2026",
		Amount:        decimal.NewFromInt(12000),
		IssueDate:     time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2026, time.June, 5, 0, 0, 0, 0, time.UTC),
		Status:        invoicedomain.InvoicePending,
	}
	if err := db.Create(&invoice).Error; err != nil {
		t.Fatalf("seed invoice: %v", err)
	}
	payment := paymentdomain.Payment{
		ID:            uuid.NewString(),
		LeaseID:       lease.ID,
		InvoiceID:     &invoice.ID,
		Amount:        decimal.NewFromInt(9000),
		PaymentDate:   time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC),
		PaymentMethod: paymentdomain.MethodMpesa,
	}
	if err := db.Create(&payment).Error; err != nil {
		t.Fatalf("seed payment: %v", err)
	}

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	if stats.TotalProperties != 1 {
		t.Fatalf("expected 1 property, got %d", stats.TotalProperties)
	}
	if stats.TotalUnits != 3 || stats.OccupiedUnits != 1 || stats.VacantUnits != 1 {
		t.Fatalf("unexpected unit counts: total=%d occupied=%d vacant=%d",
			stats.TotalUnits, stats.OccupiedUnits, stats.VacantUnits)
	}
	if stats.TotalTenants != 1 {
		t.Fatalf("expected 1 tenant, got %d", stats.TotalTenants)
	}
	if stats.ActiveLeases != 1 {
		t.Fatalf("expected 1 active lease, got %d", stats.ActiveLeases)
	}
	if !stats.MonthlyRevenue.Equal(decimal.NewFromInt(12000)) {
		t.Fatalf("expected monthly revenue 12000, got %s", stats.MonthlyRevenue)
	}
	if !stats.CollectionRate.Equal(decimal.NewFromInt(75)) {
		t.Fatalf("expected 75 percent collection rate, got %s", stats.CollectionRate)
	}
}

func TestStatsEmptyPortfolio(t *testing.T) {
	svc, _ := setupDashboardService(t)

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalProperties != 0 || stats.ActiveLeases != 0 {
		t.Fatalf("expected zeroed stats, got %+v", stats)
	}
	if !stats.CollectionRate.IsZero() {
		t.Fatalf("expected zero collection rate, got %s", stats.CollectionRate)
	}
}
