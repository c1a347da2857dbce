package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	housetypedomain "github.com/smallbiznis/tenora/internal/housetype/domain"
	leasedomain "github.com/smallbiznis/tenora/internal/lease/domain"
	propertydomain "github.com/smallbiznis/tenora/internal/property/domain"
	tenantdomain "github.com/smallbiznis/tenora/internal/tenant/domain"
	unitdomain "github.com/smallbiznis/tenora/internal/unit/domain"
	"gorm.io/gorm"
)

const (
	demoPropertyName = "Sunrise Apartments"
	demoTenantEmail  = "jane.doe@example.com"
)

// EnsureDemoData seeds a small portfolio for local development. Every step
// is idempotent, so repeated startups leave the data untouched.
func EnsureDemoData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		property, err := ensureProperty(ctx, tx)
		if err != nil {
			return err
		}

		houseType, err := ensureHouseType(ctx, tx, property.ID)
		if err != nil {
			return err
		}

		units, err := ensureUnits(ctx, tx, property.ID, houseType)
		if err != nil {
			return err
		}

		tenant, err := ensureTenant(ctx, tx)
		if err != nil {
			return err
		}

		return ensureLease(ctx, tx, units[0], tenant)
	})
}

func ensureProperty(ctx context.Context, tx *gorm.DB) (propertydomain.Property, error) {
	var property propertydomain.Property
	err := tx.WithContext(ctx).Where("name = ?", demoPropertyName).First(&property).Error
	if err == nil {
		return property, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return property, err
	}

	now := time.Now().UTC()
	property = propertydomain.Property{
		ID:            uuid.NewString(),
		Name:          demoPropertyName,
		Address:       "12 Riverside Drive",
		LandlordName:  "Sam Otieno",
		LandlordPhone: "+254700000000",
		LandlordEmail: "landlord@example.com",
		Status:        propertydomain.PropertyActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := tx.WithContext(ctx).Create(&property).Error; err != nil {
		return property, err
	}
	return property, nil
}

func ensureHouseType(ctx context.Context, tx *gorm.DB, propertyID string) (housetypedomain.HouseType, error) {
	var houseType housetypedomain.HouseType
	err := tx.WithContext(ctx).
		Where("property_id = ? AND name = ?", propertyID, "One Bedroom").
		First(&houseType).Error
	if err == nil {
		return houseType, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return houseType, err
	}

	now := time.Now().UTC()
	houseType = housetypedomain.HouseType{
		ID:                uuid.NewString(),
		PropertyID:        propertyID,
		Name:              "One Bedroom",
		Description:       "Standard one bedroom unit",
		BaseRentAmount:    decimal.NewFromInt(12000),
		RentDepositAmount: decimal.NewFromInt(12000),
		WaterRatePerUnit:  decimal.NewFromFloat(15.50),
		WaterRateType:     housetypedomain.WaterRateUnitBased,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := tx.WithContext(ctx).Create(&houseType).Error; err != nil {
		return houseType, err
	}
	return houseType, nil
}

func ensureUnits(ctx context.Context, tx *gorm.DB, propertyID string, houseType housetypedomain.HouseType) ([]unitdomain.Unit, error) {
	units := make([]unitdomain.Unit, 0, 3)
	now := time.Now().UTC()

	for i := 1; i <= 3; i++ {
		number := fmt.Sprintf("A-%d", i)

		var unit unitdomain.Unit
		err := tx.WithContext(ctx).
			Where("property_id = ? AND unit_number = ?", propertyID, number).
			First(&unit).Error
		if err == nil {
			units = append(units, unit)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		unit = unitdomain.Unit{
			ID:                uuid.NewString(),
			PropertyID:        propertyID,
			HouseTypeID:       houseType.ID,
			UnitNumber:        number,
			RentAmount:        houseType.BaseRentAmount,
			RentDepositAmount: houseType.RentDepositAmount,
			WaterRateAmount:   houseType.WaterRatePerUnit,
			Status:            unitdomain.UnitVacant,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := tx.WithContext(ctx).Create(&unit).Error; err != nil {
			return nil, err
		}
		units = append(units, unit)
	}

	return units, nil
}

func ensureTenant(ctx context.Context, tx *gorm.DB) (tenantdomain.Tenant, error) {
	var tenant tenantdomain.Tenant
	err := tx.WithContext(ctx).Where("email = ?", demoTenantEmail).First(&tenant).Error
	if err == nil {
		return tenant, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return tenant, err
	}

	now := time.Now().UTC()
	tenant = tenantdomain.Tenant{
		ID:        uuid.NewString(),
		FullName:  "Jane Doe",
		Email:     demoTenantEmail,
		Phone:     "+254711111111",
		IDNumber:  "12345678",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&tenant).Error; err != nil {
		return tenant, err
	}
	return tenant, nil
}

func ensureLease(ctx context.Context, tx *gorm.DB, unit unitdomain.Unit, tenant tenantdomain.Tenant) error {
	var count int64
	err := tx.WithContext(ctx).
		Model(&leasedomain.Lease{}).
		Where("unit_id = ? AND tenant_id = ?", unit.ID, tenant.ID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	lease := leasedomain.Lease{
		ID:               uuid.NewString(),
		UnitID:           unit.ID,
		TenantID:         tenant.ID,
		StartDate:        start,
		EndDate:          start.AddDate(1, 0, -1),
		RentAmount:       unit.RentAmount,
		DepositAmount:    unit.RentDepositAmount,
		WaterRatePerUnit: unit.WaterRateAmount,
		Status:           leasedomain.LeaseActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := tx.WithContext(ctx).Create(&lease).Error; err != nil {
		return err
	}

	return tx.WithContext(ctx).
		Model(&unitdomain.Unit{}).
		Where("id = ?", unit.ID).
		Updates(map[string]any{"status": unitdomain.UnitOccupied, "updated_at": now}).Error
}
