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
	invoicedomain "github.com/smallbiznis/tenora/internal/invoice/domain"
	invoiceservice "github.com/smallbiznis/tenora/internal/invoice/service"
	leasedomain "github.com/smallbiznis/tenora/internal/lease/domain"
	"github.com/smallbiznis/tenora/internal/lock"
	"github.com/smallbiznis/tenora/internal/payment/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupPaymentService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&leasedomain.Lease{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
		&domain.Payment{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	fake := clock.NewFakeClock(time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC))
	invoiceSvc := invoiceservice.NewService(invoiceservice.Params{
		DB:      db,
		Log:     zap.NewNop(),
		Clock:   fake,
		Billing: config.NewStaticBillingConfigHolder(config.DefaultBillingConfig()),
		Locker:  lock.NewLocker(config.Config{}),
	})
	svc := New(Params{
		DB:         db,
		Log:        zap.NewNop(),
		Clock:      fake,
		InvoiceSvc: invoiceSvc,
	})
	return svc, db
}

func seedPaymentFixtures(t *testing.T, db *gorm.DB) (leasedomain.Lease, invoicedomain.Invoice) {
	t.Helper()
	lease := leasedomain.Lease{
		ID:               uuid.NewString(),
		UnitID:           uuid.NewString(),
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

	invoice := invoicedomain.Invoice{
		ID:            uuid.NewString(),
		LeaseID:       lease.ID,
		InvoiceNumber: "INV-2026-06-TEST",
		Description:   "Monthly Rent - June 2026",
		Amount:        decimal.NewFromInt(1000),
		IssueDate:     time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2026, time.June, 5, 0, 0, 0, 0, time.UTC),
		Status:        invoicedomain.InvoicePending,
	}
	if err := db.Create(&invoice).Error; err != nil {
		t.Fatalf("seed invoice: %v", err)
	}
	return lease, invoice
}

func invoiceStatus(t *testing.T, db *gorm.DB, id string) invoicedomain.InvoiceStatus {
	t.Helper()
	var invoice invoicedomain.Invoice
	if err := db.Where("id = ?", id).First(&invoice).Error; err != nil {
		t.Fatalf("load invoice: %v", err)
	}
	return invoice.Status
}

func TestCreatePaymentReconcilesInvoice(t *testing.T) {
	svc, db := setupPaymentService(t)
	lease, invoice := seedPaymentFixtures(t, db)
	ctx := context.Background()

	if _, err := svc.Create(ctx, domain.CreatePaymentRequest{
		LeaseID:       lease.ID,
		InvoiceID:     invoice.ID,
		Amount:        decimal.NewFromInt(400),
		PaymentDate:   time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC),
		PaymentMethod: "mpesa",
	}); err != nil {
		t.Fatalf("create partial payment: %v", err)
	}
	if status := invoiceStatus(t, db, invoice.ID); status != invoicedomain.InvoicePartial {
		t.Fatalf("expected partial invoice, got %s", status)
	}

	if _, err := svc.Create(ctx, domain.CreatePaymentRequest{
		LeaseID:       lease.ID,
		InvoiceID:     invoice.ID,
		Amount:        decimal.NewFromInt(600),
		PaymentDate:   time.Date(2026, time.June, 12, 0, 0, 0, 0, time.UTC),
		PaymentMethod: "cash",
	}); err != nil {
		t.Fatalf("create settling payment: %v", err)
	}
	if status := invoiceStatus(t, db, invoice.ID); status != invoicedomain.InvoicePaid {
		t.Fatalf("expected paid invoice, got %s", status)
	}
}

func TestCreatePaymentWithoutInvoice(t *testing.T) {
	svc, db := setupPaymentService(t)
	lease, _ := seedPaymentFixtures(t, db)

	payment, err := svc.Create(context.Background(), domain.CreatePaymentRequest{
		LeaseID:       lease.ID,
		Amount:        decimal.NewFromInt(5000),
		PaymentDate:   time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC),
		PaymentMethod: "bank_transfer",
		Reference:     "TXN-1042",
	})
	if err != nil {
		t.Fatalf("create on-account payment: %v", err)
	}
	if payment.InvoiceID != nil {
		t.Fatalf("expected nil invoice id, got %v", *payment.InvoiceID)
	}
}

func TestCreatePaymentValidation(t *testing.T) {
	svc, db := setupPaymentService(t)
	lease, _ := seedPaymentFixtures(t, db)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreatePaymentRequest{
		LeaseID:       lease.ID,
		Amount:        decimal.Zero,
		PaymentDate:   time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC),
		PaymentMethod: "cash",
	})
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	_, err = svc.Create(ctx, domain.CreatePaymentRequest{
		LeaseID:       lease.ID,
		Amount:        decimal.NewFromInt(100),
		PaymentDate:   time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC),
		PaymentMethod: "barter",
	})
	if !errors.Is(err, domain.ErrInvalidMethod) {
		t.Fatalf("expected ErrInvalidMethod, got %v", err)
	}

	_, err = svc.Create(ctx, domain.CreatePaymentRequest{
		LeaseID:       uuid.NewString(),
		Amount:        decimal.NewFromInt(100),
		PaymentDate:   time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC),
		PaymentMethod: "cash",
	})
	if !errors.Is(err, leasedomain.ErrNotFound) {
		t.Fatalf("expected lease not found, got %v", err)
	}
}

func TestDeletePaymentReReconcilesInvoice(t *testing.T) {
	svc, db := setupPaymentService(t)
	lease, invoice := seedPaymentFixtures(t, db)
	ctx := context.Background()

	payment, err := svc.Create(ctx, domain.CreatePaymentRequest{
		LeaseID:       lease.ID,
		InvoiceID:     invoice.ID,
		Amount:        decimal.NewFromInt(1000),
		PaymentDate:   time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC),
		PaymentMethod: "mpesa",
	})
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}
	if status := invoiceStatus(t, db, invoice.ID); status != invoicedomain.InvoicePaid {
		t.Fatalf("expected paid invoice, got %s", status)
	}

	if err := svc.Delete(ctx, payment.ID); err != nil {
		t.Fatalf("delete payment: %v", err)
	}
	if status := invoiceStatus(t, db, invoice.ID); status != invoicedomain.InvoicePending {
		t.Fatalf("expected pending invoice after reversal, got %s", status)
	}

	var count int64
	if err := db.Model(&domain.Payment{}).Count(&count).Error; err != nil {
		t.Fatalf("count payments: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no payments, got %d", count)
	}
}
