package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/tenora/internal/clock"
	"github.com/smallbiznis/tenora/internal/config"
	"github.com/smallbiznis/tenora/internal/invoice/domain"
	leasedomain "github.com/smallbiznis/tenora/internal/lease/domain"
	"github.com/smallbiznis/tenora/internal/lock"
	"github.com/smallbiznis/tenora/pkg/db/option"
	"github.com/smallbiznis/tenora/pkg/db/pagination"
	"github.com/smallbiznis/tenora/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const generateLockTTL = 5 * time.Minute

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	Billing *config.BillingConfigHolder
	Locker  *lock.Locker
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	billing *config.BillingConfigHolder
	locker  *lock.Locker
	repo    repository.Repository[domain.Invoice]
}

func NewService(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("invoice.service"),
		clock:   p.Clock,
		billing: p.Billing,
		locker:  p.Locker,
		repo:    repository.ProvideStore[domain.Invoice](p.DB),
	}
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) (domain.ListInvoiceResponse, error) {
	if req.Overdue {
		invoices, err := s.Overdue(ctx)
		if err != nil {
			return domain.ListInvoiceResponse{}, err
		}
		return domain.ListInvoiceResponse{Invoices: invoices}, nil
	}

	filter := &domain.Invoice{}
	if leaseID := strings.TrimSpace(req.LeaseID); leaseID != "" {
		filter.LeaseID = leaseID
	}
	if status := strings.TrimSpace(req.Status); status != "" {
		filter.Status = domain.InvoiceStatus(status)
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
		return domain.ListInvoiceResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int(pageSize), func(inv *domain.Invoice) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        inv.ID,
			CreatedAt: inv.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	invoices := make([]domain.Invoice, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		invoices = append(invoices, *item)
	}

	resp := domain.ListInvoiceResponse{Invoices: invoices}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetInvoiceRequest) (domain.InvoiceWithItems, error) {
	invoice, err := s.find(ctx, req.ID)
	if err != nil {
		return domain.InvoiceWithItems{}, err
	}

	items, err := s.ListItems(ctx, invoice.ID)
	if err != nil {
		return domain.InvoiceWithItems{}, err
	}
	return domain.InvoiceWithItems{Invoice: *invoice, Items: items}, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateInvoiceRequest) (domain.Invoice, error) {
	number := strings.TrimSpace(req.InvoiceNumber)
	if number == "" {
		return domain.Invoice{}, domain.ErrInvalidNumber
	}
	if req.Amount.IsNegative() {
		return domain.Invoice{}, domain.ErrInvalidAmount
	}
	if req.IssueDate.IsZero() || req.DueDate.IsZero() {
		return domain.Invoice{}, domain.ErrInvalidPeriod
	}

	leaseID := strings.TrimSpace(req.LeaseID)
	var leaseCount int64
	if err := s.db.WithContext(ctx).Model(&leasedomain.Lease{}).
		Where("id = ?", leaseID).Count(&leaseCount).Error; err != nil {
		return domain.Invoice{}, err
	}
	if leaseCount == 0 {
		return domain.Invoice{}, leasedomain.ErrNotFound
	}

	var numberCount int64
	if err := s.db.WithContext(ctx).Model(&domain.Invoice{}).
		Where("invoice_number = ?", number).Count(&numberCount).Error; err != nil {
		return domain.Invoice{}, err
	}
	if numberCount > 0 {
		return domain.Invoice{}, domain.ErrDuplicateNumber
	}

	now := s.clock.Now()
	invoice := domain.Invoice{
		ID:            uuid.NewString(),
		LeaseID:       leaseID,
		InvoiceNumber: number,
		Description:   strings.TrimSpace(req.Description),
		Amount:        req.Amount,
		IssueDate:     leasedomain.DateOnly(req.IssueDate),
		DueDate:       leasedomain.DateOnly(req.DueDate),
		Status:        domain.InvoicePending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, &invoice); err != nil {
		return domain.Invoice{}, err
	}
	return invoice, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateInvoiceRequest) (domain.Invoice, error) {
	invoice, err := s.find(ctx, req.ID)
	if err != nil {
		return domain.Invoice{}, err
	}

	patch := map[string]any{}
	if req.Description != nil {
		patch["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Amount != nil {
		if req.Amount.IsNegative() {
			return domain.Invoice{}, domain.ErrInvalidAmount
		}
		patch["amount"] = *req.Amount
	}
	if req.IssueDate != nil {
		patch["issue_date"] = leasedomain.DateOnly(*req.IssueDate)
	}
	if req.DueDate != nil {
		patch["due_date"] = leasedomain.DateOnly(*req.DueDate)
	}

	if len(patch) == 0 {
		return *invoice, nil
	}
	patch["updated_at"] = s.clock.Now()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Invoice{}).Where("id = ?", invoice.ID).Updates(patch).Error; err != nil {
			return err
		}
		// An amount change can move the invoice across the paid threshold.
		if req.Amount != nil {
			return s.ReconcileStatus(ctx, tx, invoice.ID)
		}
		return nil
	})
	if err != nil {
		return domain.Invoice{}, err
	}

	invoice, err = s.find(ctx, invoice.ID)
	if err != nil {
		return domain.Invoice{}, err
	}
	return *invoice, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	invoice, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&domain.InvoiceItem{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("UPDATE payments SET invoice_id = NULL WHERE invoice_id = ?", invoice.ID).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", invoice.ID).Delete(&domain.Invoice{}).Error
	})
}

// AddItem computes the line amount as quantity times unit price on the
// server and folds the new line into the invoice total.
func (s *Service) AddItem(ctx context.Context, req domain.AddItemRequest) (domain.InvoiceItem, error) {
	invoice, err := s.find(ctx, req.InvoiceID)
	if err != nil {
		return domain.InvoiceItem{}, err
	}

	quantity := req.Quantity
	if quantity.IsZero() {
		quantity = decimal.NewFromInt(1)
	}
	if quantity.IsNegative() {
		return domain.InvoiceItem{}, domain.ErrInvalidQuantity
	}
	if req.UnitPrice.IsNegative() {
		return domain.InvoiceItem{}, domain.ErrInvalidUnitPrice
	}

	item := domain.InvoiceItem{
		ID:          uuid.NewString(),
		InvoiceID:   invoice.ID,
		ChargeCode:  strings.TrimSpace(req.ChargeCode),
		Description: strings.TrimSpace(req.Description),
		Quantity:    quantity,
		UnitPrice:   req.UnitPrice,
		Amount:      quantity.Mul(req.UnitPrice).Round(2),
		CreatedAt:   s.clock.Now(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		return s.recalculateTotal(ctx, tx, invoice.ID)
	})
	if err != nil {
		return domain.InvoiceItem{}, err
	}
	return item, nil
}

func (s *Service) UpdateItem(ctx context.Context, req domain.UpdateItemRequest) (domain.InvoiceItem, error) {
	item, err := s.findItem(ctx, req.ID)
	if err != nil {
		return domain.InvoiceItem{}, err
	}

	patch := map[string]any{}
	quantity := item.Quantity
	unitPrice := item.UnitPrice
	recalc := false

	if req.ChargeCode != nil {
		patch["charge_code"] = strings.TrimSpace(*req.ChargeCode)
	}
	if req.Description != nil {
		patch["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Quantity != nil {
		if req.Quantity.IsNegative() || req.Quantity.IsZero() {
			return domain.InvoiceItem{}, domain.ErrInvalidQuantity
		}
		quantity = *req.Quantity
		patch["quantity"] = quantity
		recalc = true
	}
	if req.UnitPrice != nil {
		if req.UnitPrice.IsNegative() {
			return domain.InvoiceItem{}, domain.ErrInvalidUnitPrice
		}
		unitPrice = *req.UnitPrice
		patch["unit_price"] = unitPrice
		recalc = true
	}
	if recalc {
		patch["amount"] = quantity.Mul(unitPrice).Round(2)
	}

	if len(patch) == 0 {
		return *item, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.InvoiceItem{}).Where("id = ?", item.ID).Updates(patch).Error; err != nil {
			return err
		}
		return s.recalculateTotal(ctx, tx, item.InvoiceID)
	})
	if err != nil {
		return domain.InvoiceItem{}, err
	}

	updated, err := s.findItem(ctx, item.ID)
	if err != nil {
		return domain.InvoiceItem{}, err
	}
	return *updated, nil
}

func (s *Service) DeleteItem(ctx context.Context, id string) error {
	item, err := s.findItem(ctx, id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", item.ID).Delete(&domain.InvoiceItem{}).Error; err != nil {
			return err
		}
		return s.recalculateTotal(ctx, tx, item.InvoiceID)
	})
}

func (s *Service) ListItems(ctx context.Context, invoiceID string) ([]domain.InvoiceItem, error) {
	var items []domain.InvoiceItem
	err := s.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

// Overdue returns invoices past due with money still outstanding. The stored
// status is not trusted here; outstanding is recomputed from payments so an
// invoice marked paid with missing money still surfaces.
func (s *Service) Overdue(ctx context.Context) ([]domain.Invoice, error) {
	today := leasedomain.DateOnly(s.clock.Now())
	var invoices []domain.Invoice
	err := s.db.WithContext(ctx).
		Raw(`SELECT i.* FROM invoices i
			LEFT JOIN payments p ON p.invoice_id = i.id
			WHERE i.due_date <= ?
			GROUP BY i.id
			HAVING i.amount - COALESCE(SUM(p.amount), 0) > 0
			ORDER BY i.due_date ASC`, today).
		Scan(&invoices).Error
	return invoices, err
}

// GenerateMonthly creates one rent invoice per lease active on the first of
// the billing month. The run is guarded by an advisory lock and is
// idempotent: leases already holding the period's invoice number are
// skipped.
func (s *Service) GenerateMonthly(ctx context.Context, req domain.GenerateRequest) (domain.GenerateResult, error) {
	if req.Month < 1 || req.Month > 12 || req.Year < 2000 || req.Year > 2100 {
		return domain.GenerateResult{}, domain.ErrInvalidPeriod
	}

	lockKey := fmt.Sprintf("tenora:invoice:generate:%04d-%02d", req.Year, req.Month)
	token, ok, err := s.locker.TryLock(ctx, lockKey, generateLockTTL)
	if err != nil {
		return domain.GenerateResult{}, err
	}
	if !ok {
		return domain.GenerateResult{}, domain.ErrGenerationLocked
	}
	defer func() {
		if err := s.locker.Release(ctx, lockKey, token); err != nil {
			s.log.Warn("release generation lock", zap.Error(err))
		}
	}()

	billing := s.billing.Get()
	firstOfMonth := time.Date(req.Year, time.Month(req.Month), 1, 0, 0, 0, 0, time.UTC)

	var leases []leasedomain.Lease
	if err := s.db.WithContext(ctx).
		Where("status = ?", leasedomain.LeaseActive).
		Where("start_date <= ? AND end_date >= ?", firstOfMonth, firstOfMonth).
		Find(&leases).Error; err != nil {
		return domain.GenerateResult{}, err
	}

	result := domain.GenerateResult{Generated: []domain.Invoice{}}
	issueDate := firstOfMonth
	dueDate := time.Date(req.Year, time.Month(req.Month), billing.InvoiceDueDay, 0, 0, 0, 0, time.UTC)
	description := fmt.Sprintf("Monthly Rent - %s %d", firstOfMonth.Month(), req.Year)

	for _, lease := range leases {
		number := s.invoiceNumber(billing.InvoicePrefix, req.Year, req.Month, lease.ID)

		var exists int64
		if err := s.db.WithContext(ctx).Model(&domain.Invoice{}).
			Where("lease_id = ? AND invoice_number = ?", lease.ID, number).
			Count(&exists).Error; err != nil {
			return result, err
		}
		if exists > 0 {
			result.Skipped++
			continue
		}

		now := s.clock.Now()
		invoice := domain.Invoice{
			ID:            uuid.NewString(),
			LeaseID:       lease.ID,
			InvoiceNumber: number,
			Description:   description,
			Amount:        lease.RentAmount,
			IssueDate:     issueDate,
			DueDate:       dueDate,
			Status:        domain.InvoicePending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.db.WithContext(ctx).Create(&invoice).Error; err != nil {
			s.log.Error("generate invoice",
				zap.String("lease_id", lease.ID),
				zap.String("invoice_number", number),
				zap.Error(err),
			)
			continue
		}
		result.Generated = append(result.Generated, invoice)
	}

	s.log.Info("monthly invoice run",
		zap.Int("year", req.Year),
		zap.Int("month", req.Month),
		zap.Int("generated", len(result.Generated)),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

// ReconcileStatus maps the paid total onto pending, partial or paid.
// Overpayment clamps to paid, and a zero-amount invoice counts as settled
// since nothing is owed on it.
func (s *Service) ReconcileStatus(ctx context.Context, tx *gorm.DB, invoiceID string) error {
	if tx == nil {
		tx = s.db.WithContext(ctx)
	}

	var invoice domain.Invoice
	if err := tx.Where("id = ?", invoiceID).First(&invoice).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.ErrNotFound
		}
		return err
	}

	var paid decimal.NullDecimal
	if err := tx.Raw("SELECT SUM(amount) FROM payments WHERE invoice_id = ?", invoiceID).
		Scan(&paid).Error; err != nil {
		return err
	}

	total := decimal.Zero
	if paid.Valid {
		total = paid.Decimal
	}

	status := domain.InvoicePending
	switch {
	case total.GreaterThanOrEqual(invoice.Amount):
		status = domain.InvoicePaid
	case total.IsPositive():
		status = domain.InvoicePartial
	}

	if status == invoice.Status {
		return nil
	}
	return tx.Model(&domain.Invoice{}).
		Where("id = ?", invoiceID).
		Updates(map[string]any{"status": status, "updated_at": s.clock.Now()}).Error
}

// recalculateTotal resets the invoice amount to the sum of its items, then
// reconciles the status against payments already taken.
func (s *Service) recalculateTotal(ctx context.Context, tx *gorm.DB, invoiceID string) error {
	var total decimal.NullDecimal
	if err := tx.Raw("SELECT SUM(amount) FROM invoice_items WHERE invoice_id = ?", invoiceID).
		Scan(&total).Error; err != nil {
		return err
	}

	amount := decimal.Zero
	if total.Valid {
		amount = total.Decimal
	}

	if err := tx.Model(&domain.Invoice{}).
		Where("id = ?", invoiceID).
		Updates(map[string]any{"amount": amount, "updated_at": s.clock.Now()}).Error; err != nil {
		return err
	}
	return s.ReconcileStatus(ctx, tx, invoiceID)
}

func (s *Service) invoiceNumber(prefix string, year, month int, leaseID string) string {
	suffix := leaseID
	if len(suffix) > 6 {
		suffix = suffix[len(suffix)-6:]
	}
	return fmt.Sprintf("%s-%d-%02d-%s", prefix, year, month, suffix)
}

func (s *Service) find(ctx context.Context, id string) (*domain.Invoice, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrInvalidID
	}
	invoice, err := s.repo.FindOne(ctx, &domain.Invoice{ID: id})
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrNotFound
	}
	return invoice, nil
}

func (s *Service) findItem(ctx context.Context, id string) (*domain.InvoiceItem, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrInvalidID
	}
	var item domain.InvoiceItem
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

