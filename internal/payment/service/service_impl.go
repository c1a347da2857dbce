package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/tenora/internal/clock"
	invoicedomain "github.com/smallbiznis/tenora/internal/invoice/domain"
	leasedomain "github.com/smallbiznis/tenora/internal/lease/domain"
	"github.com/smallbiznis/tenora/internal/payment/domain"
	"github.com/smallbiznis/tenora/pkg/db/option"
	"github.com/smallbiznis/tenora/pkg/db/pagination"
	"github.com/smallbiznis/tenora/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Clock      clock.Clock
	InvoiceSvc invoicedomain.Service
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	clock      clock.Clock
	invoiceSvc invoicedomain.Service
	repo       repository.Repository[domain.Payment]
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("payment.service"),
		clock:      p.Clock,
		invoiceSvc: p.InvoiceSvc,
		repo:       repository.ProvideStore[domain.Payment](p.DB),
	}
}

func (s *Service) List(ctx context.Context, req domain.ListPaymentRequest) (domain.ListPaymentResponse, error) {
	filter := &domain.Payment{}
	if leaseID := strings.TrimSpace(req.LeaseID); leaseID != "" {
		filter.LeaseID = leaseID
	}
	if invoiceID := strings.TrimSpace(req.InvoiceID); invoiceID != "" {
		filter.InvoiceID = &invoiceID
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
		return domain.ListPaymentResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int(pageSize), func(p *domain.Payment) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        p.ID,
			CreatedAt: p.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	payments := make([]domain.Payment, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		payments = append(payments, *item)
	}

	resp := domain.ListPaymentResponse{Payments: payments}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetPaymentRequest) (domain.Payment, error) {
	payment, err := s.find(ctx, req.ID)
	if err != nil {
		return domain.Payment{}, err
	}
	return *payment, nil
}

// Create validates the lease and, when given, the invoice, then records the
// payment and reconciles the invoice status inside one transaction.
func (s *Service) Create(ctx context.Context, req domain.CreatePaymentRequest) (domain.Payment, error) {
	if req.Amount.IsNegative() || req.Amount.IsZero() {
		return domain.Payment{}, domain.ErrInvalidAmount
	}
	if req.PaymentDate.IsZero() {
		return domain.Payment{}, domain.ErrInvalidDate
	}

	method := domain.PaymentMethod(strings.TrimSpace(req.PaymentMethod))
	switch method {
	case domain.MethodCash, domain.MethodBankTransfer, domain.MethodMpesa, domain.MethodCheck:
	default:
		return domain.Payment{}, domain.ErrInvalidMethod
	}

	leaseID := strings.TrimSpace(req.LeaseID)
	var leaseCount int64
	if err := s.db.WithContext(ctx).Model(&leasedomain.Lease{}).
		Where("id = ?", leaseID).Count(&leaseCount).Error; err != nil {
		return domain.Payment{}, err
	}
	if leaseCount == 0 {
		return domain.Payment{}, leasedomain.ErrNotFound
	}

	var invoiceID *string
	if id := strings.TrimSpace(req.InvoiceID); id != "" {
		var invoiceCount int64
		if err := s.db.WithContext(ctx).Model(&invoicedomain.Invoice{}).
			Where("id = ?", id).Count(&invoiceCount).Error; err != nil {
			return domain.Payment{}, err
		}
		if invoiceCount == 0 {
			return domain.Payment{}, invoicedomain.ErrNotFound
		}
		invoiceID = &id
	}

	payment := domain.Payment{
		ID:            uuid.NewString(),
		LeaseID:       leaseID,
		InvoiceID:     invoiceID,
		Amount:        req.Amount,
		PaymentDate:   time.Date(req.PaymentDate.Year(), req.PaymentDate.Month(), req.PaymentDate.Day(), 0, 0, 0, 0, time.UTC),
		PaymentMethod: method,
		Reference:     strings.TrimSpace(req.Reference),
		Notes:         strings.TrimSpace(req.Notes),
		CreatedAt:     s.clock.Now(),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		if payment.InvoiceID != nil {
			return s.invoiceSvc.ReconcileStatus(ctx, tx, *payment.InvoiceID)
		}
		return nil
	})
	if err != nil {
		return domain.Payment{}, err
	}

	s.log.Info("payment recorded",
		zap.String("payment_id", payment.ID),
		zap.String("lease_id", payment.LeaseID),
		zap.String("method", string(payment.PaymentMethod)),
	)
	return payment, nil
}

// Delete reverses a mistaken entry and re-reconciles the invoice it touched.
func (s *Service) Delete(ctx context.Context, id string) error {
	payment, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", payment.ID).Delete(&domain.Payment{}).Error; err != nil {
			return err
		}
		if payment.InvoiceID != nil {
			return s.invoiceSvc.ReconcileStatus(ctx, tx, *payment.InvoiceID)
		}
		return nil
	})
}

func (s *Service) find(ctx context.Context, id string) (*domain.Payment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrInvalidID
	}
	payment, err := s.repo.FindOne(ctx, &domain.Payment{ID: id})
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, domain.ErrNotFound
	}
	return payment, nil
}
