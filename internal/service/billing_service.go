package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"chargenet/internal/models"
	"chargenet/internal/repository"
)

var (
	// ErrInvoiceNotFound is returned when the referenced invoice does not exist.
	ErrInvoiceNotFound = errors.New("invoice not found")
	// ErrInvalidPaymentStatus rejects unknown payment status values.
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
)

// InvoiceRepositoryContract is the storage contract for invoices.
type InvoiceRepositoryContract interface {
	GetByID(ctx context.Context, id int64) (*models.Invoice, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]models.Invoice, error)
	UpdatePayment(ctx context.Context, id int64, status, method string) (*models.Invoice, error)
}

// BillingService reads invoices and applies payment status updates. Invoice
// creation happens inside the session stop transaction.
type BillingService struct {
	repo   InvoiceRepositoryContract
	logger *zap.Logger
}

// NewBillingService builds service.
func NewBillingService(repo InvoiceRepositoryContract, logger *zap.Logger) *BillingService {
	return &BillingService{repo: repo, logger: logger}
}

// InvoicesForUser returns the user's invoices.
func (s *BillingService) InvoicesForUser(ctx context.Context, userID int64, limit int) ([]models.Invoice, error) {
	return s.repo.ListByUser(ctx, userID, limit)
}

// InvoiceForUser returns one invoice, enforcing ownership.
func (s *BillingService) InvoiceForUser(ctx context.Context, invoiceID, userID int64) (*models.Invoice, error) {
	invoice, err := s.repo.GetByID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, repository.ErrInvoiceNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	if invoice.UserID != userID {
		return nil, ErrNotOwner
	}
	return invoice, nil
}

// UpdatePayment sets payment status and method. Status is matched
// case-insensitively against the known set; any status may move to any
// other, a deliberate simplification for the simulated payment flow.
func (s *BillingService) UpdatePayment(ctx context.Context, invoiceID int64, status, method string) (*models.Invoice, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	switch status {
	case models.PaymentStatusPending, models.PaymentStatusCompleted, models.PaymentStatusFailed:
	default:
		return nil, ErrInvalidPaymentStatus
	}

	invoice, err := s.repo.UpdatePayment(ctx, invoiceID, status, method)
	if err != nil {
		if errors.Is(err, repository.ErrInvoiceNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}

	s.logger.Info("invoice payment updated",
		zap.Int64("invoice_id", invoice.ID),
		zap.String("status", status),
		zap.String("method", method),
	)
	return invoice, nil
}
