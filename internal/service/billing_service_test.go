package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"chargenet/internal/models"
	"chargenet/internal/repository"
)

type fakeInvoiceStore struct {
	invoices map[int64]*models.Invoice
}

func (f *fakeInvoiceStore) GetByID(_ context.Context, id int64) (*models.Invoice, error) {
	invoice, ok := f.invoices[id]
	if !ok {
		return nil, repository.ErrInvoiceNotFound
	}
	return invoice, nil
}

func (f *fakeInvoiceStore) ListByUser(_ context.Context, userID int64, _ int) ([]models.Invoice, error) {
	var out []models.Invoice
	for _, invoice := range f.invoices {
		if invoice.UserID == userID {
			out = append(out, *invoice)
		}
	}
	return out, nil
}

func (f *fakeInvoiceStore) UpdatePayment(_ context.Context, id int64, status, method string) (*models.Invoice, error) {
	invoice, ok := f.invoices[id]
	if !ok {
		return nil, repository.ErrInvoiceNotFound
	}
	invoice.PaymentStatus = status
	invoice.PaymentMethod = method
	return invoice, nil
}

func newBillingHarness() (*BillingService, *fakeInvoiceStore) {
	store := &fakeInvoiceStore{invoices: map[int64]*models.Invoice{
		1: {
			ID:            1,
			SessionID:     7,
			UserID:        1,
			PaymentStatus: models.PaymentStatusPending,
			PaymentMethod: "N/A",
			BillingTotal:  25500,
		},
	}}
	return NewBillingService(store, zap.NewNop()), store
}

func TestUpdatePaymentNormalizesStatus(t *testing.T) {
	svc, store := newBillingHarness()

	invoice, err := svc.UpdatePayment(context.Background(), 1, "Completed", "QRIS")
	if err != nil {
		t.Fatalf("update payment: %v", err)
	}
	if invoice.PaymentStatus != models.PaymentStatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", invoice.PaymentStatus)
	}
	if store.invoices[1].PaymentMethod != "QRIS" {
		t.Fatalf("expected method QRIS, got %s", store.invoices[1].PaymentMethod)
	}
}

func TestUpdatePaymentRejectsUnknownStatus(t *testing.T) {
	svc, store := newBillingHarness()

	if _, err := svc.UpdatePayment(context.Background(), 1, "SETTLED", "CASH"); !errors.Is(err, ErrInvalidPaymentStatus) {
		t.Fatalf("expected ErrInvalidPaymentStatus, got %v", err)
	}
	if store.invoices[1].PaymentStatus != models.PaymentStatusPending {
		t.Fatalf("invoice must stay PENDING, got %s", store.invoices[1].PaymentStatus)
	}
}

func TestUpdatePaymentNotFound(t *testing.T) {
	svc, _ := newBillingHarness()

	if _, err := svc.UpdatePayment(context.Background(), 404, "FAILED", "CARD"); !errors.Is(err, ErrInvoiceNotFound) {
		t.Fatalf("expected ErrInvoiceNotFound, got %v", err)
	}
}

func TestInvoiceForUserOwnership(t *testing.T) {
	svc, _ := newBillingHarness()

	if _, err := svc.InvoiceForUser(context.Background(), 1, 2); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	invoice, err := svc.InvoiceForUser(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("owner read failed: %v", err)
	}
	if invoice.BillingTotal != 25500 {
		t.Fatalf("expected billing total 25500, got %v", invoice.BillingTotal)
	}
}

func TestInvoicesForUser(t *testing.T) {
	svc, store := newBillingHarness()
	store.invoices[2] = &models.Invoice{ID: 2, SessionID: 8, UserID: 2, PaymentStatus: models.PaymentStatusPending}

	invoices, err := svc.InvoicesForUser(context.Background(), 1, 50)
	if err != nil {
		t.Fatalf("list invoices: %v", err)
	}
	if len(invoices) != 1 || invoices[0].ID != 1 {
		t.Fatalf("expected only user 1 invoices, got %+v", invoices)
	}
}
