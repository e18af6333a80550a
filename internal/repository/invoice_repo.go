package repository

import (
	"context"
	"database/sql"
	"errors"

	"chargenet/internal/models"
)

// ErrInvoiceNotFound represents missing invoice rows.
var ErrInvoiceNotFound = errors.New("invoice not found")

// InvoiceRepository reads and updates invoices. Inserts happen only inside
// SessionRepository.Finalize.
type InvoiceRepository struct {
	pool *sql.DB
}

// NewInvoiceRepository returns repository.
func NewInvoiceRepository(pool *sql.DB) *InvoiceRepository {
	return &InvoiceRepository{pool: pool}
}

const invoiceColumns = `id, session_id, user_id, tariff, cost_total, billing_total, payment_status, payment_method, created_at, updated_at`

// GetByID fetches an invoice by id.
func (r *InvoiceRepository) GetByID(ctx context.Context, id int64) (*models.Invoice, error) {
	const query = `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	invoice, err := scanInvoice(r.pool.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	return invoice, nil
}

// ListByUser returns the user's invoices, newest first.
func (r *InvoiceRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]models.Invoice, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []models.Invoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, *invoice)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return invoices, nil
}

// UpdatePayment sets both payment fields.
func (r *InvoiceRepository) UpdatePayment(ctx context.Context, id int64, status, method string) (*models.Invoice, error) {
	const query = `
		UPDATE invoices
		SET payment_status = $2, payment_method = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + invoiceColumns + `
	`
	invoice, err := scanInvoice(r.pool.QueryRowContext(ctx, query, id, status, method))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	return invoice, nil
}

func scanInvoice(row rowScanner) (*models.Invoice, error) {
	var invoice models.Invoice
	var tariff []byte
	if err := row.Scan(
		&invoice.ID,
		&invoice.SessionID,
		&invoice.UserID,
		&tariff,
		&invoice.CostTotal,
		&invoice.BillingTotal,
		&invoice.PaymentStatus,
		&invoice.PaymentMethod,
		&invoice.CreatedAt,
		&invoice.UpdatedAt,
	); err != nil {
		return nil, err
	}
	invoice.Tariff = decodeTariff(tariff)
	return &invoice, nil
}
