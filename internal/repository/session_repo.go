package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"chargenet/internal/models"
)

// ErrSessionNotFound represents missing session rows.
var ErrSessionNotFound = errors.New("session not found")

// ErrUserHasOngoingSession indicates the one-ongoing-session-per-user
// constraint fired.
var ErrUserHasOngoingSession = errors.New("user already has an active session")

// ErrSessionNotOngoing indicates a finalize attempt on a session that is no
// longer ONGOING.
var ErrSessionNotOngoing = errors.New("session is not ongoing")

// SessionRepository persists charging sessions and implements the atomic
// session-stop write.
type SessionRepository struct {
	pool *sql.DB
}

// NewSessionRepository returns repository.
func NewSessionRepository(pool *sql.DB) *SessionRepository {
	return &SessionRepository{pool: pool}
}

const sessionColumns = `id, user_id, asset_id, status, start_time, end_time, duration_minutes, total_kwh, created_at, updated_at`

// Create inserts an ONGOING session. A partial unique index on
// (user_id) WHERE status='ONGOING' backs the per-user exclusivity, so a
// concurrent duplicate start loses with ErrUserHasOngoingSession instead of
// slipping past the application-level check.
func (r *SessionRepository) Create(ctx context.Context, session *models.ChargingSession) error {
	const query = `
		INSERT INTO charging_sessions (user_id, asset_id, status, start_time)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	err := r.pool.QueryRowContext(ctx, query,
		session.UserID,
		session.AssetID,
		session.Status,
		session.StartTime,
	).Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserHasOngoingSession
		}
		return err
	}
	return nil
}

// GetByID fetches a session by id.
func (r *SessionRepository) GetByID(ctx context.Context, id int64) (*models.ChargingSession, error) {
	const query = `SELECT ` + sessionColumns + ` FROM charging_sessions WHERE id = $1`
	session, err := scanSession(r.pool.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

// GetOngoingByUser returns the user's single ONGOING session, if any.
func (r *SessionRepository) GetOngoingByUser(ctx context.Context, userID int64) (*models.ChargingSession, error) {
	const query = `
		SELECT ` + sessionColumns + `
		FROM charging_sessions
		WHERE user_id = $1 AND status = 'ONGOING'
		LIMIT 1
	`
	session, err := scanSession(r.pool.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

// ListByUser returns the user's sessions, newest first.
func (r *SessionRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]models.ChargingSession, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
		SELECT ` + sessionColumns + `
		FROM charging_sessions
		WHERE user_id = $1
		ORDER BY start_time DESC
		LIMIT $2
	`
	rows, err := r.pool.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.ChargingSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// FinalizeParams carries the computed stop-time values.
type FinalizeParams struct {
	SessionID       int64
	AssetID         int64
	UserID          int64
	EndTime         time.Time
	DurationMinutes float64
	TotalKWh        float64
	Tariff          models.Tariff
	CostTotal       float64
	BillingTotal    float64
}

// Finalize commits the session stop as one transaction: the session becomes
// STOPPED, the asset is released, and the PENDING invoice is inserted. A
// failure at any step rolls all three back.
func (r *SessionRepository) Finalize(ctx context.Context, params FinalizeParams) (*models.ChargingSession, *models.Invoice, error) {
	tariff, err := json.Marshal(params.Tariff)
	if err != nil {
		return nil, nil, err
	}

	tx, err := r.pool.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	const updateSession = `
		UPDATE charging_sessions
		SET status = 'STOPPED',
		    end_time = $2,
		    duration_minutes = $3,
		    total_kwh = $4,
		    updated_at = NOW()
		WHERE id = $1 AND status = 'ONGOING'
		RETURNING ` + sessionColumns + `
	`
	session, err := scanSession(tx.QueryRowContext(ctx, updateSession,
		params.SessionID,
		params.EndTime,
		params.DurationMinutes,
		params.TotalKWh,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrSessionNotOngoing
		}
		return nil, nil, err
	}

	const releaseAsset = `
		UPDATE station_assets
		SET is_available = TRUE, updated_at = NOW()
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, releaseAsset, params.AssetID); err != nil {
		return nil, nil, err
	}

	invoice := &models.Invoice{
		SessionID:     params.SessionID,
		UserID:        params.UserID,
		Tariff:        params.Tariff,
		CostTotal:     params.CostTotal,
		BillingTotal:  params.BillingTotal,
		PaymentStatus: models.PaymentStatusPending,
		PaymentMethod: "N/A",
	}
	const insertInvoice = `
		INSERT INTO invoices (session_id, user_id, tariff, cost_total, billing_total, payment_status, payment_method)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err = tx.QueryRowContext(ctx, insertInvoice,
		invoice.SessionID,
		invoice.UserID,
		tariff,
		invoice.CostTotal,
		invoice.BillingTotal,
		invoice.PaymentStatus,
		invoice.PaymentMethod,
	).Scan(&invoice.ID, &invoice.CreatedAt, &invoice.UpdatedAt)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return session, invoice, nil
}

func scanSession(row rowScanner) (*models.ChargingSession, error) {
	var session models.ChargingSession
	if err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.AssetID,
		&session.Status,
		&session.StartTime,
		&session.EndTime,
		&session.DurationMinutes,
		&session.TotalKWh,
		&session.CreatedAt,
		&session.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &session, nil
}
