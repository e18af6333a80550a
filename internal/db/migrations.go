package db

import (
	"context"
	"database/sql"
	"fmt"
)

// EnsureSchema creates tables and indexes if they do not exist yet. The two
// partial unique indexes on charging_sessions back the availability guard:
// a losing concurrent start gets a unique-violation instead of a double
// booking.
func EnsureSchema(ctx context.Context, pool *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			phone TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS vehicles (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id),
			plate TEXT NOT NULL UNIQUE,
			battery_capacity_kwh DOUBLE PRECISION NOT NULL DEFAULT 0,
			connector_port JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS stations (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			location JSONB NOT NULL DEFAULT '{}',
			connector_standards JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS station_assets (
			id BIGSERIAL PRIMARY KEY,
			station_id BIGINT NOT NULL REFERENCES stations(id),
			connector_port JSONB NOT NULL DEFAULT '{}',
			is_available BOOLEAN NOT NULL DEFAULT TRUE,
			maintenance_log JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS charging_sessions (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id),
			asset_id BIGINT NOT NULL REFERENCES station_assets(id),
			status TEXT NOT NULL,
			start_time TIMESTAMPTZ NOT NULL,
			end_time TIMESTAMPTZ,
			duration_minutes DOUBLE PRECISION,
			total_kwh DOUBLE PRECISION,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE UNIQUE INDEX IF NOT EXISTS uq_sessions_user_ongoing
			ON charging_sessions (user_id) WHERE status = 'ONGOING'`,

		`CREATE UNIQUE INDEX IF NOT EXISTS uq_sessions_asset_ongoing
			ON charging_sessions (asset_id) WHERE status = 'ONGOING'`,

		`CREATE TABLE IF NOT EXISTS invoices (
			id BIGSERIAL PRIMARY KEY,
			session_id BIGINT NOT NULL UNIQUE REFERENCES charging_sessions(id),
			user_id BIGINT NOT NULL REFERENCES users(id),
			tariff JSONB NOT NULL DEFAULT '{}',
			cost_total DOUBLE PRECISION NOT NULL DEFAULT 0,
			billing_total DOUBLE PRECISION NOT NULL DEFAULT 0,
			payment_status TEXT NOT NULL DEFAULT 'PENDING',
			payment_method TEXT NOT NULL DEFAULT 'N/A',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for i, stmt := range statements {
		if _, err := pool.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("db: migration %d: %w", i, err)
		}
	}
	return nil
}
