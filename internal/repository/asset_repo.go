package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"chargenet/internal/models"
)

// ErrAssetNotFound represents missing asset rows.
var ErrAssetNotFound = errors.New("asset not found")

// ErrAssetOccupied indicates an acquire attempt on an unavailable asset.
var ErrAssetOccupied = errors.New("asset not available")

// AssetRepository persists station charger assets and implements the
// availability guard at the storage layer.
type AssetRepository struct {
	pool *sql.DB
}

// NewAssetRepository returns repository.
func NewAssetRepository(pool *sql.DB) *AssetRepository {
	return &AssetRepository{pool: pool}
}

const assetColumns = `id, station_id, connector_port, is_available, maintenance_log, created_at, updated_at`

// Create inserts a new asset, available by default.
func (r *AssetRepository) Create(ctx context.Context, asset *models.StationAsset) error {
	connector, err := json.Marshal(asset.Connector)
	if err != nil {
		return err
	}
	const query = `
		INSERT INTO station_assets (station_id, connector_port, is_available)
		VALUES ($1, $2, TRUE)
		RETURNING id, is_available, created_at, updated_at
	`
	return r.pool.QueryRowContext(ctx, query, asset.StationID, connector).
		Scan(&asset.ID, &asset.IsAvailable, &asset.CreatedAt, &asset.UpdatedAt)
}

// GetByID fetches an asset by id.
func (r *AssetRepository) GetByID(ctx context.Context, id int64) (*models.StationAsset, error) {
	const query = `SELECT ` + assetColumns + ` FROM station_assets WHERE id = $1`
	asset, err := scanAsset(r.pool.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}
	return asset, nil
}

// List returns assets, optionally filtered by station and availability.
func (r *AssetRepository) List(ctx context.Context, stationID int64, availableOnly bool) ([]models.StationAsset, error) {
	query := `SELECT ` + assetColumns + ` FROM station_assets WHERE 1=1`
	args := []any{}
	if stationID > 0 {
		args = append(args, stationID)
		query += ` AND station_id = $1`
	}
	if availableOnly {
		query += ` AND is_available = TRUE`
	}
	query += ` ORDER BY id`

	rows, err := r.pool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []models.StationAsset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, *asset)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return assets, nil
}

// Acquire atomically claims an available asset. The compare-and-set WHERE
// clause makes two concurrent acquires race safely: the loser sees zero
// rows and gets ErrAssetOccupied.
func (r *AssetRepository) Acquire(ctx context.Context, id int64) (*models.StationAsset, error) {
	const query = `
		UPDATE station_assets
		SET is_available = FALSE, updated_at = NOW()
		WHERE id = $1 AND is_available = TRUE
		RETURNING ` + assetColumns + `
	`
	asset, err := scanAsset(r.pool.QueryRowContext(ctx, query, id))
	if err == nil {
		return asset, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	// Distinguish a missing asset from an occupied one.
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, ErrAssetOccupied
}

// Release marks the asset available unconditionally. Idempotent.
func (r *AssetRepository) Release(ctx context.Context, id int64) error {
	const query = `
		UPDATE station_assets
		SET is_available = TRUE, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.pool.ExecContext(ctx, query, id)
	return err
}

// SetAvailability sets the flag explicitly (administrative toggle).
func (r *AssetRepository) SetAvailability(ctx context.Context, id int64, available bool) (*models.StationAsset, error) {
	const query = `
		UPDATE station_assets
		SET is_available = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + assetColumns + `
	`
	asset, err := scanAsset(r.pool.QueryRowContext(ctx, query, id, available))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}
	return asset, nil
}

// FlagFault records a maintenance log and forces the asset unavailable,
// regardless of prior state.
func (r *AssetRepository) FlagFault(ctx context.Context, id int64, fault string, at time.Time) (*models.StationAsset, error) {
	log, err := json.Marshal(models.MaintenanceLog{Fault: fault, Timestamp: at})
	if err != nil {
		return nil, err
	}
	const query = `
		UPDATE station_assets
		SET maintenance_log = $2, is_available = FALSE, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + assetColumns + `
	`
	asset, err := scanAsset(r.pool.QueryRowContext(ctx, query, id, log))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}
	return asset, nil
}

// ListByStation returns all assets belonging to the station.
func (r *AssetRepository) ListByStation(ctx context.Context, stationID int64) ([]models.StationAsset, error) {
	return r.List(ctx, stationID, false)
}

func scanAsset(row rowScanner) (*models.StationAsset, error) {
	var asset models.StationAsset
	var connector, maintenance []byte
	if err := row.Scan(
		&asset.ID,
		&asset.StationID,
		&connector,
		&asset.IsAvailable,
		&maintenance,
		&asset.CreatedAt,
		&asset.UpdatedAt,
	); err != nil {
		return nil, err
	}
	asset.Connector = decodeConnector(connector)
	asset.Maintenance = decodeMaintenance(maintenance)
	return &asset, nil
}
