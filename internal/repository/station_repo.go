package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"chargenet/internal/models"
)

// ErrStationNotFound represents missing station rows.
var ErrStationNotFound = errors.New("station not found")

// StationRepository persists charging stations.
type StationRepository struct {
	pool *sql.DB
}

// NewStationRepository returns repository.
func NewStationRepository(pool *sql.DB) *StationRepository {
	return &StationRepository{pool: pool}
}

// Create inserts a new station.
func (r *StationRepository) Create(ctx context.Context, station *models.Station) error {
	location, err := json.Marshal(station.Location)
	if err != nil {
		return err
	}
	standards, err := json.Marshal(station.ConnectorStandards)
	if err != nil {
		return err
	}
	const query = `
		INSERT INTO stations (name, location, connector_standards)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	return r.pool.QueryRowContext(ctx, query, station.Name, location, standards).
		Scan(&station.ID, &station.CreatedAt)
}

// GetByID fetches a station by id.
func (r *StationRepository) GetByID(ctx context.Context, id int64) (*models.Station, error) {
	const query = `
		SELECT id, name, location, connector_standards, created_at
		FROM stations
		WHERE id = $1
	`
	row := r.pool.QueryRowContext(ctx, query, id)
	station, err := scanStation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStationNotFound
		}
		return nil, err
	}
	return station, nil
}

// List returns all stations.
func (r *StationRepository) List(ctx context.Context) ([]models.Station, error) {
	const query = `
		SELECT id, name, location, connector_standards, created_at
		FROM stations
		ORDER BY id
	`
	rows, err := r.pool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stations []models.Station
	for rows.Next() {
		station, err := scanStation(rows)
		if err != nil {
			return nil, err
		}
		stations = append(stations, *station)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stations, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStation(row rowScanner) (*models.Station, error) {
	var station models.Station
	var location, standards []byte
	if err := row.Scan(
		&station.ID,
		&station.Name,
		&location,
		&standards,
		&station.CreatedAt,
	); err != nil {
		return nil, err
	}
	station.Location = decodeLocation(location)
	station.ConnectorStandards = decodeStandards(standards)
	return &station, nil
}
