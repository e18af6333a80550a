package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"chargenet/internal/models"
)

// ErrDuplicatePlate indicates the unique plate constraint fired.
var ErrDuplicatePlate = errors.New("plate already registered")

// VehicleRepository persists user vehicles.
type VehicleRepository struct {
	pool *sql.DB
}

// NewVehicleRepository returns repository.
func NewVehicleRepository(pool *sql.DB) *VehicleRepository {
	return &VehicleRepository{pool: pool}
}

// Create inserts a new vehicle.
func (r *VehicleRepository) Create(ctx context.Context, vehicle *models.Vehicle) error {
	connector, err := json.Marshal(vehicle.Connector)
	if err != nil {
		return err
	}
	const query = `
		INSERT INTO vehicles (user_id, plate, battery_capacity_kwh, connector_port)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err = r.pool.QueryRowContext(ctx, query,
		vehicle.UserID,
		vehicle.Plate,
		vehicle.BatteryCapacityKWh,
		connector,
	).Scan(&vehicle.ID, &vehicle.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicatePlate
		}
		return err
	}
	return nil
}

// ListByUser returns all vehicles owned by the user.
func (r *VehicleRepository) ListByUser(ctx context.Context, userID int64) ([]models.Vehicle, error) {
	const query = `
		SELECT id, user_id, plate, battery_capacity_kwh, connector_port, created_at
		FROM vehicles
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []models.Vehicle
	for rows.Next() {
		var v models.Vehicle
		var connector []byte
		if err := rows.Scan(
			&v.ID,
			&v.UserID,
			&v.Plate,
			&v.BatteryCapacityKWh,
			&connector,
			&v.CreatedAt,
		); err != nil {
			return nil, err
		}
		v.Connector = decodeConnector(connector)
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return vehicles, nil
}
