package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"chargenet/internal/models"
	"chargenet/internal/repository"
)

// ErrPlateInUse is returned when registering a duplicate plate.
var ErrPlateInUse = errors.New("plate already registered")

// VehicleRepositoryContract is the storage contract for vehicles.
type VehicleRepositoryContract interface {
	Create(ctx context.Context, vehicle *models.Vehicle) error
	ListByUser(ctx context.Context, userID int64) ([]models.Vehicle, error)
}

// VehicleService manages user vehicles.
type VehicleService struct {
	repo   VehicleRepositoryContract
	logger *zap.Logger
}

// NewVehicleService builds service.
func NewVehicleService(repo VehicleRepositoryContract, logger *zap.Logger) *VehicleService {
	return &VehicleService{repo: repo, logger: logger}
}

// CreateVehicle registers a vehicle for the user.
func (s *VehicleService) CreateVehicle(ctx context.Context, userID int64, plate string, batteryKWh float64, connector models.ConnectorPort) (*models.Vehicle, error) {
	plate = strings.ToUpper(strings.TrimSpace(plate))
	if plate == "" {
		return nil, errors.New("vehicle: plate required")
	}
	vehicle := &models.Vehicle{
		UserID:             userID,
		Plate:              plate,
		BatteryCapacityKWh: batteryKWh,
		Connector:          connector,
	}
	if err := s.repo.Create(ctx, vehicle); err != nil {
		if errors.Is(err, repository.ErrDuplicatePlate) {
			return nil, ErrPlateInUse
		}
		return nil, err
	}
	s.logger.Info("vehicle registered", zap.Int64("vehicle_id", vehicle.ID), zap.Int64("user_id", userID))
	return vehicle, nil
}

// VehiclesForUser returns the user's vehicles.
func (s *VehicleService) VehiclesForUser(ctx context.Context, userID int64) ([]models.Vehicle, error) {
	return s.repo.ListByUser(ctx, userID)
}
