package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"chargenet/internal/models"
	"chargenet/internal/repository"
)

// ErrStationNotFound is returned when the referenced station does not exist.
var ErrStationNotFound = errors.New("station not found")

// StationRepositoryContract is the storage contract for stations.
type StationRepositoryContract interface {
	Create(ctx context.Context, station *models.Station) error
	GetByID(ctx context.Context, id int64) (*models.Station, error)
	List(ctx context.Context) ([]models.Station, error)
}

// AssetRepositoryContract is the storage contract for charger assets.
type AssetRepositoryContract interface {
	Create(ctx context.Context, asset *models.StationAsset) error
	GetByID(ctx context.Context, id int64) (*models.StationAsset, error)
	List(ctx context.Context, stationID int64, availableOnly bool) ([]models.StationAsset, error)
	ListByStation(ctx context.Context, stationID int64) ([]models.StationAsset, error)
	SetAvailability(ctx context.Context, id int64, available bool) (*models.StationAsset, error)
	FlagFault(ctx context.Context, id int64, fault string, at time.Time) (*models.StationAsset, error)
}

// StationService manages stations, their charger assets and the maintenance
// gate.
type StationService struct {
	stations  StationRepositoryContract
	assets    AssetRepositoryContract
	publisher AvailabilityPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewStationService builds service. publisher may be nil.
func NewStationService(stations StationRepositoryContract, assets AssetRepositoryContract, publisher AvailabilityPublisher, logger *zap.Logger) *StationService {
	return &StationService{
		stations:  stations,
		assets:    assets,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source. Test hook.
func (s *StationService) WithClock(now func() time.Time) *StationService {
	s.now = now
	return s
}

// CreateStation registers a new physical location.
func (s *StationService) CreateStation(ctx context.Context, name string, location models.Location, standards []string) (*models.Station, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("station: name required")
	}
	station := &models.Station{
		Name:               name,
		Location:           location,
		ConnectorStandards: standards,
	}
	if err := s.stations.Create(ctx, station); err != nil {
		return nil, err
	}
	s.logger.Info("station created", zap.Int64("station_id", station.ID), zap.String("name", station.Name))
	return station, nil
}

// ListStations returns all stations.
func (s *StationService) ListStations(ctx context.Context) ([]models.Station, error) {
	return s.stations.List(ctx)
}

// StationDetail returns a station together with its assets.
func (s *StationService) StationDetail(ctx context.Context, id int64) (*models.Station, []models.StationAsset, error) {
	station, err := s.stations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrStationNotFound) {
			return nil, nil, ErrStationNotFound
		}
		return nil, nil, err
	}
	assets, err := s.assets.ListByStation(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return station, assets, nil
}

// CreateAsset adds a charger unit to an existing station.
func (s *StationService) CreateAsset(ctx context.Context, stationID int64, connector models.ConnectorPort) (*models.StationAsset, error) {
	if _, err := s.stations.GetByID(ctx, stationID); err != nil {
		if errors.Is(err, repository.ErrStationNotFound) {
			return nil, ErrStationNotFound
		}
		return nil, err
	}
	asset := &models.StationAsset{
		StationID: stationID,
		Connector: connector,
	}
	if err := s.assets.Create(ctx, asset); err != nil {
		return nil, err
	}
	s.logger.Info("asset created", zap.Int64("asset_id", asset.ID), zap.Int64("station_id", stationID))
	return asset, nil
}

// ListAssets returns assets filtered by station and/or availability.
func (s *StationService) ListAssets(ctx context.Context, stationID int64, availableOnly bool) ([]models.StationAsset, error) {
	return s.assets.List(ctx, stationID, availableOnly)
}

// SetAssetAvailability is the administrative availability toggle.
func (s *StationService) SetAssetAvailability(ctx context.Context, assetID int64, available bool) (*models.StationAsset, error) {
	asset, err := s.assets.SetAvailability(ctx, assetID, available)
	if err != nil {
		if errors.Is(err, repository.ErrAssetNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}
	if s.publisher != nil {
		s.publisher.PublishAvailability(asset.ID, asset.StationID, asset.IsAvailable)
	}
	return asset, nil
}

// FlagMaintenance records a fault and forces the asset unavailable.
// Maintenance wins over charging bookkeeping at the data level.
func (s *StationService) FlagMaintenance(ctx context.Context, assetID int64, fault string) (*models.StationAsset, error) {
	fault = strings.TrimSpace(fault)
	if fault == "" {
		return nil, errors.New("maintenance: fault description required")
	}
	asset, err := s.assets.FlagFault(ctx, assetID, fault, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrAssetNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}
	if s.publisher != nil {
		s.publisher.PublishMaintenance(asset.ID, asset.StationID, fault)
	}
	s.logger.Info("asset flagged for maintenance",
		zap.Int64("asset_id", asset.ID),
		zap.String("fault", fault),
	)
	return asset, nil
}
