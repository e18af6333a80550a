package service

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"chargenet/internal/models"
	"chargenet/internal/redisstore"
	"chargenet/internal/repository"
)

var (
	// ErrUserNotFound is returned when the session's user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrAssetNotFound is returned when the referenced asset does not exist.
	ErrAssetNotFound = errors.New("asset not found")
	// ErrAssetUnavailable is returned when the asset is occupied or faulted.
	ErrAssetUnavailable = errors.New("asset is not available")
	// ErrActiveSessionExists is returned when the user already charges somewhere.
	ErrActiveSessionExists = errors.New("user already has an active session")
	// ErrSessionNotFound covers both an absent session and one already ended.
	ErrSessionNotFound = errors.New("session not found or already ended")
	// ErrNoActiveSession is returned when the user has nothing ongoing.
	ErrNoActiveSession = errors.New("no active session")
	// ErrNotOwner is returned when a caller reads someone else's resource.
	ErrNotOwner = errors.New("resource does not belong to user")
)

// SessionRepository is the storage contract for the lifecycle engine.
type SessionRepository interface {
	Create(ctx context.Context, session *models.ChargingSession) error
	GetByID(ctx context.Context, id int64) (*models.ChargingSession, error)
	GetOngoingByUser(ctx context.Context, userID int64) (*models.ChargingSession, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]models.ChargingSession, error)
	Finalize(ctx context.Context, params repository.FinalizeParams) (*models.ChargingSession, *models.Invoice, error)
}

// AssetGuard is the availability guard contract.
type AssetGuard interface {
	GetByID(ctx context.Context, id int64) (*models.StationAsset, error)
	Acquire(ctx context.Context, id int64) (*models.StationAsset, error)
	Release(ctx context.Context, id int64) error
}

// UserGetter resolves session owners.
type UserGetter interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// SessionService drives the charging session lifecycle:
// start acquires the asset, stop finalizes session, asset and invoice as one
// transactional unit.
type SessionService struct {
	sessions    SessionRepository
	assets      AssetGuard
	users       UserGetter
	tariff      Tariff
	activeStore *redisstore.Store
	publisher   AvailabilityPublisher
	logger      *zap.Logger
	now         func() time.Time
}

// NewSessionService builds the lifecycle engine. activeStore and publisher
// may be nil.
func NewSessionService(
	sessions SessionRepository,
	assets AssetGuard,
	users UserGetter,
	tariff Tariff,
	activeStore *redisstore.Store,
	publisher AvailabilityPublisher,
	logger *zap.Logger,
) *SessionService {
	return &SessionService{
		sessions:    sessions,
		assets:      assets,
		users:       users,
		tariff:      tariff,
		activeStore: activeStore,
		publisher:   publisher,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source. Test hook.
func (s *SessionService) WithClock(now func() time.Time) *SessionService {
	s.now = now
	return s
}

// Start begins a charging session for the user on the given asset.
func (s *SessionService) Start(ctx context.Context, userID, assetID int64) (*models.ChargingSession, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	// Per-user exclusivity check; the partial unique index on the insert
	// below closes the remaining race window.
	if _, err := s.sessions.GetOngoingByUser(ctx, userID); err == nil {
		return nil, ErrActiveSessionExists
	} else if !errors.Is(err, repository.ErrSessionNotFound) {
		return nil, err
	}

	asset, err := s.assets.Acquire(ctx, assetID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAssetNotFound):
			return nil, ErrAssetNotFound
		case errors.Is(err, repository.ErrAssetOccupied):
			return nil, ErrAssetUnavailable
		default:
			return nil, err
		}
	}

	session := &models.ChargingSession{
		UserID:    userID,
		AssetID:   assetID,
		Status:    models.SessionStatusOngoing,
		StartTime: s.now(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		if releaseErr := s.assets.Release(ctx, assetID); releaseErr != nil {
			s.logger.Warn("failed to release asset after aborted start",
				zap.Int64("asset_id", assetID), zap.Error(releaseErr))
		}
		if errors.Is(err, repository.ErrUserHasOngoingSession) {
			return nil, ErrActiveSessionExists
		}
		return nil, err
	}

	if s.activeStore != nil {
		cacheErr := s.activeStore.Save(ctx, redisstore.ActiveSession{
			SessionID: session.ID,
			UserID:    session.UserID,
			AssetID:   session.AssetID,
			StartTime: session.StartTime,
		})
		if cacheErr != nil && cacheErr != redis.Nil {
			s.logger.Warn("failed to cache active session", zap.Error(cacheErr))
		}
	}
	if s.publisher != nil {
		s.publisher.PublishAvailability(asset.ID, asset.StationID, false)
	}

	s.logger.Info("session started",
		zap.Int64("session_id", session.ID),
		zap.Int64("user_id", userID),
		zap.Int64("asset_id", assetID),
	)
	return session, nil
}

// Stop ends an ongoing session. When manualKWh is nil the consumed energy is
// simulated from the asset's rated power and the elapsed time; a supplied
// value is used verbatim. Session update, asset release and invoice creation
// commit as one unit.
func (s *SessionService) Stop(ctx context.Context, sessionID int64, manualKWh *float64) (*models.ChargingSession, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.Status != models.SessionStatusOngoing {
		return nil, ErrSessionNotFound
	}

	asset, err := s.assets.GetByID(ctx, session.AssetID)
	if err != nil {
		if errors.Is(err, repository.ErrAssetNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}

	endTime := s.now()
	minutes := endTime.Sub(session.StartTime).Minutes()

	var totalKWh float64
	if manualKWh != nil {
		totalKWh = *manualKWh
	} else {
		totalKWh = round3(asset.Connector.RatedPowerKW * (minutes / 60))
	}

	bill := s.tariff.Bill(totalKWh, minutes)

	updated, invoice, err := s.sessions.Finalize(ctx, repository.FinalizeParams{
		SessionID:       session.ID,
		AssetID:         session.AssetID,
		UserID:          session.UserID,
		EndTime:         endTime,
		DurationMinutes: round2(minutes),
		TotalKWh:        totalKWh,
		Tariff: models.Tariff{
			CostPerKWh:    s.tariff.CostPerKWh,
			CostPerMinute: s.tariff.CostPerMinute,
			AdminFee:      s.tariff.AdminFee,
		},
		CostTotal:    round2(bill.CostTotal),
		BillingTotal: round2(bill.BillingTotal),
	})
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotOngoing) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	if s.activeStore != nil {
		if err := s.activeStore.Delete(ctx, session.UserID); err != nil && err != redis.Nil {
			s.logger.Warn("failed to drop active session cache", zap.Error(err))
		}
	}
	if s.publisher != nil {
		s.publisher.PublishAvailability(asset.ID, asset.StationID, true)
	}

	s.logger.Info("session stopped",
		zap.Int64("session_id", updated.ID),
		zap.Int64("invoice_id", invoice.ID),
		zap.Float64("total_kwh", totalKWh),
		zap.Float64("billing_total", invoice.BillingTotal),
	)
	return updated, nil
}

// ActiveSessionForUser returns the user's ongoing session, consulting the
// cache first.
func (s *SessionService) ActiveSessionForUser(ctx context.Context, userID int64) (*models.ChargingSession, error) {
	if s.activeStore != nil {
		cached, err := s.activeStore.Get(ctx, userID)
		if err == nil {
			session, err := s.sessions.GetByID(ctx, cached.SessionID)
			if err == nil && session.Status == models.SessionStatusOngoing {
				return session, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn("active session cache read failed", zap.Error(err))
		}
	}

	session, err := s.sessions.GetOngoingByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrNoActiveSession
		}
		return nil, err
	}
	return session, nil
}

// SessionsForUser returns the user's session history.
func (s *SessionService) SessionsForUser(ctx context.Context, userID int64, limit int) ([]models.ChargingSession, error) {
	return s.sessions.ListByUser(ctx, userID, limit)
}

// SessionForUser returns one session, enforcing ownership.
func (s *SessionService) SessionForUser(ctx context.Context, sessionID, userID int64) (*models.ChargingSession, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrNotOwner
	}
	return session, nil
}
