package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"chargenet/internal/models"
	"chargenet/internal/repository"
)

type storeState struct {
	users         map[int64]*models.User
	assets        map[int64]*models.StationAsset
	sessions      map[int64]*models.ChargingSession
	invoices      []*models.Invoice
	nextSessionID int64
	nextInvoiceID int64
}

func newStoreState() *storeState {
	return &storeState{
		users:         make(map[int64]*models.User),
		assets:        make(map[int64]*models.StationAsset),
		sessions:      make(map[int64]*models.ChargingSession),
		nextSessionID: 1,
		nextInvoiceID: 1,
	}
}

type fakeUsers struct {
	state *storeState
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	user, ok := f.state.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

type fakeAssets struct {
	state        *storeState
	acquireCalls int
	releaseCalls int
}

func (f *fakeAssets) GetByID(_ context.Context, id int64) (*models.StationAsset, error) {
	asset, ok := f.state.assets[id]
	if !ok {
		return nil, repository.ErrAssetNotFound
	}
	copied := *asset
	return &copied, nil
}

func (f *fakeAssets) Acquire(_ context.Context, id int64) (*models.StationAsset, error) {
	f.acquireCalls++
	asset, ok := f.state.assets[id]
	if !ok {
		return nil, repository.ErrAssetNotFound
	}
	if !asset.IsAvailable {
		return nil, repository.ErrAssetOccupied
	}
	asset.IsAvailable = false
	copied := *asset
	return &copied, nil
}

func (f *fakeAssets) Release(_ context.Context, id int64) error {
	f.releaseCalls++
	if asset, ok := f.state.assets[id]; ok {
		asset.IsAvailable = true
	}
	return nil
}

type fakeSessions struct {
	state       *storeState
	createErr   error
	finalizeErr error
}

func (f *fakeSessions) Create(_ context.Context, session *models.ChargingSession) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.state.sessions {
		if existing.UserID == session.UserID && existing.Status == models.SessionStatusOngoing {
			return repository.ErrUserHasOngoingSession
		}
	}
	session.ID = f.state.nextSessionID
	f.state.nextSessionID++
	f.state.sessions[session.ID] = session
	return nil
}

func (f *fakeSessions) GetByID(_ context.Context, id int64) (*models.ChargingSession, error) {
	session, ok := f.state.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

func (f *fakeSessions) GetOngoingByUser(_ context.Context, userID int64) (*models.ChargingSession, error) {
	for _, session := range f.state.sessions {
		if session.UserID == userID && session.Status == models.SessionStatusOngoing {
			copied := *session
			return &copied, nil
		}
	}
	return nil, repository.ErrSessionNotFound
}

func (f *fakeSessions) ListByUser(_ context.Context, userID int64, _ int) ([]models.ChargingSession, error) {
	var out []models.ChargingSession
	for _, session := range f.state.sessions {
		if session.UserID == userID {
			out = append(out, *session)
		}
	}
	return out, nil
}

func (f *fakeSessions) Finalize(_ context.Context, params repository.FinalizeParams) (*models.ChargingSession, *models.Invoice, error) {
	if f.finalizeErr != nil {
		return nil, nil, f.finalizeErr
	}
	session, ok := f.state.sessions[params.SessionID]
	if !ok || session.Status != models.SessionStatusOngoing {
		return nil, nil, repository.ErrSessionNotOngoing
	}

	end := params.EndTime
	duration := params.DurationMinutes
	kwh := params.TotalKWh
	session.Status = models.SessionStatusStopped
	session.EndTime = &end
	session.DurationMinutes = &duration
	session.TotalKWh = &kwh

	if asset, ok := f.state.assets[params.AssetID]; ok {
		asset.IsAvailable = true
	}

	invoice := &models.Invoice{
		ID:            f.state.nextInvoiceID,
		SessionID:     params.SessionID,
		UserID:        params.UserID,
		Tariff:        params.Tariff,
		CostTotal:     params.CostTotal,
		BillingTotal:  params.BillingTotal,
		PaymentStatus: models.PaymentStatusPending,
		PaymentMethod: "N/A",
	}
	f.state.nextInvoiceID++
	f.state.invoices = append(f.state.invoices, invoice)

	copied := *session
	return &copied, invoice, nil
}

type recordedEvent struct {
	assetID   int64
	available bool
	fault     string
}

type fakePublisher struct {
	events []recordedEvent
}

func (f *fakePublisher) PublishAvailability(assetID, _ int64, available bool) {
	f.events = append(f.events, recordedEvent{assetID: assetID, available: available})
}

func (f *fakePublisher) PublishMaintenance(assetID, _ int64, fault string) {
	f.events = append(f.events, recordedEvent{assetID: assetID, fault: fault})
}

var testTariff = Tariff{CostPerKWh: 2500, CostPerMinute: 100, AdminFee: 2000}

func newTestHarness() (*SessionService, *storeState, *fakeAssets, *fakeSessions, *fakePublisher) {
	state := newStoreState()
	state.users[1] = &models.User{ID: 1, Email: "driver@example.com"}
	state.assets[10] = &models.StationAsset{
		ID:          10,
		StationID:   100,
		Connector:   models.ConnectorPort{Standard: "CCS2", RatedPowerKW: 7},
		IsAvailable: true,
	}

	assets := &fakeAssets{state: state}
	sessions := &fakeSessions{state: state}
	publisher := &fakePublisher{}
	svc := NewSessionService(sessions, assets, &fakeUsers{state: state}, testTariff, nil, publisher, zap.NewNop())
	return svc, state, assets, sessions, publisher
}

func TestStartSession(t *testing.T) {
	svc, state, _, _, publisher := newTestHarness()
	startAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return startAt })

	session, err := svc.Start(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if session.Status != models.SessionStatusOngoing {
		t.Fatalf("expected ONGOING, got %s", session.Status)
	}
	if !session.StartTime.Equal(startAt) {
		t.Fatalf("expected start time %s, got %s", startAt, session.StartTime)
	}
	if state.assets[10].IsAvailable {
		t.Fatalf("expected asset to be occupied after start")
	}
	if len(publisher.events) != 1 || publisher.events[0].available {
		t.Fatalf("expected one unavailable event, got %+v", publisher.events)
	}
}

func TestStartSessionUserNotFound(t *testing.T) {
	svc, _, assets, _, _ := newTestHarness()

	if _, err := svc.Start(context.Background(), 99, 10); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if assets.acquireCalls != 0 {
		t.Fatalf("asset must not be acquired for unknown user")
	}
}

func TestStartSessionAssetNotFound(t *testing.T) {
	svc, _, _, _, _ := newTestHarness()

	if _, err := svc.Start(context.Background(), 1, 404); !errors.Is(err, ErrAssetNotFound) {
		t.Fatalf("expected ErrAssetNotFound, got %v", err)
	}
}

func TestStartSessionAssetUnavailable(t *testing.T) {
	svc, state, _, _, _ := newTestHarness()
	state.assets[10].IsAvailable = false

	if _, err := svc.Start(context.Background(), 1, 10); !errors.Is(err, ErrAssetUnavailable) {
		t.Fatalf("expected ErrAssetUnavailable, got %v", err)
	}
}

func TestStartSessionAlreadyActive(t *testing.T) {
	svc, state, assets, _, _ := newTestHarness()
	state.assets[20] = &models.StationAsset{ID: 20, StationID: 100, IsAvailable: true}
	state.sessions[5] = &models.ChargingSession{
		ID: 5, UserID: 1, AssetID: 20, Status: models.SessionStatusOngoing,
	}

	if _, err := svc.Start(context.Background(), 1, 10); !errors.Is(err, ErrActiveSessionExists) {
		t.Fatalf("expected ErrActiveSessionExists, got %v", err)
	}
	if assets.acquireCalls != 0 {
		t.Fatalf("asset must not be acquired when user already charges")
	}
	if !state.assets[10].IsAvailable {
		t.Fatalf("requested asset must stay available")
	}
}

func TestStartSessionReleasesAssetWhenCreateLosesRace(t *testing.T) {
	svc, state, assets, sessions, _ := newTestHarness()
	// Simulate the unique-index race: the per-user check passes but the
	// insert collides.
	sessions.createErr = repository.ErrUserHasOngoingSession

	if _, err := svc.Start(context.Background(), 1, 10); !errors.Is(err, ErrActiveSessionExists) {
		t.Fatalf("expected ErrActiveSessionExists, got %v", err)
	}
	if assets.releaseCalls != 1 {
		t.Fatalf("expected asset rollback release, got %d calls", assets.releaseCalls)
	}
	if !state.assets[10].IsAvailable {
		t.Fatalf("expected asset released after losing the race")
	}
}

func TestReleaseAssetIdempotent(t *testing.T) {
	_, state, assets, _, _ := newTestHarness()
	ctx := context.Background()

	if _, err := assets.Acquire(ctx, 10); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	for i := 1; i <= 2; i++ {
		if err := assets.Release(ctx, 10); err != nil {
			t.Fatalf("release %d: %v", i, err)
		}
		if !state.assets[10].IsAvailable {
			t.Fatalf("expected asset available after release %d", i)
		}
	}
	if err := assets.Release(ctx, 404); err != nil {
		t.Fatalf("release of unknown asset must be a no-op, got %v", err)
	}
}

func TestStopSessionSimulatedEnergy(t *testing.T) {
	svc, state, _, _, publisher := newTestHarness()
	startAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return startAt })

	session, err := svc.Start(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	// 3600 elapsed seconds on a 7 kW charger.
	svc.WithClock(func() time.Time { return startAt.Add(time.Hour) })
	stopped, err := svc.Stop(context.Background(), session.ID, nil)
	if err != nil {
		t.Fatalf("stop session: %v", err)
	}

	if stopped.Status != models.SessionStatusStopped {
		t.Fatalf("expected STOPPED, got %s", stopped.Status)
	}
	if stopped.TotalKWh == nil || *stopped.TotalKWh != 7.0 {
		t.Fatalf("expected 7.0 kWh, got %v", stopped.TotalKWh)
	}
	if stopped.DurationMinutes == nil || *stopped.DurationMinutes != 60.0 {
		t.Fatalf("expected 60.0 minutes, got %v", stopped.DurationMinutes)
	}
	if !state.assets[10].IsAvailable {
		t.Fatalf("expected asset released after stop")
	}

	if len(state.invoices) != 1 {
		t.Fatalf("expected exactly one invoice, got %d", len(state.invoices))
	}
	invoice := state.invoices[0]
	if invoice.SessionID != session.ID {
		t.Fatalf("invoice references session %d, want %d", invoice.SessionID, session.ID)
	}
	if invoice.PaymentStatus != models.PaymentStatusPending {
		t.Fatalf("expected PENDING invoice, got %s", invoice.PaymentStatus)
	}
	if invoice.PaymentMethod != "N/A" {
		t.Fatalf("expected method N/A, got %s", invoice.PaymentMethod)
	}
	// 7 kWh * 2500 + 60 min * 100 = 23500, plus 2000 admin fee.
	if invoice.CostTotal != 23500 {
		t.Fatalf("expected cost total 23500, got %v", invoice.CostTotal)
	}
	if invoice.BillingTotal != 25500 {
		t.Fatalf("expected billing total 25500, got %v", invoice.BillingTotal)
	}

	last := publisher.events[len(publisher.events)-1]
	if !last.available {
		t.Fatalf("expected availability event after stop, got %+v", last)
	}
}

func TestStopSessionManualKWhUsedVerbatim(t *testing.T) {
	svc, state, _, _, _ := newTestHarness()
	startAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return startAt })

	session, err := svc.Start(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	svc.WithClock(func() time.Time { return startAt.Add(30 * time.Minute) })
	manual := 12.3456
	stopped, err := svc.Stop(context.Background(), session.ID, &manual)
	if err != nil {
		t.Fatalf("stop session: %v", err)
	}
	if stopped.TotalKWh == nil || *stopped.TotalKWh != 12.3456 {
		t.Fatalf("expected manual kwh 12.3456, got %v", stopped.TotalKWh)
	}
	if len(state.invoices) != 1 {
		t.Fatalf("expected exactly one invoice, got %d", len(state.invoices))
	}
}

func TestStopSessionNotFound(t *testing.T) {
	svc, _, _, _, _ := newTestHarness()

	if _, err := svc.Stop(context.Background(), 404, nil); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestStopSessionAlreadyStopped(t *testing.T) {
	svc, state, _, _, _ := newTestHarness()
	startAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return startAt })

	session, err := svc.Start(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	svc.WithClock(func() time.Time { return startAt.Add(time.Minute) })
	if _, err := svc.Stop(context.Background(), session.ID, nil); err != nil {
		t.Fatalf("first stop: %v", err)
	}

	if _, err := svc.Stop(context.Background(), session.ID, nil); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound on double stop, got %v", err)
	}
	if len(state.invoices) != 1 {
		t.Fatalf("double stop must not add invoices, got %d", len(state.invoices))
	}
}

func TestActiveSessionForUser(t *testing.T) {
	svc, _, _, _, _ := newTestHarness()

	if _, err := svc.ActiveSessionForUser(context.Background(), 1); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}

	started, err := svc.Start(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	active, err := svc.ActiveSessionForUser(context.Background(), 1)
	if err != nil {
		t.Fatalf("active session: %v", err)
	}
	if active.ID != started.ID {
		t.Fatalf("expected session %d, got %d", started.ID, active.ID)
	}
}

func TestSessionForUserOwnership(t *testing.T) {
	svc, _, _, _, _ := newTestHarness()

	session, err := svc.Start(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	if _, err := svc.SessionForUser(context.Background(), session.ID, 2); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if _, err := svc.SessionForUser(context.Background(), session.ID, 1); err != nil {
		t.Fatalf("owner read failed: %v", err)
	}
}
