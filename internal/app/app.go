package app

import (
	"context"
	"database/sql"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"chargenet/internal/config"
	"chargenet/internal/db"
	httpserver "chargenet/internal/http"
	"chargenet/internal/http/handlers"
	"chargenet/internal/http/middleware"
	"chargenet/internal/password"
	"chargenet/internal/redisstore"
	"chargenet/internal/repository"
	"chargenet/internal/service"
	"chargenet/internal/ws"
)

// App wires the chargenet dependency graph.
type App struct {
	server      *httpserver.Server
	pool        *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	pool, err := db.NewPostgres(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	redisClient, err := redisstore.NewClient(cfg.Redis.Addr, cfg.Redis.Password)
	if err != nil {
		pool.Close()
		return nil, err
	}

	userRepo := repository.NewUserRepository(pool)
	vehicleRepo := repository.NewVehicleRepository(pool)
	stationRepo := repository.NewStationRepository(pool)
	assetRepo := repository.NewAssetRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	invoiceRepo := repository.NewInvoiceRepository(pool)

	activeStore := redisstore.NewStore(redisClient, cfg.ActiveSessionTTL())
	hub := ws.NewHub(logger)

	hasher := password.NewBcryptHasher(cfg.Auth.BcryptCost)
	tokens := service.NewTokenService(cfg.Auth.JWTSecret, cfg.TokenTTL())
	tariff := service.Tariff{
		CostPerKWh:    cfg.Tariff.CostPerKWh,
		CostPerMinute: cfg.Tariff.CostPerMinute,
		AdminFee:      cfg.Tariff.AdminFee,
	}

	authService := service.NewAuthService(userRepo, hasher, tokens, logger)
	vehicleService := service.NewVehicleService(vehicleRepo, logger)
	stationService := service.NewStationService(stationRepo, assetRepo, hub, logger)
	sessionService := service.NewSessionService(sessionRepo, assetRepo, userRepo, tariff, activeStore, hub, logger)
	billingService := service.NewBillingService(invoiceRepo, logger)

	routes := httpserver.Routes{
		Register:          handlers.NewRegisterHandler(authService, logger),
		Login:             handlers.NewLoginHandler(authService, logger),
		VehicleCreate:     handlers.NewVehicleCreateHandler(vehicleService, logger),
		VehiclesMe:        handlers.NewVehiclesMeHandler(vehicleService, logger),
		StationCreate:     handlers.NewStationCreateHandler(stationService, logger),
		StationList:       handlers.NewStationListHandler(stationService, logger),
		StationDetail:     handlers.NewStationDetailHandler(stationService, logger),
		AssetCreate:       handlers.NewAssetCreateHandler(stationService, logger),
		AssetList:         handlers.NewAssetListHandler(stationService, logger),
		AssetAvailability: handlers.NewAssetAvailabilityHandler(stationService, logger),
		AssetMaintenance:  handlers.NewAssetMaintenanceHandler(stationService, logger),
		SessionStart:      handlers.NewSessionStartHandler(sessionService, logger),
		SessionStop:       handlers.NewSessionStopHandler(sessionService, logger),
		SessionActive:     handlers.NewSessionActiveHandler(sessionService, logger),
		SessionsMe:        handlers.NewSessionsMeHandler(sessionService, logger),
		SessionDetail:     handlers.NewSessionDetailHandler(sessionService, logger),
		InvoicesMe:        handlers.NewInvoicesMeHandler(billingService, logger),
		InvoiceDetail:     handlers.NewInvoiceDetailHandler(billingService, logger),
		InvoicePayment:    handlers.NewInvoicePaymentHandler(billingService, logger),
		AvailabilityFeed:  ws.NewFeedHandler(hub, logger),
		Health:            handlers.NewHealthHandler(),
	}

	router := httpserver.NewRouter(routes, middleware.Auth(tokens))
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server:      server,
		pool:        pool,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// Run starts the HTTP server.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.pool != nil {
		if err := a.pool.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
