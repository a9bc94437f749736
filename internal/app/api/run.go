package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"gorm.io/gorm"

	nurseryserver "github.com/greenthumb/nursery-api/server"

	catalogmemory "github.com/greenthumb/nursery-api/internal/domains/catalog/adapters/memory"
	catalogobs "github.com/greenthumb/nursery-api/internal/domains/catalog/adapters/observability"
	catalogpostgres "github.com/greenthumb/nursery-api/internal/domains/catalog/adapters/persistence/postgres"
	catalogapp "github.com/greenthumb/nursery-api/internal/domains/catalog/application"
	catalogports "github.com/greenthumb/nursery-api/internal/domains/catalog/ports"

	ordersinventory "github.com/greenthumb/nursery-api/internal/domains/orders/adapters/inventory"
	ordersmemory "github.com/greenthumb/nursery-api/internal/domains/orders/adapters/memory"
	ordersobs "github.com/greenthumb/nursery-api/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/greenthumb/nursery-api/internal/domains/orders/adapters/persistence/postgres"
	ordersworkflows "github.com/greenthumb/nursery-api/internal/domains/orders/adapters/workflows"
	ordersapp "github.com/greenthumb/nursery-api/internal/domains/orders/application"
	ordersports "github.com/greenthumb/nursery-api/internal/domains/orders/ports"

	usersmemory "github.com/greenthumb/nursery-api/internal/domains/users/adapters/memory"
	usersobs "github.com/greenthumb/nursery-api/internal/domains/users/adapters/observability"
	userspostgres "github.com/greenthumb/nursery-api/internal/domains/users/adapters/persistence/postgres"
	usersapp "github.com/greenthumb/nursery-api/internal/domains/users/application"
	usersports "github.com/greenthumb/nursery-api/internal/domains/users/ports"

	platformmigrations "github.com/greenthumb/nursery-api/internal/platform/migrations"
	platformobservability "github.com/greenthumb/nursery-api/internal/platform/observability"
	platformpostgres "github.com/greenthumb/nursery-api/internal/platform/postgres"
)

// Run boots the nursery HTTP API with observability, repositories, and workflows wired.
func Run(ctx context.Context) error {
	const serviceName = "nursery-api"
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	db, cleanupDB := connectDatabase(ctx, cfg, logger)
	defer cleanupDB()
	stores, err := buildStores(db, logger)
	if err != nil {
		return err
	}

	catalogService := catalogobs.New(
		catalogapp.NewService(stores.plants),
		catalogobs.WithLogger(logger),
		catalogobs.WithTracer(instruments.Tracer("internal.catalog.application")),
		catalogobs.WithMeter(instruments.Meter("internal.catalog.application")),
	)

	orderService := ordersobs.New(
		ordersapp.NewService(
			stores.orders,
			ordersinventory.NewCatalogInventory(stores.plants),
			stores.carts,
			ordersapp.WithUnitOfWork(stores.uow),
			ordersapp.WithIdempotencyStore(stores.checkoutKeys),
		),
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)

	userOpts := []usersapp.Option{}
	if cfg.SessionTTLHours > 0 {
		userOpts = append(userOpts, usersapp.WithSessionTTL(time.Duration(cfg.SessionTTLHours)*time.Hour))
	}
	userService := usersobs.New(
		usersapp.NewService(stores.users, stores.sessions, userOpts...),
		usersobs.WithLogger(logger),
		usersobs.WithTracer(instruments.Tracer("internal.users.application")),
		usersobs.WithMeter(instruments.Meter("internal.users.application")),
	)

	var orderWorkflows ordersports.WorkflowOrchestrator = ordersworkflows.NewInlineOrderWorkflows(orderService)
	if temporalClient, err := connectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, processing orders inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		orderWorkflows = ordersworkflows.NewTemporalOrderWorkflows(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	if cfg.SessionPurgeIntervalMinute > 0 {
		go purgeSessionsLoop(ctx, stores.sessions, time.Duration(cfg.SessionPurgeIntervalMinute)*time.Minute, logger)
	}

	handlers := nurseryserver.ApiHandleFunctions{
		PlantAPI: nurseryserver.NewPlantAPI(catalogService, cfg.LowStockThreshold),
		CartAPI:  nurseryserver.NewCartAPI(orderService),
		OrderAPI: nurseryserver.NewOrderAPI(orderService, orderWorkflows),
		UserAPI:  nurseryserver.NewUserAPI(userService),
	}

	router := nurseryserver.NewRouter(handlers)
	router.Use(otelgin.Middleware(serviceName))
	addr := ":" + cfg.Port
	logger.Info("nursery API listening", slog.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Error("nursery API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

// storeSet groups the driven adapters so postgres and memory wiring stay in
// one place.
type storeSet struct {
	plants       catalogports.Repository
	orders       ordersports.Repository
	carts        ordersports.CartStore
	checkoutKeys ordersports.IdempotencyStore
	users        usersports.Repository
	sessions     usersports.SessionStore
	uow          ordersports.UnitOfWork
}

func connectDatabase(ctx context.Context, cfg Config, logger *slog.Logger) (*gorm.DB, func()) {
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory repositories")
		return nil, func() {}
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Warn("failed to connect to postgres, falling back to in-memory repositories", slog.String("error", err.Error()))
		return nil, func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("failed to unwrap postgres connection, falling back to in-memory repositories", slog.String("error", err.Error()))
		return nil, func() {}
	}
	logger.Info("postgres connection established")
	return db, func() { _ = sqlDB.Close() }
}

func buildStores(db *gorm.DB, logger *slog.Logger) (storeSet, error) {
	// The cart is a staging area, not an order; it stays in memory even when
	// postgres backs everything else.
	stores := storeSet{
		carts: ordersmemory.NewCartStore(),
	}
	if db == nil {
		stores.plants = catalogmemory.NewRepository()
		stores.orders = ordersmemory.NewRepository()
		stores.checkoutKeys = ordersmemory.NewIdempotencyStore()
		stores.users = usersmemory.NewRepository()
		stores.sessions = usersmemory.NewSessionStore()
		stores.uow = ordersports.NoopUnitOfWork
		return stores, nil
	}
	if err := platformmigrations.Run(db); err != nil {
		return storeSet{}, fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info("repositories configured with postgres")
	stores.plants = catalogpostgres.NewRepository(db)
	stores.orders = orderspostgres.NewRepository(db)
	stores.checkoutKeys = orderspostgres.NewIdempotencyStore(db)
	stores.users = userspostgres.NewRepository(db)
	stores.sessions = userspostgres.NewSessionStore(db)
	stores.uow = platformpostgres.NewTxManager(db)
	return stores, nil
}

func purgeSessionsLoop(ctx context.Context, sessions usersports.SessionStore, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := sessions.PurgeExpired(ctx, time.Now())
			if err != nil {
				logger.Warn("session purge failed", slog.String("error", err.Error()))
				continue
			}
			if purged > 0 {
				logger.Info("purged expired sessions", slog.Int64("count", purged))
			}
		}
	}
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
