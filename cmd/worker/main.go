package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
	"gorm.io/gorm"

	catalogmemory "github.com/greenthumb/nursery-api/internal/domains/catalog/adapters/memory"
	catalogpostgres "github.com/greenthumb/nursery-api/internal/domains/catalog/adapters/persistence/postgres"
	catalogports "github.com/greenthumb/nursery-api/internal/domains/catalog/ports"
	ordersinventory "github.com/greenthumb/nursery-api/internal/domains/orders/adapters/inventory"
	ordersmemory "github.com/greenthumb/nursery-api/internal/domains/orders/adapters/memory"
	ordersobs "github.com/greenthumb/nursery-api/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/greenthumb/nursery-api/internal/domains/orders/adapters/persistence/postgres"
	ordersapp "github.com/greenthumb/nursery-api/internal/domains/orders/application"
	ordersports "github.com/greenthumb/nursery-api/internal/domains/orders/ports"
	orderactivities "github.com/greenthumb/nursery-api/internal/durable/temporal/activities/orders"
	orderworkflows "github.com/greenthumb/nursery-api/internal/durable/temporal/workflows/orders"
	platformobservability "github.com/greenthumb/nursery-api/internal/platform/observability"
	platformpostgres "github.com/greenthumb/nursery-api/internal/platform/postgres"
)

func main() {
	ctx := context.Background()
	const serviceName = "nursery-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger)
	defer cleanup()
	orderService := ordersobs.New(
		buildOrderService(db),
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)
	activities := orderactivities.NewActivities(orderService)

	tracerOptions := temporalotel.TracerOptions{Tracer: instruments.Tracer("temporal-worker")}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		logger.Error("failed to configure Temporal tracing interceptor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	clientOptions := client.Options{
		HostPort:  envOrDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		Namespace: envOrDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, orderworkflows.FulfillmentTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.FulfillmentWorkflow, workflow.RegisterOptions{Name: orderworkflows.FulfillmentWorkflowName})
	w.RegisterActivityWithOptions(activities.ProcessOrder, activity.RegisterOptions{Name: orderactivities.ProcessOrderActivityName})

	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.FulfillmentTaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

// buildOrderService assembles the orders service over postgres when a
// connection is available, otherwise over in-memory stores. The worker only
// runs ProcessOrder, so the cart store is always in memory.
func buildOrderService(db *gorm.DB) ordersports.Service {
	var plants catalogports.Repository
	if db == nil {
		plants = catalogmemory.NewRepository()
		return ordersapp.NewService(
			ordersmemory.NewRepository(),
			ordersinventory.NewCatalogInventory(plants),
			ordersmemory.NewCartStore(),
		)
	}
	plants = catalogpostgres.NewRepository(db)
	return ordersapp.NewService(
		orderspostgres.NewRepository(db),
		ordersinventory.NewCatalogInventory(plants),
		ordersmemory.NewCartStore(),
		ordersapp.WithUnitOfWork(platformpostgres.NewTxManager(db)),
		ordersapp.WithIdempotencyStore(orderspostgres.NewIdempotencyStore(db)),
	)
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
