//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/greenthumb/nursery-api/internal/domains/orders/domain"
	"github.com/greenthumb/nursery-api/internal/domains/orders/ports"
	"github.com/greenthumb/nursery-api/internal/platform/migrations"
	platformpg "github.com/greenthumb/nursery-api/internal/platform/postgres"
)

func setupOrdersPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("nursery_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	err = migrations.Run(db)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func buildOrder(t *testing.T, id, customerID string) *domain.Order {
	t.Helper()
	order, err := domain.NewOrder(id, customerID, time.Now().UTC().Truncate(time.Second))
	require.NoError(t, err)
	item, err := domain.NewOrderItem(id+"_item1", domain.PlantSnapshot{
		ID:        "plant_001",
		Name:      "Boston Fern",
		UnitPrice: decimal.NewFromFloat(12.50),
	}, 2)
	require.NoError(t, err)
	require.NoError(t, order.AddItem(item))
	return order
}

func TestRepository_CreateAndGetByID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	order := buildOrder(t, "order_a1", "cust_001")
	saved, err := repo.Create(ctx, order)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, saved.Status)
	assert.True(t, saved.TotalAmount.Equal(decimal.NewFromFloat(25.00)))
	require.Len(t, saved.Items, 1)
	require.NotNil(t, saved.Items[0].Plant)
	assert.Equal(t, "Boston Fern", saved.Items[0].Plant.Name)

	fetched, err := repo.GetByID(ctx, "order_a1")
	require.NoError(t, err)
	assert.Equal(t, saved.CustomerID, fetched.CustomerID)
	assert.True(t, saved.Items[0].Subtotal.Equal(fetched.Items[0].Subtotal))
}

func TestRepository_UpdateStatus(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, buildOrder(t, "order_a1", "cust_001"))
	require.NoError(t, err)

	err = repo.UpdateStatus(ctx, "order_a1", domain.StatusProcessing)
	require.NoError(t, err)

	fetched, err := repo.GetByID(ctx, "order_a1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, fetched.Status)

	err = repo.UpdateStatus(ctx, "order_missing", domain.StatusProcessing)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_ListByCustomerAndStatus(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, buildOrder(t, "order_a1", "cust_001"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, buildOrder(t, "order_a2", "cust_001"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, buildOrder(t, "order_b1", "cust_002"))
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(ctx, "order_b1", domain.StatusProcessing))

	history, err := repo.ListByCustomer(ctx, "cust_001")
	require.NoError(t, err)
	assert.Len(t, history, 2)

	pending, err := repo.ListByStatus(ctx, domain.StatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	recent, err := repo.ListSince(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Len(t, recent, 3)
}

func TestRepository_CreateRollsBackWithTransaction(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	uow := platformpg.NewTxManager(db)
	ctx := context.Background()

	boom := errors.New("boom")
	err := uow.Do(ctx, func(txCtx context.Context) error {
		if _, err := repo.Create(txCtx, buildOrder(t, "order_a1", "cust_001")); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = repo.GetByID(ctx, "order_a1")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestIdempotencyStore_SaveAndConflict(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	store := NewIdempotencyStore(db)
	ctx := context.Background()

	missing, err := store.Get(ctx, "checkout-1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	first, err := store.Save(ctx, ports.IdempotencyRecord{Key: "checkout-1", CartHash: "abc", OrderID: "order_a1"})
	require.NoError(t, err)
	assert.Equal(t, "order_a1", first.OrderID)

	replay, err := store.Save(ctx, ports.IdempotencyRecord{Key: "checkout-1", CartHash: "abc", OrderID: "order_a1"})
	require.NoError(t, err)
	assert.Equal(t, "order_a1", replay.OrderID)

	conflicted, err := store.Save(ctx, ports.IdempotencyRecord{Key: "checkout-1", CartHash: "different", OrderID: "order_a2"})
	assert.ErrorIs(t, err, ports.ErrIdempotencyConflict)
	require.NotNil(t, conflicted)
	assert.Equal(t, "order_a1", conflicted.OrderID)
}
