//go:build integration

package postgres

import (
	"context"
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

	"github.com/greenthumb/nursery-api/internal/domains/catalog/domain"
	"github.com/greenthumb/nursery-api/internal/domains/catalog/ports"
	"github.com/greenthumb/nursery-api/internal/platform/migrations"
)

func setupCatalogPostgresContainer(t *testing.T) (*gorm.DB, func()) {
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

func newFern(t *testing.T, id string, qty int) *domain.Plant {
	t.Helper()
	plant, err := domain.NewPlant(id, "Boston Fern", "Indoor", decimal.NewFromFloat(12.50), qty, "Loves humidity")
	require.NoError(t, err)
	plant.CareTags = []string{"indirect-light", "weekly-water"}
	return plant
}

func TestRepository_SaveAndGetByID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupCatalogPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	saved, err := repo.Save(ctx, newFern(t, "plant_001", 7))
	require.NoError(t, err)
	assert.Equal(t, "plant_001", saved.ID)
	assert.True(t, saved.Price.Equal(decimal.NewFromFloat(12.50)))
	assert.Equal(t, []string{"indirect-light", "weekly-water"}, saved.CareTags)

	fetched, err := repo.GetByID(ctx, "plant_001")
	require.NoError(t, err)
	assert.Equal(t, saved.Name, fetched.Name)
	assert.Equal(t, 7, fetched.Quantity)
}

func TestRepository_Search(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupCatalogPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	fern := newFern(t, "plant_fern", 5)
	cactus, err := domain.NewPlant("plant_cactus", "Golden Barrel", "Succulent", decimal.NewFromFloat(30), 2, "")
	require.NoError(t, err)
	_, err = repo.Save(ctx, fern)
	require.NoError(t, err)
	_, err = repo.Save(ctx, cactus)
	require.NoError(t, err)

	byName, err := repo.Search(ctx, ports.SearchFilter{Name: "fern"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "plant_fern", byName[0].ID)

	maxPrice := decimal.NewFromFloat(20)
	cheap, err := repo.Search(ctx, ports.SearchFilter{MaxPrice: &maxPrice})
	require.NoError(t, err)
	require.Len(t, cheap, 1)
	assert.Equal(t, "plant_fern", cheap[0].ID)

	byType, err := repo.Search(ctx, ports.SearchFilter{Type: "succulent"})
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, "plant_cactus", byType[0].ID)
}

func TestRepository_DecrementQuantity(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupCatalogPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.Save(ctx, newFern(t, "plant_001", 5))
	require.NoError(t, err)

	err = repo.DecrementQuantity(ctx, "plant_001", 3)
	require.NoError(t, err)

	fetched, err := repo.GetByID(ctx, "plant_001")
	require.NoError(t, err)
	assert.Equal(t, 2, fetched.Quantity)

	err = repo.DecrementQuantity(ctx, "plant_001", 3)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	fetched, err = repo.GetByID(ctx, "plant_001")
	require.NoError(t, err)
	assert.Equal(t, 2, fetched.Quantity)

	err = repo.DecrementQuantity(ctx, "plant_missing", 1)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_ListLowStock(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupCatalogPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.Save(ctx, newFern(t, "plant_low", 3))
	require.NoError(t, err)
	_, err = repo.Save(ctx, newFern(t, "plant_high", 50))
	require.NoError(t, err)

	low, err := repo.ListLowStock(ctx, 10)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "plant_low", low[0].ID)
}
