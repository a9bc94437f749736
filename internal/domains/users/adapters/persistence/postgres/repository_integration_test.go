//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/greenthumb/nursery-api/internal/domains/users/domain"
	"github.com/greenthumb/nursery-api/internal/domains/users/ports"
	"github.com/greenthumb/nursery-api/internal/platform/migrations"
)

func setupUsersPostgresContainer(t *testing.T) (*gorm.DB, func()) {
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

func newStaff(t *testing.T, id, username string) *domain.User {
	t.Helper()
	user, err := domain.NewUser(id, username, "greenhouse1", domain.RoleStaff)
	require.NoError(t, err)
	return user
}

func TestRepository_SaveAndGetByUsername(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupUsersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	user := newStaff(t, "user_001", "gardener1")
	require.NoError(t, user.UpdateContact("gardener@nursery.example", "+15550100"))

	saved, err := repo.Save(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "gardener1", saved.Username)
	assert.True(t, saved.CheckPassword("greenhouse1"))

	fetched, err := repo.GetByUsername(ctx, "gardener1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStaff, fetched.Role)
	assert.Equal(t, "gardener@nursery.example", fetched.Email)

	byID, err := repo.GetByID(ctx, "user_001")
	require.NoError(t, err)
	assert.Equal(t, "gardener1", byID.Username)
}

func TestRepository_SaveUpsertsByUsername(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupUsersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	user := newStaff(t, "user_001", "gardener1")
	_, err := repo.Save(ctx, user)
	require.NoError(t, err)

	require.NoError(t, user.SetRole(domain.RoleAdmin))
	updated, err := repo.Save(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, updated.Role)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRepository_ListByRole(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupUsersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.Save(ctx, newStaff(t, "user_001", "gardener1"))
	require.NoError(t, err)

	admin, err := domain.NewUser("user_002", "owner", "secret123", domain.RoleAdmin)
	require.NoError(t, err)
	_, err = repo.Save(ctx, admin)
	require.NoError(t, err)

	staff, err := repo.ListByRole(ctx, domain.RoleStaff)
	require.NoError(t, err)
	require.Len(t, staff, 1)
	assert.Equal(t, "gardener1", staff[0].Username)
}

func TestSessionStore_Lifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupUsersPostgresContainer(t)
	defer cleanup()

	store := NewSessionStore(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	err := store.Save(ctx, ports.Session{Token: "tok-1", Username: "gardener1", ExpiresAt: now.Add(time.Hour)})
	require.NoError(t, err)

	session, err := store.Lookup(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "gardener1", session.Username)

	// A fresh login replaces the previous token.
	err = store.Save(ctx, ports.Session{Token: "tok-2", Username: "gardener1", ExpiresAt: now.Add(time.Hour)})
	require.NoError(t, err)
	_, err = store.Lookup(ctx, "tok-1")
	assert.ErrorIs(t, err, ports.ErrNotFound)

	err = store.Save(ctx, ports.Session{Token: "tok-old", Username: "owner", ExpiresAt: now.Add(-time.Minute)})
	require.NoError(t, err)
	purged, err := store.PurgeExpired(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, purged)

	require.NoError(t, store.Delete(ctx, "gardener1"))
	_, err = store.Lookup(ctx, "tok-2")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}
