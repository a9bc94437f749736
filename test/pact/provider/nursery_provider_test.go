//go:build pact
// +build pact

package provider_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	pacttest "github.com/greenthumb/nursery-api/test/pact"

	nurseryserver "github.com/greenthumb/nursery-api/server"

	catalogmemory "github.com/greenthumb/nursery-api/internal/domains/catalog/adapters/memory"
	catalogobs "github.com/greenthumb/nursery-api/internal/domains/catalog/adapters/observability"
	catalogapp "github.com/greenthumb/nursery-api/internal/domains/catalog/application"
	catalogdomain "github.com/greenthumb/nursery-api/internal/domains/catalog/domain"
	ordersinventory "github.com/greenthumb/nursery-api/internal/domains/orders/adapters/inventory"
	ordersmemory "github.com/greenthumb/nursery-api/internal/domains/orders/adapters/memory"
	ordersobs "github.com/greenthumb/nursery-api/internal/domains/orders/adapters/observability"
	ordersworkflows "github.com/greenthumb/nursery-api/internal/domains/orders/adapters/workflows"
	ordersapp "github.com/greenthumb/nursery-api/internal/domains/orders/application"
	usersmemory "github.com/greenthumb/nursery-api/internal/domains/users/adapters/memory"
	usersobs "github.com/greenthumb/nursery-api/internal/domains/users/adapters/observability"
	usersapp "github.com/greenthumb/nursery-api/internal/domains/users/application"

	"github.com/gin-gonic/gin"
	"github.com/pact-foundation/pact-go/v2/models"
	pactprovider "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestNurseryProviderPact(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app := newContractProviderApp(t)
	pactFile := filepath.ToSlash(pacttest.PactFile(t))
	if _, err := os.Stat(pactFile); errors.Is(err, os.ErrNotExist) {
		t.Fatalf("pact file not found at %s - run the pact consumer tests first", pactFile)
	} else {
		require.NoError(t, err)
	}

	verifier := pactprovider.NewVerifier()
	stateHandlers := models.StateHandlers{
		pacttest.StateCatalogBaseline: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.resetPlants(t)
			return nil, nil
		},
		pacttest.StatePlantExists: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.resetPlants(t)
			if setup {
				app.seedPlant(t, pacttest.ExistingPlantID)
			}
			return nil, nil
		},
		pacttest.StatePlantMissing: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.resetPlants(t)
			return nil, nil
		},
	}

	err := verifier.VerifyProvider(t, pactprovider.VerifyRequest{
		ProviderBaseURL: app.server.URL,
		Provider:        pacttest.ProviderName,
		PactFiles:       []string{pactFile},
		StateHandlers:   stateHandlers,
		BeforeEach: func() error {
			app.resetPlants(t)
			return nil
		},
	})
	require.NoError(t, err)
}

type contractProviderApp struct {
	plants *catalogmemory.Repository
	server *httptest.Server
}

func newContractProviderApp(t testing.TB) *contractProviderApp {
	t.Helper()

	plantRepo := catalogmemory.NewRepository()
	catalogService := catalogobs.New(catalogapp.NewService(plantRepo))

	orderService := ordersobs.New(ordersapp.NewService(
		ordersmemory.NewRepository(),
		ordersinventory.NewCatalogInventory(plantRepo),
		ordersmemory.NewCartStore(),
		ordersapp.WithIdempotencyStore(ordersmemory.NewIdempotencyStore()),
	))
	workflows := ordersworkflows.NewInlineOrderWorkflows(orderService)

	userService := usersobs.New(usersapp.NewService(usersmemory.NewRepository(), usersmemory.NewSessionStore()))

	handlers := nurseryserver.ApiHandleFunctions{
		PlantAPI: nurseryserver.NewPlantAPI(catalogService, 0),
		CartAPI:  nurseryserver.NewCartAPI(orderService),
		OrderAPI: nurseryserver.NewOrderAPI(orderService, workflows),
		UserAPI:  nurseryserver.NewUserAPI(userService),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router = nurseryserver.NewRouterWithGinEngine(router, handlers)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &contractProviderApp{
		plants: plantRepo,
		server: server,
	}
}

func (a *contractProviderApp) resetPlants(t testing.TB) {
	t.Helper()
	plants, err := a.plants.List(context.Background())
	require.NoError(t, err)
	for _, plant := range plants {
		_ = a.plants.Delete(context.Background(), plant.ID)
	}
}

func (a *contractProviderApp) seedPlant(t testing.TB, id string) {
	t.Helper()
	plant, err := catalogdomain.NewPlant(id, "Pact Peace Lily", "Houseplant", decimal.RequireFromString("18.50"), 7, "")
	require.NoError(t, err)
	_, err = a.plants.Save(context.Background(), plant)
	require.NoError(t, err)
}
