package nurseryserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	planthttpmapper "github.com/greenthumb/nursery-api/internal/domains/catalog/adapters/http/mapper"
	catalogapp "github.com/greenthumb/nursery-api/internal/domains/catalog/application"
	catalogdomain "github.com/greenthumb/nursery-api/internal/domains/catalog/domain"
	catalogports "github.com/greenthumb/nursery-api/internal/domains/catalog/ports"
	apierrors "github.com/greenthumb/nursery-api/internal/shared/errors"
)

// PlantAPI wires HTTP transport with the catalog bounded context service.
type PlantAPI struct {
	service   catalogports.Service
	threshold int
}

// NewPlantAPI creates a PlantAPI backed by the provided service. A
// non-positive lowStockThreshold falls back to the catalog default.
func NewPlantAPI(service catalogports.Service, lowStockThreshold int) PlantAPI {
	if lowStockThreshold <= 0 {
		lowStockThreshold = catalogapp.DefaultLowStockThreshold
	}
	return PlantAPI{service: service, threshold: lowStockThreshold}
}

// Post /v1/plants
// Add a new plant to the catalog
func (api *PlantAPI) CreatePlant(c *gin.Context) {
	var payload planthttpmapper.Plant
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	plant, err := planthttpmapper.ToDomainPlant(payload)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	saved, err := api.service.CreatePlant(c.Request.Context(), plant)
	if err != nil {
		respondPlantServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, planthttpmapper.FromDomainPlant(saved))
}

// Get /v1/plants
// List plants, optionally filtered by name, type, and price range
func (api *PlantAPI) ListPlants(c *gin.Context) {
	filter, hasFilter, err := searchFilterFromQuery(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	var plants []*catalogdomain.Plant
	if hasFilter {
		plants, err = api.service.SearchPlants(c.Request.Context(), filter)
	} else {
		plants, err = api.service.ListPlants(c.Request.Context())
	}
	if err != nil {
		respondPlantServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, planthttpmapper.FromDomainPlantList(plants))
}

// Get /v1/plants/available
// List plants with stock on hand
func (api *PlantAPI) AvailablePlants(c *gin.Context) {
	plants, err := api.service.AvailablePlants(c.Request.Context())
	if err != nil {
		respondPlantServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, planthttpmapper.FromDomainPlantList(plants))
}

// Get /v1/plants/low-stock
// List plants at or below the restock threshold
func (api *PlantAPI) LowStockPlants(c *gin.Context) {
	threshold, ok := thresholdFromQuery(c, api.threshold)
	if !ok {
		return
	}
	plants, err := api.service.LowStockPlants(c.Request.Context(), threshold)
	if err != nil {
		respondPlantServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, planthttpmapper.FromDomainPlantList(plants))
}

// Get /v1/plants/report
// Inventory summary for the staff dashboard
func (api *PlantAPI) InventoryReport(c *gin.Context) {
	threshold, ok := thresholdFromQuery(c, api.threshold)
	if !ok {
		return
	}
	report, err := api.service.InventoryReport(c.Request.Context(), threshold)
	if err != nil {
		respondPlantServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, planthttpmapper.FromInventoryReport(report))
}

// Get /v1/plants/:plantId
// Find plant by ID
func (api *PlantAPI) GetPlant(c *gin.Context) {
	id := c.Param("plantId")
	plant, err := api.service.GetPlant(c.Request.Context(), id)
	if err != nil {
		respondPlantServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, planthttpmapper.FromDomainPlant(plant))
}

// Put /v1/plants/:plantId
// Update an existing plant
func (api *PlantAPI) UpdatePlant(c *gin.Context) {
	var payload planthttpmapper.Plant
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	payload.ID = c.Param("plantId")
	plant, err := planthttpmapper.ToDomainPlant(payload)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	updated, err := api.service.UpdatePlant(c.Request.Context(), plant)
	if err != nil {
		respondPlantServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, planthttpmapper.FromDomainPlant(updated))
}

// Delete /v1/plants/:plantId
// Remove a plant from the catalog
func (api *PlantAPI) DeletePlant(c *gin.Context) {
	if err := api.service.DeletePlant(c.Request.Context(), c.Param("plantId")); err != nil {
		respondPlantServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Put /v1/plants/:plantId/quantity
// Replace a plant's on-hand stock
func (api *PlantAPI) SetPlantQuantity(c *gin.Context) {
	var payload planthttpmapper.QuantityUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	updated, err := api.service.SetPlantQuantity(c.Request.Context(), c.Param("plantId"), payload.Quantity)
	if err != nil {
		respondPlantServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, planthttpmapper.FromDomainPlant(updated))
}

func searchFilterFromQuery(c *gin.Context) (catalogports.SearchFilter, bool, error) {
	filter := catalogports.SearchFilter{
		Name: strings.TrimSpace(c.Query("name")),
		Type: strings.TrimSpace(c.Query("type")),
	}
	hasFilter := filter.Name != "" || filter.Type != ""
	if raw := strings.TrimSpace(c.Query("minPrice")); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return filter, false, err
		}
		filter.MinPrice = &price
		hasFilter = true
	}
	if raw := strings.TrimSpace(c.Query("maxPrice")); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return filter, false, err
		}
		filter.MaxPrice = &price
		hasFilter = true
	}
	return filter, hasFilter, nil
}

func thresholdFromQuery(c *gin.Context, fallback int) (int, bool) {
	raw := strings.TrimSpace(c.Query("threshold"))
	if raw == "" {
		return fallback, true
	}
	threshold, err := strconv.Atoi(raw)
	if err != nil || threshold < 0 {
		respondError(c, http.StatusBadRequest, errors.New("threshold must be a non-negative integer"))
		return 0, false
	}
	return threshold, true
}

func respondPlantServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, catalogports.ErrNotFound):
		respondProblem(c, apierrors.NewNotFoundProblem("plant", c.Param("plantId")))
	case errors.Is(err, catalogapp.ErrInvalidInput):
		respondError(c, http.StatusBadRequest, err)
	case errors.Is(err, catalogdomain.ErrNegativeQuantity):
		respondError(c, http.StatusBadRequest, err)
	default:
		respondError(c, http.StatusInternalServerError, err)
	}
}
