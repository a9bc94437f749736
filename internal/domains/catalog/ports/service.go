package ports

import (
	"context"
	"time"

	"github.com/greenthumb/nursery-api/internal/domains/catalog/domain"
)

// InventoryReport summarises catalog stock for the staff/admin dashboards.
type InventoryReport struct {
	TotalPlants    int
	AvailableCount int
	LowStock       []*domain.Plant
	Threshold      int
	GeneratedAt    time.Time
}

// Service defines the catalog use cases exposed to adapters.
type Service interface {
	CreatePlant(ctx context.Context, plant *domain.Plant) (*domain.Plant, error)
	UpdatePlant(ctx context.Context, plant *domain.Plant) (*domain.Plant, error)
	DeletePlant(ctx context.Context, id string) error
	GetPlant(ctx context.Context, id string) (*domain.Plant, error)
	ListPlants(ctx context.Context) ([]*domain.Plant, error)
	SearchPlants(ctx context.Context, filter SearchFilter) ([]*domain.Plant, error)
	AvailablePlants(ctx context.Context) ([]*domain.Plant, error)
	LowStockPlants(ctx context.Context, threshold int) ([]*domain.Plant, error)
	SetPlantQuantity(ctx context.Context, id string, quantity int) (*domain.Plant, error)
	InventoryReport(ctx context.Context, threshold int) (*InventoryReport, error)
}
