// Package inventory bridges the orders context onto the catalog context,
// translating catalog plants into the snapshot-plus-stock view order
// processing needs.
package inventory

import (
	"context"
	"errors"
	"fmt"

	catalogdomain "github.com/greenthumb/nursery-api/internal/domains/catalog/domain"
	catalogports "github.com/greenthumb/nursery-api/internal/domains/catalog/ports"
	orderdomain "github.com/greenthumb/nursery-api/internal/domains/orders/domain"
	orderports "github.com/greenthumb/nursery-api/internal/domains/orders/ports"
)

var _ orderports.Inventory = (*CatalogInventory)(nil)

// CatalogInventory adapts the catalog repository to the orders Inventory
// port. Calls pass the context through unchanged so they join any
// transaction the orders unit of work has opened.
type CatalogInventory struct {
	plants catalogports.Repository
}

func NewCatalogInventory(plants catalogports.Repository) *CatalogInventory {
	return &CatalogInventory{plants: plants}
}

func (i *CatalogInventory) GetPlant(ctx context.Context, plantID string) (*orderports.PlantStock, error) {
	plant, err := i.plants.GetByID(ctx, plantID)
	if err != nil {
		if errors.Is(err, catalogports.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", orderports.ErrPlantNotFound, plantID)
		}
		return nil, err
	}
	return &orderports.PlantStock{
		Snapshot: orderdomain.PlantSnapshot{
			ID:        plant.ID,
			Name:      plant.Name,
			UnitPrice: plant.Price,
		},
		OnHand: plant.Quantity,
	}, nil
}

func (i *CatalogInventory) Decrement(ctx context.Context, plantID string, quantity int) error {
	err := i.plants.DecrementQuantity(ctx, plantID, quantity)
	if errors.Is(err, catalogports.ErrNotFound) {
		return fmt.Errorf("%w: %s", orderports.ErrPlantNotFound, plantID)
	}
	if errors.Is(err, catalogdomain.ErrInsufficientStock) {
		return fmt.Errorf("%w: plant %s", orderports.ErrInsufficientStock, plantID)
	}
	return err
}
