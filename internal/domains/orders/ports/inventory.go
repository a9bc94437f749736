package ports

import (
	"context"
	"errors"

	"github.com/greenthumb/nursery-api/internal/domains/orders/domain"
)

var (
	ErrPlantNotFound     = errors.New("plant not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// PlantStock is the inventory view of a plant the orders context needs: the
// snapshot an order line caches plus the on-hand quantity.
type PlantStock struct {
	Snapshot domain.PlantSnapshot
	OnHand   int
}

// Available reports whether the requested quantity can be taken from stock.
func (p PlantStock) Available(requested int) bool {
	return requested > 0 && p.OnHand >= requested
}

// Inventory is the anti-corruption port onto the catalog context. Decrement
// must be conditional on sufficient stock so two concurrent processors
// cannot drive the on-hand quantity negative, and must join a transaction
// carried in the context.
type Inventory interface {
	GetPlant(ctx context.Context, plantID string) (*PlantStock, error)
	// Decrement atomically subtracts quantity from the plant's stock,
	// returning ErrInsufficientStock when not enough remains.
	Decrement(ctx context.Context, plantID string, quantity int) error
}
