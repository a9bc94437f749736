package ports

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/greenthumb/nursery-api/internal/domains/catalog/domain"
)

var ErrNotFound = errors.New("plant not found")

// SearchFilter narrows List-style queries. Nil fields are ignored.
type SearchFilter struct {
	Name     string
	Type     string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// Repository persists plants. Implementations must honour a transaction
// carried in the context so the orders context can compose stock decrements
// into its own transaction boundary.
type Repository interface {
	Save(ctx context.Context, plant *domain.Plant) (*domain.Plant, error)
	GetByID(ctx context.Context, id string) (*domain.Plant, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*domain.Plant, error)
	Search(ctx context.Context, filter SearchFilter) ([]*domain.Plant, error)
	ListAvailable(ctx context.Context) ([]*domain.Plant, error)
	ListLowStock(ctx context.Context, threshold int) ([]*domain.Plant, error)
	// SetQuantity replaces on-hand stock, rejecting negative values.
	SetQuantity(ctx context.Context, id string, quantity int) error
	// DecrementQuantity conditionally subtracts stock, returning
	// domain.ErrInsufficientStock when not enough remains.
	DecrementQuantity(ctx context.Context, id string, amount int) error
}
