package ports

import (
	"context"
	"errors"
	"time"

	"github.com/greenthumb/nursery-api/internal/domains/orders/domain"
)

var ErrNotFound = errors.New("order not found")

// Repository persists order aggregates together with their line items.
// Implementations must honour a transaction carried in the context by the
// UnitOfWork so multi-step writes commit or roll back as one.
type Repository interface {
	// Create inserts the order row and every line item.
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	// GetByID loads the aggregate with its items and plant snapshots.
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// UpdateStatus persists a status already validated by the aggregate.
	UpdateStatus(ctx context.Context, id string, status domain.Status) error
	List(ctx context.Context) ([]*domain.Order, error)
	ListByStatus(ctx context.Context, status domain.Status) ([]*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*domain.Order, error)
	ListSince(ctx context.Context, since time.Time) ([]*domain.Order, error)
}

// UnitOfWork runs fn so that every repository and inventory call made with
// the derived context joins a single storage transaction.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type noopUnitOfWork struct{}

func (noopUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// NoopUnitOfWork executes fn directly, for adapters with no transactions.
var NoopUnitOfWork UnitOfWork = noopUnitOfWork{}
