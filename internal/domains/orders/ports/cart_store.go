package ports

import (
	"context"

	"github.com/greenthumb/nursery-api/internal/domains/orders/domain"
)

// CartStore keeps per-customer staged order lines between requests. Carts
// are session-scoped staging, not durable state: losing one on restart is
// acceptable.
type CartStore interface {
	Get(ctx context.Context, customerID string) ([]*domain.OrderItem, error)
	Put(ctx context.Context, customerID string, items []*domain.OrderItem) error
	Clear(ctx context.Context, customerID string) error
}
