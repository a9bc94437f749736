package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/greenthumb/nursery-api/internal/domains/orders/domain"
)

// CartView is the read model handed to the presentation layer after any cart
// mutation.
type CartView struct {
	Items []*domain.OrderItem
	Total decimal.Decimal
}

// OrderReport summarises order volume for the staff/admin dashboards.
type OrderReport struct {
	CountsByStatus map[domain.Status]int
	RecentCount    int
	RecentWindow   time.Duration
	GeneratedAt    time.Time
}

// Service defines the orders use cases exposed to adapters (driving port).
type Service interface {
	// Cart staging.
	AddToCart(ctx context.Context, customerID, plantID string, quantity int) (*CartView, error)
	UpdateCartItemQuantity(ctx context.Context, customerID, plantID string, quantity int) (*CartView, error)
	RemoveFromCart(ctx context.Context, customerID, plantID string) (*CartView, error)
	GetCart(ctx context.Context, customerID string) (*CartView, error)
	ClearCart(ctx context.Context, customerID string) error

	// Order lifecycle.
	PlaceOrder(ctx context.Context, customerID, idempotencyKey string) (*domain.Order, error)
	ProcessOrder(ctx context.Context, orderID string) (*domain.Order, error)
	CancelOrder(ctx context.Context, orderID string) (*domain.Order, error)
	ReturnOrder(ctx context.Context, orderID string) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status domain.Status) (*domain.Order, error)

	// Queries.
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]*domain.Order, error)
	ListOrdersByStatus(ctx context.Context, status domain.Status) ([]*domain.Order, error)
	OrderHistory(ctx context.Context, customerID string) ([]*domain.Order, error)
	OrderReport(ctx context.Context, recentDays int) (*OrderReport, error)
}

// WorkflowOrchestrator runs order fulfillment either inline or as a durable
// workflow, depending on the wiring.
type WorkflowOrchestrator interface {
	ProcessOrder(ctx context.Context, orderID string) (*domain.Order, error)
}
