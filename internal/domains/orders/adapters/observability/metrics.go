package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	orderdomain "github.com/greenthumb/nursery-api/internal/domains/orders/domain"
)

type serviceMetrics struct {
	ordersPlaced     metric.Int64Counter
	orderTransitions metric.Int64Counter
	cartMutations    metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	ordersPlaced, _ := m.Int64Counter("orders.service.orders_placed",
		metric.WithDescription("Number of orders placed from carts"))
	orderTransitions, _ := m.Int64Counter("orders.service.status_transitions",
		metric.WithDescription("Number of order status transitions"))
	cartMutations, _ := m.Int64Counter("orders.service.cart_mutations",
		metric.WithDescription("Number of cart operations"))
	return serviceMetrics{
		ordersPlaced:     ordersPlaced,
		orderTransitions: orderTransitions,
		cartMutations:    cartMutations,
	}
}

func (m serviceMetrics) recordPlaced(ctx context.Context, status orderdomain.Status) {
	if m.ordersPlaced != nil {
		m.ordersPlaced.Add(ctx, 1, metric.WithAttributes(attribute.String("order.status", string(status))))
	}
}

func (m serviceMetrics) recordTransition(ctx context.Context, to orderdomain.Status) {
	if m.orderTransitions != nil {
		m.orderTransitions.Add(ctx, 1, metric.WithAttributes(attribute.String("order.status", string(to))))
	}
}

func (m serviceMetrics) recordCartMutation(ctx context.Context, op string) {
	if m.cartMutations != nil {
		m.cartMutations.Add(ctx, 1, metric.WithAttributes(attribute.String("cart.op", op)))
	}
}
