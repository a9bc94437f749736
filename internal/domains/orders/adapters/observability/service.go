package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	orderdomain "github.com/greenthumb/nursery-api/internal/domains/orders/domain"
	orderports "github.com/greenthumb/nursery-api/internal/domains/orders/ports"
)

const tracerName = "github.com/greenthumb/nursery-api/internal/domains/orders/adapters/observability/service"

var _ orderports.Service = (*Service)(nil)

// Service decorates the orders service with tracing, logging, and metrics.
type Service struct {
	inner   orderports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core orders service.
func New(inner orderports.Service, opts ...Option) orderports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) AddToCart(ctx context.Context, customerID, plantID string, quantity int) (*orderports.CartView, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.AddToCart",
		trace.WithAttributes(
			attribute.String("cart.customer_id", customerID),
			attribute.String("plant.id", plantID),
			attribute.Int("cart.quantity", quantity)))
	defer span.End()

	view, err := s.inner.AddToCart(ctx, customerID, plantID, quantity)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to add to cart",
			slog.String("customer_id", customerID), slog.String("plant_id", plantID))
	}
	s.metrics.recordCartMutation(ctx, "add")
	s.logInfo(ctx, "cart item added",
		slog.String("customer_id", customerID), slog.String("plant_id", plantID), slog.Int("quantity", quantity))
	return view, nil
}

func (s *Service) UpdateCartItemQuantity(ctx context.Context, customerID, plantID string, quantity int) (*orderports.CartView, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdateCartItemQuantity",
		trace.WithAttributes(
			attribute.String("cart.customer_id", customerID),
			attribute.String("plant.id", plantID),
			attribute.Int("cart.quantity", quantity)))
	defer span.End()

	view, err := s.inner.UpdateCartItemQuantity(ctx, customerID, plantID, quantity)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update cart item",
			slog.String("customer_id", customerID), slog.String("plant_id", plantID))
	}
	s.metrics.recordCartMutation(ctx, "update")
	return view, nil
}

func (s *Service) RemoveFromCart(ctx context.Context, customerID, plantID string) (*orderports.CartView, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.RemoveFromCart",
		trace.WithAttributes(
			attribute.String("cart.customer_id", customerID),
			attribute.String("plant.id", plantID)))
	defer span.End()

	view, err := s.inner.RemoveFromCart(ctx, customerID, plantID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to remove cart item",
			slog.String("customer_id", customerID), slog.String("plant_id", plantID))
	}
	s.metrics.recordCartMutation(ctx, "remove")
	return view, nil
}

func (s *Service) GetCart(ctx context.Context, customerID string) (*orderports.CartView, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetCart",
		trace.WithAttributes(attribute.String("cart.customer_id", customerID)))
	defer span.End()

	view, err := s.inner.GetCart(ctx, customerID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load cart", slog.String("customer_id", customerID))
	}
	span.SetAttributes(attribute.Int("cart.items", len(view.Items)))
	return view, nil
}

func (s *Service) ClearCart(ctx context.Context, customerID string) error {
	ctx, span := s.tracer.Start(ctx, "OrderService.ClearCart",
		trace.WithAttributes(attribute.String("cart.customer_id", customerID)))
	defer span.End()

	if err := s.inner.ClearCart(ctx, customerID); err != nil {
		return s.handleError(ctx, span, err, "failed to clear cart", slog.String("customer_id", customerID))
	}
	s.metrics.recordCartMutation(ctx, "clear")
	return nil
}

func (s *Service) PlaceOrder(ctx context.Context, customerID, idempotencyKey string) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.PlaceOrder",
		trace.WithAttributes(attribute.String("cart.customer_id", customerID)))
	defer span.End()

	s.logInfo(ctx, "placing order", slog.String("customer_id", customerID))
	order, err := s.inner.PlaceOrder(ctx, customerID, idempotencyKey)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to place order", slog.String("customer_id", customerID))
	}
	span.SetAttributes(attribute.String("order.id", order.ID))
	s.metrics.recordPlaced(ctx, order.Status)
	s.logInfo(ctx, "order placed",
		slog.String("order_id", order.ID),
		slog.String("customer_id", order.CustomerID),
		slog.String("total", order.TotalAmount.StringFixed(2)))
	return order, nil
}

func (s *Service) ProcessOrder(ctx context.Context, orderID string) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ProcessOrder",
		trace.WithAttributes(attribute.String("order.id", orderID)))
	defer span.End()

	s.logInfo(ctx, "processing order", slog.String("order_id", orderID))
	order, err := s.inner.ProcessOrder(ctx, orderID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to process order", slog.String("order_id", orderID))
	}
	s.metrics.recordTransition(ctx, order.Status)
	s.logInfo(ctx, "order processing started", slog.String("order_id", order.ID))
	return order, nil
}

func (s *Service) CancelOrder(ctx context.Context, orderID string) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CancelOrder",
		trace.WithAttributes(attribute.String("order.id", orderID)))
	defer span.End()

	order, err := s.inner.CancelOrder(ctx, orderID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to cancel order", slog.String("order_id", orderID))
	}
	s.metrics.recordTransition(ctx, order.Status)
	s.logInfo(ctx, "order cancelled", slog.String("order_id", order.ID))
	return order, nil
}

func (s *Service) ReturnOrder(ctx context.Context, orderID string) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ReturnOrder",
		trace.WithAttributes(attribute.String("order.id", orderID)))
	defer span.End()

	order, err := s.inner.ReturnOrder(ctx, orderID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to return order", slog.String("order_id", orderID))
	}
	s.metrics.recordTransition(ctx, order.Status)
	s.logInfo(ctx, "order returned", slog.String("order_id", order.ID))
	return order, nil
}

func (s *Service) UpdateOrderStatus(ctx context.Context, orderID string, status orderdomain.Status) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdateOrderStatus",
		trace.WithAttributes(
			attribute.String("order.id", orderID),
			attribute.String("order.status", string(status))))
	defer span.End()

	order, err := s.inner.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update order status",
			slog.String("order_id", orderID), slog.String("status", string(status)))
	}
	s.metrics.recordTransition(ctx, order.Status)
	s.logInfo(ctx, "order status updated",
		slog.String("order_id", order.ID), slog.String("status", string(order.Status)))
	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, orderID string) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetOrder",
		trace.WithAttributes(attribute.String("order.id", orderID)))
	defer span.End()

	order, err := s.inner.GetOrder(ctx, orderID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.String("order_id", orderID))
	}
	return order, nil
}

func (s *Service) ListOrders(ctx context.Context) ([]*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListOrders")
	defer span.End()

	orders, err := s.inner.ListOrders(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders")
	}
	span.SetAttributes(attribute.Int("orders.count", len(orders)))
	return orders, nil
}

func (s *Service) ListOrdersByStatus(ctx context.Context, status orderdomain.Status) ([]*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListOrdersByStatus",
		trace.WithAttributes(attribute.String("order.status", string(status))))
	defer span.End()

	orders, err := s.inner.ListOrdersByStatus(ctx, status)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders by status",
			slog.String("status", string(status)))
	}
	span.SetAttributes(attribute.Int("orders.count", len(orders)))
	return orders, nil
}

func (s *Service) OrderHistory(ctx context.Context, customerID string) ([]*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.OrderHistory",
		trace.WithAttributes(attribute.String("cart.customer_id", customerID)))
	defer span.End()

	orders, err := s.inner.OrderHistory(ctx, customerID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order history",
			slog.String("customer_id", customerID))
	}
	span.SetAttributes(attribute.Int("orders.count", len(orders)))
	return orders, nil
}

func (s *Service) OrderReport(ctx context.Context, recentDays int) (*orderports.OrderReport, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.OrderReport",
		trace.WithAttributes(attribute.Int("report.recent_days", recentDays)))
	defer span.End()

	report, err := s.inner.OrderReport(ctx, recentDays)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to build order report")
	}
	return report, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}
