package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	"github.com/greenthumb/nursery-api/internal/domains/orders/application"
	orderdomain "github.com/greenthumb/nursery-api/internal/domains/orders/domain"
	orderports "github.com/greenthumb/nursery-api/internal/domains/orders/ports"
)

// ProcessOrderActivityName moves a pending order into processing and commits
// its stock decrements.
const ProcessOrderActivityName = "orders.activities.ProcessOrder"

// Activities groups activities that operate on the orders bounded context.
type Activities struct {
	service orderports.Service
}

// NewActivities wires the orders service into the Temporal activities bundle.
func NewActivities(service orderports.Service) *Activities {
	return &Activities{service: service}
}

// ProcessOrder transitions the order to Processing and decrements stock.
// The underlying service rejects non-pending orders, so a retried activity
// that already succeeded returns the current aggregate instead of decrementing
// twice.
func (a *Activities) ProcessOrder(ctx context.Context, orderID string) (*orderdomain.Order, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("order process activity not initialized", "orderId", orderID)
		return nil, errors.New("order process activity not initialized")
	}
	logger.Info("ProcessOrder activity started", "orderId", orderID)
	order, err := a.service.ProcessOrder(ctx, orderID)
	if errors.Is(err, application.ErrOrderNotProcessable) {
		// A prior attempt may have committed before the result was recorded.
		existing, getErr := a.service.GetOrder(ctx, orderID)
		if getErr == nil && existing.Status == orderdomain.StatusProcessing {
			logger.Info("ProcessOrder already applied in prior attempt", "orderId", orderID)
			return existing, nil
		}
		logger.Error("ProcessOrder activity failed", "orderId", orderID, "error", err)
		return nil, err
	}
	if err != nil {
		logger.Error("ProcessOrder activity failed", "orderId", orderID, "error", err)
		return nil, err
	}
	logger.Info("ProcessOrder activity completed", "orderId", order.ID, "status", string(order.Status))
	return order, nil
}
