package orders

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	orderdomain "github.com/greenthumb/nursery-api/internal/domains/orders/domain"
	orderactivities "github.com/greenthumb/nursery-api/internal/durable/temporal/activities/orders"
)

const (
	// FulfillmentWorkflowName is the public identifier for registering the workflow.
	FulfillmentWorkflowName = "orders.workflows.Fulfillment"
	// FulfillmentTaskQueue is the queue consumed by the worker processing order workflows.
	FulfillmentTaskQueue = "ORDER_FULFILLMENT"
)

// FulfillmentWorkflowInput carries the order to fulfil plus the trace that
// requested it.
type FulfillmentWorkflowInput struct {
	OrderID string
	TraceID string
}

// FulfillmentWorkflow durably moves a pending order into processing, retrying
// the stock-decrementing activity until it succeeds or exhausts its attempts.
func FulfillmentWorkflow(ctx workflow.Context, input FulfillmentWorkflowInput) (*orderdomain.Order, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("FulfillmentWorkflow started", withTraceID(input.TraceID, "orderId", input.OrderID)...)

	options := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	var order orderdomain.Order
	err := workflow.ExecuteActivity(ctx, orderactivities.ProcessOrderActivityName, input.OrderID).Get(ctx, &order)
	if err != nil {
		logger.Error("FulfillmentWorkflow failed", withTraceID(input.TraceID, "orderId", input.OrderID, "error", err)...)
		return nil, err
	}
	logger.Info("FulfillmentWorkflow completed", withTraceID(input.TraceID, "orderId", order.ID, "status", string(order.Status))...)
	return &order, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
