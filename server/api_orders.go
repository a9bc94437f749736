package nurseryserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	orderhttpmapper "github.com/greenthumb/nursery-api/internal/domains/orders/adapters/http/mapper"
	orderapp "github.com/greenthumb/nursery-api/internal/domains/orders/application"
	orderdomain "github.com/greenthumb/nursery-api/internal/domains/orders/domain"
	orderports "github.com/greenthumb/nursery-api/internal/domains/orders/ports"
	apierrors "github.com/greenthumb/nursery-api/internal/shared/errors"
)

// OrderAPI wires HTTP transport with the orders bounded context service and workflows.
type OrderAPI struct {
	service   orderports.Service
	workflows orderports.WorkflowOrchestrator
}

// NewOrderAPI creates an OrderAPI backed by the provided service.
func NewOrderAPI(service orderports.Service, workflows orderports.WorkflowOrchestrator) OrderAPI {
	return OrderAPI{service: service, workflows: workflows}
}

// Post /v1/orders
// Convert the customer's cart into a pending order
func (api *OrderAPI) PlaceOrder(c *gin.Context) {
	var payload orderhttpmapper.CheckoutRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	key := strings.TrimSpace(payload.IdempotencyKey)
	if key == "" {
		key = strings.TrimSpace(c.GetHeader("Idempotency-Key"))
	}
	order, err := api.service.PlaceOrder(c.Request.Context(), payload.CustomerID, key)
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, orderhttpmapper.FromDomainOrder(order))
}

// Post /v1/orders/:orderId/process
// Start fulfilment: transition to Processing and commit stock decrements
func (api *OrderAPI) ProcessOrder(c *gin.Context) {
	order, err := api.processOrder(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(order))
}

func (api *OrderAPI) processOrder(ctx context.Context, orderID string) (*orderdomain.Order, error) {
	if api.workflows != nil {
		return api.workflows.ProcessOrder(ctx, orderID)
	}
	return api.service.ProcessOrder(ctx, orderID)
}

// Post /v1/orders/:orderId/cancel
// Cancel a pending or processing order
func (api *OrderAPI) CancelOrder(c *gin.Context) {
	order, err := api.service.CancelOrder(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(order))
}

// Post /v1/orders/:orderId/return
// Return a delivered order
func (api *OrderAPI) ReturnOrder(c *gin.Context) {
	order, err := api.service.ReturnOrder(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(order))
}

// Put /v1/orders/:orderId/status
// Apply an explicit lifecycle transition
func (api *OrderAPI) UpdateOrderStatus(c *gin.Context) {
	var payload orderhttpmapper.StatusUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	order, err := api.service.UpdateOrderStatus(c.Request.Context(), c.Param("orderId"), orderdomain.Status(payload.Status))
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(order))
}

// Get /v1/orders/:orderId
// Find order by ID
func (api *OrderAPI) GetOrder(c *gin.Context) {
	order, err := api.service.GetOrder(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(order))
}

// Get /v1/orders
// List all orders, newest first
func (api *OrderAPI) ListOrders(c *gin.Context) {
	orders, err := api.service.ListOrders(c.Request.Context())
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrderList(orders))
}

// Get /v1/orders/status/:status
// List orders in a lifecycle state
func (api *OrderAPI) ListOrdersByStatus(c *gin.Context) {
	orders, err := api.service.ListOrdersByStatus(c.Request.Context(), orderdomain.Status(c.Param("status")))
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrderList(orders))
}

// Get /v1/orders/customer/:customerId
// A customer's order history, newest first
func (api *OrderAPI) OrderHistory(c *gin.Context) {
	orders, err := api.service.OrderHistory(c.Request.Context(), c.Param("customerId"))
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrderList(orders))
}

// Get /v1/orders/report
// Order volume summary for the staff dashboard
func (api *OrderAPI) OrderReport(c *gin.Context) {
	days := 0
	if raw := strings.TrimSpace(c.Query("days")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(c, http.StatusBadRequest, errors.New("days must be a positive integer"))
			return
		}
		days = parsed
	}
	report, err := api.service.OrderReport(c.Request.Context(), days)
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromOrderReport(report))
}

func respondOrderServiceError(c *gin.Context, err error) {
	var stockErr *orderapp.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		respondProblem(c, apierrors.NewInsufficientStockProblem(
			stockErr.PlantID, stockErr.PlantName, stockErr.Requested, stockErr.Available))
	case errors.Is(err, orderports.ErrNotFound):
		respondProblem(c, apierrors.NewNotFoundProblem("order", c.Param("orderId")))
	case errors.Is(err, orderports.ErrPlantNotFound):
		respondProblem(c, apierrors.NewNotFoundProblem("plant", ""))
	case errors.Is(err, orderports.ErrInsufficientStock):
		respondProblem(c, apierrors.ErrInsufficientStock.WithDetail(err.Error()))
	case errors.Is(err, orderapp.ErrEmptyCart):
		respondProblem(c, apierrors.ErrUnprocessable.WithDetail(err.Error()))
	case errors.Is(err, orderports.ErrIdempotencyConflict),
		errors.Is(err, orderapp.ErrOrderNotProcessable),
		errors.Is(err, orderapp.ErrOrderNotCancellable),
		errors.Is(err, orderapp.ErrOrderNotReturnable),
		errors.Is(err, orderdomain.ErrInvalidTransition):
		respondError(c, http.StatusConflict, err)
	case errors.Is(err, orderapp.ErrInvalidInput), errors.Is(err, orderdomain.ErrInvalidStatus):
		respondError(c, http.StatusBadRequest, err)
	default:
		respondError(c, http.StatusInternalServerError, err)
	}
}
