package nurseryserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	orderhttpmapper "github.com/greenthumb/nursery-api/internal/domains/orders/adapters/http/mapper"
	orderapp "github.com/greenthumb/nursery-api/internal/domains/orders/application"
	orderports "github.com/greenthumb/nursery-api/internal/domains/orders/ports"
	apierrors "github.com/greenthumb/nursery-api/internal/shared/errors"
)

// CartAPI wires HTTP transport with the cart side of the orders context.
type CartAPI struct {
	service orderports.Service
}

// NewCartAPI creates a CartAPI backed by the provided orders service.
func NewCartAPI(service orderports.Service) CartAPI {
	return CartAPI{service: service}
}

// Get /v1/cart/:customerId
// View the staged cart
func (api *CartAPI) GetCart(c *gin.Context) {
	view, err := api.service.GetCart(c.Request.Context(), c.Param("customerId"))
	if err != nil {
		respondCartServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromCartView(view))
}

// Post /v1/cart/:customerId/items
// Add a plant to the cart
func (api *CartAPI) AddToCart(c *gin.Context) {
	var payload orderhttpmapper.CartItemRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	view, err := api.service.AddToCart(c.Request.Context(), c.Param("customerId"), payload.PlantID, payload.Quantity)
	if err != nil {
		respondCartServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromCartView(view))
}

// Put /v1/cart/:customerId/items/:plantId
// Change the quantity of a cart line; zero removes it
func (api *CartAPI) UpdateCartItem(c *gin.Context) {
	var payload orderhttpmapper.CartQuantityRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	view, err := api.service.UpdateCartItemQuantity(c.Request.Context(), c.Param("customerId"), c.Param("plantId"), payload.Quantity)
	if err != nil {
		respondCartServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromCartView(view))
}

// Delete /v1/cart/:customerId/items/:plantId
// Remove a plant from the cart
func (api *CartAPI) RemoveFromCart(c *gin.Context) {
	view, err := api.service.RemoveFromCart(c.Request.Context(), c.Param("customerId"), c.Param("plantId"))
	if err != nil {
		respondCartServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromCartView(view))
}

// Delete /v1/cart/:customerId
// Abandon the cart
func (api *CartAPI) ClearCart(c *gin.Context) {
	if err := api.service.ClearCart(c.Request.Context(), c.Param("customerId")); err != nil {
		respondCartServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func respondCartServiceError(c *gin.Context, err error) {
	var stockErr *orderapp.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		respondProblem(c, apierrors.NewInsufficientStockProblem(
			stockErr.PlantID, stockErr.PlantName, stockErr.Requested, stockErr.Available))
	case errors.Is(err, orderports.ErrPlantNotFound):
		respondProblem(c, apierrors.NewNotFoundProblem("plant", c.Param("plantId")))
	case errors.Is(err, orderapp.ErrCartItemNotFound):
		respondProblem(c, apierrors.NewNotFoundProblem("cart item", c.Param("plantId")))
	case errors.Is(err, orderports.ErrInsufficientStock):
		respondProblem(c, apierrors.ErrInsufficientStock.WithDetail(err.Error()))
	case errors.Is(err, orderapp.ErrInvalidInput):
		respondError(c, http.StatusBadRequest, err)
	default:
		respondError(c, http.StatusInternalServerError, err)
	}
}
