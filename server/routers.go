// Package nurseryserver wires the HTTP transport for the nursery API.
package nurseryserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route binds an HTTP method and path to a handler.
type Route struct {
	Method      string
	Pattern     string
	HandlerFunc gin.HandlerFunc
}

// Routes is the list of the server's registered endpoints.
type Routes []Route

// ApiHandleFunctions groups the per-context API handler sets.
type ApiHandleFunctions struct {
	PlantAPI PlantAPI
	CartAPI  CartAPI
	OrderAPI OrderAPI
	UserAPI  UserAPI
}

// NewRouter returns a gin engine with all API routes attached.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine attaches the API routes to an existing engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = defaultHandler
		}
		switch route.Method {
		case http.MethodGet:
			router.GET(route.Pattern, route.HandlerFunc)
		case http.MethodPost:
			router.POST(route.Pattern, route.HandlerFunc)
		case http.MethodPut:
			router.PUT(route.Pattern, route.HandlerFunc)
		case http.MethodDelete:
			router.DELETE(route.Pattern, route.HandlerFunc)
		}
	}
	return router
}

func defaultHandler(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, gin.H{"error": "not implemented"})
}

func getRoutes(h ApiHandleFunctions) Routes {
	return Routes{
		// Catalog.
		{http.MethodPost, "/v1/plants", h.PlantAPI.CreatePlant},
		{http.MethodGet, "/v1/plants", h.PlantAPI.ListPlants},
		{http.MethodGet, "/v1/plants/available", h.PlantAPI.AvailablePlants},
		{http.MethodGet, "/v1/plants/low-stock", h.PlantAPI.LowStockPlants},
		{http.MethodGet, "/v1/plants/report", h.PlantAPI.InventoryReport},
		{http.MethodGet, "/v1/plants/:plantId", h.PlantAPI.GetPlant},
		{http.MethodPut, "/v1/plants/:plantId", h.PlantAPI.UpdatePlant},
		{http.MethodDelete, "/v1/plants/:plantId", h.PlantAPI.DeletePlant},
		{http.MethodPut, "/v1/plants/:plantId/quantity", h.PlantAPI.SetPlantQuantity},

		// Cart.
		{http.MethodGet, "/v1/cart/:customerId", h.CartAPI.GetCart},
		{http.MethodDelete, "/v1/cart/:customerId", h.CartAPI.ClearCart},
		{http.MethodPost, "/v1/cart/:customerId/items", h.CartAPI.AddToCart},
		{http.MethodPut, "/v1/cart/:customerId/items/:plantId", h.CartAPI.UpdateCartItem},
		{http.MethodDelete, "/v1/cart/:customerId/items/:plantId", h.CartAPI.RemoveFromCart},

		// Orders.
		{http.MethodPost, "/v1/orders", h.OrderAPI.PlaceOrder},
		{http.MethodGet, "/v1/orders", h.OrderAPI.ListOrders},
		{http.MethodGet, "/v1/orders/report", h.OrderAPI.OrderReport},
		{http.MethodGet, "/v1/orders/status/:status", h.OrderAPI.ListOrdersByStatus},
		{http.MethodGet, "/v1/orders/customer/:customerId", h.OrderAPI.OrderHistory},
		{http.MethodGet, "/v1/orders/:orderId", h.OrderAPI.GetOrder},
		{http.MethodPost, "/v1/orders/:orderId/process", h.OrderAPI.ProcessOrder},
		{http.MethodPost, "/v1/orders/:orderId/cancel", h.OrderAPI.CancelOrder},
		{http.MethodPost, "/v1/orders/:orderId/return", h.OrderAPI.ReturnOrder},
		{http.MethodPut, "/v1/orders/:orderId/status", h.OrderAPI.UpdateOrderStatus},

		// Users.
		{http.MethodPost, "/v1/users", h.UserAPI.CreateUser},
		{http.MethodGet, "/v1/users", h.UserAPI.ListUsers},
		{http.MethodPost, "/v1/users/register", h.UserAPI.RegisterCustomer},
		{http.MethodPost, "/v1/users/login", h.UserAPI.Login},
		{http.MethodGet, "/v1/users/role/:role", h.UserAPI.ListUsersByRole},
		{http.MethodGet, "/v1/users/:username", h.UserAPI.GetUser},
		{http.MethodPut, "/v1/users/:username", h.UserAPI.UpdateUser},
		{http.MethodDelete, "/v1/users/:username", h.UserAPI.DeleteUser},
		{http.MethodPost, "/v1/users/:username/logout", h.UserAPI.Logout},
		{http.MethodPost, "/v1/users/:username/password", h.UserAPI.ChangePassword},
	}
}
