package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	orderdomain "github.com/greenthumb/nursery-api/internal/domains/orders/domain"
	orderports "github.com/greenthumb/nursery-api/internal/domains/orders/ports"
)

// Order is the transport-layer shape exchanged with API clients.
type Order struct {
	ID          string          `json:"orderId"`
	CustomerID  string          `json:"customerId"`
	OrderDate   time.Time       `json:"orderDate"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Status      string          `json:"status"`
	Items       []OrderItem     `json:"items"`
}

// OrderItem is the transport shape of one order line.
type OrderItem struct {
	ID        string          `json:"orderItemId"`
	PlantID   string          `json:"plantId"`
	PlantName string          `json:"plantName,omitempty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// CartItemRequest adds a plant to the cart.
type CartItemRequest struct {
	PlantID  string `json:"plantId" binding:"required"`
	Quantity int    `json:"quantity" binding:"required"`
}

// CartQuantityRequest changes an existing cart line. Zero or a negative
// quantity removes the line, so no binding constraint on the field.
type CartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// Cart is the transport shape of the staged cart.
type Cart struct {
	Items []OrderItem     `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// CheckoutRequest converts a cart into an order.
type CheckoutRequest struct {
	CustomerID     string `json:"customerId" binding:"required"`
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
}

// StatusUpdate carries a requested lifecycle transition.
type StatusUpdate struct {
	Status string `json:"status" binding:"required"`
}

// Report is the transport shape of the orders dashboard payload.
type Report struct {
	CountsByStatus map[string]int `json:"countsByStatus"`
	RecentCount    int            `json:"recentCount"`
	RecentDays     int            `json:"recentDays"`
	GeneratedAt    string         `json:"generatedAt"`
}

// FromDomainOrder converts a domain order to the transport representation.
func FromDomainOrder(order *orderdomain.Order) Order {
	if order == nil {
		return Order{}
	}
	items := make([]OrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, fromDomainItem(item))
	}
	return Order{
		ID:          order.ID,
		CustomerID:  order.CustomerID,
		OrderDate:   order.OrderDate,
		TotalAmount: order.TotalAmount,
		Status:      string(order.Status),
		Items:       items,
	}
}

// FromDomainOrderList maps a slice of domain orders.
func FromDomainOrderList(orders []*orderdomain.Order) []Order {
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, FromDomainOrder(o))
	}
	return out
}

// FromCartView converts the application cart read model to transport form.
func FromCartView(view *orderports.CartView) Cart {
	if view == nil {
		return Cart{Items: []OrderItem{}, Total: decimal.Zero}
	}
	items := make([]OrderItem, 0, len(view.Items))
	for _, item := range view.Items {
		items = append(items, fromDomainItem(item))
	}
	return Cart{Items: items, Total: view.Total}
}

// FromOrderReport converts the application report to transport form.
func FromOrderReport(report *orderports.OrderReport) Report {
	if report == nil {
		return Report{}
	}
	counts := make(map[string]int, len(report.CountsByStatus))
	for status, count := range report.CountsByStatus {
		counts[string(status)] = count
	}
	return Report{
		CountsByStatus: counts,
		RecentCount:    report.RecentCount,
		RecentDays:     int(report.RecentWindow / (24 * time.Hour)),
		GeneratedAt:    report.GeneratedAt.UTC().Format(time.RFC3339),
	}
}

func fromDomainItem(item *orderdomain.OrderItem) OrderItem {
	if item == nil {
		return OrderItem{}
	}
	out := OrderItem{
		ID:       item.ID,
		PlantID:  item.PlantID,
		Quantity: item.Quantity,
		Subtotal: item.Subtotal,
	}
	if item.Plant != nil {
		out.PlantName = item.Plant.Name
		out.UnitPrice = item.Plant.UnitPrice
	}
	return out
}
