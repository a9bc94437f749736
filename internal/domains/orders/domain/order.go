package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyOrderID    = errors.New("order id is required")
	ErrEmptyCustomerID = errors.New("customer id is required")
	ErrItemNotFound    = errors.New("order item not found")
	ErrNoItems         = errors.New("order must contain at least one item")
)

// Order is the purchase aggregate owned by the orders bounded context. It
// exclusively owns its line items; plants are referenced, never owned.
type Order struct {
	ID          string
	CustomerID  string
	OrderDate   time.Time
	TotalAmount decimal.Decimal
	Status      Status
	Items       []*OrderItem
}

// NewOrder constructs a Pending order for a customer.
func NewOrder(id, customerID string, orderDate time.Time) (*Order, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrEmptyOrderID
	}
	if strings.TrimSpace(customerID) == "" {
		return nil, ErrEmptyCustomerID
	}
	if orderDate.IsZero() {
		orderDate = time.Now()
	}
	return &Order{
		ID:         id,
		CustomerID: customerID,
		OrderDate:  orderDate,
		Status:     StatusPending,
	}, nil
}

// Transition moves the order into a new status when the transition table
// allows it, leaving the order untouched otherwise.
func (o *Order) Transition(to Status) error {
	if !IsValidStatus(to) {
		return ErrInvalidStatus
	}
	if !CanTransition(o.Status, to) {
		return ErrInvalidTransition
	}
	o.Status = to
	return nil
}

// CanBeCancelled reports cancellation eligibility. Pure function of status.
func (o *Order) CanBeCancelled() bool {
	return o.Status == StatusPending || o.Status == StatusProcessing
}

// CanBeReturned reports return eligibility. Pure function of status.
func (o *Order) CanBeReturned() bool {
	return o.Status == StatusDelivered
}

// AddItem appends a line and recomputes the total.
func (o *Order) AddItem(item *OrderItem) error {
	if item == nil {
		return ErrItemNotFound
	}
	if err := item.Validate(); err != nil {
		return err
	}
	item.OrderID = o.ID
	o.Items = append(o.Items, item)
	o.RecalculateTotal()
	return nil
}

// RemoveItem drops the line matching the item id and recomputes the total.
func (o *Order) RemoveItem(itemID string) error {
	for idx, item := range o.Items {
		if item.ID == itemID {
			o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
			o.RecalculateTotal()
			return nil
		}
	}
	return ErrItemNotFound
}

// UpdateItemQuantity routes an in-place quantity change through the
// aggregate so the total stays eagerly consistent with the line subtotals.
func (o *Order) UpdateItemQuantity(itemID string, quantity int) error {
	for _, item := range o.Items {
		if item.ID == itemID {
			if err := item.UpdateQuantity(quantity); err != nil {
				return err
			}
			o.RecalculateTotal()
			return nil
		}
	}
	return ErrItemNotFound
}

// Item returns the line matching the item id, or nil.
func (o *Order) Item(itemID string) *OrderItem {
	for _, item := range o.Items {
		if item.ID == itemID {
			return item
		}
	}
	return nil
}

// RecalculateTotal recomputes the total as the sum of line subtotals.
func (o *Order) RecalculateTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal)
	}
	o.TotalAmount = total
	return total
}

// Validate enforces the aggregate invariants for persistence.
func (o *Order) Validate() error {
	if strings.TrimSpace(o.ID) == "" {
		return ErrEmptyOrderID
	}
	if strings.TrimSpace(o.CustomerID) == "" {
		return ErrEmptyCustomerID
	}
	if !IsValidStatus(o.Status) {
		return ErrInvalidStatus
	}
	if len(o.Items) == 0 {
		return ErrNoItems
	}
	for _, item := range o.Items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	return nil
}
