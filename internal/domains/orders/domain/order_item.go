package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyItemID      = errors.New("order item id is required")
	ErrEmptyPlantID     = errors.New("plant id is required")
	ErrInvalidQuantity  = errors.New("quantity must be greater than zero")
	ErrNegativeSubtotal = errors.New("subtotal must not be negative")
)

// PlantSnapshot caches the plant fields an order line needs, taken at the
// moment the line was built. Lines loaded from storage without a snapshot
// keep their stored subtotal until one is reattached.
type PlantSnapshot struct {
	ID        string
	Name      string
	UnitPrice decimal.Decimal
}

// OrderItem is one plant/quantity/subtotal line inside an order.
type OrderItem struct {
	ID       string
	OrderID  string
	PlantID  string
	Quantity int
	Subtotal decimal.Decimal
	Plant    *PlantSnapshot
}

// NewOrderItem builds a line from a plant snapshot, computing the subtotal.
func NewOrderItem(id string, plant PlantSnapshot, quantity int) (*OrderItem, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrEmptyItemID
	}
	if strings.TrimSpace(plant.ID) == "" {
		return nil, ErrEmptyPlantID
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	item := &OrderItem{
		ID:       id,
		PlantID:  plant.ID,
		Quantity: quantity,
		Plant:    &plant,
	}
	item.RecalculateSubtotal()
	return item, nil
}

// RecalculateSubtotal recomputes unit price times quantity. Without an
// attached snapshot the stored subtotal is kept as-is rather than zeroed.
func (i *OrderItem) RecalculateSubtotal() decimal.Decimal {
	if i.Plant != nil && i.Quantity > 0 {
		i.Subtotal = i.Plant.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
	}
	return i.Subtotal
}

// UpdateQuantity sets a new positive quantity and recomputes the subtotal.
func (i *OrderItem) UpdateQuantity(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	i.Quantity = quantity
	i.RecalculateSubtotal()
	return nil
}

// AttachPlant reattaches the plant snapshot after a storage load and brings
// the subtotal back in sync with it.
func (i *OrderItem) AttachPlant(plant PlantSnapshot) {
	i.Plant = &plant
	i.PlantID = plant.ID
	i.RecalculateSubtotal()
}

// Validate enforces the line invariants for persistence.
func (i *OrderItem) Validate() error {
	if strings.TrimSpace(i.ID) == "" {
		return ErrEmptyItemID
	}
	if strings.TrimSpace(i.PlantID) == "" {
		return ErrEmptyPlantID
	}
	if i.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if i.Subtotal.IsNegative() {
		return ErrNegativeSubtotal
	}
	return nil
}
