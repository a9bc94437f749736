package application

import (
	"errors"
	"fmt"

	"github.com/greenthumb/nursery-api/internal/domains/orders/domain"
	"github.com/greenthumb/nursery-api/internal/domains/orders/ports"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid order input")
	// ErrEmptyCart rejects checkout with nothing staged.
	ErrEmptyCart = errors.New("shopping cart is empty")
	// ErrCartItemNotFound reports a cart mutation against an absent line.
	ErrCartItemNotFound = errors.New("item not found in cart")
	// ErrOrderNotProcessable rejects processing of non-pending orders.
	ErrOrderNotProcessable = errors.New("only pending orders can be processed")
	// ErrOrderNotCancellable rejects cancellation outside Pending/Processing.
	ErrOrderNotCancellable = errors.New("order cannot be cancelled")
	// ErrOrderNotReturnable rejects returns of undelivered orders.
	ErrOrderNotReturnable = errors.New("order cannot be returned")
)

// InsufficientStockError names the plant that blocked an operation.
type InsufficientStockError struct {
	PlantID   string
	PlantName string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	name := e.PlantName
	if name == "" {
		name = e.PlantID
	}
	return fmt.Sprintf("insufficient stock for plant %s: requested %d, available %d", name, e.Requested, e.Available)
}

// Unwrap lets callers match with errors.Is(err, ports.ErrInsufficientStock).
func (e *InsufficientStockError) Unwrap() error {
	return ports.ErrInsufficientStock
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyOrderID) ||
		errors.Is(err, domain.ErrEmptyCustomerID) ||
		errors.Is(err, domain.ErrEmptyItemID) ||
		errors.Is(err, domain.ErrEmptyPlantID) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrInvalidStatus) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
