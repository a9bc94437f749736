package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOrder(t *testing.T) *Order {
	t.Helper()
	order, err := NewOrder("order_test01", "cust_001", time.Now())
	require.NoError(t, err)
	return order
}

func snapshot(id string, price string) PlantSnapshot {
	return PlantSnapshot{ID: id, Name: id, UnitPrice: decimal.RequireFromString(price)}
}

func TestTransitionTable(t *testing.T) {
	all := []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled, StatusReturned}
	allowed := map[Status][]Status{
		StatusPending:    {StatusProcessing, StatusCancelled},
		StatusProcessing: {StatusShipped, StatusCancelled},
		StatusShipped:    {StatusDelivered, StatusReturned},
		StatusDelivered:  {StatusReturned},
		StatusCancelled:  {},
		StatusReturned:   {},
	}
	for _, from := range all {
		for _, to := range all {
			order := testOrder(t)
			order.Status = from
			err := order.Transition(to)
			want := false
			for _, next := range allowed[from] {
				if next == to {
					want = true
				}
			}
			if want {
				assert.NoError(t, err, "%s -> %s should be allowed", from, to)
				assert.Equal(t, to, order.Status)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s should be rejected", from, to)
				assert.Equal(t, from, order.Status, "rejected transition must not mutate status")
			}
		}
	}
}

func TestTransition_UnknownStatusRejected(t *testing.T) {
	order := testOrder(t)
	err := order.Transition(Status("Misplaced"))
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Equal(t, StatusPending, order.Status)

	err = order.Transition(Status(""))
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Equal(t, StatusPending, order.Status)
}

func TestTransition_SelfTransitionRejected(t *testing.T) {
	order := testOrder(t)
	err := order.Transition(StatusPending)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StatusPending, order.Status)
}

func TestShippedOrderRejectsPending(t *testing.T) {
	order := testOrder(t)
	order.Status = StatusShipped
	err := order.Transition(StatusPending)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StatusShipped, order.Status)
}

func TestTerminalStatesClosed(t *testing.T) {
	assert.True(t, IsTerminal(StatusCancelled))
	assert.True(t, IsTerminal(StatusReturned))
	assert.Empty(t, AllowedNext(StatusCancelled))
	assert.Empty(t, AllowedNext(StatusReturned))
	assert.False(t, IsTerminal(StatusPending))
}

func TestCancellationAndReturnEligibility(t *testing.T) {
	eligible := map[Status]bool{
		StatusPending:    true,
		StatusProcessing: true,
		StatusShipped:    false,
		StatusDelivered:  false,
		StatusCancelled:  false,
		StatusReturned:   false,
	}
	for status, want := range eligible {
		order := testOrder(t)
		order.Status = status
		assert.Equal(t, want, order.CanBeCancelled(), "cancellable in %s", status)
		assert.Equal(t, status == StatusDelivered, order.CanBeReturned(), "returnable in %s", status)
	}
}

func TestTotalRecomputedOnAddAndRemove(t *testing.T) {
	order := testOrder(t)

	itemA, err := NewOrderItem("item_a", snapshot("plant_a", "10.00"), 3)
	require.NoError(t, err)
	itemB, err := NewOrderItem("item_b", snapshot("plant_b", "5.00"), 2)
	require.NoError(t, err)

	require.NoError(t, order.AddItem(itemA))
	require.NoError(t, order.AddItem(itemB))
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("40.00")),
		"expected total 40.00, got %s", order.TotalAmount)

	require.NoError(t, order.RemoveItem("item_b"))
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("30.00")))

	assert.ErrorIs(t, order.RemoveItem("item_zz"), ErrItemNotFound)
}

func TestTotalFollowsInPlaceQuantityUpdate(t *testing.T) {
	order := testOrder(t)
	item, err := NewOrderItem("item_a", snapshot("plant_a", "12.50"), 1)
	require.NoError(t, err)
	require.NoError(t, order.AddItem(item))

	require.NoError(t, order.UpdateItemQuantity("item_a", 4))
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("50.00")))
	assert.True(t, item.Subtotal.Equal(decimal.RequireFromString("50.00")))

	assert.ErrorIs(t, order.UpdateItemQuantity("item_a", 0), ErrInvalidQuantity)
}

func TestSubtotalKeptWithoutSnapshot(t *testing.T) {
	item := &OrderItem{
		ID:       "item_a",
		PlantID:  "plant_a",
		Quantity: 2,
		Subtotal: decimal.RequireFromString("19.90"),
	}
	// No snapshot attached: the stored subtotal survives recomputation.
	got := item.RecalculateSubtotal()
	assert.True(t, got.Equal(decimal.RequireFromString("19.90")))

	item.AttachPlant(snapshot("plant_a", "10.00"))
	assert.True(t, item.Subtotal.Equal(decimal.RequireFromString("20.00")))
}

func TestNewOrderItemValidation(t *testing.T) {
	_, err := NewOrderItem("item_a", snapshot("plant_a", "1.00"), 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = NewOrderItem("", snapshot("plant_a", "1.00"), 1)
	assert.ErrorIs(t, err, ErrEmptyItemID)

	_, err = NewOrderItem("item_a", PlantSnapshot{}, 1)
	assert.ErrorIs(t, err, ErrEmptyPlantID)
}

func TestNewOrderValidation(t *testing.T) {
	_, err := NewOrder("", "cust_001", time.Time{})
	assert.ErrorIs(t, err, ErrEmptyOrderID)

	_, err = NewOrder("order_a", " ", time.Time{})
	assert.ErrorIs(t, err, ErrEmptyCustomerID)

	order, err := NewOrder("order_a", "cust_001", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, order.Status)
	assert.False(t, order.OrderDate.IsZero())
}

func TestValidateRejectsEmptyOrder(t *testing.T) {
	order := testOrder(t)
	assert.ErrorIs(t, order.Validate(), ErrNoItems)

	item, err := NewOrderItem("item_a", snapshot("plant_a", "1.00"), 1)
	require.NoError(t, err)
	require.NoError(t, order.AddItem(item))
	assert.NoError(t, order.Validate())
}
