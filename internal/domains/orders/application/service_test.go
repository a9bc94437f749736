package application

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/greenthumb/nursery-api/internal/domains/orders/domain"
	"github.com/greenthumb/nursery-api/internal/domains/orders/ports"
)

type fakeOrderRepo struct {
	orders map[string]*domain.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[string]*domain.Order{}}
}

func (f *fakeOrderRepo) Create(_ context.Context, order *domain.Order) (*domain.Order, error) {
	copy := *order
	f.orders[order.ID] = &copy
	return &copy, nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	if o, ok := f.orders[id]; ok {
		copy := *o
		return &copy, nil
	}
	return nil, ports.ErrNotFound
}

func (f *fakeOrderRepo) UpdateStatus(_ context.Context, id string, status domain.Status) error {
	o, ok := f.orders[id]
	if !ok {
		return ports.ErrNotFound
	}
	o.Status = status
	return nil
}

func (f *fakeOrderRepo) List(_ context.Context) ([]*domain.Order, error) {
	var list []*domain.Order
	for _, o := range f.orders {
		copy := *o
		list = append(list, &copy)
	}
	return list, nil
}

func (f *fakeOrderRepo) ListByStatus(_ context.Context, status domain.Status) ([]*domain.Order, error) {
	var list []*domain.Order
	for _, o := range f.orders {
		if o.Status == status {
			copy := *o
			list = append(list, &copy)
		}
	}
	return list, nil
}

func (f *fakeOrderRepo) ListByCustomer(_ context.Context, customerID string) ([]*domain.Order, error) {
	var list []*domain.Order
	for _, o := range f.orders {
		if o.CustomerID == customerID {
			copy := *o
			list = append(list, &copy)
		}
	}
	return list, nil
}

func (f *fakeOrderRepo) ListSince(_ context.Context, since time.Time) ([]*domain.Order, error) {
	var list []*domain.Order
	for _, o := range f.orders {
		if !o.OrderDate.Before(since) {
			copy := *o
			list = append(list, &copy)
		}
	}
	return list, nil
}

type fakeInventory struct {
	stock map[string]*ports.PlantStock
}

func newFakeInventory() *fakeInventory {
	return &fakeInventory{stock: map[string]*ports.PlantStock{}}
}

func (f *fakeInventory) add(id, name string, price string, onHand int) {
	f.stock[id] = &ports.PlantStock{
		Snapshot: domain.PlantSnapshot{ID: id, Name: name, UnitPrice: decimal.RequireFromString(price)},
		OnHand:   onHand,
	}
}

func (f *fakeInventory) GetPlant(_ context.Context, plantID string) (*ports.PlantStock, error) {
	if s, ok := f.stock[plantID]; ok {
		copy := *s
		return &copy, nil
	}
	return nil, ports.ErrPlantNotFound
}

func (f *fakeInventory) Decrement(_ context.Context, plantID string, quantity int) error {
	s, ok := f.stock[plantID]
	if !ok {
		return ports.ErrPlantNotFound
	}
	if s.OnHand < quantity {
		return ports.ErrInsufficientStock
	}
	s.OnHand -= quantity
	return nil
}

type fakeCartStore struct {
	carts map[string][]*domain.OrderItem
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{carts: map[string][]*domain.OrderItem{}}
}

func (f *fakeCartStore) Get(_ context.Context, customerID string) ([]*domain.OrderItem, error) {
	return append([]*domain.OrderItem(nil), f.carts[customerID]...), nil
}

func (f *fakeCartStore) Put(_ context.Context, customerID string, items []*domain.OrderItem) error {
	f.carts[customerID] = append([]*domain.OrderItem(nil), items...)
	return nil
}

func (f *fakeCartStore) Clear(_ context.Context, customerID string) error {
	delete(f.carts, customerID)
	return nil
}

type fakeIdempotencyStore struct {
	records map[string]ports.IdempotencyRecord
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{records: map[string]ports.IdempotencyRecord{}}
}

func (f *fakeIdempotencyStore) Get(_ context.Context, key string) (*ports.IdempotencyRecord, error) {
	if r, ok := f.records[key]; ok {
		copy := r
		return &copy, nil
	}
	return nil, nil
}

func (f *fakeIdempotencyStore) Save(_ context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	if existing, ok := f.records[record.Key]; ok {
		copy := existing
		if existing.CartHash != record.CartHash || existing.OrderID != record.OrderID {
			return &copy, ports.ErrIdempotencyConflict
		}
		return &copy, nil
	}
	f.records[record.Key] = record
	copy := record
	return &copy, nil
}

type orderFixture struct {
	svc       *Service
	repo      *fakeOrderRepo
	inventory *fakeInventory
	carts     *fakeCartStore
	keys      *fakeIdempotencyStore
	now       time.Time
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	f := &orderFixture{
		repo:      newFakeOrderRepo(),
		inventory: newFakeInventory(),
		carts:     newFakeCartStore(),
		keys:      newFakeIdempotencyStore(),
		now:       time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	seq := 0
	f.svc = NewService(
		f.repo,
		f.inventory,
		f.carts,
		WithIdempotencyStore(f.keys),
		WithClock(func() time.Time { return f.now }),
		WithIDGenerator(func(prefix string) string {
			seq++
			return fmt.Sprintf("%s_%04d", prefix, seq)
		}),
	)
	return f
}

func TestAddToCart_AccumulatesQuantityForSamePlant(t *testing.T) {
	f := newOrderFixture(t)
	f.inventory.add("plant_rose", "Rose", "12.50", 10)

	_, err := f.svc.AddToCart(context.Background(), "cust_1", "plant_rose", 2)
	require.NoError(t, err)
	cart, err := f.svc.AddToCart(context.Background(), "cust_1", "plant_rose", 3)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	require.Equal(t, 5, cart.Items[0].Quantity)
	require.True(t, cart.Total.Equal(decimal.RequireFromString("62.50")), "got total %s", cart.Total)
}

func TestAddToCart_RejectsCumulativeQuantityBeyondStock(t *testing.T) {
	f := newOrderFixture(t)
	f.inventory.add("plant_rose", "Rose", "12.50", 4)

	_, err := f.svc.AddToCart(context.Background(), "cust_1", "plant_rose", 3)
	require.NoError(t, err)

	_, err = f.svc.AddToCart(context.Background(), "cust_1", "plant_rose", 3)
	require.ErrorIs(t, err, ports.ErrInsufficientStock)
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, 6, stockErr.Requested)
	require.Equal(t, 4, stockErr.Available)

	cart, err := f.svc.GetCart(context.Background(), "cust_1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	require.Equal(t, 3, cart.Items[0].Quantity, "failed add must not mutate the cart")
}

func TestAddToCart_UnknownPlant(t *testing.T) {
	f := newOrderFixture(t)
	_, err := f.svc.AddToCart(context.Background(), "cust_1", "plant_missing", 1)
	require.ErrorIs(t, err, ports.ErrPlantNotFound)
}

func TestUpdateCartItemQuantity_NonPositiveRemovesLine(t *testing.T) {
	f := newOrderFixture(t)
	f.inventory.add("plant_rose", "Rose", "12.50", 10)
	f.inventory.add("plant_fern", "Fern", "7.50", 10)

	_, err := f.svc.AddToCart(context.Background(), "cust_1", "plant_rose", 2)
	require.NoError(t, err)
	_, err = f.svc.AddToCart(context.Background(), "cust_1", "plant_fern", 1)
	require.NoError(t, err)

	cart, err := f.svc.UpdateCartItemQuantity(context.Background(), "cust_1", "plant_rose", 0)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	require.Equal(t, "plant_fern", cart.Items[0].PlantID)
}

func TestRemoveFromCart_MissingLine(t *testing.T) {
	f := newOrderFixture(t)
	_, err := f.svc.RemoveFromCart(context.Background(), "cust_1", "plant_rose")
	require.ErrorIs(t, err, ErrCartItemNotFound)
}

func TestPlaceOrder_ComputesTotalsAndClearsCart(t *testing.T) {
	f := newOrderFixture(t)
	f.inventory.add("plant_rose", "Rose", "12.50", 10)
	f.inventory.add("plant_fern", "Fern", "7.50", 10)

	_, err := f.svc.AddToCart(context.Background(), "cust_1", "plant_rose", 2)
	require.NoError(t, err)
	_, err = f.svc.AddToCart(context.Background(), "cust_1", "plant_fern", 2)
	require.NoError(t, err)

	order, err := f.svc.PlaceOrder(context.Background(), "cust_1", "")
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, order.Status)
	require.Equal(t, f.now, order.OrderDate)
	require.Len(t, order.Items, 2)
	require.True(t, order.TotalAmount.Equal(decimal.RequireFromString("40.00")), "got total %s", order.TotalAmount)

	cart, err := f.svc.GetCart(context.Background(), "cust_1")
	require.NoError(t, err)
	require.Empty(t, cart.Items)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	f := newOrderFixture(t)
	_, err := f.svc.PlaceOrder(context.Background(), "cust_1", "")
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestPlaceOrder_RevalidatesStockAtCheckout(t *testing.T) {
	f := newOrderFixture(t)
	f.inventory.add("plant_rose", "Rose", "12.50", 5)

	_, err := f.svc.AddToCart(context.Background(), "cust_1", "plant_rose", 3)
	require.NoError(t, err)

	// Stock drained between staging and checkout.
	f.inventory.stock["plant_rose"].OnHand = 2

	_, err = f.svc.PlaceOrder(context.Background(), "cust_1", "")
	require.ErrorIs(t, err, ports.ErrInsufficientStock)

	orders, err := f.repo.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, orders, "failed checkout must not persist an order")

	cart, err := f.svc.GetCart(context.Background(), "cust_1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1, "failed checkout must keep the cart")
}

func TestPlaceOrder_ReplaysWithSameKeyAndCart(t *testing.T) {
	f := newOrderFixture(t)
	f.inventory.add("plant_rose", "Rose", "12.50", 10)

	_, err := f.svc.AddToCart(context.Background(), "cust_1", "plant_rose", 2)
	require.NoError(t, err)
	first, err := f.svc.PlaceOrder(context.Background(), "cust_1", "key-1")
	require.NoError(t, err)

	// A retried request stages the identical cart again.
	_, err = f.svc.AddToCart(context.Background(), "cust_1", "plant_rose", 2)
	require.NoError(t, err)
	replay, err := f.svc.PlaceOrder(context.Background(), "cust_1", "key-1")
	require.NoError(t, err)
	require.Equal(t, first.ID, replay.ID)

	orders, err := f.repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
}

func TestPlaceOrder_ConflictingKeyRejected(t *testing.T) {
	f := newOrderFixture(t)
	f.inventory.add("plant_rose", "Rose", "12.50", 10)
	f.inventory.add("plant_fern", "Fern", "7.50", 10)

	_, err := f.svc.AddToCart(context.Background(), "cust_1", "plant_rose", 2)
	require.NoError(t, err)
	_, err = f.svc.PlaceOrder(context.Background(), "cust_1", "key-1")
	require.NoError(t, err)

	_, err = f.svc.AddToCart(context.Background(), "cust_1", "plant_fern", 1)
	require.NoError(t, err)
	_, err = f.svc.PlaceOrder(context.Background(), "cust_1", "key-1")
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)
}

func placePendingOrder(t *testing.T, f *orderFixture, plantID string, quantity int) *domain.Order {
	t.Helper()
	_, err := f.svc.AddToCart(context.Background(), "cust_1", plantID, quantity)
	require.NoError(t, err)
	order, err := f.svc.PlaceOrder(context.Background(), "cust_1", "")
	require.NoError(t, err)
	return order
}

func TestProcessOrder_DecrementsStock(t *testing.T) {
	f := newOrderFixture(t)
	f.inventory.add("plant_rose", "Rose", "12.50", 5)
	order := placePendingOrder(t, f, "plant_rose", 2)

	processed, err := f.svc.ProcessOrder(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusProcessing, processed.Status)
	require.Equal(t, 3, f.inventory.stock["plant_rose"].OnHand)

	stored, err := f.repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusProcessing, stored.Status)
}

func TestProcessOrder_InsufficientStockLeavesOrderPending(t *testing.T) {
	f := newOrderFixture(t)
	f.inventory.add("plant_rose", "Rose", "12.50", 5)
	order := placePendingOrder(t, f, "plant_rose", 3)

	f.inventory.stock["plant_rose"].OnHand = 1

	_, err := f.svc.ProcessOrder(context.Background(), order.ID)
	require.ErrorIs(t, err, ports.ErrInsufficientStock)
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, "plant_rose", stockErr.PlantID)

	stored, err := f.repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, stored.Status, "failed processing must not advance the order")
	require.Equal(t, 1, f.inventory.stock["plant_rose"].OnHand, "failed processing must not consume stock")
}

func TestProcessOrder_RejectsNonPending(t *testing.T) {
	f := newOrderFixture(t)
	f.inventory.add("plant_rose", "Rose", "12.50", 5)
	order := placePendingOrder(t, f, "plant_rose", 1)

	_, err := f.svc.ProcessOrder(context.Background(), order.ID)
	require.NoError(t, err)
	_, err = f.svc.ProcessOrder(context.Background(), order.ID)
	require.ErrorIs(t, err, ErrOrderNotProcessable)
}

func TestCancelOrder_PendingAndProcessingOnly(t *testing.T) {
	f := newOrderFixture(t)
	f.inventory.add("plant_rose", "Rose", "12.50", 10)

	pending := placePendingOrder(t, f, "plant_rose", 1)
	cancelled, err := f.svc.CancelOrder(context.Background(), pending.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusCancelled, cancelled.Status)

	shipped := placePendingOrder(t, f, "plant_rose", 1)
	_, err = f.svc.ProcessOrder(context.Background(), shipped.ID)
	require.NoError(t, err)
	_, err = f.svc.UpdateOrderStatus(context.Background(), shipped.ID, domain.StatusShipped)
	require.NoError(t, err)
	_, err = f.svc.CancelOrder(context.Background(), shipped.ID)
	require.ErrorIs(t, err, ErrOrderNotCancellable)
}

func TestReturnOrder_DeliveredOnly(t *testing.T) {
	f := newOrderFixture(t)
	f.inventory.add("plant_rose", "Rose", "12.50", 10)
	order := placePendingOrder(t, f, "plant_rose", 1)

	_, err := f.svc.ReturnOrder(context.Background(), order.ID)
	require.ErrorIs(t, err, ErrOrderNotReturnable)

	_, err = f.svc.ProcessOrder(context.Background(), order.ID)
	require.NoError(t, err)
	_, err = f.svc.UpdateOrderStatus(context.Background(), order.ID, domain.StatusShipped)
	require.NoError(t, err)
	_, err = f.svc.UpdateOrderStatus(context.Background(), order.ID, domain.StatusDelivered)
	require.NoError(t, err)

	returned, err := f.svc.ReturnOrder(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusReturned, returned.Status)
}

func TestUpdateOrderStatus_ProcessingConsumesInventory(t *testing.T) {
	f := newOrderFixture(t)
	f.inventory.add("plant_rose", "Rose", "12.50", 5)
	order := placePendingOrder(t, f, "plant_rose", 2)

	updated, err := f.svc.UpdateOrderStatus(context.Background(), order.ID, domain.StatusProcessing)
	require.NoError(t, err)
	require.Equal(t, domain.StatusProcessing, updated.Status)
	require.Equal(t, 3, f.inventory.stock["plant_rose"].OnHand)
}

func TestUpdateOrderStatus_InvalidStatus(t *testing.T) {
	f := newOrderFixture(t)
	_, err := f.svc.UpdateOrderStatus(context.Background(), "order_1", domain.Status("Teleported"))
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestOrderHistory_RequiresCustomer(t *testing.T) {
	f := newOrderFixture(t)
	_, err := f.svc.OrderHistory(context.Background(), "  ")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestOrderReport_CountsByStatusAndRecentWindow(t *testing.T) {
	f := newOrderFixture(t)
	f.inventory.add("plant_rose", "Rose", "12.50", 20)

	old := placePendingOrder(t, f, "plant_rose", 1)
	_, err := f.svc.ProcessOrder(context.Background(), old.ID)
	require.NoError(t, err)
	f.repo.orders[old.ID].OrderDate = f.now.Add(-10 * 24 * time.Hour)

	placePendingOrder(t, f, "plant_rose", 1)
	placePendingOrder(t, f, "plant_rose", 1)

	report, err := f.svc.OrderReport(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, 2, report.CountsByStatus[domain.StatusPending])
	require.Equal(t, 1, report.CountsByStatus[domain.StatusProcessing])
	require.Equal(t, 2, report.RecentCount)
	require.Equal(t, 7*24*time.Hour, report.RecentWindow)
}
