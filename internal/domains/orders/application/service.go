package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/greenthumb/nursery-api/internal/domains/orders/domain"
	"github.com/greenthumb/nursery-api/internal/domains/orders/ports"
)

// Service orchestrates the orders bounded context use cases: cart staging,
// checkout, the status state machine, and the inventory-consuming
// fulfillment path.
type Service struct {
	repo        ports.Repository
	inventory   ports.Inventory
	carts       ports.CartStore
	idempotency ports.IdempotencyStore
	uow         ports.UnitOfWork
	now         func() time.Time
	newID       func(prefix string) string
}

type Option func(*Service)

// WithUnitOfWork wires the transaction boundary used by PlaceOrder and
// ProcessOrder. Defaults to direct execution.
func WithUnitOfWork(uow ports.UnitOfWork) Option {
	return func(s *Service) {
		if uow != nil {
			s.uow = uow
		}
	}
}

// WithIdempotencyStore enables checkout replay protection.
func WithIdempotencyStore(store ports.IdempotencyStore) Option {
	return func(s *Service) {
		s.idempotency = store
	}
}

// WithClock overrides the time source for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides identifier generation for deterministic tests.
func WithIDGenerator(gen func(prefix string) string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// NewService wires the orders service with its driven ports.
func NewService(repo ports.Repository, inventory ports.Inventory, carts ports.CartStore, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		inventory: inventory,
		carts:     carts,
		uow:       ports.NoopUnitOfWork,
		now:       time.Now,
		newID:     defaultID,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// defaultID follows the original id scheme: prefix plus a short uuid slice.
func defaultID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// AddToCart stages a plant for purchase, summing quantities when the plant
// is already in the cart and rejecting amounts beyond on-hand stock.
func (s *Service) AddToCart(ctx context.Context, customerID, plantID string, quantity int) (*ports.CartView, error) {
	if quantity <= 0 {
		return nil, mapError(domain.ErrInvalidQuantity)
	}
	stock, err := s.inventory.GetPlant(ctx, plantID)
	if err != nil {
		return nil, err
	}
	items, err := s.carts.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.PlantID != plantID {
			continue
		}
		total := item.Quantity + quantity
		if !stock.Available(total) {
			return nil, &InsufficientStockError{PlantID: plantID, PlantName: stock.Snapshot.Name, Requested: total, Available: stock.OnHand}
		}
		item.AttachPlant(stock.Snapshot)
		if err := item.UpdateQuantity(total); err != nil {
			return nil, mapError(err)
		}
		if err := s.carts.Put(ctx, customerID, items); err != nil {
			return nil, err
		}
		return cartView(items), nil
	}
	if !stock.Available(quantity) {
		return nil, &InsufficientStockError{PlantID: plantID, PlantName: stock.Snapshot.Name, Requested: quantity, Available: stock.OnHand}
	}
	item, err := domain.NewOrderItem(s.newID("item"), stock.Snapshot, quantity)
	if err != nil {
		return nil, mapError(err)
	}
	items = append(items, item)
	if err := s.carts.Put(ctx, customerID, items); err != nil {
		return nil, err
	}
	return cartView(items), nil
}

// UpdateCartItemQuantity replaces a line's quantity. A non-positive quantity
// is treated as a removal request, not an error.
func (s *Service) UpdateCartItemQuantity(ctx context.Context, customerID, plantID string, quantity int) (*ports.CartView, error) {
	if quantity <= 0 {
		return s.RemoveFromCart(ctx, customerID, plantID)
	}
	stock, err := s.inventory.GetPlant(ctx, plantID)
	if err != nil {
		return nil, err
	}
	if !stock.Available(quantity) {
		return nil, &InsufficientStockError{PlantID: plantID, PlantName: stock.Snapshot.Name, Requested: quantity, Available: stock.OnHand}
	}
	items, err := s.carts.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.PlantID != plantID {
			continue
		}
		item.AttachPlant(stock.Snapshot)
		if err := item.UpdateQuantity(quantity); err != nil {
			return nil, mapError(err)
		}
		if err := s.carts.Put(ctx, customerID, items); err != nil {
			return nil, err
		}
		return cartView(items), nil
	}
	return nil, ErrCartItemNotFound
}

// RemoveFromCart drops the line for the plant, reporting absence.
func (s *Service) RemoveFromCart(ctx context.Context, customerID, plantID string) (*ports.CartView, error) {
	items, err := s.carts.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	kept := items[:0]
	removed := false
	for _, item := range items {
		if item.PlantID == plantID {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	if !removed {
		return nil, ErrCartItemNotFound
	}
	if err := s.carts.Put(ctx, customerID, kept); err != nil {
		return nil, err
	}
	return cartView(kept), nil
}

// GetCart returns the staged lines with their running total.
func (s *Service) GetCart(ctx context.Context, customerID string) (*ports.CartView, error) {
	items, err := s.carts.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return cartView(items), nil
}

// ClearCart empties the customer's staging area.
func (s *Service) ClearCart(ctx context.Context, customerID string) error {
	return s.carts.Clear(ctx, customerID)
}

// PlaceOrder turns the cart into a Pending order. Stock is re-validated at
// commit time, and the order row plus every item row are written in one
// transaction so a partway failure leaves nothing behind. The cart is
// cleared only after the transaction commits.
func (s *Service) PlaceOrder(ctx context.Context, customerID, idempotencyKey string) (*domain.Order, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, mapError(domain.ErrEmptyCustomerID)
	}
	items, err := s.carts.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	var cartHash string
	if idempotencyKey != "" && s.idempotency != nil {
		cartHash, err = FingerprintCart(customerID, items)
		if err != nil {
			return nil, err
		}
		record, err := s.idempotency.Get(ctx, idempotencyKey)
		if err != nil {
			return nil, err
		}
		if record != nil {
			if record.CartHash != cartHash {
				return nil, ports.ErrIdempotencyConflict
			}
			return s.repo.GetByID(ctx, record.OrderID)
		}
	}

	order, err := domain.NewOrder(s.newID("order"), customerID, s.now())
	if err != nil {
		return nil, mapError(err)
	}
	for _, line := range items {
		if line.Plant == nil {
			return nil, mapError(domain.ErrEmptyPlantID)
		}
		item, err := domain.NewOrderItem(s.newID("item"), *line.Plant, line.Quantity)
		if err != nil {
			return nil, mapError(err)
		}
		if err := order.AddItem(item); err != nil {
			return nil, mapError(err)
		}
	}

	var placed *domain.Order
	err = s.uow.Do(ctx, func(ctx context.Context) error {
		for _, item := range order.Items {
			stock, err := s.inventory.GetPlant(ctx, item.PlantID)
			if err != nil {
				return err
			}
			if !stock.Available(item.Quantity) {
				return &InsufficientStockError{PlantID: item.PlantID, PlantName: stock.Snapshot.Name, Requested: item.Quantity, Available: stock.OnHand}
			}
		}
		saved, err := s.repo.Create(ctx, order)
		if err != nil {
			return err
		}
		placed = saved
		return nil
	})
	if err != nil {
		return nil, err
	}

	if idempotencyKey != "" && s.idempotency != nil {
		if _, err := s.idempotency.Save(ctx, ports.IdempotencyRecord{Key: idempotencyKey, CartHash: cartHash, OrderID: placed.ID}); err != nil && !errors.Is(err, ports.ErrIdempotencyConflict) {
			return nil, err
		}
	}
	if err := s.carts.Clear(ctx, customerID); err != nil {
		return nil, err
	}
	return placed, nil
}

// ProcessOrder moves a Pending order into Processing and consumes stock.
// The availability check, the status write, and the decrements run in one
// transaction; any shortfall aborts the whole operation naming the plant,
// leaving both order and stock untouched.
func (s *Service) ProcessOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	var processed *domain.Order
	err := s.uow.Do(ctx, func(ctx context.Context) error {
		order, err := s.repo.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status != domain.StatusPending {
			return ErrOrderNotProcessable
		}
		for _, item := range order.Items {
			stock, err := s.inventory.GetPlant(ctx, item.PlantID)
			if err != nil {
				return err
			}
			if !stock.Available(item.Quantity) {
				return &InsufficientStockError{PlantID: item.PlantID, PlantName: stock.Snapshot.Name, Requested: item.Quantity, Available: stock.OnHand}
			}
		}
		if err := order.Transition(domain.StatusProcessing); err != nil {
			return err
		}
		if err := s.repo.UpdateStatus(ctx, order.ID, order.Status); err != nil {
			return err
		}
		for _, item := range order.Items {
			if err := s.inventory.Decrement(ctx, item.PlantID, item.Quantity); err != nil {
				return err
			}
		}
		processed = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return processed, nil
}

// CancelOrder cancels an order still in Pending or Processing.
func (s *Service) CancelOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.CanBeCancelled() {
		return nil, ErrOrderNotCancellable
	}
	if err := order.Transition(domain.StatusCancelled); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, order.ID, order.Status); err != nil {
		return nil, err
	}
	return order, nil
}

// ReturnOrder accepts a return of a Delivered order.
func (s *Service) ReturnOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.CanBeReturned() {
		return nil, ErrOrderNotReturnable
	}
	if err := order.Transition(domain.StatusReturned); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, order.ID, order.Status); err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateOrderStatus applies an arbitrary transition requested by staff or
// admin. A move into Processing is routed through ProcessOrder so the
// inventory side effect always accompanies it.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID string, status domain.Status) (*domain.Order, error) {
	if !domain.IsValidStatus(status) {
		return nil, mapError(domain.ErrInvalidStatus)
	}
	if status == domain.StatusProcessing {
		return s.ProcessOrder(ctx, orderID)
	}
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.Transition(status); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, order.ID, order.Status); err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrder loads a single aggregate with its items.
func (s *Service) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.repo.GetByID(ctx, orderID)
}

// ListOrders returns every order.
func (s *Service) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	return s.repo.List(ctx)
}

// ListOrdersByStatus filters orders by lifecycle state.
func (s *Service) ListOrdersByStatus(ctx context.Context, status domain.Status) ([]*domain.Order, error) {
	if !domain.IsValidStatus(status) {
		return nil, mapError(domain.ErrInvalidStatus)
	}
	return s.repo.ListByStatus(ctx, status)
}

// OrderHistory returns a customer's orders.
func (s *Service) OrderHistory(ctx context.Context, customerID string) ([]*domain.Order, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, mapError(domain.ErrEmptyCustomerID)
	}
	return s.repo.ListByCustomer(ctx, customerID)
}

// OrderReport aggregates counts by status plus recent volume.
func (s *Service) OrderReport(ctx context.Context, recentDays int) (*ports.OrderReport, error) {
	if recentDays <= 0 {
		recentDays = 7
	}
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	window := time.Duration(recentDays) * 24 * time.Hour
	recent, err := s.repo.ListSince(ctx, s.now().Add(-window))
	if err != nil {
		return nil, err
	}
	counts := map[domain.Status]int{}
	for _, order := range orders {
		counts[order.Status]++
	}
	return &ports.OrderReport{
		CountsByStatus: counts,
		RecentCount:    len(recent),
		RecentWindow:   window,
		GeneratedAt:    s.now(),
	}, nil
}

func cartView(items []*domain.OrderItem) *ports.CartView {
	view := &ports.CartView{Items: items}
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal)
	}
	view.Total = total
	return view
}

var _ ports.Service = (*Service)(nil)
