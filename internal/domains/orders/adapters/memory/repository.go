package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/greenthumb/nursery-api/internal/domains/orders/domain"
	"github.com/greenthumb/nursery-api/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory order persistence adapter for dev and tests.
type Repository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
}

func NewRepository() *Repository {
	return &Repository{orders: map[string]*domain.Order{}}
}

func (r *Repository) Create(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	clone := cloneOrder(order)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[clone.ID] = clone
	return cloneOrder(clone), nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return cloneOrder(order), nil
}

func (r *Repository) UpdateStatus(_ context.Context, id string, status domain.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return ports.ErrNotFound
	}
	if !domain.IsValidStatus(status) {
		return domain.ErrInvalidStatus
	}
	order.Status = status
	return nil
}

func (r *Repository) List(_ context.Context) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(*domain.Order) bool { return true }), nil
}

func (r *Repository) ListByStatus(_ context.Context, status domain.Status) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(o *domain.Order) bool { return o.Status == status }), nil
}

func (r *Repository) ListByCustomer(_ context.Context, customerID string) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(o *domain.Order) bool { return o.CustomerID == customerID }), nil
}

func (r *Repository) ListSince(_ context.Context, since time.Time) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(o *domain.Order) bool { return !o.OrderDate.Before(since) }), nil
}

// collect filters under the caller-held lock, newest first.
func (r *Repository) collect(keep func(*domain.Order) bool) []*domain.Order {
	var list []*domain.Order
	for _, order := range r.orders {
		if keep(order) {
			list = append(list, cloneOrder(order))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].OrderDate.After(list[j].OrderDate) })
	return list
}

func cloneOrder(order *domain.Order) *domain.Order {
	clone := *order
	clone.Items = make([]*domain.OrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		itemClone := *item
		if item.Plant != nil {
			snapshot := *item.Plant
			itemClone.Plant = &snapshot
		}
		clone.Items = append(clone.Items, &itemClone)
	}
	return &clone
}
