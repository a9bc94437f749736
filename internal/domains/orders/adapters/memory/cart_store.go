package memory

import (
	"context"
	"sync"

	"github.com/greenthumb/nursery-api/internal/domains/orders/domain"
	"github.com/greenthumb/nursery-api/internal/domains/orders/ports"
)

var _ ports.CartStore = (*CartStore)(nil)

// CartStore keeps per-customer carts in process memory.
type CartStore struct {
	mu    sync.RWMutex
	carts map[string][]*domain.OrderItem
}

func NewCartStore() *CartStore {
	return &CartStore{carts: map[string][]*domain.OrderItem{}}
}

func (s *CartStore) Get(_ context.Context, customerID string) ([]*domain.OrderItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItems(s.carts[customerID]), nil
}

func (s *CartStore) Put(_ context.Context, customerID string, items []*domain.OrderItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[customerID] = cloneItems(items)
	return nil
}

func (s *CartStore) Clear(_ context.Context, customerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, customerID)
	return nil
}

func cloneItems(items []*domain.OrderItem) []*domain.OrderItem {
	if items == nil {
		return nil
	}
	cloned := make([]*domain.OrderItem, 0, len(items))
	for _, item := range items {
		clone := *item
		if item.Plant != nil {
			snapshot := *item.Plant
			clone.Plant = &snapshot
		}
		cloned = append(cloned, &clone)
	}
	return cloned
}
