package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/greenthumb/nursery-api/internal/domains/catalog/domain"
	"github.com/greenthumb/nursery-api/internal/domains/catalog/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory plant persistence adapter for dev and tests.
type Repository struct {
	mu     sync.RWMutex
	plants map[string]*domain.Plant
}

func NewRepository() *Repository {
	return &Repository{plants: map[string]*domain.Plant{}}
}

func (r *Repository) Save(_ context.Context, plant *domain.Plant) (*domain.Plant, error) {
	if plant == nil {
		return nil, errors.New("plant is nil")
	}
	if err := plant.Validate(); err != nil {
		return nil, err
	}
	clone := clonePlant(plant)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plants[clone.ID] = clone
	return clonePlant(clone), nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.Plant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	plant, ok := r.plants[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return clonePlant(plant), nil
}

func (r *Repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plants[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.plants, id)
	return nil
}

func (r *Repository) List(_ context.Context) ([]*domain.Plant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(*domain.Plant) bool { return true }), nil
}

func (r *Repository) Search(_ context.Context, filter ports.SearchFilter) ([]*domain.Plant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name := strings.ToLower(strings.TrimSpace(filter.Name))
	plantType := strings.ToLower(strings.TrimSpace(filter.Type))
	return r.collect(func(p *domain.Plant) bool {
		if name != "" && !strings.Contains(strings.ToLower(p.Name), name) {
			return false
		}
		if plantType != "" && strings.ToLower(p.Type) != plantType {
			return false
		}
		if filter.MinPrice != nil && p.Price.LessThan(*filter.MinPrice) {
			return false
		}
		if filter.MaxPrice != nil && p.Price.GreaterThan(*filter.MaxPrice) {
			return false
		}
		return true
	}), nil
}

func (r *Repository) ListAvailable(_ context.Context) ([]*domain.Plant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(p *domain.Plant) bool { return p.Quantity > 0 }), nil
}

func (r *Repository) ListLowStock(_ context.Context, threshold int) ([]*domain.Plant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(p *domain.Plant) bool { return p.Quantity <= threshold }), nil
}

func (r *Repository) SetQuantity(_ context.Context, id string, quantity int) error {
	if quantity < 0 {
		return domain.ErrNegativeQuantity
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	plant, ok := r.plants[id]
	if !ok {
		return ports.ErrNotFound
	}
	plant.Quantity = quantity
	return nil
}

func (r *Repository) DecrementQuantity(_ context.Context, id string, amount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	plant, ok := r.plants[id]
	if !ok {
		return ports.ErrNotFound
	}
	return plant.AdjustQuantity(-amount)
}

func (r *Repository) collect(keep func(*domain.Plant) bool) []*domain.Plant {
	var list []*domain.Plant
	for _, plant := range r.plants {
		if keep(plant) {
			list = append(list, clonePlant(plant))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func clonePlant(plant *domain.Plant) *domain.Plant {
	clone := *plant
	clone.CareTags = append([]string(nil), plant.CareTags...)
	return &clone
}
