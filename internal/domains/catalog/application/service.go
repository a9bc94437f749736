package application

import (
	"context"
	"errors"
	"time"

	"github.com/greenthumb/nursery-api/internal/domains/catalog/domain"
	"github.com/greenthumb/nursery-api/internal/domains/catalog/ports"
)

// DefaultLowStockThreshold matches the staff dashboard's reorder line.
const DefaultLowStockThreshold = 10

// Service orchestrates the catalog bounded context use cases.
type Service struct {
	repo ports.Repository
	now  func() time.Time
}

// NewService wires the catalog service with its repository.
func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) CreatePlant(ctx context.Context, plant *domain.Plant) (*domain.Plant, error) {
	if plant == nil {
		return nil, errors.New("plant is nil")
	}
	if err := plant.Validate(); err != nil {
		return nil, mapError(err)
	}
	return s.repo.Save(ctx, plant)
}

func (s *Service) UpdatePlant(ctx context.Context, plant *domain.Plant) (*domain.Plant, error) {
	if plant == nil {
		return nil, errors.New("plant is nil")
	}
	if err := plant.Validate(); err != nil {
		return nil, mapError(err)
	}
	if _, err := s.repo.GetByID(ctx, plant.ID); err != nil {
		return nil, err
	}
	return s.repo.Save(ctx, plant)
}

func (s *Service) DeletePlant(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) GetPlant(ctx context.Context, id string) (*domain.Plant, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListPlants(ctx context.Context) ([]*domain.Plant, error) {
	return s.repo.List(ctx)
}

func (s *Service) SearchPlants(ctx context.Context, filter ports.SearchFilter) ([]*domain.Plant, error) {
	return s.repo.Search(ctx, filter)
}

func (s *Service) AvailablePlants(ctx context.Context) ([]*domain.Plant, error) {
	return s.repo.ListAvailable(ctx)
}

func (s *Service) LowStockPlants(ctx context.Context, threshold int) ([]*domain.Plant, error) {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	return s.repo.ListLowStock(ctx, threshold)
}

// SetPlantQuantity replaces on-hand stock, the staff inventory-correction path.
func (s *Service) SetPlantQuantity(ctx context.Context, id string, quantity int) (*domain.Plant, error) {
	if quantity < 0 {
		return nil, mapError(domain.ErrNegativeQuantity)
	}
	if err := s.repo.SetQuantity(ctx, id, quantity); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// InventoryReport aggregates stock counts plus the low-stock listing.
func (s *Service) InventoryReport(ctx context.Context, threshold int) (*ports.InventoryReport, error) {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	available, err := s.repo.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}
	lowStock, err := s.repo.ListLowStock(ctx, threshold)
	if err != nil {
		return nil, err
	}
	return &ports.InventoryReport{
		TotalPlants:    len(all),
		AvailableCount: len(available),
		LowStock:       lowStock,
		Threshold:      threshold,
		GeneratedAt:    s.now(),
	}, nil
}

var _ ports.Service = (*Service)(nil)
