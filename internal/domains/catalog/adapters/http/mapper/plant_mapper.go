package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	catalogdomain "github.com/greenthumb/nursery-api/internal/domains/catalog/domain"
	catalogports "github.com/greenthumb/nursery-api/internal/domains/catalog/ports"
)

// Plant is the transport-layer shape exchanged with API clients.
type Plant struct {
	ID          string          `json:"plantId"`
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Description string          `json:"description,omitempty"`
	CareTags    []string        `json:"careTags,omitempty"`
}

// QuantityUpdate carries a stock replacement request.
type QuantityUpdate struct {
	Quantity int `json:"quantity" binding:"required"`
}

// InventoryReport is the transport shape of the stock dashboard payload.
type InventoryReport struct {
	TotalPlants    int     `json:"totalPlants"`
	AvailableCount int     `json:"availableCount"`
	Threshold      int     `json:"lowStockThreshold"`
	LowStock       []Plant `json:"lowStock"`
	GeneratedAt    string  `json:"generatedAt"`
}

// ToDomainPlant converts a transport plant into the catalog domain model.
func ToDomainPlant(plant Plant) (*catalogdomain.Plant, error) {
	p, err := catalogdomain.NewPlant(plant.ID, plant.Name, plant.Type, plant.Price, plant.Quantity, plant.Description)
	if err != nil {
		return nil, err
	}
	p.CareTags = plant.CareTags
	return p, nil
}

// FromDomainPlant converts a domain plant to the transport representation.
func FromDomainPlant(plant *catalogdomain.Plant) Plant {
	if plant == nil {
		return Plant{}
	}
	return Plant{
		ID:          plant.ID,
		Name:        plant.Name,
		Type:        plant.Type,
		Price:       plant.Price,
		Quantity:    plant.Quantity,
		Description: plant.Description,
		CareTags:    plant.CareTags,
	}
}

// FromDomainPlantList maps a slice of domain plants.
func FromDomainPlantList(plants []*catalogdomain.Plant) []Plant {
	out := make([]Plant, 0, len(plants))
	for _, p := range plants {
		out = append(out, FromDomainPlant(p))
	}
	return out
}

// FromInventoryReport converts the application report to transport form.
func FromInventoryReport(report *catalogports.InventoryReport) InventoryReport {
	if report == nil {
		return InventoryReport{}
	}
	return InventoryReport{
		TotalPlants:    report.TotalPlants,
		AvailableCount: report.AvailableCount,
		Threshold:      report.Threshold,
		LowStock:       FromDomainPlantList(report.LowStock),
		GeneratedAt:    report.GeneratedAt.UTC().Format(time.RFC3339),
	}
}
