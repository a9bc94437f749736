package domain

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidPlantID     = errors.New("plant id must be 1-20 letters, digits, '_' or '-'")
	ErrInvalidName        = errors.New("plant name must be between 2 and 100 characters")
	ErrInvalidType        = errors.New("plant type must be between 2 and 50 characters")
	ErrInvalidPrice       = errors.New("plant price must be greater than zero")
	ErrNegativeQuantity   = errors.New("plant quantity must not be negative")
	ErrDescriptionTooLong = errors.New("plant description must not exceed 1000 characters")
	ErrInsufficientStock  = errors.New("insufficient plant stock")
)

var plantIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,20}$`)

// Plant is the catalog aggregate: a sellable nursery item with on-hand stock.
type Plant struct {
	ID          string
	Name        string
	Type        string
	Price       decimal.Decimal
	Quantity    int
	Description string
	CareTags    []string
}

// NewPlant validates the invariants and builds a Plant aggregate.
func NewPlant(id, name, plantType string, price decimal.Decimal, quantity int, description string) (*Plant, error) {
	p := &Plant{
		ID:          strings.TrimSpace(id),
		Name:        strings.TrimSpace(name),
		Type:        strings.TrimSpace(plantType),
		Price:       price,
		Quantity:    quantity,
		Description: strings.TrimSpace(description),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate enforces the aggregate invariants.
func (p *Plant) Validate() error {
	if !plantIDPattern.MatchString(p.ID) {
		return ErrInvalidPlantID
	}
	if n := len(p.Name); n < 2 || n > 100 {
		return ErrInvalidName
	}
	if n := len(p.Type); n < 2 || n > 50 {
		return ErrInvalidType
	}
	if !p.Price.IsPositive() {
		return ErrInvalidPrice
	}
	if p.Quantity < 0 {
		return ErrNegativeQuantity
	}
	if len(p.Description) > 1000 {
		return ErrDescriptionTooLong
	}
	return nil
}

// Available reports whether the requested amount can be sold from stock.
func (p *Plant) Available(requested int) bool {
	return requested > 0 && p.Quantity >= requested
}

// AdjustQuantity applies a stock delta, refusing to go negative.
func (p *Plant) AdjustQuantity(delta int) error {
	if p.Quantity+delta < 0 {
		return ErrInsufficientStock
	}
	p.Quantity += delta
	return nil
}

// SetQuantity replaces the on-hand stock with a non-negative count.
func (p *Plant) SetQuantity(quantity int) error {
	if quantity < 0 {
		return ErrNegativeQuantity
	}
	p.Quantity = quantity
	return nil
}

// TotalPrice computes price times quantity for a prospective purchase.
func (p *Plant) TotalPrice(requested int) decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(requested)))
}
