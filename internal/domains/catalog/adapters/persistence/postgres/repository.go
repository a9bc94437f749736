package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/greenthumb/nursery-api/internal/domains/catalog/domain"
	"github.com/greenthumb/nursery-api/internal/domains/catalog/ports"
	platformpg "github.com/greenthumb/nursery-api/internal/platform/postgres"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists plants in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	repo := &Repository{db: db}
	if db != nil {
		_ = db.AutoMigrate(&plantRecord{})
	}
	return repo
}

type plantRecord struct {
	ID          string          `gorm:"primaryKey;column:plant_id;size:20"`
	Name        string          `gorm:"column:name;size:100;index"`
	Type        string          `gorm:"column:type;size:50;index"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2)"`
	Quantity    int             `gorm:"column:quantity"`
	Description string          `gorm:"column:description;size:1000"`
	CareTags    pq.StringArray  `gorm:"column:care_tags;type:text[]"`
	CreatedAt   time.Time       `gorm:"column:created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at"`
}

func (plantRecord) TableName() string { return "plants" }

// Save inserts or updates a plant keyed by its identifier.
func (r *Repository) Save(ctx context.Context, plant *domain.Plant) (*domain.Plant, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if plant == nil {
		return nil, errors.New("plant is nil")
	}
	clone := *plant
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	record := toRecord(&clone)
	if err := r.conn(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "plant_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"name":        record.Name,
				"type":        record.Type,
				"price":       record.Price,
				"quantity":    record.Quantity,
				"description": record.Description,
				"care_tags":   record.CareTags,
				"updated_at":  gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

// GetByID fetches a plant by identifier.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Plant, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record plantRecord
	if err := r.conn(ctx).First(&record, "plant_id = ?", strings.TrimSpace(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// Delete removes a plant by identifier.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.conn(ctx).Where("plant_id = ?", strings.TrimSpace(id)).Delete(&plantRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// List returns all plants ordered by name.
func (r *Repository) List(ctx context.Context) ([]*domain.Plant, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []plantRecord
	if err := r.conn(ctx).Order("name").Find(&records).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(records), nil
}

// Search filters plants by name substring, exact type, and price range.
func (r *Repository) Search(ctx context.Context, filter ports.SearchFilter) ([]*domain.Plant, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.conn(ctx).Model(&plantRecord{})
	if name := strings.TrimSpace(filter.Name); name != "" {
		query = query.Where("name ILIKE ?", "%"+name+"%")
	}
	if plantType := strings.TrimSpace(filter.Type); plantType != "" {
		query = query.Where("LOWER(type) = LOWER(?)", plantType)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}
	var records []plantRecord
	if err := query.Order("name").Find(&records).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(records), nil
}

// ListAvailable returns plants with stock on hand.
func (r *Repository) ListAvailable(ctx context.Context) ([]*domain.Plant, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []plantRecord
	if err := r.conn(ctx).Where("quantity > 0").Order("name").Find(&records).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(records), nil
}

// ListLowStock returns plants at or below the threshold, lowest first.
func (r *Repository) ListLowStock(ctx context.Context, threshold int) ([]*domain.Plant, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []plantRecord
	if err := r.conn(ctx).Where("quantity <= ?", threshold).Order("quantity, name").Find(&records).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(records), nil
}

// SetQuantity replaces the on-hand stock for a plant.
func (r *Repository) SetQuantity(ctx context.Context, id string, quantity int) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if quantity < 0 {
		return domain.ErrNegativeQuantity
	}
	result := r.conn(ctx).Model(&plantRecord{}).
		Where("plant_id = ?", strings.TrimSpace(id)).
		Updates(map[string]any{"quantity": quantity, "updated_at": gorm.Expr("NOW()")})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// DecrementQuantity subtracts stock only when enough remains, so concurrent
// order processors cannot drive the quantity negative.
func (r *Repository) DecrementQuantity(ctx context.Context, id string, amount int) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if amount <= 0 {
		return domain.ErrInsufficientStock
	}
	id = strings.TrimSpace(id)
	result := r.conn(ctx).Model(&plantRecord{}).
		Where("plant_id = ? AND quantity >= ?", id, amount).
		Updates(map[string]any{
			"quantity":   gorm.Expr("quantity - ?", amount),
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Distinguish a missing plant from an understocked one.
		var count int64
		if err := r.conn(ctx).Model(&plantRecord{}).Where("plant_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ports.ErrNotFound
		}
		return domain.ErrInsufficientStock
	}
	return nil
}

func (r *Repository) conn(ctx context.Context) *gorm.DB {
	return platformpg.Conn(ctx, r.db)
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres plant repository not configured")
	}
	return nil
}

func toRecord(plant *domain.Plant) plantRecord {
	return plantRecord{
		ID:          plant.ID,
		Name:        plant.Name,
		Type:        plant.Type,
		Price:       plant.Price,
		Quantity:    plant.Quantity,
		Description: plant.Description,
		CareTags:    pq.StringArray(plant.CareTags),
	}
}

func (r plantRecord) toDomain() *domain.Plant {
	return &domain.Plant{
		ID:          r.ID,
		Name:        r.Name,
		Type:        r.Type,
		Price:       r.Price,
		Quantity:    r.Quantity,
		Description: r.Description,
		CareTags:    []string(r.CareTags),
	}
}

func toDomainSlice(records []plantRecord) []*domain.Plant {
	plants := make([]*domain.Plant, 0, len(records))
	for i := range records {
		plants = append(plants, records[i].toDomain())
	}
	return plants
}
