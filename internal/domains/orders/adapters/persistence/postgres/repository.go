package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/greenthumb/nursery-api/internal/domains/orders/domain"
	"github.com/greenthumb/nursery-api/internal/domains/orders/ports"
	platformpg "github.com/greenthumb/nursery-api/internal/platform/postgres"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists order aggregates in PostgreSQL using GORM. Writes join
// a transaction carried in the context, so placement and fulfilment commit
// atomically with the stock movements they cause.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	repo := &Repository{db: db}
	if db != nil {
		_ = db.AutoMigrate(&orderRecord{}, &orderItemRecord{})
	}
	return repo
}

type orderRecord struct {
	ID          string          `gorm:"primaryKey;column:order_id;size:40"`
	CustomerID  string          `gorm:"column:customer_id;size:40;index:idx_orders_customer_date"`
	OrderDate   time.Time       `gorm:"column:order_date;index:idx_orders_customer_date"`
	TotalAmount decimal.Decimal `gorm:"column:total_amount;type:numeric(12,2)"`
	Status      string          `gorm:"column:status;type:varchar(32);index"`
	CreatedAt   time.Time       `gorm:"column:created_at;index"`
	UpdatedAt   time.Time       `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

type orderItemRecord struct {
	ID             string          `gorm:"primaryKey;column:order_item_id;size:40"`
	OrderID        string          `gorm:"column:order_id;size:40;index"`
	PlantID        string          `gorm:"column:plant_id;size:20;index"`
	PlantName      string          `gorm:"column:plant_name;size:100"`
	PlantUnitPrice decimal.Decimal `gorm:"column:plant_unit_price;type:numeric(12,2)"`
	Quantity       int             `gorm:"column:quantity"`
	Subtotal       decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2)"`
	CreatedAt      time.Time       `gorm:"column:created_at"`
	UpdatedAt      time.Time       `gorm:"column:updated_at"`
}

func (orderItemRecord) TableName() string { return "order_items" }

// Create inserts the order row and all of its line items.
func (r *Repository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	record := toOrderRecord(order)
	items := toItemRecords(order)
	conn := r.conn(ctx)
	if err := conn.Create(&record).Error; err != nil {
		return nil, err
	}
	if len(items) > 0 {
		if err := conn.Create(&items).Error; err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, record.ID)
}

// GetByID loads the aggregate with its items and plant snapshots.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.conn(ctx).First(&record, "order_id = ?", strings.TrimSpace(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	var items []orderItemRecord
	if err := r.conn(ctx).Where("order_id = ?", record.ID).Order("order_item_id").Find(&items).Error; err != nil {
		return nil, err
	}
	return record.toDomain(items), nil
}

// UpdateStatus persists a status already validated by the aggregate.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.conn(ctx).Model(&orderRecord{}).
		Where("order_id = ?", strings.TrimSpace(id)).
		Updates(map[string]any{"status": string(status), "updated_at": gorm.Expr("NOW()")})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// List returns all orders, newest first.
func (r *Repository) List(ctx context.Context) ([]*domain.Order, error) {
	return r.list(ctx, nil)
}

// ListByStatus returns orders in the given status, newest first.
func (r *Repository) ListByStatus(ctx context.Context, status domain.Status) ([]*domain.Order, error) {
	return r.list(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("status = ?", string(status))
	})
}

// ListByCustomer returns a customer's order history, newest first.
func (r *Repository) ListByCustomer(ctx context.Context, customerID string) ([]*domain.Order, error) {
	return r.list(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("customer_id = ?", strings.TrimSpace(customerID))
	})
}

// ListSince returns orders placed at or after the given moment, newest first.
func (r *Repository) ListSince(ctx context.Context, since time.Time) ([]*domain.Order, error) {
	return r.list(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("order_date >= ?", since)
	})
}

func (r *Repository) list(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.conn(ctx).Model(&orderRecord{}).Order("order_date DESC, order_id DESC")
	if scope != nil {
		query = scope(query)
	}
	var records []orderRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []*domain.Order{}, nil
	}
	ids := make([]string, 0, len(records))
	for i := range records {
		ids = append(ids, records[i].ID)
	}
	var items []orderItemRecord
	if err := r.conn(ctx).Where("order_id IN ?", ids).Order("order_item_id").Find(&items).Error; err != nil {
		return nil, err
	}
	byOrder := make(map[string][]orderItemRecord, len(records))
	for i := range items {
		byOrder[items[i].OrderID] = append(byOrder[items[i].OrderID], items[i])
	}
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, records[i].toDomain(byOrder[records[i].ID]))
	}
	return orders, nil
}

func (r *Repository) conn(ctx context.Context) *gorm.DB {
	return platformpg.Conn(ctx, r.db)
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toOrderRecord(order *domain.Order) orderRecord {
	return orderRecord{
		ID:          order.ID,
		CustomerID:  order.CustomerID,
		OrderDate:   order.OrderDate,
		TotalAmount: order.TotalAmount,
		Status:      string(order.Status),
	}
}

func toItemRecords(order *domain.Order) []orderItemRecord {
	records := make([]orderItemRecord, 0, len(order.Items))
	for _, item := range order.Items {
		rec := orderItemRecord{
			ID:       item.ID,
			OrderID:  order.ID,
			PlantID:  item.PlantID,
			Quantity: item.Quantity,
			Subtotal: item.Subtotal,
		}
		if item.Plant != nil {
			rec.PlantName = item.Plant.Name
			rec.PlantUnitPrice = item.Plant.UnitPrice
		}
		records = append(records, rec)
	}
	return records
}

func (r orderRecord) toDomain(items []orderItemRecord) *domain.Order {
	order := &domain.Order{
		ID:          r.ID,
		CustomerID:  r.CustomerID,
		OrderDate:   r.OrderDate,
		TotalAmount: r.TotalAmount,
		Status:      domain.Status(r.Status),
		Items:       make([]*domain.OrderItem, 0, len(items)),
	}
	for i := range items {
		order.Items = append(order.Items, items[i].toDomain())
	}
	return order
}

func (r orderItemRecord) toDomain() *domain.OrderItem {
	return &domain.OrderItem{
		ID:       r.ID,
		OrderID:  r.OrderID,
		PlantID:  r.PlantID,
		Quantity: r.Quantity,
		Subtotal: r.Subtotal,
		Plant: &domain.PlantSnapshot{
			ID:        r.PlantID,
			Name:      r.PlantName,
			UnitPrice: r.PlantUnitPrice,
		},
	}
}
