package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/greenthumb/nursery-api/internal/domains/orders/ports"
	platformpg "github.com/greenthumb/nursery-api/internal/platform/postgres"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore persists checkout idempotency keys in PostgreSQL.
type IdempotencyStore struct {
	db *gorm.DB
}

// NewIdempotencyStore wires a PostgreSQL-backed idempotency store.
func NewIdempotencyStore(db *gorm.DB) *IdempotencyStore {
	store := &IdempotencyStore{db: db}
	if db != nil {
		_ = db.AutoMigrate(&checkoutKeyRecord{})
	}
	return store
}

type checkoutKeyRecord struct {
	Key       string    `gorm:"primaryKey;column:idempotency_key;size:128"`
	CartHash  string    `gorm:"column:cart_hash;size:64"`
	OrderID   string    `gorm:"column:order_id;size:40;index"`
	CreatedAt time.Time `gorm:"column:created_at;index"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (checkoutKeyRecord) TableName() string { return "checkout_keys" }

// Get returns the stored record for the key, or nil when unknown.
func (s *IdempotencyStore) Get(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var record checkoutKeyRecord
	err := s.conn(ctx).First(&record, "idempotency_key = ?", strings.TrimSpace(key)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record.toPort(), nil
}

// Save persists the record. A key reused with a different cart hash returns
// the stored record alongside ErrIdempotencyConflict.
func (s *IdempotencyStore) Save(ctx context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	rec := checkoutKeyRecord{
		Key:      strings.TrimSpace(record.Key),
		CartHash: record.CartHash,
		OrderID:  record.OrderID,
	}
	err := s.conn(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "idempotency_key"}},
			DoNothing: true,
		}).Create(&rec).Error
	if err != nil {
		return nil, err
	}
	var stored checkoutKeyRecord
	if err := s.conn(ctx).First(&stored, "idempotency_key = ?", rec.Key).Error; err != nil {
		return nil, err
	}
	if stored.CartHash != record.CartHash || stored.OrderID != record.OrderID {
		return stored.toPort(), ports.ErrIdempotencyConflict
	}
	return stored.toPort(), nil
}

func (s *IdempotencyStore) conn(ctx context.Context) *gorm.DB {
	return platformpg.Conn(ctx, s.db)
}

func (s *IdempotencyStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres idempotency store not configured")
	}
	return nil
}

func (r checkoutKeyRecord) toPort() *ports.IdempotencyRecord {
	return &ports.IdempotencyRecord{
		Key:       r.Key,
		CartHash:  r.CartHash,
		OrderID:   r.OrderID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
