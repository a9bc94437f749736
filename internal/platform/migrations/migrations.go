package migrations

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Intended to replace adapter-level automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&plantRecord{},
		&orderRecord{},
		&orderItemRecord{},
		&checkoutKeyRecord{},
		&userRecord{},
		&sessionRecord{},
	)
}

// Plant schema mirrors the catalog Postgres adapter.
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

// Order schema mirrors the orders Postgres adapter.
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

// Order item schema keeps the priced plant snapshot alongside the line.
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

// Checkout idempotency key schema mirrors the orders Postgres adapter.
type checkoutKeyRecord struct {
	Key       string    `gorm:"primaryKey;column:idempotency_key;size:128"`
	CartHash  string    `gorm:"column:cart_hash;size:64"`
	OrderID   string    `gorm:"column:order_id;size:40;index"`
	CreatedAt time.Time `gorm:"column:created_at;index"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (checkoutKeyRecord) TableName() string { return "checkout_keys" }

// User schema mirrors the users Postgres adapter.
type userRecord struct {
	ID           string    `gorm:"primaryKey;column:user_id;size:40"`
	Username     string    `gorm:"column:username;uniqueIndex;size:20"`
	PasswordHash string    `gorm:"column:password_hash;size:256"`
	Role         string    `gorm:"column:role;type:varchar(16);index"`
	Email        string    `gorm:"column:email;size:254"`
	Phone        string    `gorm:"column:phone;size:32"`
	CustomerID   string    `gorm:"column:customer_id;size:40;index"`
	Address      string    `gorm:"column:address;size:200"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (userRecord) TableName() string { return "users" }

// Session schema mirrors the session store.
type sessionRecord struct {
	Token     string    `gorm:"primaryKey;column:token;size:512"`
	Username  string    `gorm:"column:username;index"`
	ExpiresAt time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time `gorm:"column:created_at;index"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (sessionRecord) TableName() string { return "user_sessions" }
