package ports

import (
	"context"
	"errors"
	"time"
)

// ErrIdempotencyConflict indicates the same key was used with a different cart.
var ErrIdempotencyConflict = errors.New("idempotency conflict")

// IdempotencyRecord associates a client-supplied checkout key with the order
// it produced, so a retried checkout replays instead of double-charging.
type IdempotencyRecord struct {
	Key       string
	CartHash  string
	OrderID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IdempotencyStore persists checkout idempotency keys.
type IdempotencyStore interface {
	// Get returns the stored record for the key, or nil when unknown.
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
	// Save persists the record. If the key exists with the same cart hash the
	// stored record is returned; with a different hash it is returned
	// alongside ErrIdempotencyConflict.
	Save(ctx context.Context, record IdempotencyRecord) (*IdempotencyRecord, error)
}
