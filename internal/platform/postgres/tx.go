package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	orderports "github.com/greenthumb/nursery-api/internal/domains/orders/ports"
)

type txKey struct{}

// ContextWithTx returns a context carrying the open transaction handle.
func ContextWithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFrom extracts the transaction handle placed in the context by TxManager.
// Repositories use it so their statements join the surrounding transaction.
func TxFrom(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(txKey{}).(*gorm.DB)
	return tx, ok
}

// Conn resolves the connection to use for ctx: the in-flight transaction if
// one is carried, otherwise the base handle scoped to ctx.
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := TxFrom(ctx); ok {
		return tx
	}
	return db.WithContext(ctx)
}

var _ orderports.UnitOfWork = (*TxManager)(nil)

// TxManager runs a function inside a single database transaction, carrying
// the handle through the context so every repository call inside joins it.
type TxManager struct {
	db *gorm.DB
}

// NewTxManager wires a transaction manager. Caller manages DB lifecycle.
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// Do begins a transaction, runs fn with the derived context, and commits.
// Any error from fn rolls the whole transaction back.
func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if m == nil || m.db == nil {
		return errors.New("postgres transaction manager not configured")
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ContextWithTx(ctx, tx))
	})
}
