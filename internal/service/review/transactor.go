package review

import (
	"context"
	"database/sql"

	"github.com/phrazzld/recall-api/internal/store"
)

// TxFn is run by a Transactor with a store bound to the transaction.
type TxFn func(ctx context.Context, items store.MemoryItemStore) error

// Transactor runs a unit of work atomically.
type Transactor interface {
	InTx(ctx context.Context, fn TxFn) error
}

// sqlTransactor runs work in a database/sql transaction.
type sqlTransactor struct {
	db    *sql.DB
	items store.MemoryItemStore
}

// NewSQLTransactor returns a Transactor that begins a transaction on db and
// hands fn a copy of items bound to it.
func NewSQLTransactor(db *sql.DB, items store.MemoryItemStore) Transactor {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if items == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("items cannot be nil")
	}
	return &sqlTransactor{db: db, items: items}
}

func (t *sqlTransactor) InTx(ctx context.Context, fn TxFn) error {
	return store.RunInTransaction(ctx, t.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, t.items.WithTx(tx))
	})
}

// directTransactor runs fn against items without a transaction.
type directTransactor struct {
	items store.MemoryItemStore
}

// NewDirectTransactor returns a Transactor with no atomicity, for stores that
// have no transactions such as in-memory fakes.
func NewDirectTransactor(items store.MemoryItemStore) Transactor {
	return &directTransactor{items: items}
}

func (t *directTransactor) InTx(ctx context.Context, fn TxFn) error {
	return fn(ctx, t.items)
}
