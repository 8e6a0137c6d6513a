package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
)

// MemoryItemStore defines the interface for memory item persistence.
// Implementations store the review history alongside the item and always
// return items with their full history in chronological order.
type MemoryItemStore interface {
	// Create saves a new item and its history.
	// Returns validation errors from the domain MemoryItem if data is invalid.
	// Returns ErrDuplicate if an item with the same ID exists.
	Create(ctx context.Context, item *domain.MemoryItem) error

	// GetByID retrieves an item by its unique ID.
	// Returns ErrMemoryItemNotFound if the item does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.MemoryItem, error)

	// ListByUser returns every item owned by userID ordered by creation time,
	// then ID. This order is the insertion order the due-set selector preserves.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.MemoryItem, error)

	// Update persists the scheduling state, archive flag and content of item
	// and appends any history entries not yet stored. Stored history is never
	// rewritten.
	//
	// expectedUpdatedAt is the UpdatedAt the caller read; if the stored row has
	// a different value Update returns ErrConflict and changes nothing.
	// Returns ErrMemoryItemNotFound if the item does not exist.
	Update(ctx context.Context, item *domain.MemoryItem, expectedUpdatedAt time.Time) error

	// Delete removes an item and its history.
	// Returns ErrMemoryItemNotFound if the item does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new MemoryItemStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) MemoryItemStore
}
