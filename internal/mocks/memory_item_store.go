package mocks

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/store"
)

// MockMemoryItemStore is an in-memory store.MemoryItemStore. It enforces the
// same optimistic-concurrency and append-only history rules as the
// PostgreSQL implementation.
type MockMemoryItemStore struct {
	CreateFn     func(ctx context.Context, item *domain.MemoryItem) error
	GetByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.MemoryItem, error)
	ListByUserFn func(ctx context.Context, userID uuid.UUID) ([]domain.MemoryItem, error)
	UpdateFn     func(ctx context.Context, item *domain.MemoryItem, expectedUpdatedAt time.Time) error
	DeleteFn     func(ctx context.Context, id uuid.UUID) error

	// Errors returned by the default implementations when set
	CreateErr error
	GetErr    error
	ListErr   error
	UpdateErr error

	mu      sync.Mutex
	items   map[uuid.UUID]domain.MemoryItem
	order   []uuid.UUID
	Updates int
}

var _ store.MemoryItemStore = (*MockMemoryItemStore)(nil)

// NewMockMemoryItemStore creates a store seeded with items in the given order.
func NewMockMemoryItemStore(items ...domain.MemoryItem) *MockMemoryItemStore {
	m := &MockMemoryItemStore{items: make(map[uuid.UUID]domain.MemoryItem)}
	for _, item := range items {
		m.items[item.ID] = item.Clone()
		m.order = append(m.order, item.ID)
	}
	return m
}

// Create implements store.MemoryItemStore
func (m *MockMemoryItemStore) Create(ctx context.Context, item *domain.MemoryItem) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, item)
	}
	if m.CreateErr != nil {
		return m.CreateErr
	}
	if err := item.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.items[item.ID]; exists {
		return store.ErrDuplicate
	}
	m.items[item.ID] = item.Clone()
	m.order = append(m.order, item.ID)
	return nil
}

// GetByID implements store.MemoryItemStore
func (m *MockMemoryItemStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.MemoryItem, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	if m.GetErr != nil {
		return nil, m.GetErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, store.ErrMemoryItemNotFound
	}
	c := item.Clone()
	return &c, nil
}

// ListByUser implements store.MemoryItemStore
func (m *MockMemoryItemStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.MemoryItem, error) {
	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID)
	}
	if m.ListErr != nil {
		return nil, m.ListErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.MemoryItem{}
	for _, id := range m.order {
		if item, ok := m.items[id]; ok && item.UserID == userID {
			out = append(out, item.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Update implements store.MemoryItemStore
func (m *MockMemoryItemStore) Update(
	ctx context.Context,
	item *domain.MemoryItem,
	expectedUpdatedAt time.Time,
) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, item, expectedUpdatedAt)
	}
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	if err := item.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.items[item.ID]
	if !ok {
		return store.ErrMemoryItemNotFound
	}
	if len(item.History) < len(stored.History) {
		return fmt.Errorf("%w: review history cannot shrink", store.ErrInvalidEntity)
	}
	if !stored.UpdatedAt.Equal(expectedUpdatedAt) {
		return fmt.Errorf("%w: memory item %s was modified", store.ErrConflict, item.ID)
	}
	m.items[item.ID] = item.Clone()
	m.Updates++
	return nil
}

// Delete implements store.MemoryItemStore
func (m *MockMemoryItemStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return store.ErrMemoryItemNotFound
	}
	delete(m.items, id)
	return nil
}

// WithTx implements store.MemoryItemStore. The mock has no transactions and
// returns itself.
func (m *MockMemoryItemStore) WithTx(tx *sql.Tx) store.MemoryItemStore {
	return m
}

// Get returns a copy of the stored item for assertions.
func (m *MockMemoryItemStore) Get(id uuid.UUID) (domain.MemoryItem, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return domain.MemoryItem{}, false
	}
	return item.Clone(), true
}
