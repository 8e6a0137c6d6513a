package session

import (
	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
)

// Collection is the caller-owned set of items a Queue reads due items from
// and writes reviewed items back to.
type Collection interface {
	// Items returns the current items in storage order.
	Items() []domain.MemoryItem

	// Put replaces the item with the same ID, or appends it if absent.
	Put(item domain.MemoryItem)
}

// SliceCollection is an in-memory Collection backed by a slice.
type SliceCollection struct {
	items []domain.MemoryItem
}

var _ Collection = (*SliceCollection)(nil)

// NewSliceCollection copies items into a new collection.
func NewSliceCollection(items []domain.MemoryItem) *SliceCollection {
	c := &SliceCollection{items: make([]domain.MemoryItem, 0, len(items))}
	for _, item := range items {
		c.items = append(c.items, item.Clone())
	}
	return c
}

// Items returns a copy of the stored items.
func (c *SliceCollection) Items() []domain.MemoryItem {
	out := make([]domain.MemoryItem, len(c.items))
	for i := range c.items {
		out[i] = c.items[i].Clone()
	}
	return out
}

// Put replaces the item with the same ID, or appends it.
func (c *SliceCollection) Put(item domain.MemoryItem) {
	for i := range c.items {
		if c.items[i].ID == item.ID {
			c.items[i] = item.Clone()
			return
		}
	}
	c.items = append(c.items, item.Clone())
}

// Get returns the item with id, if present.
func (c *SliceCollection) Get(id uuid.UUID) (domain.MemoryItem, bool) {
	for i := range c.items {
		if c.items[i].ID == id {
			return c.items[i].Clone(), true
		}
	}
	return domain.MemoryItem{}, false
}
