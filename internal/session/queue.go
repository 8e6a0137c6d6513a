package session

import (
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/domain/srs"
)

// State is the lifecycle state of a Queue.
type State string

// Queue states. There is no separate completed state: an exhausted queue is Empty.
const (
	StateEmpty  State = "empty"
	StateActive State = "active"
)

// Queue orders items into a reviewable sequence and tracks the position in it.
type Queue struct {
	srs        srs.Service
	collection Collection
	limit      int

	items  []domain.MemoryItem
	cursor int
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithLimit caps how many items a session holds. Zero means unlimited.
func WithLimit(n int) QueueOption {
	return func(q *Queue) {
		if n > 0 {
			q.limit = n
		}
	}
}

// NewQueue creates an empty queue that records reviews with srsService and
// writes updated items to collection.
func NewQueue(srsService srs.Service, collection Collection, opts ...QueueOption) *Queue {
	if srsService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("srsService cannot be nil")
	}
	if collection == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("collection cannot be nil")
	}

	q := &Queue{srs: srsService, collection: collection}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Start replaces the queue with items and rewinds the cursor. Any session in
// progress is discarded. Archived items are dropped, since they cannot be
// reviewed. Starting with no reviewable items leaves the queue Empty.
func (q *Queue) Start(items []domain.MemoryItem) {
	queued := make([]domain.MemoryItem, 0, len(items))
	for _, item := range items {
		if item.Archived {
			continue
		}
		if q.limit > 0 && len(queued) == q.limit {
			break
		}
		queued = append(queued, item.Clone())
	}

	q.items = queued
	q.cursor = 0
}

// StartDue seeds the queue with the collection's items due today.
func (q *Queue) StartDue() {
	q.Start(q.srs.SelectDueToday(q.collection.Items()))
}

// State reports whether the queue has items left to review.
func (q *Queue) State() State {
	if len(q.items) == 0 {
		return StateEmpty
	}
	return StateActive
}

// Len is the number of items in the current session.
func (q *Queue) Len() int {
	return len(q.items)
}

// Cursor is the index of the current item.
func (q *Queue) Cursor() int {
	return q.cursor
}

// Remaining counts the current item and everything after it.
func (q *Queue) Remaining() int {
	return len(q.items) - q.cursor
}

// Items returns a copy of the queued items.
func (q *Queue) Items() []domain.MemoryItem {
	out := make([]domain.MemoryItem, len(q.items))
	for i := range q.items {
		out[i] = q.items[i].Clone()
	}
	return out
}

// Current returns the item under the cursor. ok is false when the queue is Empty.
func (q *Queue) Current() (item domain.MemoryItem, ok bool) {
	if q.cursor < 0 || q.cursor >= len(q.items) {
		return domain.MemoryItem{}, false
	}
	return q.items[q.cursor].Clone(), true
}

// Advance moves to the next item. Advancing past the last item clears the
// queue. It is a no-op on an Empty queue.
func (q *Queue) Advance() {
	if len(q.items) == 0 {
		return
	}
	if q.cursor < len(q.items)-1 {
		q.cursor++
		return
	}
	q.items = nil
	q.cursor = 0
}

// CompleteCurrent records a review of the current item, writes the updated
// item to the collection and advances. It returns the updated item, or
// ok=false without doing anything when there is no current item.
//
// An invalid performance panics, as in srs.Service.RecordReview.
func (q *Queue) CompleteCurrent(
	performance domain.Performance,
	timeSpentSeconds int,
) (updated domain.MemoryItem, ok bool) {
	current, ok := q.Current()
	if !ok {
		return domain.MemoryItem{}, false
	}

	updated = q.srs.RecordReview(current, performance, timeSpentSeconds)
	q.collection.Put(updated)
	q.items[q.cursor] = updated.Clone()
	q.Advance()

	return updated, true
}

// ReplaceCurrent swaps the queued copy of the current item for item, which
// must have the same ID. It reports whether the replacement happened.
func (q *Queue) ReplaceCurrent(item domain.MemoryItem) bool {
	if q.cursor < 0 || q.cursor >= len(q.items) || q.items[q.cursor].ID != item.ID {
		return false
	}
	q.items[q.cursor] = item.Clone()
	return true
}

// Snapshot captures the queue contents and cursor.
type Snapshot struct {
	items  []domain.MemoryItem
	cursor int
}

// Snapshot records the current position so it can be restored with Restore.
func (q *Queue) Snapshot() Snapshot {
	return Snapshot{items: q.Items(), cursor: q.cursor}
}

// Restore returns the queue to a previously captured snapshot. The
// collection is not touched.
func (q *Queue) Restore(s Snapshot) {
	q.items = make([]domain.MemoryItem, len(s.items))
	for i := range s.items {
		q.items[i] = s.items[i].Clone()
	}
	q.cursor = s.cursor
	if len(q.items) == 0 {
		q.items = nil
		q.cursor = 0
	}
}
