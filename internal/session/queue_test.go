package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/domain/srs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reviewTime = time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

func testService() srs.Service {
	return srs.NewService(srs.WithClock(domain.FixedClock(reviewTime)))
}

func dueItem(t *testing.T, title string, due time.Time) domain.MemoryItem {
	t.Helper()
	item, err := domain.NewMemoryItem(uuid.New(), uuid.Nil, title, "", "text", reviewTime.AddDate(0, 0, -20))
	require.NoError(t, err)
	item.NextReviewDate = domain.Date(due)
	return *item
}

func TestNewQueueIsEmpty(t *testing.T) {
	t.Parallel()
	q := NewQueue(testService(), NewSliceCollection(nil))

	assert.Equal(t, StateEmpty, q.State())
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, 0, q.Cursor())
	_, ok := q.Current()
	assert.False(t, ok)
}

func TestNewQueuePanicsOnNilDependencies(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { NewQueue(nil, NewSliceCollection(nil)) })
	assert.Panics(t, func() { NewQueue(testService(), nil) })
}

func TestStartDueSelectsTodaysItems(t *testing.T) {
	t.Parallel()
	a := dueItem(t, "a", reviewTime)
	b := dueItem(t, "b", reviewTime.AddDate(0, 0, 1))
	c := dueItem(t, "c", reviewTime)
	c.Archived = true
	d := dueItem(t, "d", reviewTime)

	q := NewQueue(testService(), NewSliceCollection([]domain.MemoryItem{a, b, c, d}))
	q.StartDue()

	assert.Equal(t, StateActive, q.State())
	require.Equal(t, 2, q.Len())
	items := q.Items()
	assert.Equal(t, a.ID, items[0].ID)
	assert.Equal(t, d.ID, items[1].ID)
}

func TestStartRestartDiscardsPreviousSession(t *testing.T) {
	t.Parallel()
	a := dueItem(t, "a", reviewTime)
	b := dueItem(t, "b", reviewTime)
	c := dueItem(t, "c", reviewTime)

	q := NewQueue(testService(), NewSliceCollection(nil))
	q.Start([]domain.MemoryItem{a, b})
	q.Advance()
	require.Equal(t, 1, q.Cursor())

	q.Start([]domain.MemoryItem{c})
	assert.Equal(t, 0, q.Cursor())
	require.Equal(t, 1, q.Len())
	current, ok := q.Current()
	require.True(t, ok)
	assert.Equal(t, c.ID, current.ID)
}

func TestStartSkipsArchivedAndHonoursLimit(t *testing.T) {
	t.Parallel()
	a := dueItem(t, "a", reviewTime)
	b := dueItem(t, "b", reviewTime)
	b.Archived = true
	c := dueItem(t, "c", reviewTime)
	d := dueItem(t, "d", reviewTime)

	q := NewQueue(testService(), NewSliceCollection(nil), WithLimit(2))
	q.Start([]domain.MemoryItem{a, b, c, d})

	items := q.Items()
	require.Len(t, items, 2)
	assert.Equal(t, a.ID, items[0].ID)
	assert.Equal(t, c.ID, items[1].ID)
}

func TestStartWithNothingStaysEmpty(t *testing.T) {
	t.Parallel()
	q := NewQueue(testService(), NewSliceCollection(nil))
	q.Start(nil)
	assert.Equal(t, StateEmpty, q.State())

	q.StartDue()
	assert.Equal(t, StateEmpty, q.State())
}

func TestAdvanceExhaustsQueue(t *testing.T) {
	t.Parallel()

	for n := 1; n <= 5; n++ {
		var items []domain.MemoryItem
		for i := 0; i < n; i++ {
			items = append(items, dueItem(t, "item", reviewTime))
		}

		q := NewQueue(testService(), NewSliceCollection(nil))
		q.Start(items)

		for i := 0; i < n; i++ {
			assert.Equal(t, StateActive, q.State())
			assert.Equal(t, i, q.Cursor())
			assert.Equal(t, n-i, q.Remaining())
			q.Advance()
		}

		assert.Equal(t, StateEmpty, q.State(), "queue of %d should be empty", n)
		assert.Equal(t, 0, q.Cursor())
		assert.Equal(t, 0, q.Len())
	}
}

func TestEmptyQueueOperationsAreNoOps(t *testing.T) {
	t.Parallel()
	collection := NewSliceCollection(nil)
	q := NewQueue(testService(), collection)

	q.Advance()
	assert.Equal(t, StateEmpty, q.State())
	assert.Equal(t, 0, q.Cursor())

	updated, ok := q.CompleteCurrent(domain.PerformanceEasy, 10)
	assert.False(t, ok)
	assert.Equal(t, domain.MemoryItem{}, updated)
	assert.Empty(t, collection.Items())
}

func TestCompleteAllDueItems(t *testing.T) {
	t.Parallel()
	a := dueItem(t, "a", reviewTime)
	b := dueItem(t, "b", reviewTime)
	c := dueItem(t, "c", reviewTime)
	other := dueItem(t, "other", reviewTime.AddDate(0, 0, 2))

	collection := NewSliceCollection([]domain.MemoryItem{a, other, b, c})
	q := NewQueue(testService(), collection)
	q.StartDue()
	require.Equal(t, 3, q.Len())

	perfs := []domain.Performance{
		domain.PerformanceMedium,
		domain.PerformanceAgain,
		domain.PerformanceEasy,
	}
	for i, perf := range perfs {
		updated, ok := q.CompleteCurrent(perf, 30+i)
		require.True(t, ok)
		require.Len(t, updated.History, 1)
		assert.Equal(t, perf, updated.History[0].Performance)
	}

	assert.Equal(t, StateEmpty, q.State())
	assert.Equal(t, 0, q.Cursor())

	for _, id := range []uuid.UUID{a.ID, b.ID, c.ID} {
		stored, ok := collection.Get(id)
		require.True(t, ok)
		assert.Len(t, stored.History, 1, "item %s should carry one review", stored.Title)
		assert.Equal(t, reviewTime, stored.UpdatedAt)
	}

	untouched, ok := collection.Get(other.ID)
	require.True(t, ok)
	assert.Empty(t, untouched.History)

	storedA, _ := collection.Get(a.ID)
	assert.Equal(t, 1, storedA.Stage)
	storedB, _ := collection.Get(b.ID)
	assert.Equal(t, 0, storedB.Stage)
	storedC, _ := collection.Get(c.ID)
	assert.Equal(t, 2, storedC.Stage)

	// reviewed items are no longer due today
	q.StartDue()
	assert.Equal(t, StateEmpty, q.State())
}

func TestCompleteCurrentInvalidPerformancePanics(t *testing.T) {
	t.Parallel()
	q := NewQueue(testService(), NewSliceCollection(nil))
	q.Start([]domain.MemoryItem{dueItem(t, "a", reviewTime)})

	assert.Panics(t, func() {
		q.CompleteCurrent(domain.Performance("excellent"), 1)
	})
}

func TestSliceCollectionIsolation(t *testing.T) {
	t.Parallel()
	item := dueItem(t, "a", reviewTime)
	collection := NewSliceCollection([]domain.MemoryItem{item})

	items := collection.Items()
	items[0].Title = "changed"
	items[0].History = append(items[0].History, domain.ReviewRecord{})

	stored, ok := collection.Get(item.ID)
	require.True(t, ok)
	assert.Equal(t, "a", stored.Title)
	assert.Empty(t, stored.History)

	_, ok = collection.Get(uuid.New())
	assert.False(t, ok)
}

func TestReplaceCurrent(t *testing.T) {
	t.Parallel()
	a := dueItem(t, "a", reviewTime)
	b := dueItem(t, "b", reviewTime)

	q := NewQueue(testService(), NewSliceCollection(nil))
	assert.False(t, q.ReplaceCurrent(a), "empty queue has no current item")

	q.Start([]domain.MemoryItem{a, b})
	assert.False(t, q.ReplaceCurrent(b), "id must match the current item")

	fresh := a.Clone()
	fresh.Title = "a (edited)"
	fresh.Stage = 2
	require.True(t, q.ReplaceCurrent(fresh))

	current, ok := q.Current()
	require.True(t, ok)
	assert.Equal(t, "a (edited)", current.Title)

	updated, ok := q.CompleteCurrent(domain.PerformanceHard, 0)
	require.True(t, ok)
	assert.Equal(t, 3, updated.Stage)
}

func TestSnapshotRestore(t *testing.T) {
	t.Parallel()
	a := dueItem(t, "a", reviewTime)
	b := dueItem(t, "b", reviewTime)

	q := NewQueue(testService(), NewSliceCollection(nil))
	q.Start([]domain.MemoryItem{a, b})
	q.Advance()

	snap := q.Snapshot()
	_, ok := q.CompleteCurrent(domain.PerformanceEasy, 5)
	require.True(t, ok)
	require.Equal(t, StateEmpty, q.State())

	q.Restore(snap)
	assert.Equal(t, StateActive, q.State())
	assert.Equal(t, 1, q.Cursor())
	current, ok := q.Current()
	require.True(t, ok)
	assert.Equal(t, b.ID, current.ID)
	assert.Empty(t, current.History)

	q.Restore(Snapshot{})
	assert.Equal(t, StateEmpty, q.State())
	assert.Equal(t, 0, q.Cursor())
}
