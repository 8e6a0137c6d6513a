package srs

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newItem(t *testing.T, stage int, created time.Time) domain.MemoryItem {
	t.Helper()
	item, err := domain.NewMemoryItem(uuid.New(), uuid.New(), "item", "content", "text", created)
	require.NoError(t, err)
	item.Stage = stage
	return *item
}

func TestNewService(t *testing.T) {
	t.Parallel()
	service := NewService()
	require.NotNil(t, service)

	impl, ok := service.(*defaultService)
	require.True(t, ok, "Expected *defaultService type")
	assert.NotNil(t, impl.params)
	assert.NotNil(t, impl.now)
}

func TestServiceUsesInjectedClock(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 1, 1, 14, 0, 0, 0, time.UTC)
	service := NewService(WithClock(domain.FixedClock(now)))

	assert.Equal(t, day(2024, 1, 1), service.Today())

	result := service.Schedule(newItem(t, 0, now.Add(-48*time.Hour)), domain.PerformanceMedium)
	assert.Equal(t, Result{Stage: 1, NextReviewDate: day(2024, 1, 5), Status: domain.StatusReviewing}, result)
}

func TestServiceWithParams(t *testing.T) {
	t.Parallel()
	params, err := NewParams(ParamsConfig{IntervalDays: []int{2, 3, 4, 5, 6}})
	require.NoError(t, err)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	service := NewService(WithClock(domain.FixedClock(now)), WithParams(params))

	result := service.Schedule(newItem(t, 0, now), domain.PerformanceAgain)
	assert.Equal(t, day(2024, 1, 3), result.NextReviewDate)
}

func TestRecordReview(t *testing.T) {
	t.Parallel()
	reviewTime := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	service := NewService(WithClock(domain.FixedClock(reviewTime)))

	t.Run("scenario stage 0 medium", func(t *testing.T) {
		item := newItem(t, 0, reviewTime.Add(-24*time.Hour))
		updated := service.RecordReview(item, domain.PerformanceMedium, 20)

		assert.Equal(t, 1, updated.Stage)
		assert.Equal(t, day(2024, 1, 5), updated.NextReviewDate)
		assert.Equal(t, domain.StatusReviewing, updated.Status())
		assert.Equal(t, reviewTime, updated.UpdatedAt)
		require.Len(t, updated.History, 1)
		assert.Equal(t, 20, updated.History[0].TimeSpentSeconds)
	})

	t.Run("scenario stage 3 again", func(t *testing.T) {
		item := newItem(t, 3, reviewTime.Add(-24*time.Hour))
		updated := service.RecordReview(item, domain.PerformanceAgain, 5)

		assert.Equal(t, 0, updated.Stage)
		assert.Equal(t, day(2024, 1, 2), updated.NextReviewDate)
		assert.Equal(t, domain.StatusLearning, updated.Status())
	})

	t.Run("scenario stage 2 easy", func(t *testing.T) {
		item := newItem(t, 2, reviewTime.Add(-24*time.Hour))
		updated := service.RecordReview(item, domain.PerformanceEasy, 5)

		assert.Equal(t, 4, updated.Stage)
		assert.Equal(t, domain.AddDays(reviewTime, 90), updated.NextReviewDate)
		assert.Equal(t, domain.StatusMastered, updated.Status())
	})

	t.Run("negative time spent is floored at zero", func(t *testing.T) {
		updated := service.RecordReview(newItem(t, 0, reviewTime), domain.PerformanceHard, -10)
		assert.Equal(t, 0, updated.History[0].TimeSpentSeconds)
	})

	t.Run("invalid performance panics", func(t *testing.T) {
		assert.Panics(t, func() {
			service.RecordReview(newItem(t, 0, reviewTime), domain.Performance("perfect"), 1)
		})
	})

	t.Run("archived item panics", func(t *testing.T) {
		item := newItem(t, 1, reviewTime)
		item.Archived = true
		assert.Panics(t, func() {
			service.RecordReview(item, domain.PerformanceEasy, 1)
		})
	})
}

func TestRecordReviewHistoryIsAppendOnly(t *testing.T) {
	t.Parallel()
	start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	current := start
	service := NewService(WithClock(func() time.Time { return current }))

	item := newItem(t, 0, start.Add(-time.Hour))
	var snapshots [][]domain.ReviewRecord

	perfs := []domain.Performance{
		domain.PerformanceMedium,
		domain.PerformanceEasy,
		domain.PerformanceAgain,
		domain.PerformanceHard,
		domain.PerformanceEasy,
	}
	for i, perf := range perfs {
		current = start.AddDate(0, 0, i*3)
		before := item.Clone().History
		item = service.RecordReview(item, perf, i)

		require.Len(t, item.History, len(before)+1)
		assert.Equal(t, before, item.History[:len(before)], "prior entries must be unchanged")
		assert.Equal(t, domain.StatusForStage(item.Stage), item.Status())
		assert.Equal(t, domain.AddDays(item.UpdatedAt, DefaultIntervalTable[item.Stage]), item.NextReviewDate)

		snapshots = append(snapshots, item.Clone().History)
	}

	for i, snap := range snapshots {
		assert.Equal(t, snap, item.History[:i+1])
	}
}

func TestRecordReviewUpdatedAtMonotonic(t *testing.T) {
	t.Parallel()
	created := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	// clock behind the item's last update
	service := NewService(WithClock(domain.FixedClock(created.Add(-time.Minute))))

	updated := service.RecordReview(newItem(t, 0, created), domain.PerformanceHard, 3)
	assert.Equal(t, created, updated.UpdatedAt)
}
