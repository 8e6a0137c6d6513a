package srs

import (
	"testing"

	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	t.Parallel()
	today := day(2024, 4, 20)
	created := today.AddDate(0, 0, -60)

	learning := newItem(t, 0, created)
	learning.NextReviewDate = today
	learning.History = []domain.ReviewRecord{
		{Date: domain.AddDays(today, -1), Performance: domain.PerformanceAgain},
		{Date: domain.AddDays(today, -2), Performance: domain.PerformanceHard},
	}

	reviewing := newItem(t, 2, created)
	reviewing.NextReviewDate = domain.AddDays(today, -3)
	reviewing.History = []domain.ReviewRecord{
		{Date: domain.AddDays(today, -3), Performance: domain.PerformanceMedium},
	}

	mastered := newItem(t, 4, created)
	mastered.NextReviewDate = domain.AddDays(today, 40)

	archived := newItem(t, 3, created)
	archived.Archived = true
	archived.NextReviewDate = today

	p := Summarize([]domain.MemoryItem{learning, reviewing, mastered, archived}, today)

	assert.Equal(t, Progress{
		Total:        4,
		Learning:     1,
		Reviewing:    1,
		Mastered:     1,
		Archived:     1,
		DueToday:     1,
		Overdue:      1,
		ReviewsToday: 0,
		TotalReviews: 3,
		Streak:       3,
	}, p)
}

func TestStreak(t *testing.T) {
	t.Parallel()
	today := day(2024, 4, 20)

	item := newItem(t, 0, today.AddDate(0, 0, -10))
	item.History = []domain.ReviewRecord{
		{Date: domain.AddDays(today, -5), Performance: domain.PerformanceHard},
		{Date: domain.AddDays(today, -1), Performance: domain.PerformanceHard},
		{Date: today, Performance: domain.PerformanceHard},
		{Date: today, Performance: domain.PerformanceEasy},
	}

	p := Summarize([]domain.MemoryItem{item}, today)
	assert.Equal(t, 2, p.Streak)
	assert.Equal(t, 2, p.ReviewsToday)

	// a gap before yesterday breaks the streak
	p = Summarize([]domain.MemoryItem{item}, domain.AddDays(today, 2))
	assert.Equal(t, 0, p.Streak)

	assert.Equal(t, Progress{}, Summarize(nil, today))
}
