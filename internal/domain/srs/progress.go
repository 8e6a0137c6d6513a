package srs

import (
	"time"

	"github.com/phrazzld/recall-api/internal/domain"
)

// Progress summarises a user's collection on a reference date.
type Progress struct {
	Total        int `json:"total"`
	Learning     int `json:"learning"`
	Reviewing    int `json:"reviewing"`
	Mastered     int `json:"mastered"`
	Archived     int `json:"archived"`
	DueToday     int `json:"due_today"`
	Overdue      int `json:"overdue"`
	ReviewsToday int `json:"reviews_today"`
	TotalReviews int `json:"total_reviews"`
	// Streak counts consecutive review days ending today, or ending
	// yesterday when nothing has been reviewed yet today.
	Streak int `json:"streak"`
}

// Summarize computes a Progress for items as of today.
func Summarize(items []domain.MemoryItem, today time.Time) Progress {
	today = domain.Date(today)

	var p Progress
	reviewDays := make(map[time.Time]struct{})

	for i := range items {
		item := &items[i]
		p.Total++

		switch item.Status() {
		case domain.StatusLearning:
			p.Learning++
		case domain.StatusReviewing:
			p.Reviewing++
		case domain.StatusMastered:
			p.Mastered++
		case domain.StatusArchived:
			p.Archived++
		}

		if IsDue(item, today) {
			p.DueToday++
		}
		if IsOverdue(item, today) {
			p.Overdue++
		}

		for _, r := range item.History {
			day := domain.Date(r.Date)
			reviewDays[day] = struct{}{}
			p.TotalReviews++
			if day.Equal(today) {
				p.ReviewsToday++
			}
		}
	}

	p.Streak = streak(reviewDays, today)
	return p
}

func streak(days map[time.Time]struct{}, today time.Time) int {
	day := today
	if _, ok := days[day]; !ok {
		day = domain.AddDays(today, -1)
	}

	n := 0
	for {
		if _, ok := days[day]; !ok {
			return n
		}
		n++
		day = domain.AddDays(day, -1)
	}
}
