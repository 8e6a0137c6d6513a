package srs

import (
	"fmt"
	"time"

	"github.com/phrazzld/recall-api/internal/domain"
)

// Result is the scheduling state produced by a single review.
type Result struct {
	Stage          int
	NextReviewDate time.Time
	Status         domain.Status
}

// clampStage keeps a stage inside the interval ladder.
func clampStage(stage int) int {
	if stage < domain.MinStage {
		return domain.MinStage
	}
	if stage > domain.MaxStage {
		return domain.MaxStage
	}
	return stage
}

// nextStage classifies a performance into a stage transition.
//
// Again always resets to stage 0. Every other rating moves the item up by
// its configured delta, capped at the top of the ladder.
//
// An unknown performance is a programming error and panics; boundary code
// is expected to validate input with domain.ParsePerformance first.
func nextStage(stage int, performance domain.Performance, params *Params) int {
	if performance == domain.PerformanceAgain {
		return domain.MinStage
	}

	delta, ok := params.StageDelta[performance]
	if !ok {
		// ALLOW-PANIC: invalid performance is a caller bug, not a business error
		panic(fmt.Sprintf("srs: unknown review performance %q", performance))
	}

	return clampStage(stage + delta)
}

// Schedule computes the new stage, due date and status for an item at the
// given stage reviewed with performance on day today.
//
// The due date is counted from the review date, not from the previous due
// date, so early and late reviews both restart the clock.
func Schedule(stage int, performance domain.Performance, today time.Time, params *Params) Result {
	newStage := nextStage(stage, performance, params)

	return Result{
		Stage:          newStage,
		NextReviewDate: domain.AddDays(today, params.IntervalFor(newStage)),
		Status:         domain.StatusForStage(newStage),
	}
}

// applyReview returns a copy of item with the review appended and the
// schedule result applied. The input item is not modified.
func applyReview(
	item domain.MemoryItem,
	performance domain.Performance,
	timeSpentSeconds int,
	now time.Time,
	params *Params,
) domain.MemoryItem {
	result := Schedule(item.Stage, performance, now, params)

	updated := item.Clone()
	updated.History = append(updated.History, domain.ReviewRecord{
		Date:             domain.Date(now),
		Performance:      performance,
		TimeSpentSeconds: timeSpentSeconds,
	})
	updated.Stage = result.Stage
	updated.NextReviewDate = result.NextReviewDate
	updated.Touch(now)

	return updated
}
