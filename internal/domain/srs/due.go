package srs

import (
	"time"

	"github.com/phrazzld/recall-api/internal/domain"
)

// IsDue reports whether item should be reviewed on referenceDate.
//
// Only an exact date match counts. An item whose due date has passed stays
// out of the due-set; there is no backlog compaction.
func IsDue(item *domain.MemoryItem, referenceDate time.Time) bool {
	return !item.Archived && domain.SameDate(item.NextReviewDate, referenceDate)
}

// SelectDue filters items to those due on referenceDate, preserving the
// caller's order. It never returns nil.
func SelectDue(items []domain.MemoryItem, referenceDate time.Time) []domain.MemoryItem {
	due := make([]domain.MemoryItem, 0, len(items))
	for i := range items {
		if IsDue(&items[i], referenceDate) {
			due = append(due, items[i])
		}
	}
	return due
}

// IsOverdue reports whether an unarchived item's due date is before referenceDate.
// Overdue items are never selected by SelectDue; this exists for reporting.
func IsOverdue(item *domain.MemoryItem, referenceDate time.Time) bool {
	return !item.Archived && domain.Date(item.NextReviewDate).Before(domain.Date(referenceDate))
}
