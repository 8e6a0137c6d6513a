package review

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/domain/srs"
	"github.com/phrazzld/recall-api/internal/session"
)

// NewItem holds the caller-supplied fields of an item being captured.
type NewItem struct {
	CategoryID  uuid.UUID
	Title       string
	Content     string
	ContentType string
}

// Answer is a single review outcome.
type Answer struct {
	Performance      domain.Performance
	TimeSpentSeconds int
}

// SessionView is a read-only picture of a user's review session.
type SessionView struct {
	State     session.State      `json:"state"`
	Current   *domain.MemoryItem `json:"current,omitempty"`
	Position  int                `json:"position"`
	Total     int                `json:"total"`
	Remaining int                `json:"remaining"`
}

// CompleteResult is returned after completing the current session item.
type CompleteResult struct {
	Reviewed domain.MemoryItem `json:"reviewed"`
	Session  SessionView       `json:"session"`
}

// Service provides the operations behind the review API. Every method
// operates on behalf of userID and refuses items owned by another user.
type Service interface {
	// CreateItem captures a new stage-0 item due tomorrow.
	// Returns ErrInvalidItem if the fields fail validation.
	CreateItem(ctx context.Context, userID uuid.UUID, item NewItem) (*domain.MemoryItem, error)

	// GetItem returns one item.
	// Returns ErrItemNotFound or ErrItemNotOwned.
	GetItem(ctx context.Context, userID, itemID uuid.UUID) (*domain.MemoryItem, error)

	// ListItems returns all of the user's items in creation order.
	ListItems(ctx context.Context, userID uuid.UUID) ([]domain.MemoryItem, error)

	// ArchiveItem hides an item from review without touching its schedule.
	ArchiveItem(ctx context.Context, userID, itemID uuid.UUID) (*domain.MemoryItem, error)

	// UnarchiveItem returns an archived item to review.
	UnarchiveItem(ctx context.Context, userID, itemID uuid.UUID) (*domain.MemoryItem, error)

	// DueItems returns the user's items due exactly on date, in creation order.
	DueItems(ctx context.Context, userID uuid.UUID, date time.Time) ([]domain.MemoryItem, error)

	// SubmitReview records a review of a single item outside any session.
	// Returns ErrItemArchived for archived items, ErrInvalidPerformance for
	// unknown ratings and ErrConcurrentModification if the item changed
	// during the update.
	SubmitReview(ctx context.Context, userID, itemID uuid.UUID, answer Answer) (*domain.MemoryItem, error)

	// StartSession replaces the user's session. With no itemIDs the session
	// holds the items due today; otherwise the given items in the given order.
	// Archived items are skipped.
	StartSession(ctx context.Context, userID uuid.UUID, itemIDs []uuid.UUID) (SessionView, error)

	// CurrentSession describes the user's session. A user without one gets
	// an Empty view.
	CurrentSession(ctx context.Context, userID uuid.UUID) (SessionView, error)

	// CompleteCurrent reviews the current session item and advances.
	// Returns ErrNoActiveSession when the session is Empty.
	CompleteCurrent(ctx context.Context, userID uuid.UUID, answer Answer) (*CompleteResult, error)

	// AdvanceSession skips the current item without recording a review.
	AdvanceSession(ctx context.Context, userID uuid.UUID) (SessionView, error)

	// Progress summarises the user's items as of today.
	Progress(ctx context.Context, userID uuid.UUID) (srs.Progress, error)

	// Today is the service's current calendar date.
	Today() time.Time
}
