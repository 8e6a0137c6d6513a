package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Stage bounds for the fixed interval ladder.
const (
	MinStage = 0
	MaxStage = 4

	// InitialIntervalDays is the gap between capturing an item and its first review.
	InitialIntervalDays = 1
)

// MemoryItem validation errors
var (
	ErrEmptyItemID         = errors.New("memory item ID cannot be empty")
	ErrEmptyItemUserID     = errors.New("memory item user ID cannot be empty")
	ErrEmptyItemTitle      = errors.New("memory item title cannot be empty")
	ErrInvalidStage        = errors.New("memory item stage must be between 0 and 4")
	ErrInvalidTimeSpent    = errors.New("review time spent cannot be negative")
	ErrInvalidReviewRecord = errors.New("invalid review record")
)

// ReviewRecord is one immutable entry in an item's review history.
type ReviewRecord struct {
	Date             time.Time   `json:"date"`
	Performance      Performance `json:"performance"`
	TimeSpentSeconds int         `json:"time_spent_seconds"`
}

// Validate checks a single history entry.
func (r ReviewRecord) Validate() error {
	if !r.Performance.Valid() {
		return ErrInvalidPerformance
	}
	if r.TimeSpentSeconds < 0 {
		return ErrInvalidTimeSpent
	}
	if r.Date.IsZero() {
		return ErrInvalidReviewRecord
	}
	return nil
}

// MemoryItem is a unit of study material owned by a user.
//
// Title, Content and ContentType are opaque to scheduling. Stage and
// NextReviewDate are only changed by the srs package; Archived is only
// changed by Archive and Unarchive. History is append-only.
type MemoryItem struct {
	ID             uuid.UUID      `json:"id"`
	UserID         uuid.UUID      `json:"user_id"`
	CategoryID     uuid.UUID      `json:"category_id"`
	Title          string         `json:"title"`
	Content        string         `json:"content"`
	ContentType    string         `json:"content_type"`
	Stage          int            `json:"stage"`
	NextReviewDate time.Time      `json:"next_review_date"`
	Archived       bool           `json:"archived"`
	History        []ReviewRecord `json:"history"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// NewMemoryItem creates a stage-0 item due InitialIntervalDays after now.
// categoryID may be uuid.Nil for uncategorised items.
// Returns an error if validation fails.
func NewMemoryItem(
	userID, categoryID uuid.UUID,
	title, content, contentType string,
	now time.Time,
) (*MemoryItem, error) {
	now = now.UTC()
	item := &MemoryItem{
		ID:             uuid.New(),
		UserID:         userID,
		CategoryID:     categoryID,
		Title:          title,
		Content:        content,
		ContentType:    contentType,
		Stage:          MinStage,
		NextReviewDate: AddDays(now, InitialIntervalDays),
		History:        []ReviewRecord{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	return item, nil
}

// Validate checks if the MemoryItem has valid data.
// Returns an error if any field fails validation.
func (m *MemoryItem) Validate() error {
	if m.ID == uuid.Nil {
		return ErrEmptyItemID
	}

	if m.UserID == uuid.Nil {
		return ErrEmptyItemUserID
	}

	if m.Title == "" {
		return ErrEmptyItemTitle
	}

	if m.Stage < MinStage || m.Stage > MaxStage {
		return ErrInvalidStage
	}

	for _, r := range m.History {
		if err := r.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// Status derives the item's status from its stage and archive flag.
func (m *MemoryItem) Status() Status {
	if m.Archived {
		return StatusArchived
	}
	return StatusForStage(m.Stage)
}

// ReviewCount is the number of recorded reviews.
func (m *MemoryItem) ReviewCount() int {
	return len(m.History)
}

// LastReview returns the most recent history entry, if any.
func (m *MemoryItem) LastReview() (ReviewRecord, bool) {
	if len(m.History) == 0 {
		return ReviewRecord{}, false
	}
	return m.History[len(m.History)-1], true
}

// Clone returns a copy that shares no mutable state with m.
func (m MemoryItem) Clone() MemoryItem {
	c := m
	c.History = make([]ReviewRecord, len(m.History))
	copy(c.History, m.History)
	return c
}

// Archive hides the item from review. It is a no-op if already archived.
func (m *MemoryItem) Archive(now time.Time) {
	if m.Archived {
		return
	}
	m.Archived = true
	m.touch(now)
}

// Unarchive returns the item to review without changing its schedule.
func (m *MemoryItem) Unarchive(now time.Time) {
	if !m.Archived {
		return
	}
	m.Archived = false
	m.touch(now)
}

// Touch bumps UpdatedAt to now, never moving it backwards.
func (m *MemoryItem) Touch(now time.Time) {
	m.touch(now)
}

func (m *MemoryItem) touch(now time.Time) {
	now = now.UTC()
	if now.After(m.UpdatedAt) {
		m.UpdatedAt = now
	}
}
