package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
)

// Event types published by the review service.
const (
	TypeReviewRecorded   = "review.recorded"
	TypeItemArchived     = "item.archived"
	TypeItemUnarchived   = "item.unarchived"
	TypeSessionCompleted = "session.completed"
)

// Event is a single occurrence published to handlers. Payload holds the
// type-specific data serialized as JSON.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the Type* constants
	Type string `json:"type"`

	// UserID identifies the user whose data changed
	UserID uuid.UUID `json:"user_id"`

	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// ReviewRecordedPayload describes the outcome of one review.
type ReviewRecordedPayload struct {
	ItemID           uuid.UUID          `json:"item_id"`
	Performance      domain.Performance `json:"performance"`
	TimeSpentSeconds int                `json:"time_spent_seconds"`
	PreviousStage    int                `json:"previous_stage"`
	Stage            int                `json:"stage"`
	Status           domain.Status      `json:"status"`
	NextReviewDate   string             `json:"next_review_date"`
}

// ItemPayload identifies the item affected by an archive toggle.
type ItemPayload struct {
	ItemID uuid.UUID `json:"item_id"`
}

// SessionCompletedPayload summarises a session that ran to the end.
type SessionCompletedPayload struct {
	Reviewed int `json:"reviewed"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates a new Event with the specified type and payload.
func NewEvent(eventType string, userID uuid.UUID, payload interface{}, now time.Time) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		UserID:    userID,
		Payload:   payloadBytes,
		CreatedAt: now.UTC(),
	}, nil
}

// NewReviewRecordedEvent builds a review.recorded event from the item before
// and after the review.
func NewReviewRecordedEvent(before, after domain.MemoryItem, now time.Time) (*Event, error) {
	last, _ := after.LastReview()
	return NewEvent(TypeReviewRecorded, after.UserID, ReviewRecordedPayload{
		ItemID:           after.ID,
		Performance:      last.Performance,
		TimeSpentSeconds: last.TimeSpentSeconds,
		PreviousStage:    before.Stage,
		Stage:            after.Stage,
		Status:           after.Status(),
		NextReviewDate:   after.NextReviewDate.Format(domain.DateLayout),
	}, now)
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *Event) error
}

// EventHandlerFunc adapts an ordinary function to EventHandler.
type EventHandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent calls f(ctx, event).
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *Event) error
}
