package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/service/review"
)

// CreateItemRequest is the body of POST /api/items.
type CreateItemRequest struct {
	Title       string `json:"title"        validate:"required,max=500"`
	Content     string `json:"content"      validate:"max=100000"`
	ContentType string `json:"content_type" validate:"omitempty,max=100"`
	CategoryID  string `json:"category_id"  validate:"omitempty,uuid"`
}

// AnswerRequest is the body of the review and session-complete endpoints.
type AnswerRequest struct {
	Performance      string `json:"performance"        validate:"required,oneof=again hard medium easy"`
	TimeSpentSeconds int    `json:"time_spent_seconds" validate:"gte=0"`
}

// StartSessionRequest is the optional body of POST /api/sessions. Without
// item IDs the session holds the items due today.
type StartSessionRequest struct {
	ItemIDs []string `json:"item_ids" validate:"omitempty,dive,uuid"`
}

// ReviewRecordResponse is one history entry.
type ReviewRecordResponse struct {
	Date             string `json:"date"`
	Performance      string `json:"performance"`
	TimeSpentSeconds int    `json:"time_spent_seconds"`
}

// MemoryItemResponse is the client view of a memory item.
type MemoryItemResponse struct {
	ID             string                 `json:"id"`
	UserID         string                 `json:"user_id"`
	CategoryID     string                 `json:"category_id,omitempty"`
	Title          string                 `json:"title"`
	Content        string                 `json:"content"`
	ContentType    string                 `json:"content_type"`
	Stage          int                    `json:"stage"`
	Status         string                 `json:"status"`
	NextReviewDate string                 `json:"next_review_date"`
	Archived       bool                   `json:"archived"`
	ReviewCount    int                    `json:"review_count"`
	History        []ReviewRecordResponse `json:"history"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// ItemListResponse wraps a list of items.
type ItemListResponse struct {
	Items []MemoryItemResponse `json:"items"`
	Count int                  `json:"count"`
}

// DueItemsResponse is the body of GET /api/items/due.
type DueItemsResponse struct {
	Date  string               `json:"date"`
	Items []MemoryItemResponse `json:"items"`
	Count int                  `json:"count"`
}

// SessionResponse is the client view of a review session.
type SessionResponse struct {
	State     string              `json:"state"`
	Current   *MemoryItemResponse `json:"current,omitempty"`
	Position  int                 `json:"position"`
	Total     int                 `json:"total"`
	Remaining int                 `json:"remaining"`
}

// CompleteResponse is the body of POST /api/sessions/current/complete.
type CompleteResponse struct {
	Reviewed MemoryItemResponse `json:"reviewed"`
	Session  SessionResponse    `json:"session"`
}

func itemToResponse(item *domain.MemoryItem) MemoryItemResponse {
	resp := MemoryItemResponse{
		ID:             item.ID.String(),
		UserID:         item.UserID.String(),
		Title:          item.Title,
		Content:        item.Content,
		ContentType:    item.ContentType,
		Stage:          item.Stage,
		Status:         string(item.Status()),
		NextReviewDate: item.NextReviewDate.Format(domain.DateLayout),
		Archived:       item.Archived,
		ReviewCount:    item.ReviewCount(),
		History:        make([]ReviewRecordResponse, 0, len(item.History)),
		CreatedAt:      item.CreatedAt,
		UpdatedAt:      item.UpdatedAt,
	}
	if item.CategoryID != uuid.Nil {
		resp.CategoryID = item.CategoryID.String()
	}
	for _, rec := range item.History {
		resp.History = append(resp.History, ReviewRecordResponse{
			Date:             rec.Date.Format(domain.DateLayout),
			Performance:      string(rec.Performance),
			TimeSpentSeconds: rec.TimeSpentSeconds,
		})
	}
	return resp
}

func itemsToResponse(items []domain.MemoryItem) []MemoryItemResponse {
	out := make([]MemoryItemResponse, 0, len(items))
	for i := range items {
		out = append(out, itemToResponse(&items[i]))
	}
	return out
}

func sessionToResponse(view review.SessionView) SessionResponse {
	resp := SessionResponse{
		State:     string(view.State),
		Position:  view.Position,
		Total:     view.Total,
		Remaining: view.Remaining,
	}
	if view.Current != nil {
		current := itemToResponse(view.Current)
		resp.Current = &current
	}
	return resp
}
