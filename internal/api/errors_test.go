package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/recall-api/internal/api/shared"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/service/auth"
	"github.com/phrazzld/recall-api/internal/service/review"
	"github.com/phrazzld/recall-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized},
		{"not owned", review.ErrItemNotOwned, http.StatusForbidden},
		{"item not found", review.ErrItemNotFound, http.StatusNotFound},
		{"store not found", fmt.Errorf("get: %w", store.ErrMemoryItemNotFound), http.StatusNotFound},
		{"concurrent", fmt.Errorf("%w: stale", review.ErrConcurrentModification), http.StatusConflict},
		{"archived", review.ErrItemArchived, http.StatusUnprocessableEntity},
		{"invalid item", fmt.Errorf("%w: title", review.ErrInvalidItem), http.StatusBadRequest},
		{"invalid performance", review.ErrInvalidPerformance, http.StatusBadRequest},
		{"invalid date", fmt.Errorf("%w: x", domain.ErrInvalidDate), http.StatusBadRequest},
		{"empty body", shared.ErrEmptyBody, http.StatusBadRequest},
		{"bad body", wrapDecodeError(errors.New("unexpected EOF")), http.StatusBadRequest},
		{"no session", review.ErrNoActiveSession, http.StatusNoContent},
		{"service error", review.NewServiceError("list_items", "failed", errors.New("boom")), http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage_DoesNotLeak(t *testing.T) {
	err := review.NewServiceError("submit_review", "failed to save",
		errors.New(`pq: UPDATE memory_items SET stage = 3 WHERE id = '9f1c' failed at /srv/recall/db.go:42`))

	msg := GetSafeErrorMessage(err)

	assert.Equal(t, "An unexpected error occurred", msg)
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
	assert.Equal(t, "Memory item not found", GetSafeErrorMessage(review.ErrItemNotFound))
	assert.Equal(t, "Token expired", GetSafeErrorMessage(auth.ErrExpiredToken))
}

func TestHandleAPIError(t *testing.T) {
	t.Run("server error uses fallback message", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HandleAPIError(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("boom"), "Failed to list memory items")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "Failed to list memory items")
	})

	t.Run("client error keeps safe message", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HandleAPIError(rec, httptest.NewRequest(http.MethodGet, "/", nil), review.ErrItemNotOwned, "Failed")
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "You do not own this memory item")
	})

	t.Run("no content writes no body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HandleAPIError(rec, httptest.NewRequest(http.MethodGet, "/", nil), review.ErrNoActiveSession, "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Zero(t, rec.Body.Len())
	})
}

func TestSanitizeValidationError(t *testing.T) {
	err := shared.ValidateRequest(&AnswerRequest{Performance: "good"})
	assert.Equal(t, "Invalid Performance: invalid value", SanitizeValidationError(err))
	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("other")))
}
