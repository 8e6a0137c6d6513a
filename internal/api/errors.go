package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/recall-api/internal/api/shared"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/service/auth"
	"github.com/phrazzld/recall-api/internal/service/review"
	"github.com/phrazzld/recall-api/internal/store"
)

// ErrInvalidRequestBody marks a body that is not a single well-formed JSON
// object of the expected shape.
var ErrInvalidRequestBody = errors.New("invalid request body")

// wrapDecodeError tags a shared.DecodeJSON failure for status mapping.
func wrapDecodeError(err error) error {
	if errors.Is(err, shared.ErrEmptyBody) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrInvalidRequestBody, err)
}

// MapErrorToStatusCode maps service, store and domain errors to an HTTP
// status. Anything unrecognised is a 500.
func MapErrorToStatusCode(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	case errors.Is(err, review.ErrItemNotOwned):
		return http.StatusForbidden

	case errors.Is(err, review.ErrItemNotFound),
		errors.Is(err, store.ErrMemoryItemNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, review.ErrConcurrentModification),
		errors.Is(err, store.ErrConflict),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, review.ErrItemArchived):
		return http.StatusUnprocessableEntity

	case errors.Is(err, review.ErrInvalidItem),
		errors.Is(err, review.ErrInvalidPerformance),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, domain.ErrInvalidPerformance),
		errors.Is(err, shared.ErrEmptyBody),
		errors.Is(err, ErrInvalidRequestBody),
		errors.As(err, &verrs):
		return http.StatusBadRequest

	case errors.Is(err, review.ErrNoActiveSession):
		return http.StatusNoContent

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-safe message for err. It never
// includes the error text itself.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"
	case errors.Is(err, domain.ErrUnauthorized):
		return "User ID not found or invalid"

	case errors.Is(err, review.ErrItemNotOwned):
		return "You do not own this memory item"

	case errors.Is(err, review.ErrItemNotFound),
		errors.Is(err, store.ErrMemoryItemNotFound):
		return "Memory item not found"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, review.ErrConcurrentModification),
		errors.Is(err, store.ErrConflict):
		return "Memory item was modified concurrently, please retry"
	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"

	case errors.Is(err, review.ErrItemArchived):
		return "Memory item is archived"

	case errors.As(err, &verrs):
		return SanitizeValidationError(err)
	case errors.Is(err, review.ErrInvalidPerformance),
		errors.Is(err, domain.ErrInvalidPerformance):
		return "Invalid performance: must be one of again, hard, medium, easy"
	case errors.Is(err, domain.ErrInvalidDate):
		return "Invalid date: expected YYYY-MM-DD"
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID format"
	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"
	case errors.Is(err, ErrInvalidRequestBody):
		return "Invalid request body"
	case errors.Is(err, review.ErrInvalidItem),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation):
		return "Invalid memory item data"

	case errors.Is(err, review.ErrNoActiveSession):
		return "No active review session"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns a validator error into a message naming the
// first failing field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}
	fe := verrs[0]
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "gte":
		return "must not be negative"
	case "uuid":
		return "invalid ID format"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the mapped status and safe message for err. If
// message is non-empty it replaces the safe message on 5xx responses.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := MapErrorToStatusCode(err)
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	safe := GetSafeErrorMessage(err)
	if message != "" && status == http.StatusInternalServerError {
		safe = message
	}
	shared.RespondWithErrorAndLog(w, r, status, safe, err)
}
