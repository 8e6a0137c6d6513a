package review

import (
	"errors"
	"fmt"
)

// Service errors. Callers check them with errors.Is; the API layer maps
// each to an HTTP status.
var (
	// ErrItemNotFound indicates that the item does not exist.
	ErrItemNotFound = errors.New("memory item not found")

	// ErrItemNotOwned indicates that the user does not own the item.
	ErrItemNotOwned = errors.New("unauthorized access: memory item not owned by user")

	// ErrItemArchived indicates an attempt to review an archived item.
	ErrItemArchived = errors.New("memory item is archived")

	// ErrInvalidItem wraps domain validation failures on create.
	ErrInvalidItem = errors.New("invalid memory item")

	// ErrInvalidPerformance indicates a performance rating outside again, hard, medium, easy.
	ErrInvalidPerformance = errors.New("invalid performance")

	// ErrNoActiveSession indicates that the user has no item left to review
	// in the current session.
	ErrNoActiveSession = errors.New("no active review session")

	// ErrConcurrentModification indicates the item changed while it was
	// being reviewed. The caller may retry.
	ErrConcurrentModification = errors.New("memory item was modified concurrently")
)

// ServiceError wraps unexpected errors from the review service with the
// operation that failed.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "submit_review", "start_session")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError returns a new ServiceError for operation.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// isExpected reports whether err is one of the sentinels above, which are
// returned to callers unwrapped.
func isExpected(err error) bool {
	return errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrItemNotOwned) ||
		errors.Is(err, ErrItemArchived) ||
		errors.Is(err, ErrInvalidItem) ||
		errors.Is(err, ErrInvalidPerformance) ||
		errors.Is(err, ErrNoActiveSession) ||
		errors.Is(err, ErrConcurrentModification)
}
