package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntityErrorsWrapGenericErrors(t *testing.T) {
	t.Parallel()

	assert.True(t, errors.Is(ErrMemoryItemNotFound, ErrNotFound))
	assert.True(t, IsNotFoundError(fmt.Errorf("lookup: %w", ErrMemoryItemNotFound)))
	assert.False(t, IsNotFoundError(ErrDuplicate))

	assert.True(t, IsConflictError(fmt.Errorf("update: %w", ErrConflict)))
	assert.False(t, IsConflictError(ErrNotFound))
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := NewStoreError("memory_item", "update", "failed to update item", cause)

	assert.Equal(t, "update operation on memory_item failed: failed to update item: connection reset", err.Error())
	assert.True(t, errors.Is(err, cause))

	var storeErr *StoreError
	assert.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &storeErr))
	assert.Equal(t, "memory_item", storeErr.Entity)

	bare := NewStoreError("memory_item", "delete", "no rows", nil)
	assert.Equal(t, "delete operation on memory_item failed: no rows", bare.Error())
	assert.Nil(t, bare.Unwrap())
}
