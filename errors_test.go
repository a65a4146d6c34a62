package idbschema_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/idbschema"
)

func TestStoreNotFoundError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := idbschema.NewStoreNotFoundError("User", 0.2)
		assert.Equal(t, "idbschema: store User not found in version 0.2", err.Error())
		assert.Equal(t, "User", err.Store())
		assert.Equal(t, 0.2, err.Version())
	})

	t.Run("Is", func(t *testing.T) {
		err := idbschema.NewStoreNotFoundError("Todo", 0.1)
		assert.True(t, errors.Is(err, idbschema.ErrStoreNotFound))
	})

	t.Run("IsStoreNotFound", func(t *testing.T) {
		err := idbschema.NewStoreNotFoundError("Tag", 0.1)
		assert.True(t, idbschema.IsStoreNotFound(err))

		// Wrapped error
		wrapped := fmt.Errorf("wrapper: %w", err)
		assert.True(t, idbschema.IsStoreNotFound(wrapped))

		// Sentinel error
		assert.True(t, idbschema.IsStoreNotFound(idbschema.ErrStoreNotFound))

		// Non-matching error
		assert.False(t, idbschema.IsStoreNotFound(errors.New("other error")))
		assert.False(t, idbschema.IsStoreNotFound(nil))
	})
}

func TestCacheError(t *testing.T) {
	cause := errors.New("connection refused")
	err := &idbschema.CacheError{Op: "get", Key: "k1", Err: cause}
	assert.Equal(t, "idbschema: cache get k1: connection refused", err.Error())
	assert.True(t, errors.Is(err, cause))
	assert.True(t, idbschema.IsCacheError(fmt.Errorf("wrapper: %w", err)))
	assert.False(t, idbschema.IsCacheError(cause))
	assert.False(t, idbschema.IsCacheError(nil))
}
