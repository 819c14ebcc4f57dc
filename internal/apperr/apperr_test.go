package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindsMatchThroughWrapping(t *testing.T) {
	err := fmt.Errorf("create sale: %w", InsufficientStock(2, 5))

	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, ErrInsufficientStock, KindOf(err))
	assert.Contains(t, err.Error(), "2 available, 5 requested")
}

func TestStorageKeepsTypedErrors(t *testing.T) {
	denied := Denied("other company")
	assert.Same(t, denied, Storage(denied))

	cause := errors.New("connection reset")
	wrapped := Storage(cause)
	assert.True(t, errors.Is(wrapped, ErrStorage))
	assert.True(t, errors.Is(wrapped, cause))
	assert.Nil(t, Storage(nil))
}

func TestKindOfUntyped(t *testing.T) {
	assert.Equal(t, ErrStorage, KindOf(errors.New("boom")))
	assert.Equal(t, ErrDuplicateKey, KindOf(Duplicate("code")))
}
