package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_UnwrapsToKind(t *testing.T) {
	err := NewError(ErrCapacityExceeded, "Auditorium capacity has been reached")

	assert.True(t, errors.Is(err, ErrCapacityExceeded))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "Auditorium capacity has been reached", err.Error())
}

func TestKind(t *testing.T) {
	wrapped := fmt.Errorf("book: %w", Constraint("No uses remaining"))

	assert.Equal(t, ErrConstraintViolation, Kind(wrapped))
	assert.Equal(t, ErrNotFound, Kind(ErrNotFound))
	assert.Nil(t, Kind(errors.New("boom")))
}
