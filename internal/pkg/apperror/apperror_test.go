package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindMatching(t *testing.T) {
	errSlot := New(KindConflict, "SLOT_UNAVAILABLE", "slot no longer available")

	wrapped := fmt.Errorf("create booking: %w", errSlot)

	assert.ErrorIs(t, wrapped, errSlot)
	assert.ErrorIs(t, wrapped, ErrConflict)
	assert.False(t, errors.Is(wrapped, ErrGuard))
}

func TestWrapfKeepsSentinel(t *testing.T) {
	errTransition := New(KindGuard, "INVALID_TRANSITION", "invalid status transition")

	err := Wrapf(errTransition, "cannot confirm booking in status %s", "cancelled")

	assert.ErrorIs(t, err, errTransition)
	assert.ErrorIs(t, err, ErrGuard)
	assert.Contains(t, err.Error(), "cannot confirm booking in status cancelled")

	ae, ok := As(err)
	assert.True(t, ok)
	assert.Equal(t, "INVALID_TRANSITION", ae.Code)
}

func TestValidationMessageListsFields(t *testing.T) {
	err := Validation(map[string]string{"start_time": "must be HH:MM", "date": "required"})

	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "validation failed (date: required; start_time: must be HH:MM)", err.Error())

	kind, ok := KindOf(fmt.Errorf("wrap: %w", err))
	assert.True(t, ok)
	assert.Equal(t, KindValidation, kind)
}
