package subrequest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransition(t *testing.T) {
	assert.NoError(t, StatusOpen.Transition(StatusAccepted))
	assert.NoError(t, StatusOpen.Transition(StatusCancelled))
	assert.ErrorIs(t, StatusOpen.Transition(StatusOpen), ErrInvalidStateTransition)

	for _, from := range []Status{StatusAccepted, StatusCancelled} {
		for _, to := range []Status{StatusOpen, StatusAccepted, StatusCancelled} {
			assert.ErrorIs(t, from.Transition(to), ErrInvalidStateTransition, "%s -> %s", from, to)
		}
	}
}

func TestRequestNotOpenIsStateTransitionError(t *testing.T) {
	assert.True(t, errors.Is(ErrRequestNotOpen, ErrInvalidStateTransition))
}
