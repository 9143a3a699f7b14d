package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithf_StillMatchesSentinel(t *testing.T) {
	err := ErrDuplicateDispute.Withf("booking %s already disputed", "b-1")

	assert.True(t, stderrors.Is(err, ErrDuplicateDispute))
	assert.False(t, stderrors.Is(err, ErrDisputeNotFound))
	assert.Equal(t, "booking b-1 already disputed", err.Error())
	assert.Equal(t, "an open dispute already exists for this booking", ErrDuplicateDispute.Message)
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := stderrors.New("deadlock detected")
	err := fmt.Errorf("report: %w", ErrDisputeStateChanged.Wrap(cause))

	assert.ErrorIs(t, err, ErrDisputeStateChanged)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindInvalidStateTransition, KindOf(err))

	de, ok := As(err)
	assert.True(t, ok)
	assert.Equal(t, "DISPUTE_STATE_CHANGED", de.Code)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(stderrors.New("boom")))
	assert.Equal(t, KindCancellationNotAllowed, KindOf(ErrCancellationNotAllowed))
	assert.Equal(t, KindNotFound, KindOf(ErrUserNotFound))

	_, ok := As(stderrors.New("boom"))
	assert.False(t, ok)
}
