package escrow

import (
	"testing"

	apperrors "stagepay/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextDisputeStatus(t *testing.T) {
	next, err := NextDisputeStatus(DisputeOpen, DisputeArtistApproved)
	require.NoError(t, err)
	assert.Equal(t, DisputeResolved, next)

	next, err = NextDisputeStatus(DisputeOpen, DisputeArtistContests)
	require.NoError(t, err)
	assert.Equal(t, DisputeAdminInvestigating, next)

	next, err = NextDisputeStatus(DisputeAdminInvestigating, DisputeAdminResolved)
	require.NoError(t, err)
	assert.Equal(t, DisputeResolved, next)

	// A resolved dispute accepts nothing.
	for _, ev := range []DisputeEvent{DisputeArtistApproved, DisputeArtistContests, DisputeAutoResolved, DisputeAdminResolved} {
		_, err := NextDisputeStatus(DisputeResolved, ev)
		assert.ErrorIs(t, err, apperrors.ErrInvalidDisputeTransition, ev)
	}

	// The sweep never touches an investigated dispute.
	_, err = NextDisputeStatus(DisputeAdminInvestigating, DisputeAutoResolved)
	assert.Error(t, err)
}

func TestParseDecision(t *testing.T) {
	d, err := ParseDecision(" Favor_Artist ")
	require.NoError(t, err)
	assert.Equal(t, DecisionFavorArtist, d)

	_, err = ParseDecision("pending")
	assert.ErrorIs(t, err, apperrors.ErrInvalidDecision)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestDecisionBookingEvent(t *testing.T) {
	cases := map[Decision]BookingEvent{
		DecisionFavorOrganizer: EventResolvedFavorOrganizer,
		DecisionPartialRefund:  EventResolvedPartialRefund,
		DecisionFavorArtist:    EventResolvedFavorArtist,
	}
	for d, want := range cases {
		got, err := d.BookingEvent()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := DecisionPending.BookingEvent()
	assert.Error(t, err)
}

func TestParseResponseAction(t *testing.T) {
	a, err := ParseResponseAction("APPROVE")
	require.NoError(t, err)
	assert.Equal(t, ActionApprove, a)

	_, err = ParseResponseAction("ignore")
	assert.ErrorIs(t, err, apperrors.ErrInvalidAction)
}

func TestDisputeStatusActive(t *testing.T) {
	assert.True(t, DisputeOpen.Active())
	assert.True(t, DisputeAdminInvestigating.Active())
	assert.False(t, DisputeResolved.Active())
}
