package escrow

import (
	"testing"

	apperrors "stagepay/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    BookingState
		event   BookingEvent
		want    BookingState
		wantErr bool
	}{
		{
			name:  "payment enters escrow",
			from:  BookingState{StatusConfirmed, PaymentPending},
			event: EventPaymentReceived,
			want:  BookingState{StatusConfirmed, PaymentPaid},
		},
		{
			name:  "delivery confirmed releases funds",
			from:  BookingState{StatusConfirmed, PaymentPaid},
			event: EventConfirmDelivery,
			want:  BookingState{StatusCompleted, PaymentReleased},
		},
		{
			name:  "report non delivery on paid booking",
			from:  BookingState{StatusConfirmed, PaymentPaid},
			event: EventReportNonDelivery,
			want:  BookingState{StatusNotDelivered, PaymentPaid},
		},
		{
			name:    "report non delivery before payment",
			from:    BookingState{StatusConfirmed, PaymentPending},
			event:   EventReportNonDelivery,
			wantErr: true,
		},
		{
			name:    "report non delivery twice",
			from:    BookingState{StatusNotDelivered, PaymentPaid},
			event:   EventReportNonDelivery,
			wantErr: true,
		},
		{
			name:  "artist acknowledges",
			from:  BookingState{StatusNotDelivered, PaymentPaid},
			event: EventResolvedFavorOrganizer,
			want:  BookingState{StatusRefunded, PaymentRefunded},
		},
		{
			name:  "artist contests",
			from:  BookingState{StatusNotDelivered, PaymentPaid},
			event: EventEscalateDispute,
			want:  BookingState{StatusUnderInvestigation, PaymentPaid},
		},
		{
			name:  "admin partial refund",
			from:  BookingState{StatusUnderInvestigation, PaymentPaid},
			event: EventResolvedPartialRefund,
			want:  BookingState{StatusRefunded, PaymentRefunded},
		},
		{
			name:  "admin favors artist",
			from:  BookingState{StatusUnderInvestigation, PaymentPaid},
			event: EventResolvedFavorArtist,
			want:  BookingState{StatusCompleted, PaymentReleased},
		},
		{
			name:    "favor artist skips investigation",
			from:    BookingState{StatusNotDelivered, PaymentPaid},
			event:   EventResolvedFavorArtist,
			wantErr: true,
		},
		{
			name:  "cancel pending with refund",
			from:  BookingState{StatusPending, PaymentPending},
			event: EventCancelWithRefund,
			want:  BookingState{StatusCancelled, PaymentRefunded},
		},
		{
			name:  "cancel confirmed without refund keeps payment",
			from:  BookingState{StatusConfirmed, PaymentPaid},
			event: EventCancel,
			want:  BookingState{StatusCancelled, PaymentPaid},
		},
		{
			name:    "cancel disputed booking",
			from:    BookingState{StatusNotDelivered, PaymentPaid},
			event:   EventCancelWithRefund,
			wantErr: true,
		},
		{
			name:    "cancel completed booking",
			from:    BookingState{StatusCompleted, PaymentReleased},
			event:   EventCancel,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transition(tt.from, tt.event)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrInvalidStateTransition)
				assert.Equal(t, apperrors.KindInvalidStateTransition, apperrors.KindOf(err))
				assert.Equal(t, tt.from, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransitionTableKeepsPaymentInvariants(t *testing.T) {
	for key, to := range bookingTransitions {
		assert.Truef(t, to.Consistent(), "%s --%s--> %s", key.from, key.event, to)
	}
}

func TestTerminalStates(t *testing.T) {
	assert.True(t, BookingState{StatusCompleted, PaymentReleased}.Terminal())
	assert.True(t, BookingState{StatusRefunded, PaymentRefunded}.Terminal())
	assert.True(t, BookingState{StatusCancelled, PaymentRefunded}.Terminal())
	assert.False(t, BookingState{StatusConfirmed, PaymentPaid}.Terminal())
	assert.False(t, BookingState{StatusUnderInvestigation, PaymentPaid}.Terminal())
}

func TestCancelEvent(t *testing.T) {
	assert.Equal(t, EventCancelWithRefund, CancelEvent(50))
	assert.Equal(t, EventCancel, CancelEvent(0))
}
