package escrow

import (
	apperrors "stagepay/internal/errors"
)

type BookingStatus string

const (
	StatusPending            BookingStatus = "pending"
	StatusConfirmed          BookingStatus = "confirmed"
	StatusNotDelivered       BookingStatus = "not_delivered"
	StatusUnderInvestigation BookingStatus = "under_investigation"
	StatusCompleted          BookingStatus = "completed"
	StatusRefunded           BookingStatus = "refunded"
	StatusCancelled          BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentReleased PaymentStatus = "released"
	PaymentRefunded PaymentStatus = "refunded"
)

// BookingState is the canonical status pair of a booking. The two fields only
// ever change together.
type BookingState struct {
	Status  BookingStatus
	Payment PaymentStatus
}

func (s BookingState) String() string {
	return string(s.Status) + "/" + string(s.Payment)
}

// Consistent reports whether s satisfies the payment invariants: released
// funds imply a completed booking, refunded funds imply a refunded or
// cancelled booking.
func (s BookingState) Consistent() bool {
	switch s.Payment {
	case PaymentReleased:
		return s.Status == StatusCompleted
	case PaymentRefunded:
		return s.Status == StatusRefunded || s.Status == StatusCancelled
	}
	return true
}

// Terminal reports whether no event is defined from s.
func (s BookingState) Terminal() bool {
	for key := range bookingTransitions {
		if key.from == s {
			return false
		}
	}
	return true
}

// Cancellable reports whether the booking status still allows a cancellation.
func (s BookingState) Cancellable() bool {
	return s.Status == StatusPending || s.Status == StatusConfirmed
}

// BookingEvent names a transition of the booking state machine.
type BookingEvent string

const (
	EventPaymentReceived        BookingEvent = "payment-received"
	EventConfirmDelivery        BookingEvent = "confirm-delivery"
	EventReportNonDelivery      BookingEvent = "report-non-delivery"
	EventEscalateDispute        BookingEvent = "escalate-dispute"
	EventResolvedFavorOrganizer BookingEvent = "dispute-resolved-favor-organizer"
	EventResolvedPartialRefund  BookingEvent = "dispute-resolved-partial-refund"
	EventResolvedFavorArtist    BookingEvent = "dispute-resolved-favor-artist"
	EventCancel                 BookingEvent = "cancel"
	EventCancelWithRefund       BookingEvent = "cancel-with-refund"
)

type bookingKey struct {
	from  BookingState
	event BookingEvent
}

var bookingTransitions = buildBookingTransitions()

func buildBookingTransitions() map[bookingKey]BookingState {
	t := make(map[bookingKey]BookingState)
	add := func(from BookingState, ev BookingEvent, to BookingState) {
		if !to.Consistent() {
			panic("escrow: transition " + string(ev) + " leads to inconsistent state " + to.String())
		}
		t[bookingKey{from: from, event: ev}] = to
	}

	confirmedPaid := BookingState{StatusConfirmed, PaymentPaid}
	notDelivered := BookingState{StatusNotDelivered, PaymentPaid}
	investigating := BookingState{StatusUnderInvestigation, PaymentPaid}
	refunded := BookingState{StatusRefunded, PaymentRefunded}
	released := BookingState{StatusCompleted, PaymentReleased}

	add(BookingState{StatusConfirmed, PaymentPending}, EventPaymentReceived, confirmedPaid)
	add(confirmedPaid, EventConfirmDelivery, released)
	add(confirmedPaid, EventReportNonDelivery, notDelivered)

	// Artist acknowledges (or silently forfeits) the non-delivery report.
	add(notDelivered, EventResolvedFavorOrganizer, refunded)
	add(notDelivered, EventEscalateDispute, investigating)

	add(investigating, EventResolvedFavorOrganizer, refunded)
	add(investigating, EventResolvedPartialRefund, refunded)
	add(investigating, EventResolvedFavorArtist, released)

	for _, st := range []BookingStatus{StatusPending, StatusConfirmed} {
		for _, pay := range []PaymentStatus{PaymentPending, PaymentPaid} {
			from := BookingState{st, pay}
			add(from, EventCancel, BookingState{StatusCancelled, pay})
			add(from, EventCancelWithRefund, BookingState{StatusCancelled, PaymentRefunded})
		}
	}
	return t
}

// Transition returns the state reached by applying ev to from. It fails with
// ErrInvalidStateTransition when the table has no entry; from is never
// modified.
func Transition(from BookingState, ev BookingEvent) (BookingState, error) {
	to, ok := bookingTransitions[bookingKey{from: from, event: ev}]
	if !ok {
		return from, apperrors.ErrInvalidStateTransition.Withf(
			"cannot apply %s to booking in state %s", ev, from)
	}
	return to, nil
}

// CancelEvent picks the cancellation event for a computed refund percentage.
func CancelEvent(refundPercentage int) BookingEvent {
	if refundPercentage > 0 {
		return EventCancelWithRefund
	}
	return EventCancel
}
