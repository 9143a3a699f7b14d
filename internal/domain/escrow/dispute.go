package escrow

import (
	"strings"

	apperrors "stagepay/internal/errors"
)

type DisputeType string

const DisputeNonDelivery DisputeType = "non_delivery"

type DisputeStatus string

const (
	DisputeOpen               DisputeStatus = "open"
	DisputeAdminInvestigating DisputeStatus = "admin_investigating"
	DisputeResolved           DisputeStatus = "resolved"
)

// Active reports whether the dispute still blocks a second report on the
// same booking.
func (s DisputeStatus) Active() bool {
	return s == DisputeOpen || s == DisputeAdminInvestigating
}

type DisputeEvent string

const (
	DisputeArtistApproved DisputeEvent = "artist-approved"
	DisputeArtistContests DisputeEvent = "artist-contested"
	DisputeAutoResolved   DisputeEvent = "auto-resolved"
	DisputeAdminResolved  DisputeEvent = "admin-resolved"
)

type disputeKey struct {
	from  DisputeStatus
	event DisputeEvent
}

var disputeTransitions = map[disputeKey]DisputeStatus{
	{DisputeOpen, DisputeArtistApproved}:              DisputeResolved,
	{DisputeOpen, DisputeArtistContests}:              DisputeAdminInvestigating,
	{DisputeOpen, DisputeAutoResolved}:                DisputeResolved,
	{DisputeAdminInvestigating, DisputeAdminResolved}: DisputeResolved,
}

// NextDisputeStatus applies ev to a dispute in status from.
func NextDisputeStatus(from DisputeStatus, ev DisputeEvent) (DisputeStatus, error) {
	to, ok := disputeTransitions[disputeKey{from: from, event: ev}]
	if !ok {
		return from, apperrors.ErrInvalidDisputeTransition.Withf(
			"cannot apply %s to dispute in status %s", ev, from)
	}
	return to, nil
}

// ResponseAction is the artist's answer to a non-delivery report.
type ResponseAction string

const (
	ActionApprove ResponseAction = "approve"
	ActionDispute ResponseAction = "dispute"
)

func ParseResponseAction(s string) (ResponseAction, error) {
	switch a := ResponseAction(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionApprove, ActionDispute:
		return a, nil
	}
	return "", apperrors.ErrInvalidAction
}

// Decision is the administrator's ruling on a dispute.
type Decision string

const (
	DecisionPending        Decision = "pending"
	DecisionFavorOrganizer Decision = "favor_organizer"
	DecisionFavorArtist    Decision = "favor_artist"
	DecisionPartialRefund  Decision = "partial_refund"
)

// ParseDecision accepts only final decisions; pending is not a ruling.
func ParseDecision(s string) (Decision, error) {
	switch d := Decision(strings.ToLower(strings.TrimSpace(s))); d {
	case DecisionFavorOrganizer, DecisionFavorArtist, DecisionPartialRefund:
		return d, nil
	}
	return "", apperrors.ErrInvalidDecision
}

var decisionEvents = map[Decision]BookingEvent{
	DecisionFavorOrganizer: EventResolvedFavorOrganizer,
	DecisionPartialRefund:  EventResolvedPartialRefund,
	DecisionFavorArtist:    EventResolvedFavorArtist,
}

// BookingEvent maps a decision to the booking transition it triggers.
func (d Decision) BookingEvent() (BookingEvent, error) {
	ev, ok := decisionEvents[d]
	if !ok {
		return "", apperrors.ErrInvalidDecision
	}
	return ev, nil
}
