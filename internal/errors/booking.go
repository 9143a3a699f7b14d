package errors

var (
	ErrBookingNotFound        = newError(KindNotFound, "BOOKING_NOT_FOUND", "booking not found")
	ErrInvalidStateTransition = newError(KindInvalidStateTransition, "INVALID_STATE_TRANSITION",
		"booking state does not permit this transition")
	ErrNotBookingParty     = newError(KindNotAuthorized, "NOT_BOOKING_PARTY", "caller is not a party to this booking")
	ErrNotBookingOrganizer = newError(KindNotAuthorized, "NOT_BOOKING_ORGANIZER", "caller is not the organizer of this booking")
	ErrNotBookingArtist    = newError(KindNotAuthorized, "NOT_BOOKING_ARTIST", "caller is not the artist of this booking")
	ErrAdminOnly           = newError(KindNotAuthorized, "ADMIN_ONLY", "administrator role required")
	ErrInvalidAmount       = newError(KindValidation, "INVALID_AMOUNT", "amount must be greater than zero")
)
