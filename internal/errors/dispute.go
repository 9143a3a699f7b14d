package errors

var (
	ErrDisputeNotFound  = newError(KindNotFound, "DISPUTE_NOT_FOUND", "dispute not found")
	ErrDuplicateDispute = newError(KindDuplicateDispute, "DUPLICATE_DISPUTE",
		"an open dispute already exists for this booking")
	ErrDisputeStateChanged = newError(KindInvalidStateTransition, "DISPUTE_STATE_CHANGED",
		"dispute was modified concurrently")
	ErrInvalidDisputeTransition = newError(KindInvalidStateTransition, "INVALID_DISPUTE_TRANSITION",
		"dispute state does not permit this transition")
	ErrReasonRequired      = newError(KindValidation, "REASON_REQUIRED", "reason is required")
	ErrEvidenceRequired    = newError(KindValidation, "EVIDENCE_REQUIRED", "evidence is required to contest a dispute")
	ErrInvalidAction       = newError(KindValidation, "INVALID_ACTION", "action must be approve or dispute")
	ErrInvalidDecision     = newError(KindValidation, "INVALID_DECISION", "decision must be favor_organizer, favor_artist or partial_refund")
	ErrInvalidRefundAmount = newError(KindValidation, "INVALID_REFUND_AMOUNT", "refund amount is out of range")
	ErrInvalidStatusFilter = newError(KindValidation, "INVALID_STATUS_FILTER", "status must be open, admin_investigating or resolved")
)
