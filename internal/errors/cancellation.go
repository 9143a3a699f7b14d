package errors

var (
	ErrCancellationNotFound   = newError(KindNotFound, "CANCELLATION_NOT_FOUND", "cancellation request not found")
	ErrCancellationNotAllowed = newError(KindCancellationNotAllowed, "CANCELLATION_NOT_ALLOWED",
		"cancellation policy does not allow this request")
	ErrInvalidPolicy = newError(KindValidation, "INVALID_POLICY", "cancellation policy configuration is invalid")
)
