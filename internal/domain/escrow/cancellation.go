package escrow

type CancellationStatus string

const (
	CancellationPending  CancellationStatus = "pending"
	CancellationApproved CancellationStatus = "approved"
)

// CancellationOutcome is the status a new request starts in: requests that
// carry a refund are approved on creation, the rest wait for manual handling.
func CancellationOutcome(refundPercentage int) CancellationStatus {
	if refundPercentage > 0 {
		return CancellationApproved
	}
	return CancellationPending
}
