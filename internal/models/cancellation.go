package models

import (
	"time"

	"stagepay/internal/domain/escrow"

	"github.com/google/uuid"
)

// CancellationRequest snapshots the policy result at creation time; the
// refund percentage and amount are never recomputed.
type CancellationRequest struct {
	ID               uuid.UUID                 `gorm:"type:uuid;primaryKey" json:"id"`
	BookingID        uuid.UUID                 `gorm:"type:uuid;not null;index" json:"booking_id"`
	Booking          *Booking                  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
	RequesterID      uuid.UUID                 `gorm:"type:uuid;not null" json:"requester_id"`
	RequesterRole    escrow.Role               `gorm:"type:varchar(16);not null" json:"requester_role"`
	Reason           string                    `gorm:"type:text;not null" json:"reason"`
	EventDate        time.Time                 `gorm:"not null" json:"event_date"`
	DaysBeforeEvent  int                       `gorm:"not null" json:"days_before_event"`
	RefundPercentage int                       `gorm:"not null;check:chk_cancellation_refund_pct,refund_percentage BETWEEN 0 AND 100" json:"refund_percentage"`
	RefundAmount     float64                   `gorm:"not null" json:"refund_amount"`
	Status           escrow.CancellationStatus `gorm:"type:varchar(16);not null;index" json:"status"`
	ApprovedAt       *time.Time                `json:"approved_at,omitempty"`
	CreatedAt        time.Time                 `json:"created_at"`
	UpdatedAt        time.Time                 `json:"updated_at"`
}
