package models

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationDisputeReported     NotificationType = "dispute.reported"
	NotificationDisputeAcknowledged NotificationType = "dispute.acknowledged"
	NotificationDisputeEscalated    NotificationType = "dispute.escalated"
	NotificationDisputeAutoResolved NotificationType = "dispute.auto_resolved"
	NotificationDisputeResolved     NotificationType = "dispute.resolved"
	NotificationBookingCancelled    NotificationType = "booking.cancelled"
	NotificationPaymentReceived     NotificationType = "booking.payment_received"
	NotificationPaymentReleased     NotificationType = "booking.payment_released"
)

// Notification is an append-only record that a user must be told about a
// state change. Delivery happens elsewhere.
type Notification struct {
	ID             uuid.UUID            `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID            `gorm:"type:uuid;not null;index" json:"user_id"`
	BookingID      uuid.UUID            `gorm:"type:uuid;not null;index" json:"booking_id"`
	Booking        *Booking             `gorm:"constraint:OnDelete:RESTRICT;" json:"-"`
	DisputeID      *uuid.UUID           `gorm:"type:uuid" json:"dispute_id,omitempty"`
	Dispute        *Dispute             `gorm:"constraint:OnDelete:RESTRICT;" json:"-"`
	CancellationID *uuid.UUID           `gorm:"type:uuid" json:"cancellation_id,omitempty"`
	Cancellation   *CancellationRequest `gorm:"foreignKey:CancellationID;constraint:OnDelete:RESTRICT;" json:"-"`
	Type           NotificationType     `gorm:"type:varchar(48);not null" json:"type"`
	Title          string               `gorm:"not null" json:"title"`
	Message        string               `gorm:"type:text" json:"message"`
	Payload        JSON                 `gorm:"type:jsonb" json:"payload,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
}
