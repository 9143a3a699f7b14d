package models

import (
	"time"

	"stagepay/internal/domain/escrow"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Dispute is a non-delivery claim against a booking. At most one dispute per
// booking may be open or under investigation; resolved disputes are immutable.
type Dispute struct {
	ID             uuid.UUID            `gorm:"type:uuid;primaryKey" json:"id"`
	BookingID      uuid.UUID            `gorm:"type:uuid;not null;index" json:"booking_id"`
	Booking        *Booking             `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
	Type           escrow.DisputeType   `gorm:"type:varchar(32);not null" json:"type"`
	ReporterID     uuid.UUID            `gorm:"type:uuid;not null" json:"reporter_id"`
	ReporterRole   escrow.Role          `gorm:"type:varchar(16);not null" json:"reporter_role"`
	Reason         string               `gorm:"type:text;not null" json:"reason"`
	Evidence       pq.StringArray       `gorm:"type:text[]" json:"evidence"`
	Status         escrow.DisputeStatus `gorm:"type:varchar(32);not null;index" json:"status"`
	ArtistResponse string               `gorm:"type:text" json:"artist_response,omitempty"`
	ArtistEvidence pq.StringArray       `gorm:"type:text[]" json:"artist_evidence,omitempty"`
	AdminDecision  escrow.Decision      `gorm:"type:varchar(32);not null" json:"admin_decision"`
	AdminNotes     string               `gorm:"type:text" json:"admin_notes,omitempty"`
	RefundAmount   float64              `gorm:"not null" json:"refund_amount"`
	AutoResolveAt  time.Time            `gorm:"not null;index" json:"auto_resolve_date"`
	AutoResolved   bool                 `gorm:"not null" json:"auto_resolved"`
	ResolvedBy     *uuid.UUID           `gorm:"type:uuid" json:"resolved_by,omitempty"`
	ResolvedAt     *time.Time           `json:"resolved_at,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// ReportedBy reports whether userID filed the dispute.
func (d *Dispute) ReportedBy(userID uuid.UUID) bool {
	return d.ReporterID == userID
}

// DisputeSummary is the administrator's view of a dispute joined with its
// booking and both parties.
type DisputeSummary struct {
	DisputeID      uuid.UUID            `json:"dispute_id"`
	BookingID      uuid.UUID            `json:"booking_id"`
	Type           escrow.DisputeType   `json:"type"`
	Status         escrow.DisputeStatus `json:"status"`
	Reason         string               `json:"reason"`
	AdminDecision  escrow.Decision      `json:"admin_decision"`
	RefundAmount   float64              `json:"refund_amount"`
	AutoResolveAt  time.Time            `json:"auto_resolve_date"`
	CreatedAt      time.Time            `json:"created_at"`
	EventDate      time.Time            `json:"event_date"`
	TotalAmount    float64              `json:"total_amount"`
	Currency       string               `json:"currency"`
	BookingStatus  escrow.BookingStatus `json:"booking_status"`
	PaymentStatus  escrow.PaymentStatus `json:"payment_status"`
	OrganizerID    uuid.UUID            `json:"organizer_id"`
	OrganizerName  string               `json:"organizer_name"`
	OrganizerEmail string               `json:"organizer_email"`
	ArtistID       uuid.UUID            `json:"artist_id"`
	ArtistName     string               `json:"artist_name"`
	ArtistEmail    string               `json:"artist_email"`
}
