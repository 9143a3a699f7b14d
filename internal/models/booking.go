package models

import (
	"time"

	"stagepay/internal/domain/escrow"

	"github.com/google/uuid"
)

// Booking is the durable financial record of one paid engagement. It is
// never deleted; Status and PaymentStatus only change through escrow.Transition.
type Booking struct {
	ID            uuid.UUID            `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizerID   uuid.UUID            `gorm:"type:uuid;not null;index" json:"organizer_id"`
	ArtistID      uuid.UUID            `gorm:"type:uuid;not null;index" json:"artist_id"`
	EventDate     time.Time            `gorm:"not null" json:"event_date"`
	TotalAmount   float64              `gorm:"not null;check:chk_bookings_total_amount,total_amount > 0" json:"total_amount"`
	Currency      string               `gorm:"type:varchar(3);not null" json:"currency"`
	Status        escrow.BookingStatus `gorm:"type:varchar(32);not null;index" json:"status"`
	PaymentStatus escrow.PaymentStatus `gorm:"type:varchar(16);not null" json:"payment_status"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

func (b *Booking) State() escrow.BookingState {
	return escrow.BookingState{Status: b.Status, Payment: b.PaymentStatus}
}

func (b *Booking) SetState(s escrow.BookingState) {
	b.Status = s.Status
	b.PaymentStatus = s.Payment
}

// RoleOf reports which side of the booking userID is on.
func (b *Booking) RoleOf(userID uuid.UUID) (escrow.Role, bool) {
	switch userID {
	case b.OrganizerID:
		return escrow.RoleOrganizer, true
	case b.ArtistID:
		return escrow.RoleArtist, true
	}
	return "", false
}

// Counterparty returns the user on the other side of role.
func (b *Booking) Counterparty(role escrow.Role) uuid.UUID {
	if role == escrow.RoleArtist {
		return b.OrganizerID
	}
	return b.ArtistID
}
