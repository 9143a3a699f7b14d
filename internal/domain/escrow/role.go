// Package escrow holds the state machines that govern a booking once its
// payment has entered escrow: the booking status/payment status pair and the
// non-delivery dispute lifecycle. Every state change goes through a transition
// table; anything not in a table is rejected.
package escrow

import "github.com/google/uuid"

// Role is the part a user plays on a booking.
type Role string

const (
	RoleOrganizer Role = "organizer"
	RoleArtist    Role = "artist"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOrganizer, RoleArtist, RoleAdmin:
		return true
	}
	return false
}

// Actor is an authenticated caller as seen by the engine.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
