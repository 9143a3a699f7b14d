package models

import (
	"time"

	"stagepay/internal/domain/escrow"

	"github.com/google/uuid"
)

// User is the local directory entry for a party. Credentials live with the
// identity provider; only what the engine needs for summaries and
// administrator fan-out is stored here.
type User struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string      `gorm:"not null" json:"name"`
	Email     string      `gorm:"uniqueIndex;not null" json:"email"`
	Role      escrow.Role `gorm:"type:varchar(16);not null;index" json:"role"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
