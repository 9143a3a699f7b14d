package models

import (
	"stagepay/internal/domain/escrow"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// UserClaims is what the identity provider puts in a bearer token.
type UserClaims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID   `json:"user_id"`
	Email  string      `json:"email"`
	Role   escrow.Role `json:"role"`
}

func (c *UserClaims) IsAdmin() bool {
	return c.Role == escrow.RoleAdmin
}
