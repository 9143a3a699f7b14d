// Package middleware provides HTTP middleware components for the application.
// It includes authentication and role checks for the fiber web framework.
package middleware

import (
	"log"
	"strings"

	"stagepay/internal/domain/escrow"
	"stagepay/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware validates bearer tokens issued by the identity provider and
// stores the caller's claims in the request context.
type AuthMiddleware struct {
	secret string
}

func NewAuthMiddleware(secret string) *AuthMiddleware {
	return &AuthMiddleware{secret: secret}
}

// Handler checks for a Bearer token with a valid signature, expiry and role.
func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization header", "code": "UNAUTHORIZED"})
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid authorization format", "code": "UNAUTHORIZED"})
	}

	claims, err := utils.ParseToken(m.secret, strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		log.Printf("[auth] token rejected: %v", err)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token", "code": "UNAUTHORIZED"})
	}

	c.Locals("claims", claims)
	c.Locals("userID", claims.UserID)

	return c.Next()
}

// RequireRole returns a middleware that lets through only the given roles.
func RequireRole(roles ...escrow.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := utils.GetUserClaims(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized", "code": "UNAUTHORIZED"})
		}
		for _, r := range roles {
			if claims.Role == r {
				return c.Next()
			}
		}
		log.Printf("[auth] access denied: user %s has role %s", claims.UserID, claims.Role)
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Insufficient permissions", "code": "FORBIDDEN"})
	}
}

// AdminAuthMiddleware verifies that the request has valid admin claims.
var AdminAuthMiddleware = RequireRole(escrow.RoleAdmin)
