package utils

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// GetLimit reads the "limit" query parameter, falling back to defaultLimit
// when it is missing, malformed or above maxLimit.
func GetLimit(c *fiber.Ctx, defaultLimit, maxLimit int) int {
	limit, err := strconv.Atoi(c.Query("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 || limit > maxLimit {
		return defaultLimit
	}
	return limit
}
