// Package handlers exposes the escrow engine over HTTP. Handlers parse and
// shape requests, call one service operation and map its domain errors to
// status codes; they hold no business rules of their own.
package handlers

import (
	"stagepay/internal/utils/response"
	"stagepay/internal/utils/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// paramID parses a uuid path parameter.
func paramID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// parseBody decodes and validates the request body into dst. On failure the
// error response has already been written and the returned error must be
// passed back to fiber.
func parseBody(c *fiber.Ctx, dst interface{}) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		return false, response.BadRequest(c, "Invalid request format")
	}
	v := validation.New()
	v.Struct(dst)
	if !v.Valid() {
		return false, response.ValidationError(c, v.Error())
	}
	return true, nil
}
