package response

import (
	"log"

	apperrors "stagepay/internal/errors"

	"github.com/gofiber/fiber/v2"
)

func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(fiber.Map{
		"message": message,
		"data":    data,
	})
}

func Created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": message,
		"data":    data,
	})
}

func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

func errorWithCode(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
		"code":  code,
	})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return errorWithCode(c, fiber.StatusBadRequest, "BAD_REQUEST", message)
}

func ServerError(c *fiber.Ctx, message string) error {
	return errorWithCode(c, fiber.StatusInternalServerError, "INTERNAL", message)
}

func Unauthorized(c *fiber.Ctx) error {
	return errorWithCode(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
}

func Forbidden(c *fiber.Ctx) error {
	return errorWithCode(c, fiber.StatusForbidden, "FORBIDDEN", "You do not have permission to access this endpoint")
}

func ValidationError(c *fiber.Ctx, message string) error {
	return errorWithCode(c, fiber.StatusBadRequest, "VALIDATION_ERROR", message)
}

// StatusFor maps a domain error kind to its HTTP status.
func StatusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindNotFound:
		return fiber.StatusNotFound
	case apperrors.KindNotAuthorized:
		return fiber.StatusForbidden
	case apperrors.KindInvalidStateTransition, apperrors.KindDuplicateDispute:
		return fiber.StatusConflict
	case apperrors.KindValidation:
		return fiber.StatusBadRequest
	case apperrors.KindCancellationNotAllowed:
		return fiber.StatusUnprocessableEntity
	}
	return fiber.StatusInternalServerError
}

// FromError writes err as a JSON error body. Errors outside the domain
// taxonomy are logged and reported as a generic 500.
func FromError(c *fiber.Ctx, err error) error {
	de, ok := apperrors.As(err)
	if !ok || de.Kind == apperrors.KindInternal {
		log.Printf("[http] %s %s: %v", c.Method(), c.Path(), err)
		return ServerError(c, "internal server error")
	}
	return errorWithCode(c, StatusFor(de.Kind), de.Code, de.Message)
}
