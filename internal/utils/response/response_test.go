package response

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	apperrors "stagepay/internal/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	cases := map[apperrors.Kind]int{
		apperrors.KindNotFound:               fiber.StatusNotFound,
		apperrors.KindNotAuthorized:          fiber.StatusForbidden,
		apperrors.KindInvalidStateTransition: fiber.StatusConflict,
		apperrors.KindDuplicateDispute:       fiber.StatusConflict,
		apperrors.KindValidation:             fiber.StatusBadRequest,
		apperrors.KindCancellationNotAllowed: fiber.StatusUnprocessableEntity,
		apperrors.KindInternal:               fiber.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, StatusFor(kind), kind)
	}
}

func TestFromError(t *testing.T) {
	app := fiber.New()
	app.Get("/domain", func(c *fiber.Ctx) error {
		return FromError(c, apperrors.ErrDuplicateDispute.Withf("booking already disputed"))
	})
	app.Get("/infra", func(c *fiber.Ctx) error {
		return FromError(c, errors.New("connection reset by peer"))
	})

	body := func(path string) (int, map[string]string) {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, path, nil), -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		var out map[string]string
		require.NoError(t, json.Unmarshal(raw, &out))
		return resp.StatusCode, out
	}

	status, out := body("/domain")
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "DUPLICATE_DISPUTE", out["code"])
	assert.Equal(t, "booking already disputed", out["error"])

	status, out = body("/infra")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "INTERNAL", out["code"])
	assert.NotContains(t, out["error"], "connection reset")
}
