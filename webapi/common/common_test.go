package common_test

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanjalab/pesaflow/pkg/domain"
	"github.com/wanjalab/pesaflow/webapi/common"
)

func TestErrorToStatusCode(t *testing.T) {
	testCases := []struct {
		err  error
		want int
	}{
		{domain.ErrSessionNotFound, fiber.StatusNotFound},
		{domain.ErrTransactionNotFound, fiber.StatusNotFound},
		{domain.ErrSessionExpired, fiber.StatusGone},
		{domain.ErrSessionAlreadyUsed, fiber.StatusConflict},
		{domain.ErrPhoneNumberRequired, fiber.StatusBadRequest},
		{domain.ErrInvalidPhoneNumber, fiber.StatusBadRequest},
		{domain.ErrAmountMustBePositive, fiber.StatusBadRequest},
		{domain.ErrInvalidSessionKind, fiber.StatusBadRequest},
		{domain.ErrPushRejected, fiber.StatusUnprocessableEntity},
		{domain.ErrProcessorUnavailable, fiber.StatusBadGateway},
		{errors.New("anything else"), fiber.StatusInternalServerError},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, common.ErrorToStatusCode(tc.err), "err=%v", tc.err)
	}

	// Wrapped errors map the same way.
	wrapped := errors.Join(errors.New("context"), domain.ErrSessionExpired)
	assert.Equal(t, fiber.StatusGone, common.ErrorToStatusCode(wrapped))
}

func TestProblemDetailsJSON(t *testing.T) {
	app := fiber.New()
	app.Get("/boom", func(c *fiber.Ctx) error {
		return common.ProblemDetailsJSON(c, "Couldn't consume session", domain.ErrSessionExpired)
	})
	app.Get("/override", func(c *fiber.Ctx) error {
		return common.ProblemDetailsJSON(c, "Invalid request", nil, "custom detail", fiber.StatusTeapot)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	assert.Equal(t, fiber.StatusGone, resp.StatusCode)
	assert.Equal(t, "application/problem+json", resp.Header.Get(fiber.HeaderContentType))

	var pd common.ProblemDetails
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&pd))
	assert.Equal(t, "Couldn't consume session", pd.Title)
	assert.Equal(t, fiber.StatusGone, pd.Status)
	assert.Equal(t, "/boom", pd.Instance)

	// Extras override both detail and status.
	resp2, err := app.Test(httptest.NewRequest("GET", "/override", nil))
	require.NoError(t, err)
	defer resp2.Body.Close() //nolint:errcheck
	assert.Equal(t, fiber.StatusTeapot, resp2.StatusCode)

	var pd2 common.ProblemDetails
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&pd2))
	assert.Equal(t, "custom detail", pd2.Detail)
}
