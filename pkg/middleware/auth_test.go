package middleware_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanjalab/pesaflow/pkg/config"
	"github.com/wanjalab/pesaflow/pkg/middleware"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func protectedApp() *fiber.App {
	app := fiber.New()
	app.Get("/protected", middleware.JwtProtected(&config.Jwt{Secret: testSecret}), func(c *fiber.Ctx) error {
		userID, err := middleware.UserIDFromContext(c)
		if err != nil {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.SendString(userID.String())
	})
	return app
}

func TestJwtProtected(t *testing.T) {
	app := protectedApp()
	userID := uuid.New()

	testCases := []struct {
		desc       string
		authHeader string
		wantStatus int
	}{
		{
			desc: "valid token",
			authHeader: "Bearer " + signToken(t, testSecret, jwt.MapClaims{
				"sub": userID.String(),
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
			wantStatus: fiber.StatusOK,
		},
		{
			desc:       "missing header",
			authHeader: "",
			wantStatus: fiber.StatusBadRequest,
		},
		{
			desc:       "malformed token",
			authHeader: "Bearer not-a-token",
			wantStatus: fiber.StatusUnauthorized,
		},
		{
			desc: "wrong signing key",
			authHeader: "Bearer " + signToken(t, "other-secret", jwt.MapClaims{
				"sub": userID.String(),
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
			wantStatus: fiber.StatusUnauthorized,
		},
		{
			desc: "expired token",
			authHeader: "Bearer " + signToken(t, testSecret, jwt.MapClaims{
				"sub": userID.String(),
				"exp": time.Now().Add(-time.Hour).Unix(),
			}),
			wantStatus: fiber.StatusUnauthorized,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/protected", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close() //nolint:errcheck
			assert.Equal(t, tc.wantStatus, resp.StatusCode)
		})
	}
}

func TestUserIDFromContext_BadSubject(t *testing.T) {
	app := fiber.New()
	app.Get("/protected", middleware.JwtProtected(&config.Jwt{Secret: testSecret}), func(c *fiber.Ctx) error {
		_, err := middleware.UserIDFromContext(c)
		if err != nil {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.SendStatus(fiber.StatusOK)
	})

	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": "not-a-uuid",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
