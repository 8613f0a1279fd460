// Package testutils provides helpers for exercising the web API in tests
// against in-memory infrastructure.
package testutils

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	infraeventbus "github.com/wanjalab/pesaflow/infra/eventbus"
	"github.com/wanjalab/pesaflow/internal/fixtures"
	"github.com/wanjalab/pesaflow/pkg/app"
	"github.com/wanjalab/pesaflow/pkg/config"
	"github.com/wanjalab/pesaflow/webapi"
)

const testJwtSecret = "test-secret"

// TestApp bundles a Fiber app wired to in-memory infrastructure.
type TestApp struct {
	App         *fiber.App
	SessionRepo *fixtures.SessionRepo
	TxRepo      *fixtures.TransactionRepo
	Processor   *fixtures.Processor
	Bus         *infraeventbus.MemoryEventBus
	Config      *config.App
	t           *testing.T
}

// NewTestApp builds the full HTTP app on in-memory repositories with a
// processor that accepts every push.
func NewTestApp(t *testing.T) *TestApp {
	t.Helper()
	cfg := &config.App{
		Env:       "test",
		Jwt:       &config.Jwt{Secret: testJwtSecret},
		RateLimit: &config.RateLimit{MaxRequests: 1000, Window: time.Minute},
		Mpesa: &config.Mpesa{
			HTTPTimeout: 5 * time.Second,
		},
		Session:   &config.Session{TTL: 5 * time.Minute},
		Reconcile: &config.Reconcile{PendingTimeout: 3 * time.Minute, SweepInterval: 30 * time.Second},
	}
	sessionRepo := fixtures.NewSessionRepo()
	txRepo := fixtures.NewTransactionRepo()
	processor := fixtures.AcceptedProcessor()
	bus := infraeventbus.NewWithMemory(slog.Default())

	a := app.New(&app.Deps{
		SessionRepo:     sessionRepo,
		TransactionRepo: txRepo,
		Processor:       processor,
		EventBus:        bus,
		Logger:          slog.Default(),
	}, cfg)

	return &TestApp{
		App:         webapi.SetupApp(a),
		SessionRepo: sessionRepo,
		TxRepo:      txRepo,
		Processor:   processor,
		Bus:         bus,
		Config:      cfg,
		t:           t,
	}
}

// BearerToken mints a signed token for the given subject.
func (ta *TestApp) BearerToken(userID uuid.UUID) string {
	ta.t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID.String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testJwtSecret))
	require.NoError(ta.t, err)
	return signed
}

// MakeRequest performs an HTTP request against the app. An empty token sends
// no Authorization header.
func (ta *TestApp) MakeRequest(method, target, body, token string) *http.Response {
	ta.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ta.App.Test(req, -1)
	require.NoError(ta.t, err)
	return resp
}
