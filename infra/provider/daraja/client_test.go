package daraja

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanjalab/pesaflow/infra/cache"
	"github.com/wanjalab/pesaflow/pkg/config"
	"github.com/wanjalab/pesaflow/pkg/provider"
)

func testConfig(baseURL string) *config.Mpesa {
	return &config.Mpesa{
		Env:            "sandbox",
		BaseURL:        baseURL,
		ConsumerKey:    "test-key",
		ConsumerSecret: "test-secret",
		ShortCode:      "174379",
		Passkey:        "test-passkey",
		CallbackURL:    "https://example.com/api/v1/payments/mpesa/callback",
		HTTPTimeout:    5 * time.Second,
		TokenCacheKey:  "daraja:token",
	}
}

func newTestClient(baseURL string) *Client {
	return New(testConfig(baseURL), cache.NewMemoryTokenCache(), slog.Default())
}

func TestAuthenticate(t *testing.T) {
	var tokenCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/oauth/v1/generate", r.URL.Path)
		require.Equal(t, "client_credentials", r.URL.Query().Get("grant_type"))

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "test-key", user)
		assert.Equal(t, "test-secret", pass)

		tokenCalls.Add(1)
		json.NewEncoder(w).Encode(map[string]string{ //nolint:errcheck
			"access_token": "token-abc",
			"expires_in":   "3599",
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	token, err := client.Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-abc", token)

	// Second call is served from the cache.
	token, err = client.Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-abc", token)
	assert.Equal(t, int32(1), tokenCalls.Load())
}

func TestAuthenticate_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Authenticate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestTokenTTL(t *testing.T) {
	assert.Equal(t, 3599*time.Second-tokenExpiryMargin, tokenTTL("3599"))
	assert.Zero(t, tokenTTL("30"), "lifetime shorter than the margin is not cached")
	assert.Zero(t, tokenTTL("not-a-number"))
	assert.Zero(t, tokenTTL(""))
}

func TestInitiateSTKPush(t *testing.T) {
	var gotPayload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/v1/generate":
			json.NewEncoder(w).Encode(map[string]string{ //nolint:errcheck
				"access_token": "token-abc",
				"expires_in":   "3599",
			})
		case "/mpesa/stkpush/v1/processrequest":
			assert.Equal(t, "Bearer token-abc", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
			json.NewEncoder(w).Encode(map[string]string{ //nolint:errcheck
				"MerchantRequestID":   "29115-34620561-1",
				"CheckoutRequestID":   "ws_CO_191220191020363925",
				"ResponseCode":        "0",
				"ResponseDescription": "Success. Request accepted for processing",
				"CustomerMessage":     "Success. Request accepted for processing",
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	client.now = func() time.Time {
		return time.Date(2025, 9, 1, 12, 30, 45, 0, time.UTC)
	}

	resp, err := client.InitiateSTKPush(context.Background(), provider.STKPushRequest{
		PhoneNumber:      "254712345678",
		Amount:           decimal.NewFromInt(150),
		AccountReference: "INV-001",
		TransactionDesc:  "Electricity bill",
	})
	require.NoError(t, err)
	assert.True(t, resp.Accepted())
	assert.Equal(t, "ws_CO_191220191020363925", resp.CheckoutRequestID)

	assert.Equal(t, "174379", gotPayload["BusinessShortCode"])
	assert.Equal(t, "20250901123045", gotPayload["Timestamp"])
	assert.Equal(t, "CustomerPayBillOnline", gotPayload["TransactionType"])
	assert.Equal(t, "254712345678", gotPayload["PhoneNumber"])
	assert.Equal(t, "174379", gotPayload["PartyB"])
	assert.Equal(t, float64(150), gotPayload["Amount"], "amount goes over the wire as a JSON number")

	wantPassword := base64.StdEncoding.EncodeToString([]byte("174379" + "test-passkey" + "20250901123045"))
	assert.Equal(t, wantPassword, gotPayload["Password"])
}

func TestInitiateSTKPush_DefaultDescription(t *testing.T) {
	var gotPayload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/v1/generate":
			json.NewEncoder(w).Encode(map[string]string{ //nolint:errcheck
				"access_token": "token-abc",
				"expires_in":   "3599",
			})
		default:
			json.NewDecoder(r.Body).Decode(&gotPayload) //nolint:errcheck
			json.NewEncoder(w).Encode(map[string]string{"ResponseCode": "0"}) //nolint:errcheck
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.InitiateSTKPush(context.Background(), provider.STKPushRequest{
		PhoneNumber: "254712345678",
		Amount:      decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	assert.Equal(t, "M-Pesa Payment", gotPayload["TransactionDesc"])
}

func TestInitiateSTKPush_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth/v1/generate" {
			json.NewEncoder(w).Encode(map[string]string{ //nolint:errcheck
				"access_token": "token-abc",
				"expires_in":   "3599",
			})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.InitiateSTKPush(context.Background(), provider.STKPushRequest{
		PhoneNumber: "254712345678",
		Amount:      decimal.NewFromInt(10),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}
