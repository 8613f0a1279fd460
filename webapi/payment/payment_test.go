package payment_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanjalab/pesaflow/webapi/testutils"
)

const pushBody = `{
	"phone_number": "0712345678",
	"amount": "150.00",
	"direction": "bill",
	"reference": "INV-001",
	"description": "Electricity bill"
}`

func initiatePush(t *testing.T, ta *testutils.TestApp, token string) (transactionID, checkoutRequestID string) {
	t.Helper()
	resp := ta.MakeRequest("POST", "/api/v1/payments/stkpush", pushBody, token)
	defer resp.Body.Close() //nolint:errcheck
	require.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	var body struct {
		Data struct {
			TransactionID     string `json:"transaction_id"`
			CheckoutRequestID string `json:"checkout_request_id"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.Data.TransactionID)
	require.NotEmpty(t, body.Data.CheckoutRequestID)
	return body.Data.TransactionID, body.Data.CheckoutRequestID
}

func TestInitiateSTKPush(t *testing.T) {
	ta := testutils.NewTestApp(t)
	token := ta.BearerToken(uuid.New())

	_, checkout := initiatePush(t, ta, token)
	assert.Equal(t, "ws_CO_191220191020363925", checkout)

	requests := ta.Processor.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, "254712345678", requests[0].PhoneNumber)
	assert.Equal(t, "INV-001", requests[0].AccountReference)
}

func TestInitiateSTKPush_Variants(t *testing.T) {
	ta := testutils.NewTestApp(t)
	token := ta.BearerToken(uuid.New())

	testCases := []struct {
		desc       string
		body       string
		token      string
		wantStatus int
	}{
		{
			desc:       "missing token",
			body:       pushBody,
			token:      "",
			wantStatus: fiber.StatusBadRequest, // missing or malformed JWT
		},
		{
			desc:       "missing amount",
			body:       `{"phone_number":"0712345678"}`,
			token:      token,
			wantStatus: fiber.StatusBadRequest,
		},
		{
			desc:       "bad amount",
			body:       `{"phone_number":"0712345678","amount":"abc"}`,
			token:      token,
			wantStatus: fiber.StatusBadRequest,
		},
		{
			desc:       "bad phone",
			body:       `{"phone_number":"12345","amount":"150.00"}`,
			token:      token,
			wantStatus: fiber.StatusBadRequest,
		},
		{
			desc:       "bad direction",
			body:       `{"phone_number":"0712345678","amount":"150.00","direction":"sideways"}`,
			token:      token,
			wantStatus: fiber.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			resp := ta.MakeRequest("POST", "/api/v1/payments/stkpush", tc.body, tc.token)
			defer resp.Body.Close() //nolint:errcheck
			assert.Equal(t, tc.wantStatus, resp.StatusCode)
		})
	}
}

func TestInitiateSTKPush_ProcessorDown(t *testing.T) {
	ta := testutils.NewTestApp(t)
	ta.Processor.Err = errors.New("connection refused")
	token := ta.BearerToken(uuid.New())

	resp := ta.MakeRequest("POST", "/api/v1/payments/stkpush", pushBody, token)
	defer resp.Body.Close() //nolint:errcheck
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
}

func TestGetTransaction(t *testing.T) {
	ta := testutils.NewTestApp(t)
	token := ta.BearerToken(uuid.New())
	txID, _ := initiatePush(t, ta, token)

	resp := ta.MakeRequest("GET", "/api/v1/payments/"+txID, "", token)
	defer resp.Body.Close() //nolint:errcheck
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, txID, body.Data.ID)
	assert.Equal(t, "pending", body.Data.Status)
}

func TestGetTransaction_Errors(t *testing.T) {
	ta := testutils.NewTestApp(t)
	token := ta.BearerToken(uuid.New())

	resp := ta.MakeRequest("GET", "/api/v1/payments/not-a-uuid", "", token)
	defer resp.Body.Close() //nolint:errcheck
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp2 := ta.MakeRequest("GET", "/api/v1/payments/"+uuid.NewString(), "", token)
	defer resp2.Body.Close() //nolint:errcheck
	assert.Equal(t, fiber.StatusNotFound, resp2.StatusCode)
}
