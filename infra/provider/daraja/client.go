// Package daraja implements the processor client against Safaricom's Daraja
// API: OAuth token acquisition with caching and STK push initiation.
package daraja

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/wanjalab/pesaflow/infra/cache"
	"github.com/wanjalab/pesaflow/pkg/config"
	"github.com/wanjalab/pesaflow/pkg/provider"
)

// tokenExpiryMargin is shaved off the reported token lifetime so a cached
// token is never presented right at its expiry instant.
const tokenExpiryMargin = 60 * time.Second

// Client talks to the Daraja API.
type Client struct {
	cfg        *config.Mpesa
	httpClient *http.Client
	tokens     cache.TokenCache
	logger     *slog.Logger
	now        func() time.Time
}

// New creates a Daraja client using the configured HTTP timeout and the
// given token cache.
func New(
	cfg *config.Mpesa,
	tokens cache.TokenCache,
	logger *slog.Logger,
) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		tokens: tokens,
		logger: logger,
		now:    time.Now,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

// Authenticate returns a valid access token, from cache when possible.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	if tok, ok, err := c.tokens.Get(ctx, c.cfg.TokenCacheKey); err == nil && ok {
		return tok, nil
	}

	url := c.cfg.BaseURL + "/oauth/v1/generate?grant_type=client_credentials"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch token: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("token endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned empty token")
	}

	ttl := tokenTTL(tr.ExpiresIn)
	if ttl > 0 {
		if err := c.tokens.Set(ctx, c.cfg.TokenCacheKey, tr.AccessToken, ttl); err != nil {
			c.logger.Warn("failed to cache access token", "error", err)
		}
	}
	return tr.AccessToken, nil
}

// tokenTTL converts Daraja's expires_in seconds string into a cache TTL,
// leaving a safety margin. Returns 0 when the value is unusable.
func tokenTTL(expiresIn string) time.Duration {
	secs, err := strconv.Atoi(expiresIn)
	if err != nil {
		return 0
	}
	ttl := time.Duration(secs)*time.Second - tokenExpiryMargin
	if ttl <= 0 {
		return 0
	}
	return ttl
}

// timestampLayout is Daraja's password timestamp format.
const timestampLayout = "20060102150405"

type stkPushPayload struct {
	BusinessShortCode string      `json:"BusinessShortCode"`
	Password          string      `json:"Password"`
	Timestamp         string      `json:"Timestamp"`
	TransactionType   string      `json:"TransactionType"`
	Amount            json.Number `json:"Amount"`
	PartyA            string      `json:"PartyA"`
	PartyB            string      `json:"PartyB"`
	PhoneNumber       string      `json:"PhoneNumber"`
	CallBackURL       string      `json:"CallBackURL"`
	AccountReference  string      `json:"AccountReference"`
	TransactionDesc   string      `json:"TransactionDesc"`
}

// InitiateSTKPush implements provider.Processor.
func (c *Client) InitiateSTKPush(
	ctx context.Context,
	preq provider.STKPushRequest,
) (*provider.STKPushResponse, error) {
	token, err := c.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	ts := c.now().Format(timestampLayout)
	password := base64.StdEncoding.EncodeToString(
		[]byte(c.cfg.ShortCode + c.cfg.Passkey + ts),
	)
	desc := preq.TransactionDesc
	if desc == "" {
		desc = "M-Pesa Payment"
	}
	payload := stkPushPayload{
		BusinessShortCode: c.cfg.ShortCode,
		Password:          password,
		Timestamp:         ts,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            json.Number(preq.Amount.String()),
		PartyA:            preq.PhoneNumber,
		PartyB:            c.cfg.ShortCode,
		PhoneNumber:       preq.PhoneNumber,
		CallBackURL:       c.cfg.CallbackURL,
		AccountReference:  preq.AccountReference,
		TransactionDesc:   desc,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal stk push payload: %w", err)
	}

	url := c.cfg.BaseURL + "/mpesa/stkpush/v1/processrequest"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build stk push request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stk push request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("stk push returned status %d: %s", resp.StatusCode, string(raw))
	}

	var pushResp provider.STKPushResponse
	if err := json.NewDecoder(resp.Body).Decode(&pushResp); err != nil {
		return nil, fmt.Errorf("decode stk push response: %w", err)
	}
	c.logger.Debug("stk push response",
		"response_code", pushResp.ResponseCode,
		"checkout_request_id", pushResp.CheckoutRequestID,
	)
	return &pushResp, nil
}

var _ provider.Processor = (*Client)(nil)
