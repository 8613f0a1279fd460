// Package cache provides the short-lived Daraja access token cache.
package cache

import (
	"context"
	"time"
)

// TokenCache stores processor access tokens with expiry. The processor's
// tokens are short-lived; callers must treat a miss as "authenticate again".
type TokenCache interface {
	// Get returns the cached token and whether one was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores a token until ttl elapses.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}
