// Package session defines the QR session store contract.
package session

import (
	"context"
	"time"

	"github.com/wanjalab/pesaflow/pkg/dto"
)

// Repository is the durable QR session store. Implementations must make
// MarkUsed a single atomic conditional write; it is the only mutation a
// session ever receives.
type Repository interface {
	// Create persists a new session.
	Create(ctx context.Context, create dto.SessionCreate) error

	// Get returns the session or domain.ErrSessionNotFound.
	Get(ctx context.Context, id string) (*dto.SessionRead, error)

	// MarkUsed sets used_at iff it is unset and the session has not expired
	// at usedAt. Returns false when the compare-and-swap did not apply.
	MarkUsed(ctx context.Context, id string, usedAt time.Time) (bool, error)
}
