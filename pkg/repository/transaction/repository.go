// Package transaction defines the payment transaction store contract.
package transaction

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wanjalab/pesaflow/pkg/dto"
)

// Repository is the durable transaction store. Terminal transitions go
// through Finalize, a compare-and-swap keyed on the row still being pending,
// so duplicate callbacks and sweep races serialize in the store rather than
// in process.
type Repository interface {
	// Create persists a new pending transaction.
	Create(ctx context.Context, create dto.TransactionCreate) error

	// Get returns the transaction or domain.ErrTransactionNotFound.
	Get(ctx context.Context, id uuid.UUID) (*dto.TransactionRead, error)

	// GetByCheckoutRequestID resolves the processor's correlation id to a
	// transaction, or domain.ErrTransactionNotFound.
	GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*dto.TransactionRead, error)

	// Update records the correlation pair assigned at push initiation.
	Update(ctx context.Context, id uuid.UUID, update dto.TransactionUpdate) error

	// Finalize applies a terminal transition iff the transaction is still
	// pending at write time. Returns false when the row was already terminal.
	Finalize(ctx context.Context, id uuid.UUID, at time.Time, update dto.TransactionFinalize) (bool, error)

	// ListStalePending returns transactions still pending that were created
	// before the cutoff, for the reconciliation sweep.
	ListStalePending(ctx context.Context, cutoff time.Time) ([]*dto.TransactionRead, error)
}
