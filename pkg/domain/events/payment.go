// Package events defines the domain events emitted when transactions reach a
// terminal state.
package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type identifiers.
const (
	EventTypePaymentCompleted = "payment.completed"
	EventTypePaymentFailed    = "payment.failed"
)

// PaymentCompleted is emitted when a callback settles a transaction
// successfully.
type PaymentCompleted struct {
	TransactionID     uuid.UUID       `json:"transaction_id"`
	CheckoutRequestID string          `json:"checkout_request_id"`
	ReceiptReference  string          `json:"receipt_reference"`
	Amount            decimal.Decimal `json:"amount"`
	OccurredAt        time.Time       `json:"occurred_at"`
}

// Type implements domain.Event.
func (PaymentCompleted) Type() string { return EventTypePaymentCompleted }

// PaymentFailed is emitted when a transaction fails: callback failure,
// initiation failure, or reconciliation timeout.
type PaymentFailed struct {
	TransactionID     uuid.UUID `json:"transaction_id"`
	CheckoutRequestID string    `json:"checkout_request_id,omitempty"`
	ResultCode        int       `json:"result_code"`
	Reason            string    `json:"reason"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// Type implements domain.Event.
func (PaymentFailed) Type() string { return EventTypePaymentFailed }
