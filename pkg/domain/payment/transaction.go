// Package payment models push-payment transactions and the processor
// callbacks that settle them.
package payment

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"time"

	"github.com/wanjalab/pesaflow/pkg/domain"
)

// Status is a transaction's lifecycle state. It transitions exactly once
// from StatusPending to a terminal state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Direction classifies what the payment was for.
type Direction string

const (
	DirectionSent     Direction = "sent"
	DirectionReceived Direction = "received"
	DirectionBill     Direction = "bill"
	DirectionAirtime  Direction = "airtime"
	DirectionWithdraw Direction = "withdraw"
)

// Transaction is a push payment tracked from initiation to its terminal
// state. MerchantRequestID/CheckoutRequestID form the correlation pair
// assigned by the processor; they are nil until initiation succeeds.
type Transaction struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	PhoneNumber       string
	Amount            decimal.Decimal
	Direction         Direction
	Description       string
	Status            Status
	MerchantRequestID *string
	CheckoutRequestID *string
	ReceiptReference  *string
	FailureDetail     *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// countryCode is the prefix Daraja expects in place of the leading zero.
const countryCode = "254"

// NormalizePhoneNumber converts a local phone number to the processor's
// expected format: 07XXXXXXXX becomes 2547XXXXXXXX. Numbers already in
// international form pass through, with a leading + stripped.
func NormalizePhoneNumber(raw string) (string, error) {
	n := strings.TrimSpace(raw)
	n = strings.TrimPrefix(n, "+")
	if n == "" {
		return "", domain.ErrPhoneNumberRequired
	}
	if strings.HasPrefix(n, "0") && len(n) == 10 {
		n = countryCode + n[1:]
	}
	if !strings.HasPrefix(n, countryCode) || len(n) != 12 {
		return "", domain.ErrInvalidPhoneNumber
	}
	for _, r := range n {
		if r < '0' || r > '9' {
			return "", domain.ErrInvalidPhoneNumber
		}
	}
	return n, nil
}
