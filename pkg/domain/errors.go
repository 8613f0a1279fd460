// Package domain holds the core entities and typed errors shared across the
// payment session and reconciliation subsystem.
package domain

import "errors"

// ErrSessionNotFound is returned when no QR session exists for an id.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionExpired is returned when a QR session's TTL has elapsed.
var ErrSessionExpired = errors.New("session expired")

// ErrSessionAlreadyUsed is returned when a QR session was already consumed.
var ErrSessionAlreadyUsed = errors.New("session already used")

// ErrTransactionNotFound is returned when no transaction matches a lookup.
var ErrTransactionNotFound = errors.New("transaction not found")

// ErrPhoneNumberRequired is returned when a phone number is missing.
var ErrPhoneNumberRequired = errors.New("phone number is required")

// ErrInvalidPhoneNumber is returned when a phone number cannot be normalized
// to the processor's expected format.
var ErrInvalidPhoneNumber = errors.New("invalid phone number")

// ErrAmountMustBePositive is returned when a monetary amount is zero or negative.
var ErrAmountMustBePositive = errors.New("amount must be positive")

// ErrInvalidSessionKind is returned when a session kind is neither send nor receive.
var ErrInvalidSessionKind = errors.New("invalid session kind")

// ErrProcessorUnavailable is returned when the payment processor cannot be
// reached or times out.
var ErrProcessorUnavailable = errors.New("payment processor unavailable")

// ErrPushRejected is returned when the processor rejects a push initiation
// with a non-zero response code.
var ErrPushRejected = errors.New("push payment rejected by processor")

// Event is the marker interface for domain events.
type Event interface {
	Type() string
}
