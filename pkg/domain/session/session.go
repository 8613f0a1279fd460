// Package session models short-lived, single-use QR sessions that seed
// scan-based payment flows.
package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wanjalab/pesaflow/pkg/domain"
)

// Kind distinguishes who pays when the session is scanned.
type Kind string

const (
	// KindSend encodes "the scanner receives money from the owner".
	KindSend Kind = "send"
	// KindReceive encodes "the scanner pays the owner".
	KindReceive Kind = "receive"
)

// ParseKind validates a raw kind string.
func ParseKind(raw string) (Kind, error) {
	switch Kind(raw) {
	case KindSend, KindReceive:
		return Kind(raw), nil
	default:
		return "", domain.ErrInvalidSessionKind
	}
}

// Session is an ephemeral QR session. A nil Amount means the scanning party
// supplies the amount.
type Session struct {
	ID         string
	OwnerPhone string
	Amount     *decimal.Decimal
	Kind       Kind
	CreatedAt  time.Time
	ExpiresAt  time.Time
	UsedAt     *time.Time
}

// New creates a session expiring ttl after now.
func New(
	ownerPhone string,
	amount *decimal.Decimal,
	kind Kind,
	ttl time.Duration,
	now time.Time,
) (*Session, error) {
	if ownerPhone == "" {
		return nil, domain.ErrPhoneNumberRequired
	}
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, err
	}
	if amount != nil && !amount.IsPositive() {
		return nil, domain.ErrAmountMustBePositive
	}
	return &Session{
		ID:         uuid.NewString(),
		OwnerPhone: ownerPhone,
		Amount:     amount,
		Kind:       kind,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}, nil
}

// ValidAt reports whether the session may still be consumed at the given
// instant. Once used or expired a session is permanently invalid.
func (s *Session) ValidAt(now time.Time) error {
	if s.UsedAt != nil {
		return domain.ErrSessionAlreadyUsed
	}
	if !now.Before(s.ExpiresAt) {
		return domain.ErrSessionExpired
	}
	return nil
}
