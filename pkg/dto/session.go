// Package dto holds the read/create/update models passed between services
// and repositories.
package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SessionCreate carries a new QR session to the store.
type SessionCreate struct {
	ID         string
	OwnerPhone string
	Amount     *decimal.Decimal
	Kind       string
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// SessionRead is the store's view of a QR session.
type SessionRead struct {
	ID         string
	OwnerPhone string
	Amount     *decimal.Decimal
	Kind       string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	UsedAt     *time.Time
}
