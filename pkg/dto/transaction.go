package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionCreate carries a new pending transaction to the store.
type TransactionCreate struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	PhoneNumber string
	Amount      decimal.Decimal
	Direction   string
	Description string
	Status      string
}

// TransactionUpdate records the processor-assigned correlation pair after a
// successful push initiation. Nil fields are left untouched.
type TransactionUpdate struct {
	MerchantRequestID *string
	CheckoutRequestID *string
}

// TransactionFinalize carries a terminal transition. The store applies it
// only while the row is still pending.
type TransactionFinalize struct {
	Status           string
	ReceiptReference *string
	FailureDetail    *string
}

// TransactionRead is the store's view of a transaction.
type TransactionRead struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	PhoneNumber       string
	Amount            decimal.Decimal
	Direction         string
	Description       string
	Status            string
	MerchantRequestID *string
	CheckoutRequestID *string
	ReceiptReference  *string
	FailureDetail     *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
