package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is the persisted payment transaction row. checkout_request_id
// is the join key for processor callbacks; status moves from pending to a
// terminal value exactly once via the Finalize compare-and-swap.
type Transaction struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID            uuid.UUID       `gorm:"type:uuid;index"`
	PhoneNumber       string          `gorm:"type:varchar(16);not null"`
	Amount            decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Direction         string          `gorm:"type:varchar(16);not null"`
	Description       string          `gorm:"type:varchar(255)"`
	Status            string          `gorm:"type:varchar(16);not null;default:'pending';index"`
	MerchantRequestID *string         `gorm:"type:varchar(64)"`
	CheckoutRequestID *string         `gorm:"type:varchar(64);uniqueIndex"`
	ReceiptReference  *string         `gorm:"type:varchar(32)"`
	FailureDetail     *string         `gorm:"type:varchar(255)"`
	CreatedAt         time.Time       `gorm:"index"`
	UpdatedAt         time.Time
}

// TableName overrides the gorm default.
func (Transaction) TableName() string { return "transactions" }
