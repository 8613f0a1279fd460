package session

import (
	"time"

	"github.com/shopspring/decimal"
)

// QRSession is the persisted QR session row. used_at is set at most once by
// the consumption compare-and-swap; rows are never updated otherwise and
// never deleted by this system (retention sweep is external).
type QRSession struct {
	ID         string           `gorm:"type:varchar(64);primaryKey"`
	OwnerPhone string           `gorm:"type:varchar(16);not null"`
	Amount     *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Kind       string           `gorm:"type:varchar(8);not null"`
	CreatedAt  time.Time
	ExpiresAt  time.Time  `gorm:"index;not null"`
	UsedAt     *time.Time `gorm:"column:used_at"`
}

// TableName overrides the gorm default.
func (QRSession) TableName() string { return "qr_sessions" }
