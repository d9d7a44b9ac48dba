package model

import (
	"time"
)

// LedgerCredit records a balance credit applied for a transaction.
// The primary key on TransactionID guarantees each transaction
// credits the ledger at most once.
type LedgerCredit struct {
	TransactionID string    `gorm:"primaryKey;size:36"`
	UserID        uint64    `gorm:"not null;index"`
	AmountInCents int64     `gorm:"not null"`
	CreatedAt     time.Time `gorm:"not null"`
}

// TableName specifies the table name for LedgerCredit
func (LedgerCredit) TableName() string {
	return "ledger_credits"
}
