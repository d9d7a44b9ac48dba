package model

import (
	"time"
)

// Transaction represents the database model for reconciliation transactions
type Transaction struct {
	ID                 string `gorm:"primaryKey;size:36"`
	UserID             uint64 `gorm:"not null;index"`
	IdempotencyToken   string `gorm:"uniqueIndex;not null;size:255"`
	Direction          string `gorm:"not null;size:20"`
	Channel            string `gorm:"not null;size:20"`
	Amount             string `gorm:"not null;size:50"`
	AmountInCents      int64  `gorm:"not null"`
	// Uniqueness is enforced by a partial index in the migration so that
	// manual-channel rows can share the empty reference.
	ExternalReference  string `gorm:"index;size:255"`
	PayURL             string `gorm:"type:text"`
	Status             string `gorm:"not null;size:50;index"`
	GatewayPhase       string `gorm:"not null;size:50"`
	CasinoPhase        string `gorm:"not null;size:50"`
	LedgerCredited     bool   `gorm:"not null;default:false"`
	FailureReason      string `gorm:"size:255"`
	RetryCount         int    `gorm:"not null;default:0"`
	Timeline           string `gorm:"type:jsonb"`
	PaymentConfirmedAt *time.Time
	NextPollAt         *time.Time `gorm:"index"`
	ExpiresAt          *time.Time
	CreatedAt          time.Time `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"not null"`
	Version            uint64    `gorm:"not null;default:0"`

	// Define relationships
	User User `gorm:"foreignKey:UserID;references:ID"`
}

// TableName specifies the table name for Transaction
func (Transaction) TableName() string {
	return "transactions"
}
