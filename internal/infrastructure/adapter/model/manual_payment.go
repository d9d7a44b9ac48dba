package model

import (
	"time"
)

// ManualPaymentRecord represents the database model for manual payment reviews
type ManualPaymentRecord struct {
	ID            string `gorm:"primaryKey;size:36"`
	UserID        uint64 `gorm:"not null;index"`
	TransactionID string `gorm:"uniqueIndex;not null;size:36"`
	Amount        string `gorm:"not null;size:50"`
	Method        string `gorm:"size:50"`
	ProofImageRef string `gorm:"type:text"`
	UserNotes     string `gorm:"type:text"`
	Status        string `gorm:"not null;size:20;index"`
	AdminID       uint64 `gorm:"default:0"`
	AdminNotes    string `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"not null"`
	DecidedAt     *time.Time

	// Define relationships
	Transaction Transaction `gorm:"foreignKey:TransactionID;references:ID"`
}

// TableName specifies the table name for ManualPaymentRecord
func (ManualPaymentRecord) TableName() string {
	return "manual_payment_records"
}
