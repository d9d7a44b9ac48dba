package model

import (
	"time"
)

// User represents the database model for wallet users
type User struct {
	ID               uint64    `gorm:"primaryKey"`
	Balance          int64     `gorm:"not null"` // Balance in cents
	CasinoAccountRef string    `gorm:"not null;size:255"`
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}
