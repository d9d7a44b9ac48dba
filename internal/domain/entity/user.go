package entity

import (
	"time"

	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
)

// User represents a wallet user with an internal ledger balance. The ledger
// balance is authoritative regardless of external system state; the casino
// account balance mirrors it after a confirmed deposit.
type User struct {
	ID               uint64    // Unique identifier for the user
	balance          int64     // Ledger balance in cents to avoid floating point precision issues (private)
	CasinoAccountRef string    // External casino account reference for mirrored credits
	CreatedAt        time.Time // When the user was created
	UpdatedAt        time.Time // When the user was last updated
}

// NewUser creates a new user with the given ID and initial ledger balance
func NewUser(id uint64, initialBalance string, casinoAccountRef string, timeProvider coreport.TimeProvider) (*User, error) {
	if id == 0 {
		return nil, errs.ErrInvalidUserID
	}

	var balanceInCents int64
	if initialBalance != "" && initialBalance != "0" && initialBalance != "0.00" {
		var err error
		balanceInCents, err = ValidateAndConvertAmount(initialBalance)
		if err != nil {
			return nil, err
		}
	}

	now := timeProvider.Now()
	return &User{
		ID:               id,
		balance:          balanceInCents,
		CasinoAccountRef: casinoAccountRef,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// Balance returns the current ledger balance in cents (for internal use)
func (u *User) Balance() int64 {
	return u.balance
}

// GetBalance returns the ledger balance as a string with 2 decimal places
func (u *User) GetBalance() string {
	return EnsureTwoDecimalPlaces(AmountInCentsToString(u.balance))
}

// SetBalance updates the balance directly (for internal use, like repositories)
func (u *User) SetBalance(balanceInCents int64, timeProvider coreport.TimeProvider) {
	u.balance = balanceInCents
	u.UpdatedAt = timeProvider.Now()
}
