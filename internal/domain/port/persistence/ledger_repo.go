package persistence

import (
	"context"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
)

// LedgerRepository is the single source of truth for wallet balances. It is
// the only component allowed to mutate a user's balance; everything else
// reads snapshots.
type LedgerRepository interface {
	// ApplyCredit atomically increments the user's ledger balance, keyed by
	// transaction id. Calling it again with the same transaction id has no
	// further effect; the returned applied flag is false for replays.
	//
	// The increment and the idempotency record are written in one database
	// transaction, so a credit can never half-apply.
	//
	// Possible errors:
	// - ErrUserNotFound: If the user doesn't exist
	// - ErrAmountOverflow: If the credit would overflow the balance
	// - ErrDatabaseConnection: If the database connection fails
	ApplyCredit(ctx context.Context, transactionID string, userID uint64, amountInCents int64) (applied bool, err error)

	// GetUser retrieves a user with their current ledger balance snapshot
	//
	// Possible errors:
	// - ErrUserNotFound, ErrDatabaseConnection
	GetUser(ctx context.Context, userID uint64) (*entity.User, error)

	// CreateUser creates a new wallet user
	//
	// Possible errors:
	// - ErrDuplicateUser, ErrDatabaseConnection
	CreateUser(ctx context.Context, user *entity.User) error
}
