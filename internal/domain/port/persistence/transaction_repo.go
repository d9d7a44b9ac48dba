package persistence

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
)

// TransactionRepository defines essential methods to interact with transaction data
type TransactionRepository interface {
	// Create saves a new transaction
	//
	// Possible errors:
	// - ErrDuplicateTransaction: If a transaction with the same idempotency token
	//   or external reference already exists
	// - ErrUserNotFound: If the referenced user does not exist
	// - ErrDatabaseConnection: If the database connection fails
	Create(ctx context.Context, transaction *entity.Transaction) error

	// UpdateGuarded persists transaction state under an optimistic
	// compare-and-set on the Version column. Every phase-advancing write in
	// the reconciliation engine goes through this method; a lost race means a
	// concurrent writer already advanced the transaction and the caller must
	// re-read and re-decide (or absorb the signal as a duplicate).
	//
	// On success the transaction's Version is incremented in place.
	//
	// Possible errors:
	// - ErrStaleTransaction: If the stored version no longer matches
	// - ErrTransactionNotFound: If the transaction doesn't exist
	// - ErrDatabaseConnection: If the database connection fails
	UpdateGuarded(ctx context.Context, transaction *entity.Transaction) error

	// GetByID retrieves a transaction by its opaque id
	//
	// Possible errors:
	// - ErrTransactionNotFound, ErrDatabaseConnection
	GetByID(ctx context.Context, id string) (*entity.Transaction, error)

	// GetByIdempotencyToken retrieves a transaction by the client-supplied
	// creation token. Used to make create idempotent.
	//
	// Possible errors:
	// - ErrTransactionNotFound, ErrDatabaseConnection
	GetByIdempotencyToken(ctx context.Context, token string) (*entity.Transaction, error)

	// GetByExternalReference retrieves a transaction by its gateway-assigned
	// correlation id. Used to resolve webhook/poll signals.
	//
	// Possible errors:
	// - ErrTransactionNotFound, ErrDatabaseConnection
	GetByExternalReference(ctx context.Context, reference string) (*entity.Transaction, error)

	// ListDue returns non-terminal transactions whose NextPollAt is at or
	// before now, limited to the given batch size. The poller drives these
	// through the engine.
	//
	// Possible errors:
	// - ErrDatabaseConnection
	ListDue(ctx context.Context, now time.Time, limit int) ([]*entity.Transaction, error)

	// ListOverdue returns non-terminal transactions whose payment-leg
	// deadline has passed, limited to the given batch size. Used by the
	// expiry sweep.
	//
	// Possible errors:
	// - ErrDatabaseConnection
	ListOverdue(ctx context.Context, now time.Time, limit int) ([]*entity.Transaction, error)

	// ListStuck returns failed transactions whose ledger credit was applied
	// but whose casino credit permanently failed. These require operator
	// reconciliation; they are never auto-compensated.
	//
	// Possible errors:
	// - ErrDatabaseConnection
	ListStuck(ctx context.Context, limit int) ([]*entity.Transaction, error)
}
