package persistence

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
)

// ManualPaymentRepository is the durable review queue for user-submitted
// proof-of-payment records
type ManualPaymentRepository interface {
	// Create saves a new pending manual payment record
	//
	// Possible errors:
	// - ErrConstraintViolation: If a record already exists for the transaction
	// - ErrDatabaseConnection: If the database connection fails
	Create(ctx context.Context, record *entity.ManualPaymentRecord) error

	// GetByID retrieves a manual payment record
	//
	// Possible errors:
	// - ErrManualRecordNotFound, ErrDatabaseConnection
	GetByID(ctx context.Context, id string) (*entity.ManualPaymentRecord, error)

	// GetByTransactionID retrieves the record attached to a manual-channel
	// transaction. The relation is 1:1.
	//
	// Possible errors:
	// - ErrManualRecordNotFound, ErrDatabaseConnection
	GetByTransactionID(ctx context.Context, transactionID string) (*entity.ManualPaymentRecord, error)

	// Decide persists an admin decision (or expiry) with a guard on the
	// record still being pending. A concurrent double-approval loses this
	// race and gets ErrManualAlreadyDecided.
	//
	// Possible errors:
	// - ErrManualAlreadyDecided: If the record is no longer pending
	// - ErrManualRecordNotFound, ErrDatabaseConnection
	Decide(ctx context.Context, record *entity.ManualPaymentRecord) error

	// ListPending returns pending records for the admin review dashboard
	//
	// Possible errors:
	// - ErrDatabaseConnection
	ListPending(ctx context.Context, limit int) ([]*entity.ManualPaymentRecord, error)

	// ListOverdue returns pending records created before the given cutoff,
	// used by the expiry sweep to enforce the human-review SLA
	//
	// Possible errors:
	// - ErrDatabaseConnection
	ListOverdue(ctx context.Context, cutoff time.Time, limit int) ([]*entity.ManualPaymentRecord, error)
}
