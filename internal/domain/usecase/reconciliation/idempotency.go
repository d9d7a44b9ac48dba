package reconciliation

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/persistence"
)

// IdempotencyHandler makes deposit creation idempotent: two create calls with
// the same client-supplied token resolve to the same transaction instead of
// two money movements.
type IdempotencyHandler struct {
	transactionRepo persistence.TransactionRepository
}

// NewIdempotencyHandler creates a new IdempotencyHandler
func NewIdempotencyHandler(transactionRepo persistence.TransactionRepository) *IdempotencyHandler {
	return &IdempotencyHandler{
		transactionRepo: transactionRepo,
	}
}

// CheckCreation looks up an existing transaction for the idempotency token.
// Returns the transaction, a boolean indicating whether it was found, and any error.
func (h *IdempotencyHandler) CheckCreation(
	ctx context.Context,
	idempotencyToken string,
) (*entity.Transaction, bool, error) {
	txn, err := h.transactionRepo.GetByIdempotencyToken(ctx, idempotencyToken)
	if err != nil {
		if errors.Is(err, errs.ErrTransactionNotFound) {
			// No prior creation with this token, safe to proceed
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to check creation idempotency: %w", err)
	}
	return txn, true, nil
}
