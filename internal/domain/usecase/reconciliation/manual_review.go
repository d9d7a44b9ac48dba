package reconciliation

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
)

// ApproveManual applies an admin approval to a pending manual payment record.
// Approval is the gateway-equivalent completion signal: the ledger is
// credited idempotently and the casino leg is scheduled. The record-level
// pending guard rejects a concurrent double-approval with
// ErrManualAlreadyDecided.
func (e *Engine) ApproveManual(ctx context.Context, paymentID string, adminID uint64, notes string) error {
	return e.decideManual(ctx, paymentID, adminID, notes, true)
}

// RejectManual applies an admin rejection: the record finalizes, the
// transaction fails, and no ledger credit is ever applied.
func (e *Engine) RejectManual(ctx context.Context, paymentID string, adminID uint64, notes string) error {
	return e.decideManual(ctx, paymentID, adminID, notes, false)
}

func (e *Engine) decideManual(ctx context.Context, paymentID string, adminID uint64, notes string, approved bool) error {
	record, err := e.manualRepo.GetByID(ctx, paymentID)
	if err != nil {
		return err
	}
	if record.IsDecided() {
		return errs.ErrManualAlreadyDecided
	}

	txn, err := e.transactionRepo.GetByID(ctx, record.TransactionID)
	if err != nil {
		return err
	}

	now := e.timeProvider.Now()
	decision := DecideManualDecision(txn, approved, now)
	if !decision.Advance {
		// The transaction already left awaiting_payment (e.g. expiry sweep
		// won the race); the record cannot be decided anymore.
		return errs.ErrManualAlreadyDecided
	}

	if approved {
		if err := record.Approve(adminID, notes, e.timeProvider); err != nil {
			return err
		}
	} else {
		if err := record.Reject(adminID, notes, e.timeProvider); err != nil {
			return err
		}
	}

	txCtx, err := e.uow.Begin(ctx)
	if err != nil {
		return err
	}

	// The pending guard on the record is the second line of defense against
	// double decisions; the first is the read above.
	if err := e.uow.GetManualPaymentRepository(txCtx).Decide(txCtx, record); err != nil {
		_ = e.uow.Rollback(txCtx)
		return err
	}

	if decision.ApplyLedgerCredit {
		if _, err := e.uow.GetLedgerRepository(txCtx).ApplyCredit(txCtx, txn.ID, txn.UserID, txn.AmountInCents); err != nil {
			_ = e.uow.Rollback(txCtx)
			return fmt.Errorf("failed to apply ledger credit: %w", err)
		}
		txn.LedgerCredited = true
	}

	ApplyDecision(txn, decision, now)
	if err := e.uow.GetTransactionRepository(txCtx).UpdateGuarded(txCtx, txn); err != nil {
		_ = e.uow.Rollback(txCtx)
		if errs.IsStaleTransactionError(err) {
			// Another writer advanced the transaction between our read and
			// this write; the record decision rolled back with it.
			return errs.ErrManualAlreadyDecided
		}
		return err
	}
	if err := e.uow.Commit(txCtx); err != nil {
		return err
	}

	e.logger.Info("Manual payment decided", map[string]any{
		"record_id":      record.ID,
		"transaction_id": txn.ID,
		"user_id":        txn.UserID,
		"admin_id":       adminID,
		"approved":       approved,
		"amount":         txn.Amount,
	})
	return nil
}

// ListPendingReviews returns manual payment records awaiting an admin decision
func (e *Engine) ListPendingReviews(ctx context.Context, limit int) ([]*entity.ManualPaymentRecord, error) {
	if limit <= 0 {
		limit = e.cfg.SweepBatchSize
	}
	return e.manualRepo.ListPending(ctx, limit)
}
