package reconciliation

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
)

// StatusView is the read-only status surface exposed to UI and reporting
// layers. It has no side effects: a deadline that has passed is reported as
// expired immediately, even before the poller persists the transition.
type StatusView struct {
	TransactionID     string                 `json:"transactionId"`
	UserID            uint64                 `json:"userId"`
	Amount            string                 `json:"amount"`
	Channel           string                 `json:"channel"`
	OverallStatus     string                 `json:"overallStatus"`
	GatewayPhase      string                 `json:"gatewayPhase"`
	CasinoPhase       string                 `json:"casinoPhase"`
	LedgerCredited    bool                   `json:"ledgerCredited"`
	FailureReason     string                 `json:"failureReason,omitempty"`
	ExternalReference string                 `json:"externalReference,omitempty"`
	PayURL            string                 `json:"payUrl,omitempty"`
	ExpiresAt         *time.Time             `json:"expiresAt,omitempty"`
	Timeline          []entity.TimelineEntry `json:"timeline"`
	CreatedAt         time.Time              `json:"createdAt"`
	UpdatedAt         time.Time              `json:"updatedAt"`
}

// GetStatus returns the current status and timeline of a transaction.
// The view is monotonic for the caller: once the deadline has passed, every
// read reports expired regardless of poll results still in flight.
func (e *Engine) GetStatus(ctx context.Context, transactionID string) (*StatusView, error) {
	txn, err := e.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	now := e.timeProvider.Now()
	view := &StatusView{
		TransactionID:     txn.ID,
		UserID:            txn.UserID,
		Amount:            txn.Amount,
		Channel:           string(txn.Channel),
		OverallStatus:     string(txn.Status),
		GatewayPhase:      string(txn.GatewayPhase),
		CasinoPhase:       string(txn.CasinoPhase),
		LedgerCredited:    txn.LedgerCredited,
		FailureReason:     txn.FailureReason,
		ExternalReference: txn.ExternalReference,
		PayURL:            txn.PayURL,
		ExpiresAt:         txn.ExpiresAt,
		Timeline:          txn.Timeline,
		CreatedAt:         txn.CreatedAt,
		UpdatedAt:         txn.UpdatedAt,
	}

	// Derive expiry on read; the poller persists it on its next sweep
	if expiry := DecideExpiry(txn, now); expiry.Advance {
		view.OverallStatus = string(expiry.Status)
		view.GatewayPhase = string(expiry.GatewayPhase)
		view.FailureReason = expiry.FailureReason
	}

	return view, nil
}

// ListStuck returns failed transactions whose ledger credit was applied but
// whose casino credit permanently failed. This is the operator
// reconciliation worklist; these are never auto-compensated.
func (e *Engine) ListStuck(ctx context.Context, limit int) ([]*entity.Transaction, error) {
	if limit <= 0 {
		limit = e.cfg.SweepBatchSize
	}
	return e.transactionRepo.ListStuck(ctx, limit)
}
