package gateway

import (
	"context"
)

// CreditResult is the casino backend's answer to a balance credit push
type CreditResult struct {
	Completed bool   // True if the credit is (or already was) applied
	Reason    string // Rejection reason for permanent failures
}

// CasinoAccountClient is the thin interface to the external casino backend.
// The engine pushes each confirmed deposit to the casino account exactly once,
// keyed by the transaction id.
//
// Errors are classified with the domain sentinels: ErrCasinoUnavailable for
// transient failures and ErrCasinoRejected for permanent ones (e.g. unknown
// account). The backend must honor the idempotency key: repeated calls with
// the same key have at-most-once effect.
type CasinoAccountClient interface {
	// CreditBalance pushes a credit to the given casino account
	CreditBalance(ctx context.Context, accountRef string, amount string, idempotencyKey string) (*CreditResult, error)

	// GetBalance queries the current casino account balance
	GetBalance(ctx context.Context, accountRef string) (string, error)
}
