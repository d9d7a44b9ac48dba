package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	gw "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/gateway"
	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/persistence"
)

// Config holds the engine's scheduling knobs
type Config struct {
	// GatewayPollInterval spaces out status polls while a gateway payment is pending
	GatewayPollInterval time.Duration
	// ManualReviewSLA bounds how long a proof-of-payment may sit unreviewed
	ManualReviewSLA time.Duration
	// Retry bounds the casino-credit retry loop
	Retry RetryPolicy
	// SweepBatchSize caps how many rows one expiry sweep touches
	SweepBatchSize int
}

// DefaultConfig returns the default engine configuration
func DefaultConfig() Config {
	return Config{
		GatewayPollInterval: 5 * time.Second,
		ManualReviewSLA:     48 * time.Hour,
		Retry:               DefaultRetryPolicy(),
		SweepBatchSize:      100,
	}
}

// Engine is the reconciliation state machine plus its orchestration. It
// exclusively owns overallStatus, the gateway/casino phases and the timeline;
// other components signal it through the operations below.
//
// Every phase-advancing write goes through a compare-and-set on the
// transaction version, so duplicate webhooks, re-entrant polls and concurrent
// admin actions collapse into no-ops instead of double-credits.
type Engine struct {
	uow             persistence.UnitOfWork
	transactionRepo persistence.TransactionRepository
	ledgerRepo      persistence.LedgerRepository
	manualRepo      persistence.ManualPaymentRepository
	gatewayClient   gw.PaymentGatewayClient
	casinoClient    gw.CasinoAccountClient
	validator       *DepositValidator
	idempotency     *IdempotencyHandler
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	cfg             Config
}

// NewEngine creates a new reconciliation engine
func NewEngine(
	uow persistence.UnitOfWork,
	transactionRepo persistence.TransactionRepository,
	ledgerRepo persistence.LedgerRepository,
	manualRepo persistence.ManualPaymentRepository,
	gatewayClient gw.PaymentGatewayClient,
	casinoClient gw.CasinoAccountClient,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	cfg Config,
) *Engine {
	if cfg.GatewayPollInterval <= 0 {
		cfg.GatewayPollInterval = DefaultConfig().GatewayPollInterval
	}
	if cfg.ManualReviewSLA <= 0 {
		cfg.ManualReviewSLA = DefaultConfig().ManualReviewSLA
	}
	if cfg.Retry.MaxRetries <= 0 {
		cfg.Retry = DefaultRetryPolicy()
	}
	if cfg.SweepBatchSize <= 0 {
		cfg.SweepBatchSize = DefaultConfig().SweepBatchSize
	}
	return &Engine{
		uow:             uow,
		transactionRepo: transactionRepo,
		ledgerRepo:      ledgerRepo,
		manualRepo:      manualRepo,
		gatewayClient:   gatewayClient,
		casinoClient:    casinoClient,
		validator:       NewDepositValidator(),
		idempotency:     NewIdempotencyHandler(transactionRepo),
		timeProvider:    timeProvider,
		logger:          logger,
		cfg:             cfg,
	}
}

// CreateDepositRequest is the input for opening a new deposit
type CreateDepositRequest struct {
	UserID           uint64
	IdempotencyToken string
	Amount           string
	Channel          string
	// Manual channel proof-of-payment fields
	Method        string
	ProofImageRef string
	UserNotes     string
}

// CreateDepositResult is the outcome of a deposit creation
type CreateDepositResult struct {
	Transaction *entity.Transaction
	// ManualRecord is set for manual-channel deposits
	ManualRecord *entity.ManualPaymentRecord
	// Replayed is true when the idempotency token matched an earlier creation
	Replayed bool
}

// CreateDeposit opens a new deposit transaction. Creation is all-or-nothing:
// for the gateway channel the payment reference is obtained first and the
// transaction is persisted in one insert, so no ambiguous half-created state
// can exist. A repeated call with the same idempotency token returns the
// original transaction.
func (e *Engine) CreateDeposit(ctx context.Context, req CreateDepositRequest) (*CreateDepositResult, error) {
	if err := e.validator.ValidateCreate(req.UserID, req.IdempotencyToken, req.Channel, req.Amount); err != nil {
		return nil, err
	}

	// Idempotent creation: same token resolves to the same transaction
	existing, found, err := e.idempotency.CheckCreation(ctx, req.IdempotencyToken)
	if err != nil {
		return nil, err
	}
	if found {
		return e.replayedResult(ctx, existing)
	}

	if _, err := e.ledgerRepo.GetUser(ctx, req.UserID); err != nil {
		return nil, err
	}

	txn, err := entity.NewDepositTransaction(req.UserID, req.IdempotencyToken, req.Amount, entity.Channel(req.Channel), e.timeProvider)
	if err != nil {
		return nil, err
	}

	switch txn.Channel {
	case entity.ChannelGateway:
		return e.createGatewayDeposit(ctx, txn)
	case entity.ChannelManual:
		return e.createManualDeposit(ctx, txn, req)
	default:
		return nil, fmt.Errorf("%w: %s", errs.ErrInvalidChannel, req.Channel)
	}
}

// createGatewayDeposit obtains the payment reference synchronously before
// anything is persisted. A gateway failure here is a local, non-retryable
// creation error.
func (e *Engine) createGatewayDeposit(ctx context.Context, txn *entity.Transaction) (*CreateDepositResult, error) {
	payment, err := e.gatewayClient.CreatePayment(ctx, txn.Amount)
	if err != nil {
		e.logger.Warn("Gateway refused payment creation", map[string]any{
			"user_id": txn.UserID,
			"amount":  txn.Amount,
			"error":   err.Error(),
		})
		return nil, fmt.Errorf("failed to create gateway payment: %w", err)
	}

	if err := txn.AttachGatewayPayment(payment.ExternalReference, payment.PayURL, payment.ExpiresAt, e.timeProvider); err != nil {
		return nil, err
	}

	if err := e.transactionRepo.Create(ctx, txn); err != nil {
		// A concurrent create with the same token won the insert race;
		// resolve to the winner for idempotency.
		if errs.IsDuplicateTransactionError(err) {
			if winner, found, idemErr := e.idempotency.CheckCreation(ctx, txn.IdempotencyToken); idemErr == nil && found {
				return e.replayedResult(ctx, winner)
			}
		}
		return nil, err
	}

	e.logger.Info("Gateway deposit created", map[string]any{
		"transaction_id":     txn.ID,
		"user_id":            txn.UserID,
		"amount":             txn.Amount,
		"external_reference": txn.ExternalReference,
	})
	return &CreateDepositResult{Transaction: txn}, nil
}

// createManualDeposit persists the transaction and its proof-of-payment
// record together; an admin decision later acts as the completion signal.
func (e *Engine) createManualDeposit(ctx context.Context, txn *entity.Transaction, req CreateDepositRequest) (*CreateDepositResult, error) {
	deadline := e.timeProvider.Now().Add(e.cfg.ManualReviewSLA)
	if err := txn.MarkAwaitingManualReview(deadline, e.timeProvider); err != nil {
		return nil, err
	}

	record, err := entity.NewManualPaymentRecord(txn, req.Method, req.ProofImageRef, req.UserNotes, e.timeProvider)
	if err != nil {
		return nil, err
	}

	txCtx, err := e.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	txnRepo := e.uow.GetTransactionRepository(txCtx)
	manualRepo := e.uow.GetManualPaymentRepository(txCtx)

	if err := txnRepo.Create(txCtx, txn); err != nil {
		_ = e.uow.Rollback(txCtx)
		if errs.IsDuplicateTransactionError(err) {
			if winner, found, idemErr := e.idempotency.CheckCreation(ctx, txn.IdempotencyToken); idemErr == nil && found {
				return e.replayedResult(ctx, winner)
			}
		}
		return nil, err
	}
	if err := manualRepo.Create(txCtx, record); err != nil {
		_ = e.uow.Rollback(txCtx)
		return nil, err
	}
	if err := e.uow.Commit(txCtx); err != nil {
		return nil, err
	}

	e.logger.Info("Manual deposit submitted for review", map[string]any{
		"transaction_id": txn.ID,
		"record_id":      record.ID,
		"user_id":        txn.UserID,
		"amount":         txn.Amount,
		"review_by":      deadline,
	})
	return &CreateDepositResult{Transaction: txn, ManualRecord: record}, nil
}

// replayedResult rebuilds the creation result for an idempotent replay
func (e *Engine) replayedResult(ctx context.Context, txn *entity.Transaction) (*CreateDepositResult, error) {
	result := &CreateDepositResult{Transaction: txn, Replayed: true}
	if txn.Channel == entity.ChannelManual {
		record, err := e.manualRepo.GetByTransactionID(ctx, txn.ID)
		if err != nil && !errs.IsNotFoundError(err) {
			return nil, err
		}
		result.ManualRecord = record
	}
	return result, nil
}

// ObserveGatewayStatus feeds a gateway status signal (poll result or webhook)
// into the state machine. Duplicate and out-of-order signals are absorbed
// silently; a completed signal credits the ledger exactly once.
func (e *Engine) ObserveGatewayStatus(ctx context.Context, externalReference string, status gw.PaymentStatus) error {
	txn, err := e.transactionRepo.GetByExternalReference(ctx, externalReference)
	if err != nil {
		return err
	}

	now := e.timeProvider.Now()
	decision := DecideGatewaySignal(txn, status, now)

	// A completed result landing after the deadline still expires the
	// transaction. The money is real, so operators get a loud signal to
	// reconcile it manually instead of a silent credit.
	if decision.Advance && decision.Status == entity.StatusExpired && status == gw.PaymentCompleted {
		e.logger.Warn("Gateway payment completed after the deadline, funds require manual reconciliation", map[string]any{
			"transaction_id":     txn.ID,
			"external_reference": externalReference,
			"amount":             txn.Amount,
		})
	}

	if !decision.Advance {
		changed := ApplyDecision(txn, decision, now)
		// Keep a pending gateway payment on the polling schedule
		if txn.Status == entity.StatusAwaitingPayment && txn.Channel == entity.ChannelGateway {
			next := now.Add(e.cfg.GatewayPollInterval)
			txn.NextPollAt = &next
			changed = true
		}
		if !changed {
			return nil
		}
		return e.persistGuarded(ctx, txn)
	}

	return e.applyDecision(ctx, txn, decision, now)
}

// ProcessCasinoCredit pushes the casino-account leg of a confirmed deposit.
// The ledger credit is already durable by the time this state is reachable;
// a permanently failed casino credit is surfaced for operators and never
// auto-compensated with a ledger debit.
func (e *Engine) ProcessCasinoCredit(ctx context.Context, transactionID string) error {
	txn, err := e.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return err
	}

	now := e.timeProvider.Now()

	// First visit after payment confirmation: claim the casino leg
	if txn.Status == entity.StatusPaymentConfirmed {
		start := DecideCasinoStart(txn, now)
		if !start.Advance {
			return nil
		}
		ApplyDecision(txn, start, now)
		if err := e.persistGuarded(ctx, txn); err != nil {
			return err
		}
	}

	if txn.Status != entity.StatusProcessingCasino {
		return nil
	}

	user, err := e.ledgerRepo.GetUser(ctx, txn.UserID)
	if err != nil {
		return err
	}

	outcome, reason := e.attemptCasinoCredit(ctx, user.CasinoAccountRef, txn)
	decision := DecideCasinoResult(txn, outcome, reason, e.cfg.Retry, now)

	if decision.Advance && decision.Status == entity.StatusFailed && txn.LedgerCredited {
		stuck := &errs.StuckReconciliationError{
			TransactionID: txn.ID,
			UserID:        txn.UserID,
			Amount:        txn.Amount,
			Reason:        decision.FailureReason,
		}
		e.logger.Error("Reconciliation stuck: operator intervention required", stuck.LogFields())
	}

	return e.applyDecision(ctx, txn, decision, now)
}

// attemptCasinoCredit performs one credit push and classifies the result
func (e *Engine) attemptCasinoCredit(ctx context.Context, accountRef string, txn *entity.Transaction) (CasinoOutcome, string) {
	result, err := e.casinoClient.CreditBalance(ctx, accountRef, txn.Amount, txn.ID)
	if err != nil {
		if errs.IsPermanent(err) {
			return CasinoOutcomePermanent, err.Error()
		}
		e.logger.Warn("Transient casino credit failure", map[string]any{
			"transaction_id": txn.ID,
			"retry_count":    txn.RetryCount,
			"error":          err.Error(),
		})
		return CasinoOutcomeTransient, ""
	}
	if !result.Completed {
		return CasinoOutcomePermanent, result.Reason
	}
	return CasinoOutcomeCompleted, ""
}

// ExpireOverdue moves transactions past their payment-leg deadline to
// expired, together with any attached manual payment record. Returns how
// many transactions were expired.
func (e *Engine) ExpireOverdue(ctx context.Context) (int, error) {
	now := e.timeProvider.Now()
	overdue, err := e.transactionRepo.ListOverdue(ctx, now, e.cfg.SweepBatchSize)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, txn := range overdue {
		decision := DecideExpiry(txn, now)
		if !decision.Advance {
			continue
		}
		if err := e.expireOne(ctx, txn, decision, now); err != nil {
			e.logger.Warn("Failed to expire transaction", map[string]any{
				"transaction_id": txn.ID,
				"error":          err.Error(),
			})
			continue
		}
		expired++
	}

	e.expireOrphanedRecords(ctx, now)
	return expired, nil
}

// expireOrphanedRecords finalizes pending manual review records past the SLA
// whose transaction no longer shows up in the overdue sweep, for example
// after a partial failure between the record write and the status write.
func (e *Engine) expireOrphanedRecords(ctx context.Context, now time.Time) {
	cutoff := now.Add(-e.cfg.ManualReviewSLA)
	records, err := e.manualRepo.ListOverdue(ctx, cutoff, e.cfg.SweepBatchSize)
	if err != nil {
		e.logger.Warn("Failed to list overdue manual records", map[string]any{
			"error": err.Error(),
		})
		return
	}
	for _, record := range records {
		if record.IsDecided() {
			continue
		}
		if err := record.Expire(e.timeProvider); err != nil {
			continue
		}
		if err := e.manualRepo.Decide(ctx, record); err != nil && !errs.IsManualAlreadyDecidedError(err) {
			e.logger.Warn("Failed to expire manual record", map[string]any{
				"record_id": record.ID,
				"error":     err.Error(),
			})
		}
	}
}

// expireOne applies an expiry decision; for manual-channel transactions the
// review record expires in the same database transaction
func (e *Engine) expireOne(ctx context.Context, txn *entity.Transaction, decision Decision, now time.Time) error {
	if txn.Channel != entity.ChannelManual {
		ApplyDecision(txn, decision, now)
		return e.persistGuarded(ctx, txn)
	}

	record, err := e.manualRepo.GetByTransactionID(ctx, txn.ID)
	if err != nil && !errs.IsNotFoundError(err) {
		return err
	}

	txCtx, err := e.uow.Begin(ctx)
	if err != nil {
		return err
	}
	if record != nil && !record.IsDecided() {
		if err := record.Expire(e.timeProvider); err == nil {
			if err := e.uow.GetManualPaymentRepository(txCtx).Decide(txCtx, record); err != nil && !errs.IsManualAlreadyDecidedError(err) {
				_ = e.uow.Rollback(txCtx)
				return err
			}
		}
	}
	ApplyDecision(txn, decision, now)
	if err := e.uow.GetTransactionRepository(txCtx).UpdateGuarded(txCtx, txn); err != nil {
		_ = e.uow.Rollback(txCtx)
		if errs.IsStaleTransactionError(err) {
			return nil
		}
		return err
	}
	return e.uow.Commit(txCtx)
}

// applyDecision persists an advancing decision. A decision carrying the
// ledger credit commits the credit and the status write atomically; losing
// the version race anywhere means another caller already handled the signal.
func (e *Engine) applyDecision(ctx context.Context, txn *entity.Transaction, decision Decision, now time.Time) error {
	if !decision.Advance {
		if ApplyDecision(txn, decision, now) {
			return e.persistGuarded(ctx, txn)
		}
		return nil
	}

	if !decision.ApplyLedgerCredit {
		ApplyDecision(txn, decision, now)
		return e.persistGuarded(ctx, txn)
	}

	txCtx, err := e.uow.Begin(ctx)
	if err != nil {
		return err
	}

	ledger := e.uow.GetLedgerRepository(txCtx)
	applied, err := ledger.ApplyCredit(txCtx, txn.ID, txn.UserID, txn.AmountInCents)
	if err != nil {
		_ = e.uow.Rollback(txCtx)
		return fmt.Errorf("failed to apply ledger credit: %w", err)
	}

	ApplyDecision(txn, decision, now)
	txn.LedgerCredited = true

	if err := e.uow.GetTransactionRepository(txCtx).UpdateGuarded(txCtx, txn); err != nil {
		_ = e.uow.Rollback(txCtx)
		if errs.IsStaleTransactionError(err) {
			// A concurrent signal already confirmed this payment; the
			// rolled-back credit never happened. Absorb the duplicate.
			e.logger.Debug("Duplicate payment confirmation absorbed", map[string]any{
				"transaction_id": txn.ID,
			})
			return nil
		}
		return err
	}
	if err := e.uow.Commit(txCtx); err != nil {
		return err
	}

	e.logger.Info("Ledger credit applied", map[string]any{
		"transaction_id":  txn.ID,
		"user_id":         txn.UserID,
		"amount":          txn.Amount,
		"newly_applied":   applied,
		"channel":         txn.Channel,
	})
	return nil
}

// persistGuarded writes the transaction under the version guard, absorbing a
// lost race as a duplicate signal
func (e *Engine) persistGuarded(ctx context.Context, txn *entity.Transaction) error {
	err := e.transactionRepo.UpdateGuarded(ctx, txn)
	if err == nil {
		return nil
	}
	if errors.Is(err, errs.ErrStaleTransaction) {
		e.logger.Debug("Concurrent update absorbed", map[string]any{
			"transaction_id": txn.ID,
			"status":         txn.Status,
		})
		return nil
	}
	return err
}
