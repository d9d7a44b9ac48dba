package reconciliation

import (
	"time"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
	gw "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/gateway"
)

// Reason codes recorded on terminal states
const (
	ReasonGatewayFailed       = "gateway_failed"
	ReasonGatewayExpired      = "gateway_expired"
	ReasonManualRejected      = "manual_rejected"
	ReasonManualReviewExpired = "manual_review_expired"
	ReasonDeadlineExpired     = "deadline_expired"
	ReasonCasinoRejected      = "casino_rejected"
	ReasonMaxRetriesExceeded  = "max_retries_exceeded"
)

// Decision is the outcome of a pure transition function. The engine applies
// it to the transaction and persists the result under a compare-and-set
// guard; a Decision itself performs no I/O.
type Decision struct {
	// Advance is false when the signal is a no-op for the current state
	// (duplicate, out-of-order, or already terminal). No-ops are absorbed
	// silently, never raised as errors.
	Advance bool

	// ApplyLedgerCredit is true when this transition is the one that credits
	// the internal ledger. The engine applies the credit idempotently, keyed
	// by transaction id, in the same database transaction as the status write.
	ApplyLedgerCredit bool

	Status       entity.Status
	GatewayPhase entity.GatewayPhase
	CasinoPhase  entity.CasinoPhase

	// FailureReason is set for terminal failed/expired decisions
	FailureReason string

	// Timeline entries to append (subject to the entity's last-phase dedup)
	Timeline []entity.TimelineEntry

	// NextPollAt schedules the next poller visit; nil stops polling
	NextPollAt *time.Time

	// IncrementRetry consumes one unit of the casino-leg retry budget
	IncrementRetry bool

	// ConfirmPayment stamps PaymentConfirmedAt on the transaction
	ConfirmPayment bool
}

// noop is the absorbed-signal decision
func noop() Decision {
	return Decision{}
}

// observation is a timeline-only decision: no state change, but a progress
// entry the user can see if it differs from the last recorded one
func observation(phase, label string, now time.Time) Decision {
	return Decision{
		Advance: false,
		Timeline: []entity.TimelineEntry{
			{Phase: phase, Label: label, Timestamp: now},
		},
	}
}

// DecideGatewaySignal computes the transition for a gateway status
// observation (poll tick or webhook). Duplicate and late signals fall out as
// no-ops; the deadline always wins, even over a completed result arriving
// late. Once the deadline has passed every status read reports expired, so a
// late completion must never un-expire the transaction; funds that actually
// landed after the window belong to the operator worklist, not the ledger.
func DecideGatewaySignal(txn *entity.Transaction, status gw.PaymentStatus, now time.Time) Decision {
	if txn.IsTerminal() {
		return noop()
	}
	if txn.Channel != entity.ChannelGateway || txn.Status != entity.StatusAwaitingPayment {
		return noop()
	}
	if txn.IsDeadlinePassed(now) {
		return DecideExpiry(txn, now)
	}

	switch status {
	case gw.PaymentCompleted:
		return Decision{
			Advance:           true,
			ApplyLedgerCredit: true,
			ConfirmPayment:    true,
			Status:            entity.StatusPaymentConfirmed,
			GatewayPhase:      entity.GatewayCompleted,
			CasinoPhase:       entity.CasinoWaiting,
			Timeline: []entity.TimelineEntry{
				{Phase: string(entity.StatusPaymentConfirmed), Label: "Payment received", Timestamp: now},
			},
			NextPollAt: &now,
		}
	case gw.PaymentFailed:
		return Decision{
			Advance:       true,
			Status:        entity.StatusFailed,
			GatewayPhase:  entity.GatewayFailed,
			CasinoPhase:   txn.CasinoPhase,
			FailureReason: ReasonGatewayFailed,
			Timeline: []entity.TimelineEntry{
				{Phase: string(entity.StatusFailed), Label: "Gateway payment failed", Timestamp: now},
			},
		}
	case gw.PaymentExpired:
		return Decision{
			Advance:       true,
			Status:        entity.StatusExpired,
			GatewayPhase:  entity.GatewayExpired,
			CasinoPhase:   txn.CasinoPhase,
			FailureReason: ReasonGatewayExpired,
			Timeline: []entity.TimelineEntry{
				{Phase: string(entity.StatusExpired), Label: "Gateway payment expired", Timestamp: now},
			},
		}
	default:
		// Still pending at the gateway: record the observation once
		return observation("gateway_pending", "Gateway payment pending", now)
	}
}

// DecideManualDecision computes the transition for an admin approval or
// rejection of a manual-channel transaction. The gateway phase stays
// not_applicable; approval is the gateway-equivalent completion signal.
func DecideManualDecision(txn *entity.Transaction, approved bool, now time.Time) Decision {
	if txn.IsTerminal() {
		return noop()
	}
	if txn.Channel != entity.ChannelManual || txn.Status != entity.StatusAwaitingPayment {
		return noop()
	}

	if approved {
		return Decision{
			Advance:           true,
			ApplyLedgerCredit: true,
			ConfirmPayment:    true,
			Status:            entity.StatusPaymentConfirmed,
			GatewayPhase:      entity.GatewayNotApplicable,
			CasinoPhase:       entity.CasinoWaiting,
			Timeline: []entity.TimelineEntry{
				{Phase: string(entity.StatusPaymentConfirmed), Label: "Manual payment approved", Timestamp: now},
			},
			NextPollAt: &now,
		}
	}
	return Decision{
		Advance:       true,
		Status:        entity.StatusFailed,
		GatewayPhase:  entity.GatewayNotApplicable,
		CasinoPhase:   txn.CasinoPhase,
		FailureReason: ReasonManualRejected,
		Timeline: []entity.TimelineEntry{
			{Phase: string(entity.StatusFailed), Label: "Manual payment rejected", Timestamp: now},
		},
	}
}

// DecideCasinoStart moves a confirmed transaction into the casino-credit
// phase. This is the only transition that takes the casino phase out of
// waiting, so the casino leg can never start before the payment leg finished.
func DecideCasinoStart(txn *entity.Transaction, now time.Time) Decision {
	if txn.IsTerminal() {
		return noop()
	}
	if txn.Status != entity.StatusPaymentConfirmed || !txn.PaymentReceived() {
		return noop()
	}
	return Decision{
		Advance:      true,
		Status:       entity.StatusProcessingCasino,
		GatewayPhase: txn.GatewayPhase,
		CasinoPhase:  entity.CasinoPending,
		Timeline: []entity.TimelineEntry{
			{Phase: string(entity.StatusProcessingCasino), Label: "Crediting casino account", Timestamp: now},
		},
		NextPollAt: &now,
	}
}

// CasinoOutcome classifies the result of one casino credit attempt
type CasinoOutcome int

// Casino credit attempt outcomes
const (
	CasinoOutcomeCompleted CasinoOutcome = iota
	CasinoOutcomeTransient
	CasinoOutcomePermanent
)

// DecideCasinoResult computes the transition for one casino credit attempt.
// Transient failures consume retry budget and reschedule with backoff;
// permanent failures and an exhausted budget are terminal. The ledger credit
// is never reversed here: a stuck reconciliation is surfaced for operators,
// not auto-compensated.
func DecideCasinoResult(txn *entity.Transaction, outcome CasinoOutcome, reason string, policy RetryPolicy, now time.Time) Decision {
	if txn.IsTerminal() {
		return noop()
	}
	if txn.Status != entity.StatusProcessingCasino {
		return noop()
	}

	switch outcome {
	case CasinoOutcomeCompleted:
		return Decision{
			Advance:      true,
			Status:       entity.StatusCompleted,
			GatewayPhase: txn.GatewayPhase,
			CasinoPhase:  entity.CasinoCompleted,
			Timeline: []entity.TimelineEntry{
				{Phase: string(entity.StatusCompleted), Label: "Deposit completed", Timestamp: now},
			},
		}
	case CasinoOutcomePermanent:
		if reason == "" {
			reason = ReasonCasinoRejected
		}
		return Decision{
			Advance:       true,
			Status:        entity.StatusFailed,
			GatewayPhase:  txn.GatewayPhase,
			CasinoPhase:   entity.CasinoFailed,
			FailureReason: reason,
			Timeline: []entity.TimelineEntry{
				{Phase: string(entity.StatusFailed), Label: "Casino credit rejected", Timestamp: now},
			},
		}
	default:
		if txn.RetryCount+1 >= policy.MaxRetries {
			return Decision{
				Advance:        true,
				IncrementRetry: true,
				Status:         entity.StatusFailed,
				GatewayPhase:   txn.GatewayPhase,
				CasinoPhase:    entity.CasinoFailed,
				FailureReason:  ReasonMaxRetriesExceeded,
				Timeline: []entity.TimelineEntry{
					{Phase: string(entity.StatusFailed), Label: "Casino credit retries exhausted", Timestamp: now},
				},
			}
		}
		next := now.Add(policy.Backoff(txn.RetryCount + 1))
		return Decision{
			Advance:        true,
			IncrementRetry: true,
			Status:         entity.StatusProcessingCasino,
			GatewayPhase:   txn.GatewayPhase,
			CasinoPhase:    entity.CasinoPending,
			NextPollAt:     &next,
		}
	}
}

// DecideExpiry computes the deadline transition. Only states where no money
// has been received yet are expirable; once the payment leg confirmed, the
// transaction belongs to the casino leg and its retry policy.
func DecideExpiry(txn *entity.Transaction, now time.Time) Decision {
	if txn.IsTerminal() {
		return noop()
	}
	if txn.Status != entity.StatusPending && txn.Status != entity.StatusAwaitingPayment {
		return noop()
	}
	if !txn.IsDeadlinePassed(now) {
		return noop()
	}

	gatewayPhase := txn.GatewayPhase
	reason := ReasonDeadlineExpired
	label := "Payment window expired"
	switch txn.Channel {
	case entity.ChannelGateway:
		gatewayPhase = entity.GatewayExpired
		reason = ReasonGatewayExpired
	case entity.ChannelManual:
		reason = ReasonManualReviewExpired
		label = "Manual review window expired"
	}
	return Decision{
		Advance:       true,
		Status:        entity.StatusExpired,
		GatewayPhase:  gatewayPhase,
		CasinoPhase:   txn.CasinoPhase,
		FailureReason: reason,
		Timeline: []entity.TimelineEntry{
			{Phase: string(entity.StatusExpired), Label: label, Timestamp: now},
		},
	}
}

// ApplyDecision mutates the transaction according to an advancing decision.
// Timeline-only decisions may also be applied; they never change phases.
// Returns true if anything on the transaction changed.
func ApplyDecision(txn *entity.Transaction, d Decision, now time.Time) bool {
	changed := false
	for _, e := range d.Timeline {
		if txn.AppendTimeline(e.Phase, e.Label, e.Timestamp) {
			changed = true
		}
	}
	if !d.Advance {
		return changed
	}

	txn.Status = d.Status
	txn.GatewayPhase = d.GatewayPhase
	txn.CasinoPhase = d.CasinoPhase
	if d.FailureReason != "" {
		txn.FailureReason = d.FailureReason
	}
	if d.ConfirmPayment && txn.PaymentConfirmedAt == nil {
		confirmedAt := now
		txn.PaymentConfirmedAt = &confirmedAt
	}
	if d.IncrementRetry {
		txn.RetryCount++
	}
	if txn.IsTerminal() {
		txn.NextPollAt = nil
	} else {
		txn.NextPollAt = d.NextPollAt
	}
	txn.UpdatedAt = now
	return true
}
