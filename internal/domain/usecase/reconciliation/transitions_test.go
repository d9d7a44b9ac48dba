package reconciliation

import (
	"testing"
	"time"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
	gw "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/gateway"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// awaitingGatewayTxn builds a gateway-channel transaction waiting for payment
func awaitingGatewayTxn(expiresAt time.Time) *entity.Transaction {
	txn := &entity.Transaction{
		ID:                "txn-1",
		UserID:            1,
		Channel:           entity.ChannelGateway,
		Amount:            "50.00",
		AmountInCents:     5000,
		ExternalReference: "ext-1",
		Status:            entity.StatusAwaitingPayment,
		GatewayPhase:      entity.GatewayPending,
		CasinoPhase:       entity.CasinoWaiting,
		ExpiresAt:         &expiresAt,
	}
	txn.AppendTimeline(string(entity.StatusPending), "Deposit created", testNow.Add(-time.Minute))
	txn.AppendTimeline(string(entity.StatusAwaitingPayment), "Awaiting gateway payment", testNow.Add(-time.Minute))
	return txn
}

// awaitingManualTxn builds a manual-channel transaction waiting for review
func awaitingManualTxn(expiresAt time.Time) *entity.Transaction {
	txn := awaitingGatewayTxn(expiresAt)
	txn.Channel = entity.ChannelManual
	txn.GatewayPhase = entity.GatewayNotApplicable
	txn.ExternalReference = ""
	return txn
}

func TestDecideGatewaySignal(t *testing.T) {
	deadline := testNow.Add(time.Hour)

	t.Run("Pending signal is a timeline-only observation", func(t *testing.T) {
		txn := awaitingGatewayTxn(deadline)

		d := DecideGatewaySignal(txn, gw.PaymentPending, testNow)

		assert.False(t, d.Advance)
		assert.False(t, d.ApplyLedgerCredit)
		require.Len(t, d.Timeline, 1)
		assert.Equal(t, "gateway_pending", d.Timeline[0].Phase)
	})

	t.Run("Completed signal confirms payment and credits the ledger", func(t *testing.T) {
		txn := awaitingGatewayTxn(deadline)

		d := DecideGatewaySignal(txn, gw.PaymentCompleted, testNow)

		assert.True(t, d.Advance)
		assert.True(t, d.ApplyLedgerCredit)
		assert.True(t, d.ConfirmPayment)
		assert.Equal(t, entity.StatusPaymentConfirmed, d.Status)
		assert.Equal(t, entity.GatewayCompleted, d.GatewayPhase)
		assert.Equal(t, entity.CasinoWaiting, d.CasinoPhase)
		require.NotNil(t, d.NextPollAt)
	})

	t.Run("Failed signal is terminal without a ledger credit", func(t *testing.T) {
		txn := awaitingGatewayTxn(deadline)

		d := DecideGatewaySignal(txn, gw.PaymentFailed, testNow)

		assert.True(t, d.Advance)
		assert.False(t, d.ApplyLedgerCredit)
		assert.Equal(t, entity.StatusFailed, d.Status)
		assert.Equal(t, entity.GatewayFailed, d.GatewayPhase)
		assert.Equal(t, ReasonGatewayFailed, d.FailureReason)
	})

	t.Run("Expired signal is terminal without a ledger credit", func(t *testing.T) {
		txn := awaitingGatewayTxn(deadline)

		d := DecideGatewaySignal(txn, gw.PaymentExpired, testNow)

		assert.True(t, d.Advance)
		assert.False(t, d.ApplyLedgerCredit)
		assert.Equal(t, entity.StatusExpired, d.Status)
		assert.Equal(t, entity.GatewayExpired, d.GatewayPhase)
		assert.Equal(t, ReasonGatewayExpired, d.FailureReason)
	})

	t.Run("Signals on a terminal transaction are absorbed", func(t *testing.T) {
		txn := awaitingGatewayTxn(deadline)
		txn.Status = entity.StatusCompleted

		d := DecideGatewaySignal(txn, gw.PaymentCompleted, testNow)

		assert.False(t, d.Advance)
		assert.Empty(t, d.Timeline)
	})

	t.Run("Signals for a manual-channel transaction are absorbed", func(t *testing.T) {
		txn := awaitingManualTxn(deadline)

		d := DecideGatewaySignal(txn, gw.PaymentCompleted, testNow)

		assert.False(t, d.Advance)
	})

	t.Run("Late completed signal after payment confirmation is absorbed", func(t *testing.T) {
		txn := awaitingGatewayTxn(deadline)
		txn.Status = entity.StatusProcessingCasino

		d := DecideGatewaySignal(txn, gw.PaymentCompleted, testNow)

		assert.False(t, d.Advance)
	})

	t.Run("Deadline wins over a late pending signal", func(t *testing.T) {
		txn := awaitingGatewayTxn(testNow.Add(-time.Minute))

		d := DecideGatewaySignal(txn, gw.PaymentPending, testNow)

		assert.True(t, d.Advance)
		assert.Equal(t, entity.StatusExpired, d.Status)
		assert.Equal(t, ReasonGatewayExpired, d.FailureReason)
	})

	t.Run("Deadline wins over a late completed signal", func(t *testing.T) {
		// Status reads derive expired the moment the deadline passes, so a
		// completed result arriving afterwards must not resurrect the
		// transaction or credit the ledger.
		txn := awaitingGatewayTxn(testNow.Add(-time.Minute))

		d := DecideGatewaySignal(txn, gw.PaymentCompleted, testNow)

		assert.True(t, d.Advance)
		assert.Equal(t, entity.StatusExpired, d.Status)
		assert.Equal(t, ReasonGatewayExpired, d.FailureReason)
		assert.False(t, d.ApplyLedgerCredit)
	})
}

func TestGatewayPollSequence(t *testing.T) {
	// Three consecutive polls: pending, pending, completed. The duplicate
	// pending observation must not add a second timeline entry, and the
	// completed poll must be the only crediting transition.
	deadline := testNow.Add(time.Hour)
	txn := awaitingGatewayTxn(deadline)

	first := DecideGatewaySignal(txn, gw.PaymentPending, testNow)
	assert.True(t, ApplyDecision(txn, first, testNow))
	assert.Equal(t, "gateway_pending", txn.LastTimelinePhase())
	entries := len(txn.Timeline)

	second := DecideGatewaySignal(txn, gw.PaymentPending, testNow.Add(5*time.Second))
	assert.False(t, ApplyDecision(txn, second, testNow.Add(5*time.Second)))
	assert.Len(t, txn.Timeline, entries)

	third := DecideGatewaySignal(txn, gw.PaymentCompleted, testNow.Add(10*time.Second))
	require.True(t, third.Advance)
	assert.True(t, third.ApplyLedgerCredit)
	assert.True(t, ApplyDecision(txn, third, testNow.Add(10*time.Second)))

	assert.Equal(t, entity.StatusPaymentConfirmed, txn.Status)
	assert.Equal(t, entity.GatewayCompleted, txn.GatewayPhase)
	require.NotNil(t, txn.PaymentConfirmedAt)
	assert.Equal(t, string(entity.StatusPaymentConfirmed), txn.LastTimelinePhase())
}

func TestDecideManualDecision(t *testing.T) {
	deadline := testNow.Add(48 * time.Hour)

	t.Run("Approval confirms payment and credits the ledger", func(t *testing.T) {
		txn := awaitingManualTxn(deadline)

		d := DecideManualDecision(txn, true, testNow)

		assert.True(t, d.Advance)
		assert.True(t, d.ApplyLedgerCredit)
		assert.True(t, d.ConfirmPayment)
		assert.Equal(t, entity.StatusPaymentConfirmed, d.Status)
		assert.Equal(t, entity.GatewayNotApplicable, d.GatewayPhase)
		require.NotNil(t, d.NextPollAt)
	})

	t.Run("Rejection is terminal without a ledger credit", func(t *testing.T) {
		txn := awaitingManualTxn(deadline)

		d := DecideManualDecision(txn, false, testNow)

		assert.True(t, d.Advance)
		assert.False(t, d.ApplyLedgerCredit)
		assert.Equal(t, entity.StatusFailed, d.Status)
		assert.Equal(t, ReasonManualRejected, d.FailureReason)
	})

	t.Run("Decision on a gateway-channel transaction is absorbed", func(t *testing.T) {
		txn := awaitingGatewayTxn(deadline)

		d := DecideManualDecision(txn, true, testNow)

		assert.False(t, d.Advance)
	})

	t.Run("Decision on a terminal transaction is absorbed", func(t *testing.T) {
		txn := awaitingManualTxn(deadline)
		txn.Status = entity.StatusExpired

		d := DecideManualDecision(txn, true, testNow)

		assert.False(t, d.Advance)
	})
}

func TestDecideCasinoStart(t *testing.T) {
	t.Run("Confirmed payment claims the casino leg", func(t *testing.T) {
		txn := awaitingGatewayTxn(testNow.Add(time.Hour))
		confirmed := DecideGatewaySignal(txn, gw.PaymentCompleted, testNow)
		ApplyDecision(txn, confirmed, testNow)

		d := DecideCasinoStart(txn, testNow)

		assert.True(t, d.Advance)
		assert.Equal(t, entity.StatusProcessingCasino, d.Status)
		assert.Equal(t, entity.CasinoPending, d.CasinoPhase)
		assert.Equal(t, entity.GatewayCompleted, d.GatewayPhase)
	})

	t.Run("Cannot start before the payment leg completed", func(t *testing.T) {
		txn := awaitingGatewayTxn(testNow.Add(time.Hour))

		d := DecideCasinoStart(txn, testNow)

		assert.False(t, d.Advance)
	})

	t.Run("Cannot start on a terminal transaction", func(t *testing.T) {
		txn := awaitingGatewayTxn(testNow.Add(time.Hour))
		txn.Status = entity.StatusFailed

		d := DecideCasinoStart(txn, testNow)

		assert.False(t, d.Advance)
	})
}

// processingCasinoTxn builds a transaction mid casino-credit
func processingCasinoTxn(retryCount int) *entity.Transaction {
	txn := awaitingGatewayTxn(testNow.Add(time.Hour))
	confirmedAt := testNow.Add(-time.Minute)
	txn.Status = entity.StatusProcessingCasino
	txn.GatewayPhase = entity.GatewayCompleted
	txn.CasinoPhase = entity.CasinoPending
	txn.LedgerCredited = true
	txn.PaymentConfirmedAt = &confirmedAt
	txn.RetryCount = retryCount
	return txn
}

func TestDecideCasinoResult(t *testing.T) {
	policy := RetryPolicy{BaseDelay: 3 * time.Second, Factor: 2.0, MaxDelay: 60 * time.Second, MaxRetries: 10}

	t.Run("Completed credit finishes the deposit", func(t *testing.T) {
		txn := processingCasinoTxn(2)

		d := DecideCasinoResult(txn, CasinoOutcomeCompleted, "", policy, testNow)

		assert.True(t, d.Advance)
		assert.Equal(t, entity.StatusCompleted, d.Status)
		assert.Equal(t, entity.CasinoCompleted, d.CasinoPhase)
		assert.Nil(t, d.NextPollAt)
	})

	t.Run("Permanent failure is terminal with the rejection reason", func(t *testing.T) {
		txn := processingCasinoTxn(0)

		d := DecideCasinoResult(txn, CasinoOutcomePermanent, "unknown account", policy, testNow)

		assert.True(t, d.Advance)
		assert.Equal(t, entity.StatusFailed, d.Status)
		assert.Equal(t, entity.CasinoFailed, d.CasinoPhase)
		assert.Equal(t, "unknown account", d.FailureReason)
	})

	t.Run("Permanent failure without a reason gets the default", func(t *testing.T) {
		txn := processingCasinoTxn(0)

		d := DecideCasinoResult(txn, CasinoOutcomePermanent, "", policy, testNow)

		assert.Equal(t, ReasonCasinoRejected, d.FailureReason)
	})

	t.Run("Transient failure reschedules with backoff", func(t *testing.T) {
		txn := processingCasinoTxn(0)

		d := DecideCasinoResult(txn, CasinoOutcomeTransient, "", policy, testNow)

		assert.True(t, d.Advance)
		assert.True(t, d.IncrementRetry)
		assert.Equal(t, entity.StatusProcessingCasino, d.Status)
		require.NotNil(t, d.NextPollAt)
		assert.Equal(t, testNow.Add(3*time.Second), *d.NextPollAt)
	})

	t.Run("Backoff grows with the retry count", func(t *testing.T) {
		txn := processingCasinoTxn(2)

		d := DecideCasinoResult(txn, CasinoOutcomeTransient, "", policy, testNow)

		require.NotNil(t, d.NextPollAt)
		assert.Equal(t, testNow.Add(12*time.Second), *d.NextPollAt)
	})

	t.Run("Exhausted retry budget is terminal", func(t *testing.T) {
		txn := processingCasinoTxn(policy.MaxRetries - 1)

		d := DecideCasinoResult(txn, CasinoOutcomeTransient, "", policy, testNow)

		assert.True(t, d.Advance)
		assert.Equal(t, entity.StatusFailed, d.Status)
		assert.Equal(t, ReasonMaxRetriesExceeded, d.FailureReason)
	})

	t.Run("Result outside the casino phase is absorbed", func(t *testing.T) {
		txn := awaitingGatewayTxn(testNow.Add(time.Hour))

		d := DecideCasinoResult(txn, CasinoOutcomeCompleted, "", policy, testNow)

		assert.False(t, d.Advance)
	})
}

func TestDecideExpiry(t *testing.T) {
	t.Run("Overdue gateway transaction expires", func(t *testing.T) {
		txn := awaitingGatewayTxn(testNow.Add(-time.Minute))

		d := DecideExpiry(txn, testNow)

		assert.True(t, d.Advance)
		assert.Equal(t, entity.StatusExpired, d.Status)
		assert.Equal(t, entity.GatewayExpired, d.GatewayPhase)
		assert.Equal(t, ReasonGatewayExpired, d.FailureReason)
	})

	t.Run("Overdue manual transaction expires with the review reason", func(t *testing.T) {
		txn := awaitingManualTxn(testNow.Add(-time.Minute))

		d := DecideExpiry(txn, testNow)

		assert.True(t, d.Advance)
		assert.Equal(t, entity.StatusExpired, d.Status)
		assert.Equal(t, entity.GatewayNotApplicable, d.GatewayPhase)
		assert.Equal(t, ReasonManualReviewExpired, d.FailureReason)
	})

	t.Run("Deadline not yet passed", func(t *testing.T) {
		txn := awaitingGatewayTxn(testNow.Add(time.Minute))

		d := DecideExpiry(txn, testNow)

		assert.False(t, d.Advance)
	})

	t.Run("Confirmed payment can no longer expire", func(t *testing.T) {
		txn := processingCasinoTxn(0)
		past := testNow.Add(-time.Minute)
		txn.ExpiresAt = &past

		d := DecideExpiry(txn, testNow)

		assert.False(t, d.Advance)
	})

	t.Run("Terminal transaction stays terminal", func(t *testing.T) {
		txn := awaitingGatewayTxn(testNow.Add(-time.Minute))
		txn.Status = entity.StatusCompleted

		d := DecideExpiry(txn, testNow)

		assert.False(t, d.Advance)
	})
}

func TestApplyDecision(t *testing.T) {
	t.Run("Terminal decision clears the poll schedule", func(t *testing.T) {
		txn := awaitingGatewayTxn(testNow.Add(-time.Minute))
		next := testNow.Add(5 * time.Second)
		txn.NextPollAt = &next

		d := DecideExpiry(txn, testNow)
		require.True(t, ApplyDecision(txn, d, testNow))

		assert.Nil(t, txn.NextPollAt)
		assert.Equal(t, testNow, txn.UpdatedAt)
	})

	t.Run("PaymentConfirmedAt is stamped once", func(t *testing.T) {
		txn := awaitingGatewayTxn(testNow.Add(time.Hour))

		d := DecideGatewaySignal(txn, gw.PaymentCompleted, testNow)
		ApplyDecision(txn, d, testNow)
		require.NotNil(t, txn.PaymentConfirmedAt)
		first := *txn.PaymentConfirmedAt

		// A later confirming decision must not move the stamp
		later := testNow.Add(time.Minute)
		ApplyDecision(txn, Decision{Advance: true, ConfirmPayment: true, Status: txn.Status, GatewayPhase: txn.GatewayPhase, CasinoPhase: txn.CasinoPhase}, later)
		assert.Equal(t, first, *txn.PaymentConfirmedAt)
	})

	t.Run("Timeline-only decision reports no change when deduplicated", func(t *testing.T) {
		txn := awaitingGatewayTxn(testNow.Add(time.Hour))
		obs := observation("gateway_pending", "Gateway payment pending", testNow)

		assert.True(t, ApplyDecision(txn, obs, testNow))
		assert.False(t, ApplyDecision(txn, obs, testNow))
	})

	t.Run("Retry increment is applied", func(t *testing.T) {
		txn := processingCasinoTxn(3)
		policy := DefaultRetryPolicy()

		d := DecideCasinoResult(txn, CasinoOutcomeTransient, "", policy, testNow)
		ApplyDecision(txn, d, testNow)

		assert.Equal(t, 4, txn.RetryCount)
	})
}
