package entity

import (
	"testing"
	"time"

	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	coremocks "github.com/amirhossein-jamali/payment-reconciler/mocks/port/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDepositTransaction(t *testing.T) {
	fixedTime := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	mockTime := coremocks.NewMockTimeProvider(t)
	mockTime.On("Now").Return(fixedTime).Maybe()

	t.Run("Valid gateway deposit", func(t *testing.T) {
		txn, err := NewDepositTransaction(1, "token-1", "100.50", ChannelGateway, mockTime)

		require.NoError(t, err)
		assert.NotEmpty(t, txn.ID)
		assert.Equal(t, uint64(1), txn.UserID)
		assert.Equal(t, "token-1", txn.IdempotencyToken)
		assert.Equal(t, DirectionDeposit, txn.Direction)
		assert.Equal(t, ChannelGateway, txn.Channel)
		assert.Equal(t, "100.50", txn.Amount)
		assert.Equal(t, int64(10050), txn.AmountInCents)
		assert.Equal(t, StatusPending, txn.Status)
		assert.Equal(t, GatewayNotApplicable, txn.GatewayPhase)
		assert.Equal(t, CasinoWaiting, txn.CasinoPhase)
		assert.False(t, txn.LedgerCredited)
		assert.Equal(t, fixedTime, txn.CreatedAt)
		require.Len(t, txn.Timeline, 1)
		assert.Equal(t, string(StatusPending), txn.Timeline[0].Phase)
	})

	t.Run("Amount is normalized to two decimal places", func(t *testing.T) {
		txn, err := NewDepositTransaction(1, "token-2", "50.5", ChannelGateway, mockTime)

		require.NoError(t, err)
		assert.Equal(t, "50.50", txn.Amount)
		assert.Equal(t, int64(5050), txn.AmountInCents)
	})

	t.Run("Zero user ID", func(t *testing.T) {
		txn, err := NewDepositTransaction(0, "token-3", "10.00", ChannelGateway, mockTime)

		assert.Nil(t, txn)
		assert.ErrorIs(t, err, errs.ErrInvalidUserID)
	})

	t.Run("Empty idempotency token", func(t *testing.T) {
		txn, err := NewDepositTransaction(1, "", "10.00", ChannelGateway, mockTime)

		assert.Nil(t, txn)
		assert.ErrorIs(t, err, errs.ErrInvalidIdempotencyToken)
	})

	t.Run("Invalid channel", func(t *testing.T) {
		txn, err := NewDepositTransaction(1, "token-4", "10.00", Channel("crypto"), mockTime)

		assert.Nil(t, txn)
		assert.ErrorIs(t, err, errs.ErrInvalidChannel)
	})

	t.Run("Invalid amount", func(t *testing.T) {
		txn, err := NewDepositTransaction(1, "token-5", "-10.00", ChannelGateway, mockTime)

		assert.Nil(t, txn)
		assert.ErrorIs(t, err, errs.ErrNegativeAmount)
	})

	t.Run("Unique IDs across creations", func(t *testing.T) {
		first, err := NewDepositTransaction(1, "token-6", "10.00", ChannelGateway, mockTime)
		require.NoError(t, err)
		second, err := NewDepositTransaction(1, "token-7", "10.00", ChannelGateway, mockTime)
		require.NoError(t, err)

		assert.NotEqual(t, first.ID, second.ID)
	})
}

func TestTransactionIsTerminal(t *testing.T) {
	tests := []struct {
		status   Status
		terminal bool
	}{
		{StatusPending, false},
		{StatusAwaitingPayment, false},
		{StatusPaymentConfirmed, false},
		{StatusProcessingCasino, false},
		{StatusCompleted, true},
		{StatusFailed, true},
		{StatusExpired, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			txn := &Transaction{Status: tt.status}
			assert.Equal(t, tt.terminal, txn.IsTerminal())
		})
	}
}

func TestTransactionPaymentReceived(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Not received initially", func(t *testing.T) {
		txn := &Transaction{GatewayPhase: GatewayPending}
		assert.False(t, txn.PaymentReceived())
	})

	t.Run("Received via gateway completion", func(t *testing.T) {
		txn := &Transaction{GatewayPhase: GatewayCompleted}
		assert.True(t, txn.PaymentReceived())
	})

	t.Run("Received via manual confirmation", func(t *testing.T) {
		txn := &Transaction{GatewayPhase: GatewayNotApplicable, PaymentConfirmedAt: &now}
		assert.True(t, txn.PaymentReceived())
	})
}

func TestTransactionIsDeadlinePassed(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	before := now.Add(-time.Minute)
	after := now.Add(time.Minute)

	t.Run("No deadline set", func(t *testing.T) {
		txn := &Transaction{}
		assert.False(t, txn.IsDeadlinePassed(now))
	})

	t.Run("Deadline in the future", func(t *testing.T) {
		txn := &Transaction{ExpiresAt: &after}
		assert.False(t, txn.IsDeadlinePassed(now))
	})

	t.Run("Deadline in the past", func(t *testing.T) {
		txn := &Transaction{ExpiresAt: &before}
		assert.True(t, txn.IsDeadlinePassed(now))
	})

	t.Run("Deadline exactly now", func(t *testing.T) {
		txn := &Transaction{ExpiresAt: &now}
		assert.True(t, txn.IsDeadlinePassed(now))
	})
}

func TestTransactionAppendTimeline(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Appends distinct phases", func(t *testing.T) {
		txn := &Transaction{}
		assert.True(t, txn.AppendTimeline("pending", "Deposit created", now))
		assert.True(t, txn.AppendTimeline("awaiting_payment", "Awaiting gateway payment", now))
		assert.Len(t, txn.Timeline, 2)
	})

	t.Run("Absorbs a repeated last phase", func(t *testing.T) {
		txn := &Transaction{}
		assert.True(t, txn.AppendTimeline("gateway_pending", "Gateway payment pending", now))
		assert.False(t, txn.AppendTimeline("gateway_pending", "Gateway payment pending", now.Add(time.Second)))
		assert.Len(t, txn.Timeline, 1)
	})

	t.Run("A phase may recur after another entry", func(t *testing.T) {
		txn := &Transaction{}
		txn.AppendTimeline("a", "first", now)
		txn.AppendTimeline("b", "second", now)
		assert.True(t, txn.AppendTimeline("a", "third", now))
		assert.Len(t, txn.Timeline, 3)
	})

	t.Run("LastTimelinePhase", func(t *testing.T) {
		txn := &Transaction{}
		assert.Equal(t, "", txn.LastTimelinePhase())
		txn.AppendTimeline("pending", "Deposit created", now)
		assert.Equal(t, "pending", txn.LastTimelinePhase())
	})
}

func TestTransactionAttachGatewayPayment(t *testing.T) {
	fixedTime := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	expiresAt := fixedTime.Add(15 * time.Minute)
	mockTime := coremocks.NewMockTimeProvider(t)
	mockTime.On("Now").Return(fixedTime).Maybe()

	t.Run("From pending", func(t *testing.T) {
		txn, err := NewDepositTransaction(1, "token-1", "10.00", ChannelGateway, mockTime)
		require.NoError(t, err)

		err = txn.AttachGatewayPayment("ext-ref-1", "https://pay.example/abc", expiresAt, mockTime)

		require.NoError(t, err)
		assert.Equal(t, StatusAwaitingPayment, txn.Status)
		assert.Equal(t, GatewayPending, txn.GatewayPhase)
		assert.Equal(t, "ext-ref-1", txn.ExternalReference)
		assert.Equal(t, "https://pay.example/abc", txn.PayURL)
		require.NotNil(t, txn.ExpiresAt)
		assert.Equal(t, expiresAt, *txn.ExpiresAt)
		require.NotNil(t, txn.NextPollAt)
		assert.Equal(t, string(StatusAwaitingPayment), txn.LastTimelinePhase())
	})

	t.Run("Rejected outside pending", func(t *testing.T) {
		txn, err := NewDepositTransaction(1, "token-2", "10.00", ChannelGateway, mockTime)
		require.NoError(t, err)
		require.NoError(t, txn.AttachGatewayPayment("ext-ref-2", "", expiresAt, mockTime))

		err = txn.AttachGatewayPayment("ext-ref-3", "", expiresAt, mockTime)

		assert.ErrorIs(t, err, errs.ErrInvalidRequest)
	})
}

func TestTransactionMarkAwaitingManualReview(t *testing.T) {
	fixedTime := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	deadline := fixedTime.Add(48 * time.Hour)
	mockTime := coremocks.NewMockTimeProvider(t)
	mockTime.On("Now").Return(fixedTime).Maybe()

	t.Run("From pending", func(t *testing.T) {
		txn, err := NewDepositTransaction(1, "token-1", "10.00", ChannelManual, mockTime)
		require.NoError(t, err)

		err = txn.MarkAwaitingManualReview(deadline, mockTime)

		require.NoError(t, err)
		assert.Equal(t, StatusAwaitingPayment, txn.Status)
		assert.Equal(t, GatewayNotApplicable, txn.GatewayPhase)
		require.NotNil(t, txn.ExpiresAt)
		assert.Equal(t, deadline, *txn.ExpiresAt)
		assert.Nil(t, txn.NextPollAt)
	})

	t.Run("Rejected outside pending", func(t *testing.T) {
		txn, err := NewDepositTransaction(1, "token-2", "10.00", ChannelManual, mockTime)
		require.NoError(t, err)
		require.NoError(t, txn.MarkAwaitingManualReview(deadline, mockTime))

		err = txn.MarkAwaitingManualReview(deadline, mockTime)

		assert.ErrorIs(t, err, errs.ErrInvalidRequest)
	})
}

func TestIsValidChannelString(t *testing.T) {
	assert.True(t, IsValidChannelString("gateway"))
	assert.True(t, IsValidChannelString("manual"))
	assert.True(t, IsValidChannelString("internal"))
	assert.False(t, IsValidChannelString("crypto"))
	assert.False(t, IsValidChannelString(""))
}
