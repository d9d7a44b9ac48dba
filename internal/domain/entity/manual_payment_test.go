package entity

import (
	"testing"
	"time"

	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	coremocks "github.com/amirhossein-jamali/payment-reconciler/mocks/port/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func manualTestTransaction(t *testing.T, mockTime *coremocks.MockTimeProvider) *Transaction {
	t.Helper()
	txn, err := NewDepositTransaction(7, "manual-token", "75.00", ChannelManual, mockTime)
	require.NoError(t, err)
	return txn
}

func TestNewManualPaymentRecord(t *testing.T) {
	fixedTime := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	mockTime := coremocks.NewMockTimeProvider(t)
	mockTime.On("Now").Return(fixedTime).Maybe()

	t.Run("Valid record", func(t *testing.T) {
		txn := manualTestTransaction(t, mockTime)

		record, err := NewManualPaymentRecord(txn, "bank_transfer", "proof/img-1.jpg", "paid at the bank", mockTime)

		require.NoError(t, err)
		assert.NotEmpty(t, record.ID)
		assert.Equal(t, txn.UserID, record.UserID)
		assert.Equal(t, txn.ID, record.TransactionID)
		assert.Equal(t, txn.Amount, record.Amount)
		assert.Equal(t, "bank_transfer", record.Method)
		assert.Equal(t, "proof/img-1.jpg", record.ProofImageRef)
		assert.Equal(t, ManualPending, record.Status)
		assert.Equal(t, uint64(0), record.AdminID)
		assert.Nil(t, record.DecidedAt)
		assert.False(t, record.IsDecided())
	})

	t.Run("Nil transaction", func(t *testing.T) {
		record, err := NewManualPaymentRecord(nil, "bank_transfer", "", "", mockTime)

		assert.Nil(t, record)
		assert.ErrorIs(t, err, errs.ErrInvalidChannel)
	})

	t.Run("Gateway channel transaction", func(t *testing.T) {
		txn, err := NewDepositTransaction(7, "gw-token", "75.00", ChannelGateway, mockTime)
		require.NoError(t, err)

		record, err := NewManualPaymentRecord(txn, "bank_transfer", "", "", mockTime)

		assert.Nil(t, record)
		assert.ErrorIs(t, err, errs.ErrInvalidChannel)
	})
}

func TestManualPaymentRecordDecisions(t *testing.T) {
	fixedTime := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	mockTime := coremocks.NewMockTimeProvider(t)
	mockTime.On("Now").Return(fixedTime).Maybe()

	newRecord := func(t *testing.T) *ManualPaymentRecord {
		record, err := NewManualPaymentRecord(manualTestTransaction(t, mockTime), "bank_transfer", "", "", mockTime)
		require.NoError(t, err)
		return record
	}

	t.Run("Approve from pending", func(t *testing.T) {
		record := newRecord(t)

		err := record.Approve(42, "verified against bank statement", mockTime)

		require.NoError(t, err)
		assert.Equal(t, ManualApproved, record.Status)
		assert.Equal(t, uint64(42), record.AdminID)
		assert.Equal(t, "verified against bank statement", record.AdminNotes)
		require.NotNil(t, record.DecidedAt)
		assert.Equal(t, fixedTime, *record.DecidedAt)
		assert.True(t, record.IsDecided())
	})

	t.Run("Reject from pending", func(t *testing.T) {
		record := newRecord(t)

		err := record.Reject(42, "proof image unreadable", mockTime)

		require.NoError(t, err)
		assert.Equal(t, ManualRejected, record.Status)
		assert.Equal(t, uint64(42), record.AdminID)
		assert.True(t, record.IsDecided())
	})

	t.Run("Expire from pending", func(t *testing.T) {
		record := newRecord(t)

		err := record.Expire(mockTime)

		require.NoError(t, err)
		assert.Equal(t, ManualExpired, record.Status)
		assert.Equal(t, uint64(0), record.AdminID)
		assert.True(t, record.IsDecided())
	})

	t.Run("Second decision is rejected", func(t *testing.T) {
		record := newRecord(t)
		require.NoError(t, record.Approve(42, "", mockTime))

		assert.ErrorIs(t, record.Approve(43, "", mockTime), errs.ErrManualAlreadyDecided)
		assert.ErrorIs(t, record.Reject(43, "", mockTime), errs.ErrManualAlreadyDecided)
		assert.ErrorIs(t, record.Expire(mockTime), errs.ErrManualAlreadyDecided)

		// The first decision stands untouched
		assert.Equal(t, ManualApproved, record.Status)
		assert.Equal(t, uint64(42), record.AdminID)
	})

	t.Run("Expiry cannot override a rejection", func(t *testing.T) {
		record := newRecord(t)
		require.NoError(t, record.Reject(42, "", mockTime))

		assert.ErrorIs(t, record.Expire(mockTime), errs.ErrManualAlreadyDecided)
		assert.Equal(t, ManualRejected, record.Status)
	})
}
