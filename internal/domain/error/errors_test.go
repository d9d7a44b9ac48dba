package error

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"Invalid amount", ErrInvalidAmount, CodeInvalidAmount},
		{"Invalid user ID", ErrInvalidUserID, CodeInvalidUserID},
		{"Invalid channel", ErrInvalidChannel, CodeInvalidChannel},
		{"Duplicate transaction", ErrDuplicateTransaction, CodeDuplicateTransaction},
		{"Manual already decided", ErrManualAlreadyDecided, CodeManualAlreadyDecided},
		{"User not found", ErrUserNotFound, CodeUserNotFound},
		{"Transaction not found", ErrTransactionNotFound, CodeTransactionNotFound},
		{"Manual record not found", ErrManualRecordNotFound, CodeManualRecordNotFound},
		{"Stale transaction", ErrStaleTransaction, CodeTransactionLocked},
		{"Gateway unavailable", ErrGatewayUnavailable, CodeGatewayUnavailable},
		{"Casino unavailable", ErrCasinoUnavailable, CodeCasinoUnavailable},
		{"Wrapped error keeps its code", fmt.Errorf("context: %w", ErrTransactionNotFound), CodeTransactionNotFound},
		{"Unknown error", errors.New("something else"), CodeInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ErrorCode(tt.err))
		})
	}
}

func TestErrorClassification(t *testing.T) {
	t.Run("Transient errors", func(t *testing.T) {
		assert.True(t, IsTransient(ErrGatewayUnavailable))
		assert.True(t, IsTransient(ErrCasinoUnavailable))
		assert.True(t, IsTransient(ErrDatabaseConnection))
		assert.False(t, IsTransient(ErrGatewayRejected))
		assert.False(t, IsTransient(ErrCasinoRejected))
	})

	t.Run("Permanent errors", func(t *testing.T) {
		assert.True(t, IsPermanent(ErrGatewayRejected))
		assert.True(t, IsPermanent(ErrCasinoRejected))
		assert.False(t, IsPermanent(ErrGatewayUnavailable))
		assert.False(t, IsPermanent(ErrCasinoUnavailable))
	})

	t.Run("Wrapped errors classify the same", func(t *testing.T) {
		wrapped := fmt.Errorf("credit push failed: %w", ErrCasinoUnavailable)
		assert.True(t, IsTransient(wrapped))
		assert.False(t, IsPermanent(wrapped))
	})
}

func TestNotFoundHelpers(t *testing.T) {
	assert.True(t, IsNotFoundError(ErrNotFound))
	assert.True(t, IsNotFoundError(ErrUserNotFound))
	assert.True(t, IsNotFoundError(ErrTransactionNotFound))
	assert.True(t, IsNotFoundError(ErrManualRecordNotFound))
	assert.False(t, IsNotFoundError(ErrDuplicateTransaction))

	assert.True(t, IsUserNotFoundError(fmt.Errorf("lookup: %w", ErrUserNotFound)))
	assert.False(t, IsUserNotFoundError(ErrTransactionNotFound))

	assert.True(t, IsStaleTransactionError(fmt.Errorf("update: %w", ErrStaleTransaction)))
	assert.True(t, IsManualAlreadyDecidedError(ErrManualAlreadyDecided))
}

func TestReconciliationError(t *testing.T) {
	inner := ErrCasinoUnavailable
	err := NewReconciliationError("txn-1", 7, "casino_credit", "credit push failed", inner)

	assert.Contains(t, err.Error(), "txn-1")
	assert.Contains(t, err.Error(), "casino_credit")
	assert.ErrorIs(t, err, ErrCasinoUnavailable)

	var recErr *ReconciliationError
	assert.ErrorAs(t, err, &recErr)

	fields := recErr.LogFields()
	assert.Equal(t, "reconciliation_error", fields["error_type"])
	assert.Equal(t, "txn-1", fields["transaction_id"])
	assert.Equal(t, uint64(7), fields["user_id"])
	assert.Equal(t, CodeCasinoUnavailable, fields["error_code"])
}

func TestStuckReconciliationError(t *testing.T) {
	err := &StuckReconciliationError{
		TransactionID: "txn-1",
		UserID:        7,
		Amount:        "50.00",
		Reason:        "unknown casino account",
	}

	assert.Contains(t, err.Error(), "txn-1")
	assert.Contains(t, err.Error(), "50.00")
	assert.ErrorIs(t, err, ErrCasinoRejected)

	fields := err.LogFields()
	assert.Equal(t, "stuck_reconciliation", fields["error_type"])
	assert.Equal(t, true, fields["ledger_credited"])
}

func TestDuplicateTransactionError(t *testing.T) {
	err := NewDuplicateTransactionError("token-1", 7, "gateway")

	assert.ErrorIs(t, err, ErrDuplicateTransaction)
	assert.True(t, IsDuplicateTransactionError(err))
	assert.Contains(t, err.Error(), "token-1")

	var dupErr *DuplicateTransactionError
	assert.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "gateway", dupErr.Channel)
}
