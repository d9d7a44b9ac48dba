package repository

import (
	"errors"
	"testing"

	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	"github.com/stretchr/testify/assert"
)

func TestCreditOutcome(t *testing.T) {
	t.Run("Success applies the credit", func(t *testing.T) {
		applied, err := creditOutcome(nil)

		assert.True(t, applied)
		assert.NoError(t, err)
	})

	t.Run("Duplicate idempotency row is a clean no-op", func(t *testing.T) {
		// The callback returns errDuplicateCredit so GORM rolls the
		// statement back; the caller must see a replay, not an error.
		applied, err := creditOutcome(errDuplicateCredit)

		assert.False(t, applied)
		assert.NoError(t, err)
	})

	t.Run("Unknown user passes through", func(t *testing.T) {
		applied, err := creditOutcome(errs.ErrUserNotFound)

		assert.False(t, applied)
		assert.ErrorIs(t, err, errs.ErrUserNotFound)
	})

	t.Run("Other failures wrap as database errors", func(t *testing.T) {
		applied, err := creditOutcome(errors.New("connection reset"))

		assert.False(t, applied)
		assert.ErrorIs(t, err, errs.ErrDatabaseConnection)
	})
}
