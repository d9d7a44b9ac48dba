package reconciliation

import (
	"context"
	"testing"
	"time"

	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	mpers "github.com/amirhossein-jamali/payment-reconciler/mocks/port/persistence"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyHandlerCheckCreation(t *testing.T) {
	ctx := context.Background()

	t.Run("Existing token resolves to the original transaction", func(t *testing.T) {
		repo := mpers.NewMockTransactionRepository(t)
		existing := awaitingGatewayTxn(testNow.Add(time.Hour))
		repo.On("GetByIdempotencyToken", ctx, "token-1").Return(existing, nil)

		handler := NewIdempotencyHandler(repo)
		txn, found, err := handler.CheckCreation(ctx, "token-1")

		require.NoError(t, err)
		assert.True(t, found)
		assert.Same(t, existing, txn)
	})

	t.Run("Unknown token is safe to proceed", func(t *testing.T) {
		repo := mpers.NewMockTransactionRepository(t)
		repo.On("GetByIdempotencyToken", ctx, "token-fresh").Return(nil, errs.ErrTransactionNotFound)

		handler := NewIdempotencyHandler(repo)
		txn, found, err := handler.CheckCreation(ctx, "token-fresh")

		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, txn)
	})

	t.Run("Lookup failure propagates", func(t *testing.T) {
		repo := mpers.NewMockTransactionRepository(t)
		repo.On("GetByIdempotencyToken", ctx, "token-1").Return(nil, errs.ErrDatabaseConnection)

		handler := NewIdempotencyHandler(repo)
		txn, found, err := handler.CheckCreation(ctx, "token-1")

		assert.ErrorIs(t, err, errs.ErrDatabaseConnection)
		assert.False(t, found)
		assert.Nil(t, txn)
	})
}
