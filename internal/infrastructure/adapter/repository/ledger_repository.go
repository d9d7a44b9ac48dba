package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// LedgerRepository implements LedgerRepository interface using GORM. The
// users table holds the authoritative balance; the ledger_credits table is
// the per-transaction idempotency record.
type LedgerRepository struct {
	db              *gorm.DB
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewLedgerRepository creates a new LedgerRepository instance
func NewLedgerRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *LedgerRepository {
	return &LedgerRepository{
		db:              db,
		timeProvider:    timeProvider,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// errDuplicateCredit aborts the credit callback when the idempotency row
// already exists. Returning nil there would leave the surrounding database
// transaction in its aborted state on Postgres; an error makes GORM roll the
// statement back properly, and creditOutcome translates it into a clean no-op.
var errDuplicateCredit = errors.New("ledger credit already applied")

// creditOutcome maps the credit transaction error onto the ApplyCredit
// result. A duplicate idempotency row is a successful replay, not a failure.
func creditOutcome(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errDuplicateCredit):
		return false, nil
	case errors.Is(err, errs.ErrUserNotFound):
		return false, errs.ErrUserNotFound
	default:
		return false, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
	}
}

// ApplyCredit atomically increments the user's balance, keyed by transaction
// id. The ledger_credits insert and the balance update run in one database
// transaction; a replayed transaction id hits the primary key and applies
// nothing.
func (r *LedgerRepository) ApplyCredit(ctx context.Context, transactionID string, userID uint64, amountInCents int64) (bool, error) {
	r.logger.Debug("Applying ledger credit", map[string]any{
		"transaction_id":  transactionID,
		"user_id":         userID,
		"amount_in_cents": amountInCents,
	})

	if amountInCents <= 0 {
		return false, errs.ErrNegativeAmount
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		credit := model.LedgerCredit{
			TransactionID: transactionID,
			UserID:        userID,
			AmountInCents: amountInCents,
			CreatedAt:     r.timeProvider.Now(),
		}

		if err := tx.Create(&credit).Error; err != nil {
			if r.errorClassifier.IsDuplicateKeyError(err) {
				return errDuplicateCredit
			}
			return err
		}

		result := tx.Model(&model.User{}).
			Where("id = ?", userID).
			Updates(map[string]interface{}{
				"balance":    gorm.Expr("balance + ?", amountInCents),
				"updated_at": r.timeProvider.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errs.ErrUserNotFound
		}

		return nil
	})

	applied, outcomeErr := creditOutcome(err)
	switch {
	case outcomeErr == nil && err != nil:
		r.logger.Debug("Ledger credit already applied", map[string]any{
			"transaction_id": transactionID,
			"user_id":        userID,
		})
	case errors.Is(outcomeErr, errs.ErrUserNotFound):
		r.logger.Warn("Ledger credit for unknown user", map[string]any{
			"transaction_id": transactionID,
			"user_id":        userID,
		})
	case outcomeErr != nil:
		r.logger.Error("Failed to apply ledger credit", map[string]any{
			"transaction_id": transactionID,
			"user_id":        userID,
			"error":          err.Error(),
		})
	}
	return applied, outcomeErr
}

// modelToEntity converts a user model to an entity
func (r *LedgerRepository) modelToEntity(userModel *model.User) (*entity.User, error) {
	user, err := entity.NewUser(
		userModel.ID,
		entity.AmountInCentsToString(userModel.Balance),
		userModel.CasinoAccountRef,
		r.timeProvider,
	)
	if err != nil {
		r.logger.Error("Failed to create user entity", map[string]any{
			"user_id": userModel.ID,
			"error":   err.Error(),
		})
		return nil, fmt.Errorf("%w: failed to create user entity: %s", errs.ErrInternalServer, err.Error())
	}

	user.CreatedAt = userModel.CreatedAt
	user.UpdatedAt = userModel.UpdatedAt

	return user, nil
}

// GetUser retrieves a user with their current balance snapshot
func (r *LedgerRepository) GetUser(ctx context.Context, userID uint64) (*entity.User, error) {
	r.logger.Debug("Getting user", map[string]any{
		"user_id": userID,
	})

	var userModel model.User
	result := r.db.WithContext(ctx).First(&userModel, userID)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			r.logger.Warn("User not found", map[string]any{
				"user_id": userID,
			})
			return nil, errs.ErrUserNotFound
		}
		r.logger.Error("Failed to get user", map[string]any{
			"user_id": userID,
			"error":   result.Error.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	return r.modelToEntity(&userModel)
}

// CreateUser creates a new wallet user
func (r *LedgerRepository) CreateUser(ctx context.Context, user *entity.User) error {
	r.logger.Debug("Creating new user", map[string]any{
		"user_id": user.ID,
		"balance": user.GetBalance(),
	})

	userModel := model.User{
		ID:               user.ID,
		Balance:          user.Balance(),
		CasinoAccountRef: user.CasinoAccountRef,
		CreatedAt:        user.CreatedAt,
		UpdatedAt:        user.UpdatedAt,
	}

	result := r.db.WithContext(ctx).Create(&userModel)
	if result.Error != nil {
		if r.errorClassifier.IsDuplicateKeyError(result.Error) {
			r.logger.Warn("Duplicate user", map[string]any{
				"user_id": user.ID,
			})
			return errs.ErrDuplicateUser
		}
		r.logger.Error("Failed to create user", map[string]any{
			"user_id": user.ID,
			"error":   result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	r.logger.Info("User created successfully", map[string]any{
		"user_id": user.ID,
	})
	return nil
}
