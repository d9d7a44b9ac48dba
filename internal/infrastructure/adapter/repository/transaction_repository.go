package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// TransactionRepository implements TransactionRepository interface using GORM
type TransactionRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewTransactionRepository creates a new TransactionRepository instance
func NewTransactionRepository(db *gorm.DB, logger coreport.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// entityToModel converts a transaction entity to a database model
func (r *TransactionRepository) entityToModel(transaction *entity.Transaction) model.Transaction {
	return model.Transaction{
		ID:                 transaction.ID,
		UserID:             transaction.UserID,
		IdempotencyToken:   transaction.IdempotencyToken,
		Direction:          string(transaction.Direction),
		Channel:            string(transaction.Channel),
		Amount:             transaction.Amount,
		AmountInCents:      transaction.AmountInCents,
		ExternalReference:  transaction.ExternalReference,
		PayURL:             transaction.PayURL,
		Status:             string(transaction.Status),
		GatewayPhase:       string(transaction.GatewayPhase),
		CasinoPhase:        string(transaction.CasinoPhase),
		LedgerCredited:     transaction.LedgerCredited,
		FailureReason:      transaction.FailureReason,
		RetryCount:         transaction.RetryCount,
		Timeline:           marshalTimeline(transaction.Timeline),
		PaymentConfirmedAt: transaction.PaymentConfirmedAt,
		NextPollAt:         transaction.NextPollAt,
		ExpiresAt:          transaction.ExpiresAt,
		CreatedAt:          transaction.CreatedAt,
		UpdatedAt:          transaction.UpdatedAt,
		Version:            transaction.Version,
	}
}

// modelToEntity converts a transaction model to an entity
func (r *TransactionRepository) modelToEntity(m *model.Transaction) *entity.Transaction {
	return &entity.Transaction{
		ID:                 m.ID,
		UserID:             m.UserID,
		IdempotencyToken:   m.IdempotencyToken,
		Direction:          entity.Direction(m.Direction),
		Channel:            entity.Channel(m.Channel),
		Amount:             m.Amount,
		AmountInCents:      m.AmountInCents,
		ExternalReference:  m.ExternalReference,
		PayURL:             m.PayURL,
		Status:             entity.Status(m.Status),
		GatewayPhase:       entity.GatewayPhase(m.GatewayPhase),
		CasinoPhase:        entity.CasinoPhase(m.CasinoPhase),
		LedgerCredited:     m.LedgerCredited,
		FailureReason:      m.FailureReason,
		RetryCount:         m.RetryCount,
		Timeline:           unmarshalTimeline(m.Timeline),
		PaymentConfirmedAt: m.PaymentConfirmedAt,
		NextPollAt:         m.NextPollAt,
		ExpiresAt:          m.ExpiresAt,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
		Version:            m.Version,
	}
}

// marshalTimeline serializes the timeline for jsonb storage
func marshalTimeline(timeline []entity.TimelineEntry) string {
	if len(timeline) == 0 {
		return "[]"
	}
	data, err := json.Marshal(timeline)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// unmarshalTimeline deserializes the stored jsonb timeline
func unmarshalTimeline(raw string) []entity.TimelineEntry {
	if raw == "" {
		return nil
	}
	var timeline []entity.TimelineEntry
	if err := json.Unmarshal([]byte(raw), &timeline); err != nil {
		return nil
	}
	return timeline
}

// Create saves a new transaction
func (r *TransactionRepository) Create(ctx context.Context, transaction *entity.Transaction) error {
	r.logger.Debug("Creating transaction", map[string]any{
		"transaction_id": transaction.ID,
		"user_id":        transaction.UserID,
	})

	transactionModel := r.entityToModel(transaction)

	result := r.db.WithContext(ctx).Create(&transactionModel)

	if result.Error != nil {
		if r.errorClassifier.IsDuplicateKeyError(result.Error) {
			r.logger.Warn("Duplicate transaction detected", map[string]any{
				"transaction_id":    transaction.ID,
				"idempotency_token": transaction.IdempotencyToken,
				"user_id":           transaction.UserID,
			})
			return errs.ErrDuplicateTransaction
		}
		if r.errorClassifier.IsConstraintError(result.Error) {
			r.logger.Error("Transaction violates a constraint", map[string]any{
				"transaction_id": transaction.ID,
				"user_id":        transaction.UserID,
				"error":          result.Error.Error(),
			})
			return fmt.Errorf("%w: %s", errs.ErrConstraintViolation, result.Error.Error())
		}

		r.logger.Error("Failed to create transaction", map[string]any{
			"transaction_id": transaction.ID,
			"user_id":        transaction.UserID,
			"error":          result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	r.logger.Info("Transaction created successfully", map[string]any{
		"transaction_id": transaction.ID,
		"user_id":        transaction.UserID,
		"channel":        transaction.Channel,
	})
	return nil
}

// UpdateGuarded persists the transaction under an optimistic version check.
// The row only changes when the stored version still matches the version the
// caller read; otherwise ErrStaleTransaction is returned and the entity is
// left untouched.
func (r *TransactionRepository) UpdateGuarded(ctx context.Context, transaction *entity.Transaction) error {
	r.logger.Debug("Updating transaction", map[string]any{
		"transaction_id": transaction.ID,
		"status":         transaction.Status,
		"version":        transaction.Version,
	})

	transactionModel := r.entityToModel(transaction)

	result := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("id = ? AND version = ?", transaction.ID, transaction.Version).
		Updates(map[string]interface{}{
			"status":               transactionModel.Status,
			"gateway_phase":        transactionModel.GatewayPhase,
			"casino_phase":         transactionModel.CasinoPhase,
			"external_reference":   transactionModel.ExternalReference,
			"pay_url":              transactionModel.PayURL,
			"ledger_credited":      transactionModel.LedgerCredited,
			"failure_reason":       transactionModel.FailureReason,
			"retry_count":          transactionModel.RetryCount,
			"timeline":             transactionModel.Timeline,
			"payment_confirmed_at": transactionModel.PaymentConfirmedAt,
			"next_poll_at":         transactionModel.NextPollAt,
			"expires_at":           transactionModel.ExpiresAt,
			"updated_at":           transactionModel.UpdatedAt,
			"version":              gorm.Expr("version + 1"),
		})

	if result.Error != nil {
		r.logger.Error("Failed to update transaction", map[string]any{
			"transaction_id": transaction.ID,
			"error":          result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	if result.RowsAffected == 0 {
		// Distinguish a lost version race from a missing row
		var count int64
		if err := r.db.WithContext(ctx).Model(&model.Transaction{}).
			Where("id = ?", transaction.ID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
		}
		if count == 0 {
			r.logger.Warn("Transaction not found during update", map[string]any{
				"transaction_id": transaction.ID,
			})
			return errs.ErrTransactionNotFound
		}
		r.logger.Debug("Transaction version conflict", map[string]any{
			"transaction_id": transaction.ID,
			"version":        transaction.Version,
		})
		return errs.ErrStaleTransaction
	}

	transaction.Version++

	r.logger.Debug("Transaction updated successfully", map[string]any{
		"transaction_id": transaction.ID,
		"status":         transaction.Status,
		"version":        transaction.Version,
	})
	return nil
}

// GetByID retrieves a transaction by its opaque id
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	var transactionModel model.Transaction
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&transactionModel)

	if result.Error != nil {
		return nil, r.handleLookupError("id", id, result.Error)
	}

	return r.modelToEntity(&transactionModel), nil
}

// GetByIdempotencyToken retrieves a transaction by the client creation token
func (r *TransactionRepository) GetByIdempotencyToken(ctx context.Context, token string) (*entity.Transaction, error) {
	var transactionModel model.Transaction
	result := r.db.WithContext(ctx).
		Where("idempotency_token = ?", token).
		First(&transactionModel)

	if result.Error != nil {
		return nil, r.handleLookupError("idempotency_token", token, result.Error)
	}

	return r.modelToEntity(&transactionModel), nil
}

// GetByExternalReference retrieves a transaction by its gateway correlation id
func (r *TransactionRepository) GetByExternalReference(ctx context.Context, reference string) (*entity.Transaction, error) {
	var transactionModel model.Transaction
	result := r.db.WithContext(ctx).
		Where("external_reference = ?", reference).
		First(&transactionModel)

	if result.Error != nil {
		return nil, r.handleLookupError("external_reference", reference, result.Error)
	}

	return r.modelToEntity(&transactionModel), nil
}

// handleLookupError standardizes lookup error handling
func (r *TransactionRepository) handleLookupError(field, value string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		r.logger.Debug("Transaction not found", map[string]any{
			field: value,
		})
		return errs.ErrTransactionNotFound
	}
	r.logger.Error("Failed to get transaction", map[string]any{
		field:   value,
		"error": err.Error(),
	})
	return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
}

// ListDue returns non-terminal transactions whose next poll time has arrived
func (r *TransactionRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*entity.Transaction, error) {
	var models []model.Transaction
	result := r.db.WithContext(ctx).
		Where("status IN ?", activeStatuses()).
		Where("next_poll_at IS NOT NULL AND next_poll_at <= ?", now).
		Order("next_poll_at ASC").
		Limit(limit).
		Find(&models)

	if result.Error != nil {
		r.logger.Error("Failed to list due transactions", map[string]any{
			"error": result.Error.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	return r.modelsToEntities(models), nil
}

// ListOverdue returns non-terminal transactions whose payment deadline passed
func (r *TransactionRepository) ListOverdue(ctx context.Context, now time.Time, limit int) ([]*entity.Transaction, error) {
	var models []model.Transaction
	result := r.db.WithContext(ctx).
		Where("status IN ?", []string{
			string(entity.StatusPending),
			string(entity.StatusAwaitingPayment),
		}).
		Where("expires_at IS NOT NULL AND expires_at <= ?", now).
		Order("expires_at ASC").
		Limit(limit).
		Find(&models)

	if result.Error != nil {
		r.logger.Error("Failed to list overdue transactions", map[string]any{
			"error": result.Error.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	return r.modelsToEntities(models), nil
}

// ListStuck returns failed transactions that already credited the ledger.
// These carry money the casino never received and need operator action.
func (r *TransactionRepository) ListStuck(ctx context.Context, limit int) ([]*entity.Transaction, error) {
	var models []model.Transaction
	result := r.db.WithContext(ctx).
		Where("status = ? AND ledger_credited = ?", string(entity.StatusFailed), true).
		Order("updated_at ASC").
		Limit(limit).
		Find(&models)

	if result.Error != nil {
		r.logger.Error("Failed to list stuck transactions", map[string]any{
			"error": result.Error.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	return r.modelsToEntities(models), nil
}

// modelsToEntities converts a slice of models to entities
func (r *TransactionRepository) modelsToEntities(models []model.Transaction) []*entity.Transaction {
	transactions := make([]*entity.Transaction, 0, len(models))
	for i := range models {
		transactions = append(transactions, r.modelToEntity(&models[i]))
	}
	return transactions
}

// activeStatuses lists the statuses the poller still has work to do on
func activeStatuses() []string {
	return []string{
		string(entity.StatusAwaitingPayment),
		string(entity.StatusPaymentConfirmed),
		string(entity.StatusProcessingCasino),
	}
}
