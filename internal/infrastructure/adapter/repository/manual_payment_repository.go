package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// ManualPaymentRepository implements ManualPaymentRepository interface using GORM
type ManualPaymentRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewManualPaymentRepository creates a new ManualPaymentRepository instance
func NewManualPaymentRepository(db *gorm.DB, logger coreport.Logger) *ManualPaymentRepository {
	return &ManualPaymentRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// entityToModel converts a manual payment record entity to a database model
func (r *ManualPaymentRepository) entityToModel(record *entity.ManualPaymentRecord) model.ManualPaymentRecord {
	return model.ManualPaymentRecord{
		ID:            record.ID,
		UserID:        record.UserID,
		TransactionID: record.TransactionID,
		Amount:        record.Amount,
		Method:        record.Method,
		ProofImageRef: record.ProofImageRef,
		UserNotes:     record.UserNotes,
		Status:        string(record.Status),
		AdminID:       record.AdminID,
		AdminNotes:    record.AdminNotes,
		CreatedAt:     record.CreatedAt,
		DecidedAt:     record.DecidedAt,
	}
}

// modelToEntity converts a database model to a manual payment record entity
func (r *ManualPaymentRepository) modelToEntity(m *model.ManualPaymentRecord) *entity.ManualPaymentRecord {
	return &entity.ManualPaymentRecord{
		ID:            m.ID,
		UserID:        m.UserID,
		TransactionID: m.TransactionID,
		Amount:        m.Amount,
		Method:        m.Method,
		ProofImageRef: m.ProofImageRef,
		UserNotes:     m.UserNotes,
		Status:        entity.ManualPaymentStatus(m.Status),
		AdminID:       m.AdminID,
		AdminNotes:    m.AdminNotes,
		CreatedAt:     m.CreatedAt,
		DecidedAt:     m.DecidedAt,
	}
}

// Create saves a new pending manual payment record
func (r *ManualPaymentRepository) Create(ctx context.Context, record *entity.ManualPaymentRecord) error {
	r.logger.Debug("Creating manual payment record", map[string]any{
		"record_id":      record.ID,
		"transaction_id": record.TransactionID,
		"user_id":        record.UserID,
	})

	recordModel := r.entityToModel(record)

	result := r.db.WithContext(ctx).Create(&recordModel)
	if result.Error != nil {
		if r.errorClassifier.IsDuplicateKeyError(result.Error) {
			r.logger.Warn("Manual payment record already exists for transaction", map[string]any{
				"transaction_id": record.TransactionID,
			})
			return fmt.Errorf("%w: %s", errs.ErrConstraintViolation, result.Error.Error())
		}
		r.logger.Error("Failed to create manual payment record", map[string]any{
			"record_id": record.ID,
			"error":     result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	return nil
}

// GetByID retrieves a manual payment record
func (r *ManualPaymentRepository) GetByID(ctx context.Context, id string) (*entity.ManualPaymentRecord, error) {
	var recordModel model.ManualPaymentRecord
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&recordModel)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errs.ErrManualRecordNotFound
		}
		r.logger.Error("Failed to get manual payment record", map[string]any{
			"record_id": id,
			"error":     result.Error.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	return r.modelToEntity(&recordModel), nil
}

// GetByTransactionID retrieves the record attached to a transaction
func (r *ManualPaymentRepository) GetByTransactionID(ctx context.Context, transactionID string) (*entity.ManualPaymentRecord, error) {
	var recordModel model.ManualPaymentRecord
	result := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		First(&recordModel)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errs.ErrManualRecordNotFound
		}
		r.logger.Error("Failed to get manual payment record", map[string]any{
			"transaction_id": transactionID,
			"error":          result.Error.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	return r.modelToEntity(&recordModel), nil
}

// Decide persists an admin decision with a guard on the record still being
// pending. The guard makes double decisions lose deterministically even
// across processes.
func (r *ManualPaymentRepository) Decide(ctx context.Context, record *entity.ManualPaymentRecord) error {
	r.logger.Debug("Persisting manual payment decision", map[string]any{
		"record_id": record.ID,
		"status":    record.Status,
		"admin_id":  record.AdminID,
	})

	recordModel := r.entityToModel(record)

	result := r.db.WithContext(ctx).Model(&model.ManualPaymentRecord{}).
		Where("id = ? AND status = ?", record.ID, string(entity.ManualPending)).
		Updates(map[string]interface{}{
			"status":      recordModel.Status,
			"admin_id":    recordModel.AdminID,
			"admin_notes": recordModel.AdminNotes,
			"decided_at":  recordModel.DecidedAt,
		})

	if result.Error != nil {
		r.logger.Error("Failed to persist manual payment decision", map[string]any{
			"record_id": record.ID,
			"error":     result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&model.ManualPaymentRecord{}).
			Where("id = ?", record.ID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
		}
		if count == 0 {
			return errs.ErrManualRecordNotFound
		}
		r.logger.Warn("Manual payment record already decided", map[string]any{
			"record_id": record.ID,
		})
		return errs.ErrManualAlreadyDecided
	}

	return nil
}

// ListPending returns pending records for the review dashboard
func (r *ManualPaymentRepository) ListPending(ctx context.Context, limit int) ([]*entity.ManualPaymentRecord, error) {
	var models []model.ManualPaymentRecord
	result := r.db.WithContext(ctx).
		Where("status = ?", string(entity.ManualPending)).
		Order("created_at ASC").
		Limit(limit).
		Find(&models)

	if result.Error != nil {
		r.logger.Error("Failed to list pending manual payments", map[string]any{
			"error": result.Error.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	return r.modelsToEntities(models), nil
}

// ListOverdue returns pending records created before the cutoff
func (r *ManualPaymentRepository) ListOverdue(ctx context.Context, cutoff time.Time, limit int) ([]*entity.ManualPaymentRecord, error) {
	var models []model.ManualPaymentRecord
	result := r.db.WithContext(ctx).
		Where("status = ? AND created_at <= ?", string(entity.ManualPending), cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&models)

	if result.Error != nil {
		r.logger.Error("Failed to list overdue manual payments", map[string]any{
			"error": result.Error.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	return r.modelsToEntities(models), nil
}

// modelsToEntities converts a slice of models to entities
func (r *ManualPaymentRepository) modelsToEntities(models []model.ManualPaymentRecord) []*entity.ManualPaymentRecord {
	records := make([]*entity.ManualPaymentRecord, 0, len(models))
	for i := range models {
		records = append(records, r.modelToEntity(&models[i]))
	}
	return records
}
