package migration

import (
	"context"
	"errors"
	"time"

	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

const (
	// CurrentSchemaVersion represents the current database schema version
	CurrentSchemaVersion = "1.0.0"
)

// MigrationManager manages database migrations
type MigrationManager struct {
	db           *gorm.DB
	logger       coreport.Logger
	timeProvider coreport.TimeProvider
}

// NewMigrationManager creates a new migration manager
func NewMigrationManager(db *gorm.DB, logger coreport.Logger, timeProvider coreport.TimeProvider) *MigrationManager {
	return &MigrationManager{
		db:           db,
		logger:       logger,
		timeProvider: timeProvider,
	}
}

// MigrateAll performs all migrations
func (m *MigrationManager) MigrateAll() error {
	m.logger.Info("Starting database migrations", map[string]any{
		"target_version": CurrentSchemaVersion,
	})

	// Create migration version table first
	if err := m.db.AutoMigrate(&model.MigrationVersion{}); err != nil {
		m.logger.Error("Failed to create migration version table", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	currentVersion, err := m.GetCurrentVersion(context.Background())
	if err != nil {
		m.logger.Error("Failed to check current schema version", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	if currentVersion == CurrentSchemaVersion {
		m.logger.Info("Database already at target version, skipping migration", map[string]any{
			"version": currentVersion,
		})
		return nil
	}

	if err := m.autoMigrateModels(); err != nil {
		m.logger.Error("Failed to auto-migrate models", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	if err := m.createIndexes(); err != nil {
		m.logger.Error("Failed to create indexes", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	if err := m.setVersion(context.Background(), CurrentSchemaVersion, "Full schema migration"); err != nil {
		m.logger.Error("Failed to update schema version", map[string]any{
			"error":   err.Error(),
			"version": CurrentSchemaVersion,
		})
		return err
	}

	m.logger.Info("Database migrations completed successfully", map[string]any{
		"version": CurrentSchemaVersion,
	})
	return nil
}

// GetCurrentVersion gets the current migration version
func (m *MigrationManager) GetCurrentVersion(ctx context.Context) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	var version model.MigrationVersion
	result := m.db.WithContext(ctx).Order("applied_at desc").First(&version)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", nil // No version found
		}
		return "", result.Error
	}

	return version.Version, nil
}

// setVersion records a new migration version
func (m *MigrationManager) setVersion(ctx context.Context, version string, details string) error {
	var appliedAt time.Time
	if m.timeProvider != nil {
		appliedAt = m.timeProvider.Now()
	} else {
		appliedAt = time.Now()
	}

	migrationVersion := model.MigrationVersion{
		Version:   version,
		AppliedAt: appliedAt,
		Details:   details,
	}

	result := m.db.WithContext(ctx).Create(&migrationVersion)
	return result.Error
}

// autoMigrateModels auto-migrates database models
func (m *MigrationManager) autoMigrateModels() error {
	m.logger.Info("Auto-migrating database models", nil)

	return m.db.AutoMigrate(
		&model.User{},
		&model.Transaction{},
		&model.ManualPaymentRecord{},
		&model.LedgerCredit{},
	)
}

// schemaIndexes holds the raw index DDL applied after the model migration.
// Every statement must be idempotent so migrations can re-run on startup.
var schemaIndexes = []string{
	// A gateway payment reference belongs to at most one transaction.
	// Partial because manual-channel rows all carry the empty reference.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_transactions_external_ref
		ON transactions (external_reference)
		WHERE external_reference <> ''`,
	// Partial index for the poller: only rows with work still pending
	`CREATE INDEX IF NOT EXISTS idx_transactions_due
		ON transactions (next_poll_at)
		WHERE next_poll_at IS NOT NULL
		AND status IN ('awaiting_payment', 'payment_confirmed', 'processing_casino_credit')`,
	// Partial index for the expiry sweep
	`CREATE INDEX IF NOT EXISTS idx_transactions_overdue
		ON transactions (expires_at)
		WHERE expires_at IS NOT NULL
		AND status IN ('pending', 'awaiting_payment')`,
	// Stuck reconciliations needing operator attention
	`CREATE INDEX IF NOT EXISTS idx_transactions_stuck
		ON transactions (updated_at)
		WHERE status = 'failed' AND ledger_credited = true`,
	// Pending manual reviews ordered by age
	`CREATE INDEX IF NOT EXISTS idx_manual_payments_pending
		ON manual_payment_records (created_at)
		WHERE status = 'pending'`,
}

// createIndexes creates indexes the uniqueness guarantees and sweep queries
// depend on
func (m *MigrationManager) createIndexes() error {
	m.logger.Info("Creating database indexes", nil)

	for _, idx := range schemaIndexes {
		if err := m.db.Exec(idx).Error; err != nil {
			return err
		}
	}

	return nil
}
