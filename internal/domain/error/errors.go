package error

import (
	"errors"
	"fmt"
)

// Error codes for standardized API responses
const (
	// 4xxx - Client errors
	CodeInvalidAmount        = 4002
	CodeInvalidUserID        = 4003
	CodeDuplicateTransaction = 4004
	CodeConstraintViolation  = 4005
	CodeAmountOverflow       = 4006
	CodeInvalidChannel       = 4007
	CodeManualAlreadyDecided = 4009
	CodeUserNotFound         = 4040
	CodeTransactionNotFound  = 4041
	CodeManualRecordNotFound = 4042
	CodeTransactionLocked    = 4230

	// 5xxx - Server errors
	CodeInternalServer     = 5000
	CodeGatewayUnavailable = 5020
	CodeCasinoUnavailable  = 5021
)

// Base error types
var (
	// ErrInvalidAmount is returned when the deposit amount format is invalid
	ErrInvalidAmount = errors.New("invalid amount format")

	// ErrInvalidUserID is returned when the user ID is not a positive integer
	ErrInvalidUserID = errors.New("user ID must be positive")

	// ErrNegativeAmount is returned when the deposit amount is negative
	ErrNegativeAmount = errors.New("amount cannot be negative")

	// ErrAmountOverflow is returned when the amount is too large and would cause overflow
	ErrAmountOverflow = errors.New("amount is too large and would cause overflow")

	// ErrInvalidChannel is returned when the payment channel is not one of the allowed values
	ErrInvalidChannel = errors.New("invalid payment channel")

	// ErrInvalidDirection is returned when the transaction direction is not one of the allowed values
	ErrInvalidDirection = errors.New("invalid transaction direction")

	// ErrInvalidIdempotencyToken is returned when the client idempotency token is empty
	ErrInvalidIdempotencyToken = errors.New("idempotency token cannot be empty")

	// ErrDuplicateTransaction is returned when a transaction with the same idempotency
	// token or external reference already exists
	ErrDuplicateTransaction = errors.New("transaction already exists")

	// ErrUserNotFound is returned when the requested user doesn't exist
	ErrUserNotFound = errors.New("user not found")

	// ErrTransactionNotFound is returned when the requested transaction doesn't exist
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrManualRecordNotFound is returned when the requested manual payment record doesn't exist
	ErrManualRecordNotFound = errors.New("manual payment record not found")

	// ErrManualAlreadyDecided is returned when an admin decision targets a manual
	// payment record that has already been approved, rejected or expired
	ErrManualAlreadyDecided = errors.New("manual payment record already decided")

	// ErrStaleTransaction is returned by the persistence layer when a compare-and-set
	// update lost the race against a concurrent writer. Callers treat this as a
	// duplicate signal and absorb it silently.
	ErrStaleTransaction = errors.New("transaction was modified concurrently")

	// ErrTerminalTransaction is returned when a phase transition is requested on a
	// transaction that has already reached completed, failed or expired
	ErrTerminalTransaction = errors.New("transaction is in a terminal state")

	// ErrGatewayUnavailable is returned for transient payment gateway failures
	ErrGatewayUnavailable = errors.New("payment gateway temporarily unavailable")

	// ErrGatewayRejected is returned for permanent payment gateway failures
	ErrGatewayRejected = errors.New("payment gateway rejected the request")

	// ErrCasinoUnavailable is returned for transient casino backend failures
	ErrCasinoUnavailable = errors.New("casino backend temporarily unavailable")

	// ErrCasinoRejected is returned for permanent casino backend failures (e.g. unknown account)
	ErrCasinoRejected = errors.New("casino backend rejected the credit")

	// ErrRetriesExhausted is returned when a retried operation ran out of its retry budget
	ErrRetriesExhausted = errors.New("max retries exceeded")

	// ErrInvalidRequest is returned when the request format is invalid
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInternalServer is returned for unexpected server-side errors
	ErrInternalServer = errors.New("internal server error")

	// ErrDatabaseConnection is returned when there's a problem connecting to the database
	ErrDatabaseConnection = errors.New("database connection error")

	// ErrDuplicateUser is returned when trying to create a user that already exists
	ErrDuplicateUser = errors.New("user already exists")

	// ErrConstraintViolation is returned when a database constraint is violated
	ErrConstraintViolation = errors.New("database constraint violation")

	// ErrNotFound is returned when a generic resource is not found
	ErrNotFound = errors.New("resource not found")
)

// ErrorCode returns standardized error codes for known errors
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrInvalidAmount):
		return CodeInvalidAmount
	case errors.Is(err, ErrInvalidUserID):
		return CodeInvalidUserID
	case errors.Is(err, ErrInvalidChannel):
		return CodeInvalidChannel
	case errors.Is(err, ErrDuplicateTransaction):
		return CodeDuplicateTransaction
	case errors.Is(err, ErrAmountOverflow):
		return CodeAmountOverflow
	case errors.Is(err, ErrManualAlreadyDecided):
		return CodeManualAlreadyDecided
	case errors.Is(err, ErrUserNotFound):
		return CodeUserNotFound
	case errors.Is(err, ErrTransactionNotFound):
		return CodeTransactionNotFound
	case errors.Is(err, ErrManualRecordNotFound):
		return CodeManualRecordNotFound
	case errors.Is(err, ErrStaleTransaction):
		return CodeTransactionLocked
	case errors.Is(err, ErrConstraintViolation):
		return CodeConstraintViolation
	case errors.Is(err, ErrGatewayUnavailable):
		return CodeGatewayUnavailable
	case errors.Is(err, ErrCasinoUnavailable):
		return CodeCasinoUnavailable
	default:
		return CodeInternalServer
	}
}

// IsTransient reports whether the error represents a temporary external failure
// that should be retried with backoff rather than treated as terminal.
func IsTransient(err error) bool {
	return errors.Is(err, ErrGatewayUnavailable) ||
		errors.Is(err, ErrCasinoUnavailable) ||
		errors.Is(err, ErrDatabaseConnection)
}

// IsPermanent reports whether the error represents an explicit rejection by an
// external collaborator. Permanent errors short-circuit the retry budget.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrGatewayRejected) || errors.Is(err, ErrCasinoRejected)
}

// ReconciliationError represents an error raised while advancing a transaction
// through the reconciliation state machine
type ReconciliationError struct {
	TransactionID string
	UserID        uint64
	Phase         string
	Reason        string
	Err           error
}

// Error implements the error interface for ReconciliationError
func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("reconciliation error for transaction %s (user: %d, phase: %s): %s - %v",
		e.TransactionID, e.UserID, e.Phase, e.Reason, e.Err)
}

// Unwrap returns the underlying error
func (e *ReconciliationError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *ReconciliationError) LogFields() map[string]any {
	return map[string]any{
		"error_type":     "reconciliation_error",
		"transaction_id": e.TransactionID,
		"user_id":        e.UserID,
		"phase":          e.Phase,
		"reason":         e.Reason,
		"error":          e.Err.Error(),
		"error_code":     ErrorCode(e.Err),
	}
}

// NewReconciliationError creates a detailed reconciliation error
func NewReconciliationError(transactionID string, userID uint64, phase, reason string, err error) error {
	return &ReconciliationError{
		TransactionID: transactionID,
		UserID:        userID,
		Phase:         phase,
		Reason:        reason,
		Err:           err,
	}
}

// StuckReconciliationError flags the most dangerous failure class: the ledger
// was credited but the casino credit permanently failed. It is never
// auto-compensated; operators resolve it by hand.
type StuckReconciliationError struct {
	TransactionID string
	UserID        uint64
	Amount        string
	Reason        string
}

// Error implements the error interface
func (e *StuckReconciliationError) Error() string {
	return fmt.Sprintf("stuck reconciliation for transaction %s: ledger credited %s for user %d but casino credit permanently failed: %s",
		e.TransactionID, e.Amount, e.UserID, e.Reason)
}

// Is checks if the target error is an ErrCasinoRejected
func (e *StuckReconciliationError) Is(target error) bool {
	return target == ErrCasinoRejected
}

// LogFields returns a map of fields for structured logging
func (e *StuckReconciliationError) LogFields() map[string]any {
	return map[string]any{
		"error_type":      "stuck_reconciliation",
		"transaction_id":  e.TransactionID,
		"user_id":         e.UserID,
		"amount":          e.Amount,
		"reason":          e.Reason,
		"ledger_credited": true,
		"error_code":      CodeCasinoUnavailable,
	}
}

// DuplicateTransactionError provides detailed information about duplicate creation attempts
type DuplicateTransactionError struct {
	IdempotencyToken string
	UserID           uint64
	Channel          string
}

// Error implements the error interface
func (e *DuplicateTransactionError) Error() string {
	return fmt.Sprintf("duplicate transaction detected: token=%s for user %d via channel %s",
		e.IdempotencyToken, e.UserID, e.Channel)
}

// Is checks if the target error is an ErrDuplicateTransaction
func (e *DuplicateTransactionError) Is(target error) bool {
	return target == ErrDuplicateTransaction
}

// LogFields returns a map of fields for structured logging
func (e *DuplicateTransactionError) LogFields() map[string]any {
	return map[string]any{
		"error_type":        "duplicate_transaction",
		"idempotency_token": e.IdempotencyToken,
		"user_id":           e.UserID,
		"channel":           e.Channel,
		"error_code":        CodeDuplicateTransaction,
	}
}

// NewDuplicateTransactionError creates a new detailed duplicate transaction error
func NewDuplicateTransactionError(token string, userID uint64, channel string) error {
	return &DuplicateTransactionError{
		IdempotencyToken: token,
		UserID:           userID,
		Channel:          channel,
	}
}

// IsDuplicateTransactionError checks if the error is a duplicate transaction error
func IsDuplicateTransactionError(err error) bool {
	return errors.Is(err, ErrDuplicateTransaction)
}

// IsUserNotFoundError checks if the error is a user not found error
func IsUserNotFoundError(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

// IsNotFoundError checks if the error is any "not found" type of error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrTransactionNotFound) ||
		errors.Is(err, ErrManualRecordNotFound)
}

// IsStaleTransactionError checks if the error is a lost compare-and-set race
func IsStaleTransactionError(err error) bool {
	return errors.Is(err, ErrStaleTransaction)
}

// IsManualAlreadyDecidedError checks if the error is a double admin decision
func IsManualAlreadyDecidedError(err error) bool {
	return errors.Is(err, ErrManualAlreadyDecided)
}
