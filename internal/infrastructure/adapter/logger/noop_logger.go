package logger

import (
	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
)

// NoopLogger is a logger implementation that does nothing
// Useful for testing or when logging needs to be disabled
type NoopLogger struct {
	level core.LogLevel
}

// NewNoopLogger creates a new no-operation logger
func NewNoopLogger() core.Logger {
	return &NoopLogger{
		level: core.LogLevelInfo,
	}
}

// Debug does nothing
func (l *NoopLogger) Debug(message string, fields map[string]any) {}

// Info does nothing
func (l *NoopLogger) Info(message string, fields map[string]any) {}

// Warn does nothing
func (l *NoopLogger) Warn(message string, fields map[string]any) {}

// Error does nothing
func (l *NoopLogger) Error(message string, fields map[string]any) {}

// SetLevel sets the log level (has no effect on output)
func (l *NoopLogger) SetLevel(level core.LogLevel) {
	l.level = level
}

// GetLevel returns the configured log level
func (l *NoopLogger) GetLevel() core.LogLevel {
	return l.level
}

// Flush does nothing
func (l *NoopLogger) Flush() error {
	return nil
}
