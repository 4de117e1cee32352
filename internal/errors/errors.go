// Package errors provides consistent error types for Pawminder.
// It defines three main categories: UserError (fixable by the caller),
// SystemError (storage or environment issues), and RecoverableError
// (transient failures that the transport layer may retry).
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for common conditions.
var (
	ErrDogNotFound         = errors.New("dog not found")
	ErrReminderNotFound    = errors.New("reminder not found")
	ErrLogNotFound         = errors.New("log not found")
	ErrWebhookNotFound     = errors.New("webhook not found")
	ErrHourOutOfRange      = errors.New("hour must be between 0 and 23")
	ErrMinuteOutOfRange    = errors.New("minute must be between 0 and 59")
	ErrDayOutOfRange       = errors.New("day of month must be between 1 and 31")
	ErrIntervalNotPositive = errors.New("interval must be positive")
	ErrNoWeekdays          = errors.New("at least one weekday must be selected")
	ErrActionNameTooLong   = errors.New("custom action name too long")
	ErrDiskFull            = errors.New("disk full")
	ErrDatabaseCorrupted   = errors.New("database corrupted")
	ErrNetworkUnavailable  = errors.New("network unavailable")
	ErrLockHeld            = errors.New("database locked by another process")
	ErrTimeout             = errors.New("operation timed out")
	ErrPermissionDenied    = errors.New("permission denied")
)

// UserError represents an error that the caller can fix.
// Examples: an out-of-range day of month, a non-positive interval.
// Mutators return a UserError before touching any field, so the target
// is left exactly as it was.
type UserError struct {
	Message    string // What happened
	Suggestion string // How to fix it
	Field      string // The field that caused the error (optional)
	Value      string // The invalid value (optional)
}

func (e *UserError) Error() string {
	if e.Field != "" && e.Value != "" {
		return fmt.Sprintf("%s: '%s'", e.Message, e.Value)
	}
	return e.Message
}

// NewUserError creates a new UserError.
func NewUserError(message, suggestion string) *UserError {
	return &UserError{
		Message:    message,
		Suggestion: suggestion,
	}
}

// NewUserErrorWithField creates a new UserError with field context.
func NewUserErrorWithField(field, value, message, suggestion string) *UserError {
	return &UserError{
		Message:    message,
		Field:      field,
		Value:      value,
		Suggestion: suggestion,
	}
}

// SystemError represents a system-level error that the caller cannot fix.
// Examples: disk full, database corruption.
type SystemError struct {
	Message string // What happened
	Cause   error  // The underlying error
	Op      string // The operation that failed (optional)
}

func (e *SystemError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s during %s", e.Message, e.Op)
	}
	return e.Message
}

func (e *SystemError) Unwrap() error {
	return e.Cause
}

// NewSystemError creates a new SystemError.
func NewSystemError(message string, cause error) *SystemError {
	return &SystemError{
		Message: message,
		Cause:   cause,
	}
}

// NewSystemErrorWithOp creates a new SystemError with operation context.
func NewSystemErrorWithOp(op, message string, cause error) *SystemError {
	return &SystemError{
		Message: message,
		Cause:   cause,
		Op:      op,
	}
}

// RecoverableError represents a transient failure, such as a webhook
// endpoint being temporarily unreachable. The recurrence engine itself
// never retries; the notification transport may.
type RecoverableError struct {
	Message    string
	Cause      error
	RetryCount int
	MaxRetries int
	CanRetry   bool
}

func (e *RecoverableError) Error() string {
	if e.RetryCount > 0 {
		return fmt.Sprintf("%s (attempt %d/%d)", e.Message, e.RetryCount, e.MaxRetries)
	}
	return e.Message
}

func (e *RecoverableError) Unwrap() error {
	return e.Cause
}

// NewRecoverableError creates a new RecoverableError.
func NewRecoverableError(message string, cause error, maxRetries int) *RecoverableError {
	return &RecoverableError{
		Message:    message,
		Cause:      cause,
		MaxRetries: maxRetries,
		CanRetry:   true,
	}
}

// IncrementRetry increments the retry count and updates CanRetry.
func (e *RecoverableError) IncrementRetry() {
	e.RetryCount++
	e.CanRetry = e.RetryCount < e.MaxRetries
}

// IsUserError checks if an error is a UserError.
func IsUserError(err error) bool {
	var ue *UserError
	return errors.As(err, &ue)
}

// IsSystemError checks if an error is a SystemError.
func IsSystemError(err error) bool {
	var se *SystemError
	return errors.As(err, &se)
}

// IsRecoverableError checks if an error is a RecoverableError.
func IsRecoverableError(err error) bool {
	var re *RecoverableError
	return errors.As(err, &re)
}

// AsUserError extracts a UserError from an error chain.
func AsUserError(err error) (*UserError, bool) {
	var ue *UserError
	ok := errors.As(err, &ue)
	return ue, ok
}

// AsSystemError extracts a SystemError from an error chain.
func AsSystemError(err error) (*SystemError, bool) {
	var se *SystemError
	ok := errors.As(err, &se)
	return se, ok
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted additional context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
