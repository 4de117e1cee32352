package runtime

import (
	"errors"
	"fmt"
	"strings"
	"syscall"

	apperrors "github.com/pawminder/pawminder/internal/errors"
	"github.com/pawminder/pawminder/internal/parser"
)

// Common errors.
var (
	ErrDogRequired      = errors.New("dog is required")
	ErrDogNotFound      = errors.New("dog not found")
	ErrReminderNotFound = errors.New("reminder not found")
	ErrLogNotFound      = errors.New("log entry not found")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrInvalidDuration  = errors.New("invalid duration")
	ErrSkipUnsupported  = errors.New("reminder type does not support skipping")
	ErrDiskFull         = errors.New("disk full: unable to write to database")
)

// ParseError represents a parsing error with context.
type ParseError struct {
	Field   string
	Value   string
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid %s '%s': %s", e.Field, e.Value, e.Message)
}

// NewParseError creates a new parse error.
func NewParseError(field, value, message string) *ParseError {
	return &ParseError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// Suggestions provides helpful suggestions for common errors.
var Suggestions = map[error]string{
	ErrDogRequired:      "Specify a dog as the first argument.",
	ErrDogNotFound:      "Use 'pawminder dog list' to see available dogs.",
	ErrReminderNotFound: "Use 'pawminder reminder list' to see available reminders.",
	ErrLogNotFound:      "Use 'pawminder log list' to see recorded care.",
	ErrInvalidTimestamp: "Try formats like '2 hours ago', 'yesterday at 3pm', or '9am'.",
	ErrInvalidDuration:  "Try formats like '4h', '90m', or '1h30m'.",
	ErrSkipUnsupported:  "Only weekly and monthly reminders can skip an occurrence.",
	ErrDiskFull:         "Free up disk space and try again.",
}

// GetSuggestion returns a suggestion for an error, if available.
func GetSuggestion(err error) string {
	var tpe *parser.TimeParseError
	if errors.As(err, &tpe) {
		return tpe.ToUserError().Suggestion
	}
	for knownErr, suggestion := range Suggestions {
		if errors.Is(err, knownErr) {
			return suggestion
		}
	}
	return ""
}

// FormatError formats an error with optional suggestion. Parse errors
// print their example inputs; errors the CLI has no suggestion for
// fall back to category-based formatting so storage and network
// failures still read sensibly.
func FormatError(err error) string {
	var tpe *parser.TimeParseError
	if errors.As(err, &tpe) {
		return tpe.FormatWithExamples()
	}
	if suggestion := GetSuggestion(err); suggestion != "" {
		return err.Error() + "\n" + suggestion
	}
	return apperrors.FormatByCategory(err)
}

// DiskFullError ties a full-disk failure to the operation and path
// that hit it. It unwraps to ErrDiskFull so callers match it with
// errors.Is.
type DiskFullError struct {
	Op      string
	Path    string
	wrapped error
}

func (e *DiskFullError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("disk full during %s on %s: %v", e.Op, e.Path, e.wrapped)
	}
	return fmt.Sprintf("disk full during %s: %v", e.Op, e.wrapped)
}

func (e *DiskFullError) Unwrap() error {
	return ErrDiskFull
}

// NewDiskFullError creates a new DiskFullError.
func NewDiskFullError(op, path string, err error) *DiskFullError {
	return &DiskFullError{Op: op, Path: path, wrapped: err}
}

// Message fragments that indicate a full disk when the error chain
// carries no errno. Badger sometimes surfaces ENOSPC as flat text.
var diskFullPhrases = []string{
	"no space left on device",
	"disk full",
	"enospc",
	"not enough space",
	"insufficient disk space",
	"out of disk space",
}

// IsDiskFullError reports whether err indicates a full disk, via the
// sentinel, ENOSPC in the chain, or a known message fragment.
func IsDiskFullError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDiskFull) {
		return true
	}

	var errno syscall.Errno
	if errors.As(err, &errno) && errno == syscall.ENOSPC {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, phrase := range diskFullPhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

// WrapDiskFullError converts a full-disk failure into a DiskFullError
// carrying op and path. Other errors pass through unchanged.
func WrapDiskFullError(err error, op, path string) error {
	if err == nil || !IsDiskFullError(err) {
		return err
	}
	return NewDiskFullError(op, path, err)
}
