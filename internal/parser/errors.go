package parser

import (
	"fmt"
	"strings"

	"github.com/pawminder/pawminder/internal/errors"
)

// TimeParseError is a parse failure that carries example inputs so the
// CLI can show the user what would have worked.
type TimeParseError struct {
	Input      string
	Field      string
	Message    string
	Examples   []string
	Suggestion string
}

func (e *TimeParseError) Error() string {
	return fmt.Sprintf("invalid %s '%s': %s", e.Field, e.Input, e.Message)
}

// NewTimeParseError creates a new time parse error with examples.
func NewTimeParseError(field, input, message string, examples ...string) *TimeParseError {
	return &TimeParseError{
		Input:    input,
		Field:    field,
		Message:  message,
		Examples: examples,
	}
}

// FormatWithExamples returns the error message with example suggestions.
func (e *TimeParseError) FormatWithExamples() string {
	var sb strings.Builder
	sb.WriteString(e.Error())

	if len(e.Examples) > 0 {
		sb.WriteString("\n\nValid examples:\n")
		for _, ex := range e.Examples {
			sb.WriteString("  - ")
			sb.WriteString(ex)
			sb.WriteString("\n")
		}
	}

	if e.Suggestion != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Suggestion)
	}

	return sb.String()
}

// ToUserError converts a TimeParseError for the JSON error surface,
// which carries a single suggestion line instead of an example list.
func (e *TimeParseError) ToUserError() *errors.UserError {
	suggestion := e.Suggestion
	if suggestion == "" && len(e.Examples) > 0 {
		suggestion = fmt.Sprintf("Try: %s", strings.Join(e.Examples[:min(3, len(e.Examples))], ", "))
	}
	return errors.NewUserErrorWithField(e.Field, e.Input, e.Message, suggestion)
}

// DurationExamples provides example duration formats.
var DurationExamples = []string{
	"4h",
	"90m",
	"2 hours",
	"30 minutes",
	"1h 30m",
	"2.5h",
}

// TimestampExamples provides example timestamp formats.
var TimestampExamples = []string{
	"9am",
	"5:30pm",
	"14:30",
	"yesterday at 3pm",
	"2 hours ago",
	"now",
}

// DeadlineExamples provides example deadline formats.
var DeadlineExamples = []string{
	"+5m",
	"+2d",
	"in 5 minutes",
	"tomorrow at 3pm",
	"friday 5pm",
	"next monday",
}

// NewDurationError creates a duration parse error with standard examples.
func NewDurationError(input string) *TimeParseError {
	return &TimeParseError{
		Input:      input,
		Field:      "duration",
		Message:    "could not parse duration",
		Examples:   DurationExamples,
		Suggestion: "Durations can be given in hours (h), minutes (m), seconds (s), or days (d).",
	}
}

// NewTimestampError creates a timestamp parse error with standard examples.
func NewTimestampError(input string) *TimeParseError {
	return &TimeParseError{
		Input:      input,
		Field:      "time",
		Message:    "could not parse time",
		Examples:   TimestampExamples,
		Suggestion: "Try natural language like '9am', '2 hours ago', or '14:30'.",
	}
}

// NewDeadlineError creates a deadline parse error with standard examples.
func NewDeadlineError(input string) *TimeParseError {
	return &TimeParseError{
		Input:      input,
		Field:      "date",
		Message:    "could not parse date",
		Examples:   DeadlineExamples,
		Suggestion: "One-time reminders take a relative offset (+2d) or an absolute date (friday 5pm).",
	}
}
