package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimeParseErrorError(t *testing.T) {
	err := &TimeParseError{
		Input:   "every blue moon",
		Field:   "schedule",
		Message: "unrecognized schedule",
	}
	assert.Equal(t, "invalid schedule 'every blue moon': unrecognized schedule", err.Error())
}

func TestNewTimeParseError(t *testing.T) {
	err := NewTimeParseError("duration", "xyz", "could not parse duration", "4h", "90m")
	assert.Equal(t, "duration", err.Field)
	assert.Equal(t, "xyz", err.Input)
	assert.Len(t, err.Examples, 2)
}

func TestFormatWithExamples(t *testing.T) {
	t.Run("with_examples", func(t *testing.T) {
		err := NewTimeParseError("duration", "xyz", "could not parse duration", "4h", "90m")
		formatted := err.FormatWithExamples()
		assert.Contains(t, formatted, "invalid duration 'xyz'")
		assert.Contains(t, formatted, "Valid examples:")
		assert.Contains(t, formatted, "  - 4h")
		assert.Contains(t, formatted, "  - 90m")
	})

	t.Run("with_suggestion", func(t *testing.T) {
		err := &TimeParseError{
			Input:      "xyz",
			Field:      "duration",
			Message:    "could not parse duration",
			Suggestion: "Durations can be given in hours (h) or minutes (m).",
		}
		assert.Contains(t, err.FormatWithExamples(), "hours (h) or minutes (m)")
	})

	t.Run("bare_error", func(t *testing.T) {
		err := &TimeParseError{Input: "xyz", Field: "duration", Message: "could not parse duration"}
		assert.Equal(t, err.Error(), err.FormatWithExamples())
	})
}

func TestStandardParseErrors(t *testing.T) {
	t.Run("duration", func(t *testing.T) {
		err := NewDurationError("notaduration")
		assert.Equal(t, "duration", err.Field)
		assert.Equal(t, DurationExamples, err.Examples)
		assert.NotEmpty(t, err.Suggestion)
	})

	t.Run("timestamp", func(t *testing.T) {
		err := NewTimestampError("notatime")
		assert.Equal(t, "time", err.Field)
		assert.Equal(t, TimestampExamples, err.Examples)
	})

	t.Run("deadline", func(t *testing.T) {
		err := NewDeadlineError("whenever")
		assert.Equal(t, "date", err.Field)
		assert.Equal(t, DeadlineExamples, err.Examples)
	})
}

func TestToUserError(t *testing.T) {
	t.Run("keeps_suggestion", func(t *testing.T) {
		err := NewDurationError("notaduration")
		ue := err.ToUserError()
		assert.Equal(t, err.Suggestion, ue.Suggestion)
		assert.Contains(t, ue.Error(), "duration")
	})

	t.Run("builds_suggestion_from_examples", func(t *testing.T) {
		err := NewTimeParseError("schedule", "xyz", "unrecognized schedule", "every 4h", "every day at 18:00")
		ue := err.ToUserError()
		assert.Contains(t, ue.Suggestion, "Try: every 4h, every day at 18:00")
	})
}
