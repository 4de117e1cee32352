package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserError(t *testing.T) {
	err := NewUserError("Invalid hour", "Use an hour between 0 and 23")
	assert.Equal(t, "Invalid hour", err.Error())
	assert.Equal(t, "Use an hour between 0 and 23", err.Suggestion)
	assert.True(t, IsUserError(err))
	assert.False(t, IsSystemError(err))
}

func TestUserErrorWithField(t *testing.T) {
	err := NewUserErrorWithField("day", "32", "Day out of range", "Use 1-31")
	assert.Equal(t, "Day out of range: '32'", err.Error())
	assert.Equal(t, "day", err.Field)
}

func TestSystemError(t *testing.T) {
	cause := stderrors.New("write failed")
	err := NewSystemErrorWithOp("save_reminder", "storage failure", cause)
	assert.Equal(t, "storage failure during save_reminder", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsSystemError(err))
}

func TestRecoverableError(t *testing.T) {
	err := NewRecoverableError("webhook unreachable", nil, 3)
	assert.True(t, err.CanRetry)

	err.IncrementRetry()
	assert.Equal(t, "webhook unreachable (attempt 1/3)", err.Error())
	assert.True(t, err.CanRetry)

	err.IncrementRetry()
	err.IncrementRetry()
	assert.False(t, err.CanRetry)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Category
	}{
		{"nil", nil, CategoryUnknown},
		{"user", NewUserError("bad input", ""), CategoryUser},
		{"system", NewSystemError("disk", nil), CategorySystem},
		{"recoverable", NewRecoverableError("net", nil, 1), CategoryRecoverable},
		{"sentinel_system", fmt.Errorf("op: %w", ErrDiskFull), CategorySystem},
		{"sentinel_recoverable", fmt.Errorf("op: %w", ErrTimeout), CategoryRecoverable},
		{"plain", stderrors.New("whatever"), CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestGetSuggestion(t *testing.T) {
	assert.Contains(t, GetSuggestion(ErrReminderNotFound), "reminder list")
	assert.Contains(t, GetSuggestion(fmt.Errorf("wrap: %w", ErrNoWeekdays)), "weekday")

	custom := NewUserError("bad", "do this instead")
	assert.Equal(t, "do this instead", GetSuggestion(custom))

	assert.Empty(t, GetSuggestion(nil))
	assert.Empty(t, GetSuggestion(stderrors.New("unknown")))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))

	base := stderrors.New("base")
	wrapped := Wrap(base, "loading reminder")
	assert.Equal(t, "loading reminder: base", wrapped.Error())
	assert.ErrorIs(t, wrapped, base)

	wrapped = Wrapf(base, "reminder %d", 42)
	assert.Equal(t, "reminder 42: base", wrapped.Error())
}

func TestFormatByCategory(t *testing.T) {
	assert.Equal(t, "", FormatByCategory(nil))

	user := NewUserError("hour must be between 0 and 23", "Pick an hour from 0 to 23.")
	assert.Equal(t, "hour must be between 0 and 23\nPick an hour from 0 to 23.", FormatByCategory(user))

	sys := Wrap(ErrDatabaseCorrupted, "opening database")
	formatted := FormatByCategory(sys)
	assert.Contains(t, formatted, "System error:")
	assert.Contains(t, formatted, "database corrupted")

	transient := Wrap(ErrLockHeld, "acquiring lock")
	assert.Contains(t, FormatByCategory(transient), "will retry automatically")
}
