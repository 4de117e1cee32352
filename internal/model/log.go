package model

import (
	"fmt"
	"time"
)

// Log is an append-only record of care given to a dog: who did what,
// when, with an optional note. Skips reference the log they produce via
// the calculator's SkipLogKey; deleting that log undoes the skip.
type Log struct {
	Key              string    `json:"key"`
	DogKey           string    `json:"dog_key"`
	ReminderID       int64     `json:"reminder_id,omitempty"`
	Action           string    `json:"action" validate:"required"`
	CustomActionName string    `json:"custom_action_name,omitempty" validate:"max=32"`
	Timestamp        time.Time `json:"timestamp"`
	Note             string    `json:"note,omitempty" validate:"max=4096"`
	AuthorKey        string    `json:"author_key"`
	CreatedAt        time.Time `json:"created_at"`
}

// SetKey sets the database key for this log.
func (l *Log) SetKey(key string) {
	l.Key = key
}

// GetKey returns the database key for this log.
func (l *Log) GetKey() string {
	return l.Key
}

// DisplayName returns the action name shown to the user.
func (l *Log) DisplayName() string {
	if l.Action == ActionCustom && l.CustomActionName != "" {
		return l.CustomActionName
	}
	return l.Action
}

// MatchesSkip reports whether this log corresponds to a pending skip
// requested at the given instant, using the time-proximity tolerance.
// Only used for records whose skip carries no explicit log reference.
func (l *Log) MatchesSkip(skipRequestedAt time.Time) bool {
	if skipRequestedAt.IsZero() {
		return false
	}
	delta := l.Timestamp.Sub(skipRequestedAt)
	if delta < 0 {
		delta = -delta
	}
	return delta <= SkipCorrelationEpsilon
}

// GenerateLogKey generates a database key for a log using UUID.
func GenerateLogKey(uuid string) string {
	return fmt.Sprintf("%s:%s", PrefixLog, uuid)
}

// NewLog creates a new log entry stamped at the given instant.
func NewLog(dogKey, action, authorKey string, timestamp time.Time) *Log {
	return &Log{
		DogKey:    dogKey,
		Action:    action,
		AuthorKey: authorKey,
		Timestamp: timestamp,
		CreatedAt: time.Now(),
	}
}
