// Package model defines the domain models for Pawminder: dogs, their
// reminders, care logs, and the recurrence calculators that compute when
// a reminder fires next.
package model

import "time"

// Model is the interface that all database models must implement.
type Model interface {
	// SetKey sets the database key for this model.
	SetKey(key string)
	// GetKey returns the database key for this model.
	GetKey() string
}

// KeyPrefix constants for database key generation.
const (
	PrefixDog      = "dog"
	PrefixReminder = "reminder"
	PrefixLog      = "log"
	KeyFamily      = "family"
)

// SchedulingContext carries the inputs a fire-time computation depends
// on. Passing it explicitly keeps the computation a pure function of its
// arguments instead of consulting process-wide settings.
type SchedulingContext struct {
	// Now is the instant the computation is evaluated at.
	Now time.Time
	// FamilyPaused suspends all reminders for the family without
	// touching their stored state.
	FamilyPaused bool
}

// Context returns a SchedulingContext for the given instant with no
// family pause.
func Context(now time.Time) SchedulingContext {
	return SchedulingContext{Now: now}
}
