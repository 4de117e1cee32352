package model

import "time"

// Family holds household-wide settings. A single record is stored under
// KeyFamily. Pausing the family suspends every reminder's schedule
// without touching the reminders themselves.
type Family struct {
	Key            string        `json:"key"`
	Name           string        `json:"name,omitempty"`
	IsPaused       bool          `json:"is_paused"`
	SnoozeInterval time.Duration `json:"snooze_interval"`
	CreatedAt      time.Time     `json:"created_at"`
}

// SetKey sets the database key for this family.
func (f *Family) SetKey(key string) {
	f.Key = key
}

// GetKey returns the database key for this family.
func (f *Family) GetKey() string {
	return f.Key
}

// EffectiveSnoozeInterval returns the configured snooze interval, or
// the default when unset.
func (f *Family) EffectiveSnoozeInterval() time.Duration {
	if f.SnoozeInterval > 0 {
		return f.SnoozeInterval
	}
	return DefaultSnoozeInterval
}

// DefaultFamily returns a family record with default settings.
func DefaultFamily() *Family {
	return &Family{
		Key:       KeyFamily,
		CreatedAt: time.Now(),
	}
}
