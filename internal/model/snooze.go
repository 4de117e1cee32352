package model

import (
	"time"

	"github.com/pawminder/pawminder/internal/validate"
)

// DefaultSnoozeInterval is used when a snooze is activated without an
// explicit interval.
const DefaultSnoozeInterval = 5 * time.Minute

// Snooze is a reminder-level overlay. While enabled it determines the
// fire time instead of the per-kind calculator: a short fixed interval
// measured from the instant the snooze began (the rebased execution
// basis).
type Snooze struct {
	IsEnabled         bool          `json:"is_enabled"`
	ExecutionInterval time.Duration `json:"execution_interval"`
	IntervalElapsed   time.Duration `json:"interval_elapsed"`
}

// Remaining returns the snooze time left to run.
func (s *Snooze) Remaining() time.Duration {
	return s.ExecutionInterval - s.IntervalElapsed
}

// Fire returns the instant the snooze fires, measured from basis.
func (s *Snooze) Fire(basis time.Time) time.Time {
	return basis.Add(s.Remaining())
}

// Clear disables the snooze and zeroes the elapsed counter. The
// underlying calculator's state is untouched, so clearing restores its
// computation exactly as it was before the snooze.
func (s *Snooze) Clear() {
	s.IsEnabled = false
	s.IntervalElapsed = 0
}

// ChangeExecutionInterval replaces the snooze interval. Non-positive
// durations are rejected.
func (s *Snooze) ChangeExecutionInterval(d time.Duration) error {
	if err := validate.Interval(d); err != nil {
		return err
	}
	s.ExecutionInterval = d
	return nil
}
