package model

import (
	"time"

	"github.com/pawminder/pawminder/internal/validate"
)

// CountdownCalculator fires a fixed interval after the execution basis.
// IntervalElapsed carries time already counted off (for example, time
// accrued before the owning reminder was edited) and never exceeds
// ExecutionInterval.
type CountdownCalculator struct {
	ExecutionInterval time.Duration `json:"execution_interval"`
	IntervalElapsed   time.Duration `json:"interval_elapsed"`
}

// NextFire returns the instant the countdown fires, measured from basis.
func (c *CountdownCalculator) NextFire(basis time.Time) time.Time {
	return basis.Add(c.ExecutionInterval - c.IntervalElapsed)
}

// Reset zeroes the elapsed counter so the full interval runs again.
func (c *CountdownCalculator) Reset() {
	c.IntervalElapsed = 0
}

// ChangeExecutionInterval replaces the interval. Non-positive durations
// are rejected and leave the calculator untouched. A successful change
// zeroes the elapsed counter: time counted against the old interval does
// not carry over.
func (c *CountdownCalculator) ChangeExecutionInterval(d time.Duration) error {
	if err := validate.Interval(d); err != nil {
		return err
	}
	c.ExecutionInterval = d
	c.IntervalElapsed = 0
	return nil
}
