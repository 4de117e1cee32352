package model

import "time"

// OneTimeCalculator fires once at a fixed instant. There is no
// recurrence and no skip; once FireAt has passed, the owning reminder is
// spent and the aggregate disables it on acknowledgement.
type OneTimeCalculator struct {
	FireAt time.Time `json:"fire_at"`
}

// Fire returns the configured instant unconditionally.
func (o *OneTimeCalculator) Fire() time.Time {
	return o.FireAt
}

// IsSpent reports whether the fire instant has passed.
func (o *OneTimeCalculator) IsSpent(now time.Time) bool {
	return !o.FireAt.After(now)
}

// Replace swaps the fire instant wholesale; it is the only mutation a
// one-time calculator supports.
func (o *OneTimeCalculator) Replace(fireAt time.Time) {
	o.FireAt = fireAt
}
