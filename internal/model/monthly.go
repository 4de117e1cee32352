package model

import (
	"time"

	"github.com/pawminder/pawminder/internal/calendar"
	"github.com/pawminder/pawminder/internal/validate"
)

// MonthlyCalculator fires at a fixed time of day on a target day of
// month. Days past a month's end clamp to that month's last day for the
// affected candidate only; the stored DayOfMonth is never overwritten,
// so a later, longer month gets the full target day again.
type MonthlyCalculator struct {
	Hour            int       `json:"hour"`
	Minute          int       `json:"minute"`
	DayOfMonth      int       `json:"day_of_month"`
	IsSkipping      bool      `json:"is_skipping"`
	SkipRequestedAt time.Time `json:"skip_requested_at,omitempty"`
	SkipLogKey      string    `json:"skip_log_key,omitempty"`
}

// FutureOccurrences returns the next two occurrences strictly after
// basis, one calendar month apart modulo day-of-month clamping.
func (m *MonthlyCalculator) FutureOccurrences(basis time.Time) []time.Time {
	day := m.DayOfMonth
	if max := calendar.DaysInMonth(basis.Year(), basis.Month()); day > max {
		day = max
	}

	first := time.Date(basis.Year(), basis.Month(), day,
		m.Hour, m.Minute, 0, 0, basis.Location())
	if !first.After(basis) {
		first = calendar.AddMonthsWithDayClamp(first, 1, m.DayOfMonth)
	}
	second := calendar.AddMonthsWithDayClamp(first, 1, m.DayOfMonth)

	return []time.Time{first, second}
}

// NotSkippingFire returns the nearest future occurrence after basis.
func (m *MonthlyCalculator) NotSkippingFire(basis time.Time) time.Time {
	return m.FutureOccurrences(basis)[0]
}

// SkippingFire returns the occurrence after the nearest one; it is the
// effective fire time while a skip is pending.
func (m *MonthlyCalculator) SkippingFire(basis time.Time) time.Time {
	return m.FutureOccurrences(basis)[1]
}

// EffectiveFire returns the fire time with the skip overlay applied.
func (m *MonthlyCalculator) EffectiveFire(basis time.Time) time.Time {
	if m.IsSkipping {
		return m.SkippingFire(basis)
	}
	return m.NotSkippingFire(basis)
}

// PreviousFire returns the occurrence one month before the nearest
// future one, re-clamped against the target month's length.
func (m *MonthlyCalculator) PreviousFire(basis time.Time) time.Time {
	return calendar.AddMonthsWithDayClamp(m.NotSkippingFire(basis), -1, m.DayOfMonth)
}

// RequestSkip marks the next occurrence as skipped. A second request
// while one is pending is a no-op. Returns true when the state changed.
func (m *MonthlyCalculator) RequestSkip(requestedAt time.Time, logKey string) bool {
	if m.IsSkipping {
		return false
	}
	m.IsSkipping = true
	m.SkipRequestedAt = requestedAt
	m.SkipLogKey = logKey
	return true
}

// DisableSkip clears any pending skip.
func (m *MonthlyCalculator) DisableSkip() {
	m.IsSkipping = false
	m.SkipRequestedAt = time.Time{}
	m.SkipLogKey = ""
}

// ChangeDayOfMonth sets the target day. Values outside [1,31] are
// rejected; a successful change invalidates any pending skip.
func (m *MonthlyCalculator) ChangeDayOfMonth(day int) error {
	if err := validate.DayOfMonth(day); err != nil {
		return err
	}
	m.DayOfMonth = day
	m.DisableSkip()
	return nil
}

// ChangeHour sets the hour of day and invalidates any pending skip.
func (m *MonthlyCalculator) ChangeHour(hour int) error {
	if err := validate.Hour(hour); err != nil {
		return err
	}
	m.Hour = hour
	m.DisableSkip()
	return nil
}

// ChangeMinute sets the minute of hour and invalidates any pending skip.
func (m *MonthlyCalculator) ChangeMinute(minute int) error {
	if err := validate.Minute(minute); err != nil {
		return err
	}
	m.Minute = minute
	m.DisableSkip()
	return nil
}
