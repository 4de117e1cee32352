// Package calendar provides date arithmetic helpers for recurrence computation.
package calendar

import "time"

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	// Day zero of the next month is the last day of this month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// NextTimeOfDayOnOrAfter returns the next instant at or after basis whose
// hour and minute match the given values. If basis's own time of day has
// already passed hour:minute, the result rolls to the following day.
// Date math goes through the calendar (AddDate) rather than raw second
// addition so month-length irregularities are handled by the library.
func NextTimeOfDayOnOrAfter(basis time.Time, hour, minute int) time.Time {
	candidate := time.Date(basis.Year(), basis.Month(), basis.Day(),
		hour, minute, 0, 0, basis.Location())
	if candidate.Before(basis) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}

// AtTimeOfDay returns the instant on basis's date with the given hour and
// minute, without rolling forward.
func AtTimeOfDay(basis time.Time, hour, minute int) time.Time {
	return time.Date(basis.Year(), basis.Month(), basis.Day(),
		hour, minute, 0, 0, basis.Location())
}

// AddMonthsWithDayClamp adds whole months to t and then sets the day of
// month to min(targetDay, days in the resulting month). The clamp is
// re-derived from targetDay on every call: a target of 31 landing in a
// 30-day month yields day 30 for that month only, and the next call
// re-attempts the full target day.
func AddMonthsWithDayClamp(t time.Time, months int, targetDay int) time.Time {
	// Normalize to the first of the month before adding so AddDate cannot
	// spill into the month after the intended one (e.g. Jan 31 + 1 month).
	first := time.Date(t.Year(), t.Month(), 1,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	shifted := first.AddDate(0, months, 0)

	day := targetDay
	if max := DaysInMonth(shifted.Year(), shifted.Month()); day > max {
		day = max
	}
	return time.Date(shifted.Year(), shifted.Month(), day,
		shifted.Hour(), shifted.Minute(), shifted.Second(), shifted.Nanosecond(), shifted.Location())
}

// NextWeekdayOnOrAfter returns the instant on or after basis whose weekday
// matches the given weekday, preserving basis's time of day.
func NextWeekdayOnOrAfter(basis time.Time, weekday time.Weekday) time.Time {
	delta := (int(weekday) - int(basis.Weekday()) + 7) % 7
	return basis.AddDate(0, 0, delta)
}

// PreviousWeekdayBefore returns the instant strictly before basis whose
// weekday matches the given weekday, preserving basis's time of day.
func PreviousWeekdayBefore(basis time.Time, weekday time.Weekday) time.Time {
	delta := (int(basis.Weekday()) - int(weekday) + 7) % 7
	if delta == 0 {
		delta = 7
	}
	return basis.AddDate(0, 0, -delta)
}
