package model

import (
	"sort"
	"time"

	"github.com/pawminder/pawminder/internal/calendar"
	"github.com/pawminder/pawminder/internal/validate"
)

// WeeklyCalculator fires at a fixed time of day on a selected set of
// weekdays. At least one weekday is selected by construction; an empty
// set can only appear in state reconstructed from untrusted storage and
// degrades to a flat weekly fallback rather than failing.
type WeeklyCalculator struct {
	Hour            int            `json:"hour"`
	Minute          int            `json:"minute"`
	Weekdays        []time.Weekday `json:"weekdays"`
	IsSkipping      bool           `json:"is_skipping"`
	SkipRequestedAt time.Time      `json:"skip_requested_at,omitempty"`
	SkipLogKey      string         `json:"skip_log_key,omitempty"`
}

// FutureOccurrences returns the upcoming occurrences strictly after
// basis, sorted ascending. At least two are always returned: each
// selected weekday contributes its next occurrence and the one a week
// later, so even a single-weekday selection yields two results.
func (w *WeeklyCalculator) FutureOccurrences(basis time.Time) []time.Time {
	if len(w.Weekdays) == 0 {
		// Defensive fallback for state that violates the non-empty
		// weekday invariant.
		return []time.Time{basis.AddDate(0, 0, 7), basis.AddDate(0, 0, 14)}
	}

	occs := make([]time.Time, 0, 2*len(w.Weekdays))
	for _, wd := range w.Weekdays {
		day := calendar.NextWeekdayOnOrAfter(basis, wd)
		c := calendar.AtTimeOfDay(day, w.Hour, w.Minute)
		if !c.After(basis) {
			c = c.AddDate(0, 0, 7)
		}
		occs = append(occs, c, c.AddDate(0, 0, 7))
	}

	sort.Slice(occs, func(i, j int) bool { return occs[i].Before(occs[j]) })
	return occs
}

// NotSkippingFire returns the nearest future occurrence after basis.
func (w *WeeklyCalculator) NotSkippingFire(basis time.Time) time.Time {
	return w.FutureOccurrences(basis)[0]
}

// SkippingFire returns the occurrence after the nearest one; it is the
// effective fire time while a skip is pending.
func (w *WeeklyCalculator) SkippingFire(basis time.Time) time.Time {
	return w.FutureOccurrences(basis)[1]
}

// EffectiveFire returns the fire time with the skip overlay applied.
func (w *WeeklyCalculator) EffectiveFire(basis time.Time) time.Time {
	if w.IsSkipping {
		return w.SkippingFire(basis)
	}
	return w.NotSkippingFire(basis)
}

// PreviousFire returns the occurrence immediately before the nearest
// future one. With multiple weekdays selected the spacing is not a flat
// week, so the prior matching weekday is searched per selected day.
func (w *WeeklyCalculator) PreviousFire(basis time.Time) time.Time {
	next := w.NotSkippingFire(basis)
	if len(w.Weekdays) == 0 {
		return next.AddDate(0, 0, -7)
	}

	var prev time.Time
	for _, wd := range w.Weekdays {
		c := calendar.PreviousWeekdayBefore(next, wd)
		if prev.IsZero() || c.After(prev) {
			prev = c
		}
	}
	return prev
}

// RequestSkip marks the next occurrence as skipped. Requesting a skip
// while one is already pending is a no-op; the existing skip state is
// kept. Returns true when the state changed.
func (w *WeeklyCalculator) RequestSkip(requestedAt time.Time, logKey string) bool {
	if w.IsSkipping {
		return false
	}
	w.IsSkipping = true
	w.SkipRequestedAt = requestedAt
	w.SkipLogKey = logKey
	return true
}

// DisableSkip clears any pending skip.
func (w *WeeklyCalculator) DisableSkip() {
	w.IsSkipping = false
	w.SkipRequestedAt = time.Time{}
	w.SkipLogKey = ""
}

// ChangeHour sets the hour of day. A schedule change invalidates any
// pending skip.
func (w *WeeklyCalculator) ChangeHour(hour int) error {
	if err := validate.Hour(hour); err != nil {
		return err
	}
	w.Hour = hour
	w.DisableSkip()
	return nil
}

// ChangeMinute sets the minute of hour and invalidates any pending skip.
func (w *WeeklyCalculator) ChangeMinute(minute int) error {
	if err := validate.Minute(minute); err != nil {
		return err
	}
	w.Minute = minute
	w.DisableSkip()
	return nil
}

// ChangeWeekdays replaces the weekday selection and invalidates any
// pending skip. An empty selection is rejected.
func (w *WeeklyCalculator) ChangeWeekdays(days []time.Weekday) error {
	if err := validate.Weekdays(days); err != nil {
		return err
	}
	sorted := make([]time.Weekday, len(days))
	copy(sorted, days)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	w.Weekdays = dedupeWeekdays(sorted)
	w.DisableSkip()
	return nil
}

func dedupeWeekdays(sorted []time.Weekday) []time.Weekday {
	out := sorted[:0]
	for i, d := range sorted {
		if i == 0 || d != sorted[i-1] {
			out = append(out, d)
		}
	}
	return out
}

// FiresOn reports whether the given weekday is selected.
func (w *WeeklyCalculator) FiresOn(day time.Weekday) bool {
	for _, d := range w.Weekdays {
		if d == day {
			return true
		}
	}
	return false
}
