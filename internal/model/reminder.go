package model

import (
	"fmt"
	"time"

	"github.com/pawminder/pawminder/internal/errors"
	"github.com/pawminder/pawminder/internal/validate"
)

// ReminderKind selects which recurrence calculator is active for a
// reminder. Exactly one calculator participates in fire-time
// computation; the payloads for the other kinds are retained so that
// switching kinds in an editor does not lose user-entered values.
type ReminderKind string

// Reminder kinds.
const (
	KindCountdown ReminderKind = "countdown"
	KindWeekly    ReminderKind = "weekly"
	KindMonthly   ReminderKind = "monthly"
	KindOneTime   ReminderKind = "oneTime"
)

// IsValidKind checks if a reminder kind is valid.
func IsValidKind(k ReminderKind) bool {
	switch k {
	case KindCountdown, KindWeekly, KindMonthly, KindOneTime:
		return true
	}
	return false
}

// Reminder action classifications.
const (
	ActionFeed       = "feed"
	ActionFreshWater = "fresh water"
	ActionWalk       = "walk"
	ActionBrush      = "brush"
	ActionBathe      = "bathe"
	ActionMedicine   = "medicine"
	ActionPotty      = "potty"
	ActionCustom     = "custom"
)

// ValidActions returns the recognized action classifications.
func ValidActions() []string {
	return []string{
		ActionFeed, ActionFreshWater, ActionWalk, ActionBrush,
		ActionBathe, ActionMedicine, ActionPotty, ActionCustom,
	}
}

// IsValidAction checks if an action classification is valid.
func IsValidAction(action string) bool {
	for _, a := range ValidActions() {
		if a == action {
			return true
		}
	}
	return false
}

// SkipCorrelationEpsilon is the tolerance used to decide whether a log
// being deleted corresponds to a pending skip when the skip carries no
// explicit log reference (records decoded from the legacy wire shape).
const SkipCorrelationEpsilon = 10 * time.Millisecond

// Reminder is the aggregate: one dog-scoped reminder holding exactly one
// active recurrence calculator (selected by Kind), the snooze overlay,
// an enabled flag, and the execution basis all calculators measure
// elapsed time from.
//
// Negative IDs denote client-assigned placeholders pending server
// assignment.
type Reminder struct {
	Key              string       `json:"key"`
	ID               int64        `json:"id"`
	DogKey           string       `json:"dog_key"`
	Action           string       `json:"action" validate:"required"`
	CustomActionName string       `json:"custom_action_name,omitempty" validate:"max=32"`
	Enabled          bool         `json:"enabled"`
	ExecutionBasis   time.Time    `json:"execution_basis"`
	Kind             ReminderKind `json:"kind"`

	Countdown CountdownCalculator `json:"countdown"`
	Weekly    WeeklyCalculator    `json:"weekly"`
	Monthly   MonthlyCalculator   `json:"monthly"`
	OneTime   OneTimeCalculator   `json:"one_time"`
	Snooze    Snooze              `json:"snooze"`

	CreatedAt time.Time `json:"created_at"`
	DeletedAt time.Time `json:"deleted_at,omitempty"`
}

// SetKey sets the database key for this reminder.
func (r *Reminder) SetKey(key string) {
	r.Key = key
}

// GetKey returns the database key for this reminder.
func (r *Reminder) GetKey() string {
	return r.Key
}

// GenerateReminderKey generates a database key for a reminder ID.
func GenerateReminderKey(id int64) string {
	return fmt.Sprintf("%s:%d", PrefixReminder, id)
}

// NewReminder creates an enabled reminder of the given kind anchored at
// now.
func NewReminder(dogKey string, action string, kind ReminderKind, now time.Time) *Reminder {
	return &Reminder{
		DogKey:         dogKey,
		Action:         action,
		Enabled:        true,
		Kind:           kind,
		ExecutionBasis: now,
		CreatedAt:      now,
	}
}

// IsDeleted reports whether the reminder has been soft-deleted.
func (r *Reminder) IsDeleted() bool {
	return !r.DeletedAt.IsZero()
}

// IsPlaceholder reports whether the ID is a client-assigned placeholder
// pending server assignment.
func (r *Reminder) IsPlaceholder() bool {
	return r.ID < 0
}

// DisplayName returns the action name shown to the user: the custom
// label for custom actions, the classification otherwise.
func (r *Reminder) DisplayName() string {
	if r.Action == ActionCustom && r.CustomActionName != "" {
		return r.CustomActionName
	}
	return r.Action
}

// NextFire computes the effective next fire time. It returns false when
// the reminder is disabled, soft-deleted, or the family is paused;
// stored state is untouched either way so pausing is non-destructive.
// While the snooze overlay is enabled it determines the fire time,
// bypassing the per-kind calculator entirely.
//
// NextFire is a pure read: calling it repeatedly with identical inputs
// yields identical results.
func (r *Reminder) NextFire(sctx SchedulingContext) (time.Time, bool) {
	if !r.Enabled || r.IsDeleted() || sctx.FamilyPaused {
		return time.Time{}, false
	}

	if r.Snooze.IsEnabled {
		return r.Snooze.Fire(r.ExecutionBasis), true
	}

	switch r.Kind {
	case KindCountdown:
		return r.Countdown.NextFire(r.ExecutionBasis), true
	case KindWeekly:
		return r.Weekly.EffectiveFire(r.ExecutionBasis), true
	case KindMonthly:
		return r.Monthly.EffectiveFire(r.ExecutionBasis), true
	case KindOneTime:
		return r.OneTime.Fire(), true
	default:
		// Kind/payload mismatch from untrusted storage; no fire rather
		// than a bogus one.
		return time.Time{}, false
	}
}

// AcknowledgeFire resets the reminder after a fire has been handled:
// the execution basis moves to now, elapsed counters are zeroed, any
// pending skip on the active calculator is cleared, and one-time
// reminders are disabled as spent. Log creation is the caller's
// responsibility.
func (r *Reminder) AcknowledgeFire(now time.Time) {
	r.ExecutionBasis = now
	r.Countdown.Reset()
	r.Snooze.Clear()

	switch r.Kind {
	case KindWeekly:
		r.Weekly.DisableSkip()
	case KindMonthly:
		r.Monthly.DisableSkip()
	case KindOneTime:
		r.Enabled = false
	}
}

// SupportsSkip reports whether the active calculator has a skip overlay.
func (r *Reminder) SupportsSkip() bool {
	return r.Kind == KindWeekly || r.Kind == KindMonthly
}

// IsSkipping reports whether the active calculator has a pending skip.
func (r *Reminder) IsSkipping() bool {
	switch r.Kind {
	case KindWeekly:
		return r.Weekly.IsSkipping
	case KindMonthly:
		return r.Monthly.IsSkipping
	}
	return false
}

// RequestSkip asks the active calculator to bypass its next occurrence
// in favor of the one after it. logKey references the log entry the
// skip produced so that deleting that log undoes the skip. Requesting a
// skip while one is pending is a no-op; returns true when the state
// changed.
func (r *Reminder) RequestSkip(now time.Time, logKey string) (bool, error) {
	switch r.Kind {
	case KindWeekly:
		return r.Weekly.RequestSkip(now, logKey), nil
	case KindMonthly:
		return r.Monthly.RequestSkip(now, logKey), nil
	}
	return false, errors.NewUserError(
		fmt.Sprintf("'%s' reminders cannot skip", r.Kind),
		"Only weekly and monthly reminders support skipping")
}

// ClearSkip clears any pending skip on the active calculator.
func (r *Reminder) ClearSkip() {
	switch r.Kind {
	case KindWeekly:
		r.Weekly.DisableSkip()
	case KindMonthly:
		r.Monthly.DisableSkip()
	}
}

// SkipLogKey returns the log reference recorded with the pending skip,
// if any.
func (r *Reminder) SkipLogKey() string {
	switch r.Kind {
	case KindWeekly:
		return r.Weekly.SkipLogKey
	case KindMonthly:
		return r.Monthly.SkipLogKey
	}
	return ""
}

// SkipRequestedAt returns the instant the pending skip was requested.
func (r *Reminder) SkipRequestedAt() time.Time {
	switch r.Kind {
	case KindWeekly:
		return r.Weekly.SkipRequestedAt
	case KindMonthly:
		return r.Monthly.SkipRequestedAt
	}
	return time.Time{}
}

// BypassedFire returns the occurrence a pending skip is protecting: the
// non-skipping occurrence that was bypassed. Only meaningful while
// IsSkipping.
func (r *Reminder) BypassedFire() (time.Time, bool) {
	switch r.Kind {
	case KindWeekly:
		if r.Weekly.IsSkipping {
			return r.Weekly.NotSkippingFire(r.ExecutionBasis), true
		}
	case KindMonthly:
		if r.Monthly.IsSkipping {
			return r.Monthly.NotSkippingFire(r.ExecutionBasis), true
		}
	}
	return time.Time{}, false
}

// ReconcileSkip clears a stale skip: once now has passed the bypassed
// occurrence, the skip flag is dropped and the execution basis is
// re-anchored to now with elapsed counters zeroed. Idempotent; returns
// true when state changed. Callers must run this before trusting a
// fire-time read, since a stale skip otherwise reports an occurrence
// further in the future than reality warrants.
func (r *Reminder) ReconcileSkip(now time.Time) bool {
	bypassed, ok := r.BypassedFire()
	if !ok || !now.After(bypassed) {
		return false
	}

	r.ClearSkip()
	r.ExecutionBasis = now
	r.Countdown.Reset()
	r.Snooze.IntervalElapsed = 0
	return true
}

// ActivateSnooze enables the snooze overlay and rebases the execution
// basis to now. A zero interval falls back to DefaultSnoozeInterval.
func (r *Reminder) ActivateSnooze(now time.Time, interval time.Duration) error {
	if interval == 0 {
		interval = DefaultSnoozeInterval
	}
	if err := validate.Interval(interval); err != nil {
		return err
	}
	r.Snooze.IsEnabled = true
	r.Snooze.ExecutionInterval = interval
	r.Snooze.IntervalElapsed = 0
	r.ExecutionBasis = now
	return nil
}

// ChangeCustomActionName sets the custom label, rejecting over-long
// names.
func (r *Reminder) ChangeCustomActionName(name string) error {
	if err := validate.ActionName(name); err != nil {
		return err
	}
	r.CustomActionName = name
	return nil
}

// ChangeHour sets the hour of day on the active calculator. Countdown
// and one-time reminders have no hour field.
func (r *Reminder) ChangeHour(hour int) error {
	switch r.Kind {
	case KindWeekly:
		return r.Weekly.ChangeHour(hour)
	case KindMonthly:
		return r.Monthly.ChangeHour(hour)
	}
	return errors.NewUserError(
		fmt.Sprintf("'%s' reminders have no hour of day", r.Kind),
		"Only weekly and monthly reminders fire at a time of day")
}

// ChangeMinute sets the minute of hour on the active calculator.
func (r *Reminder) ChangeMinute(minute int) error {
	switch r.Kind {
	case KindWeekly:
		return r.Weekly.ChangeMinute(minute)
	case KindMonthly:
		return r.Monthly.ChangeMinute(minute)
	}
	return errors.NewUserError(
		fmt.Sprintf("'%s' reminders have no minute of hour", r.Kind),
		"Only weekly and monthly reminders fire at a time of day")
}
