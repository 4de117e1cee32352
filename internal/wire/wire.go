// Package wire implements the versioned record shape collaborators use
// to exchange reminder state. The encoding is explicit and structural:
// adding a recurrence kind or field is a reviewable schema change, not
// an implicit coder pairing. Stored hour/minute values are UTC and are
// reinterpreted through the reading device's calendar.
package wire

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/pawminder/pawminder/internal/errors"
	"github.com/pawminder/pawminder/internal/model"
)

// Record versions.
const (
	// VersionLegacy records carry no skip-log reference; a deleted log
	// is correlated to a pending skip by time proximity instead.
	VersionLegacy = 1
	// VersionCurrent records reference the log a skip produced
	// explicitly.
	VersionCurrent = 2
)

// Record is the wire shape of one reminder. Durations travel as
// seconds; instants as RFC 3339 timestamps.
type Record struct {
	RecordVersion int `json:"recordVersion" validate:"min=1,max=2"`

	ReminderID               int64     `json:"reminderId"`
	ReminderIsEnabled        bool      `json:"reminderIsEnabled"`
	ReminderType             string    `json:"reminderType" validate:"required,oneof=countdown weekly monthly oneTime"`
	ReminderAction           string    `json:"reminderAction,omitempty"`
	ReminderCustomActionName string    `json:"reminderCustomActionName,omitempty" validate:"max=32"`
	ReminderExecutionBasis   time.Time `json:"reminderExecutionBasis"`

	CountdownExecutionInterval float64 `json:"countdownExecutionInterval,omitempty" validate:"min=0"`
	CountdownIntervalElapsed   float64 `json:"countdownIntervalElapsed,omitempty" validate:"min=0"`

	WeeklyUTCHour     int        `json:"weeklyUTCHour" validate:"min=0,max=23"`
	WeeklyUTCMinute   int        `json:"weeklyUTCMinute" validate:"min=0,max=59"`
	WeeklySunday      bool       `json:"weeklySunday"`
	WeeklyMonday      bool       `json:"weeklyMonday"`
	WeeklyTuesday     bool       `json:"weeklyTuesday"`
	WeeklyWednesday   bool       `json:"weeklyWednesday"`
	WeeklyThursday    bool       `json:"weeklyThursday"`
	WeeklyFriday      bool       `json:"weeklyFriday"`
	WeeklySaturday    bool       `json:"weeklySaturday"`
	WeeklyIsSkipping  bool       `json:"weeklyIsSkipping"`
	WeeklySkippedDate *time.Time `json:"weeklySkippedDate,omitempty"`
	WeeklySkipLogKey  string     `json:"weeklySkipLogKey,omitempty"`

	MonthlyUTCDay      int        `json:"monthlyUTCDay,omitempty" validate:"omitempty,min=1,max=31"`
	MonthlyUTCHour     int        `json:"monthlyUTCHour" validate:"min=0,max=23"`
	MonthlyUTCMinute   int        `json:"monthlyUTCMinute" validate:"min=0,max=59"`
	MonthlyIsSkipping  bool       `json:"monthlyIsSkipping"`
	MonthlySkippedDate *time.Time `json:"monthlySkippedDate,omitempty"`
	MonthlySkipLogKey  string     `json:"monthlySkipLogKey,omitempty"`

	OneTimeDate *time.Time `json:"oneTimeDate,omitempty"`

	SnoozeIsEnabled         bool    `json:"snoozeIsEnabled"`
	SnoozeExecutionInterval float64 `json:"snoozeExecutionInterval,omitempty" validate:"min=0"`
	SnoozeIntervalElapsed   float64 `json:"snoozeIntervalElapsed,omitempty" validate:"min=0"`
}

var recordValidator = validator.New(validator.WithRequiredStructEnabled())

// Encode converts a reminder to its wire record.
func Encode(r *model.Reminder) *Record {
	rec := &Record{
		RecordVersion:            VersionCurrent,
		ReminderID:               r.ID,
		ReminderIsEnabled:        r.Enabled,
		ReminderType:             string(r.Kind),
		ReminderAction:           r.Action,
		ReminderCustomActionName: r.CustomActionName,
		ReminderExecutionBasis:   r.ExecutionBasis,

		CountdownExecutionInterval: r.Countdown.ExecutionInterval.Seconds(),
		CountdownIntervalElapsed:   r.Countdown.IntervalElapsed.Seconds(),

		WeeklyUTCHour:    r.Weekly.Hour,
		WeeklyUTCMinute:  r.Weekly.Minute,
		WeeklyIsSkipping: r.Weekly.IsSkipping,
		WeeklySkipLogKey: r.Weekly.SkipLogKey,

		MonthlyUTCDay:     r.Monthly.DayOfMonth,
		MonthlyUTCHour:    r.Monthly.Hour,
		MonthlyUTCMinute:  r.Monthly.Minute,
		MonthlyIsSkipping: r.Monthly.IsSkipping,
		MonthlySkipLogKey: r.Monthly.SkipLogKey,

		SnoozeIsEnabled:         r.Snooze.IsEnabled,
		SnoozeExecutionInterval: r.Snooze.ExecutionInterval.Seconds(),
		SnoozeIntervalElapsed:   r.Snooze.IntervalElapsed.Seconds(),
	}

	for _, wd := range r.Weekly.Weekdays {
		switch wd {
		case time.Sunday:
			rec.WeeklySunday = true
		case time.Monday:
			rec.WeeklyMonday = true
		case time.Tuesday:
			rec.WeeklyTuesday = true
		case time.Wednesday:
			rec.WeeklyWednesday = true
		case time.Thursday:
			rec.WeeklyThursday = true
		case time.Friday:
			rec.WeeklyFriday = true
		case time.Saturday:
			rec.WeeklySaturday = true
		}
	}

	if !r.Weekly.SkipRequestedAt.IsZero() {
		t := r.Weekly.SkipRequestedAt
		rec.WeeklySkippedDate = &t
	}
	if !r.Monthly.SkipRequestedAt.IsZero() {
		t := r.Monthly.SkipRequestedAt
		rec.MonthlySkippedDate = &t
	}
	if !r.OneTime.FireAt.IsZero() {
		t := r.OneTime.FireAt
		rec.OneTimeDate = &t
	}

	return rec
}

// Decode converts a wire record back to a reminder. Range violations
// are rejected before any state is built; structural oddities that the
// mutators cannot produce (an empty weekly day selection, say) are
// preserved as-is, since the calculators degrade gracefully on them.
func Decode(rec *Record) (*model.Reminder, error) {
	if rec.RecordVersion == 0 {
		rec.RecordVersion = VersionLegacy
	}
	if err := recordValidator.Struct(rec); err != nil {
		return nil, errors.Wrap(err, "invalid reminder record")
	}

	r := &model.Reminder{
		Key:              model.GenerateReminderKey(rec.ReminderID),
		ID:               rec.ReminderID,
		Action:           rec.ReminderAction,
		CustomActionName: rec.ReminderCustomActionName,
		Enabled:          rec.ReminderIsEnabled,
		ExecutionBasis:   rec.ReminderExecutionBasis,
		Kind:             model.ReminderKind(rec.ReminderType),

		Countdown: model.CountdownCalculator{
			ExecutionInterval: secondsToDuration(rec.CountdownExecutionInterval),
			IntervalElapsed:   secondsToDuration(rec.CountdownIntervalElapsed),
		},
		Weekly: model.WeeklyCalculator{
			Hour:       rec.WeeklyUTCHour,
			Minute:     rec.WeeklyUTCMinute,
			Weekdays:   decodeWeekdays(rec),
			IsSkipping: rec.WeeklyIsSkipping,
			SkipLogKey: rec.WeeklySkipLogKey,
		},
		Monthly: model.MonthlyCalculator{
			Hour:       rec.MonthlyUTCHour,
			Minute:     rec.MonthlyUTCMinute,
			DayOfMonth: rec.MonthlyUTCDay,
			IsSkipping: rec.MonthlyIsSkipping,
			SkipLogKey: rec.MonthlySkipLogKey,
		},
		Snooze: model.Snooze{
			IsEnabled:         rec.SnoozeIsEnabled,
			ExecutionInterval: secondsToDuration(rec.SnoozeExecutionInterval),
			IntervalElapsed:   secondsToDuration(rec.SnoozeIntervalElapsed),
		},
	}

	if rec.WeeklySkippedDate != nil {
		r.Weekly.SkipRequestedAt = *rec.WeeklySkippedDate
	}
	if rec.MonthlySkippedDate != nil {
		r.Monthly.SkipRequestedAt = *rec.MonthlySkippedDate
	}
	if rec.OneTimeDate != nil {
		r.OneTime.FireAt = *rec.OneTimeDate
	}

	return r, nil
}

// Marshal encodes a reminder record as JSON.
func Marshal(r *model.Reminder) ([]byte, error) {
	return json.Marshal(Encode(r))
}

// Unmarshal decodes a JSON reminder record.
func Unmarshal(data []byte) (*model.Reminder, error) {
	rec := &Record{}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, errors.Wrap(err, "malformed reminder record")
	}
	return Decode(rec)
}

// IsLegacy reports whether the record predates explicit skip-log
// references; skips decoded from such records are correlated to logs by
// time proximity.
func (rec *Record) IsLegacy() bool {
	return rec.RecordVersion < VersionCurrent
}

func decodeWeekdays(rec *Record) []time.Weekday {
	var days []time.Weekday
	flags := []struct {
		set bool
		day time.Weekday
	}{
		{rec.WeeklySunday, time.Sunday},
		{rec.WeeklyMonday, time.Monday},
		{rec.WeeklyTuesday, time.Tuesday},
		{rec.WeeklyWednesday, time.Wednesday},
		{rec.WeeklyThursday, time.Thursday},
		{rec.WeeklyFriday, time.Friday},
		{rec.WeeklySaturday, time.Saturday},
	}
	for _, f := range flags {
		if f.set {
			days = append(days, f.day)
		}
	}
	return days
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
