package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ReminderSpec holds the parsed pieces of a natural reminder phrase.
type ReminderSpec struct {
	Action   string
	Schedule string // countdown, weekly, monthly, oneTime

	// Countdown
	Interval time.Duration

	// Weekly
	Weekdays []time.Weekday

	// Weekly and monthly time of day
	Hour    int
	Minute  int
	HasTime bool

	// Monthly
	DayOfMonth int

	// One-time
	Date    time.Time
	HasDate bool

	// Raw strings before processing
	RawSchedule string
	RawTime     string
}

// Schedule kinds produced by ParseReminderSpec. They match the stored
// reminder type strings.
const (
	ScheduleCountdown = "countdown"
	ScheduleWeekly    = "weekly"
	ScheduleMonthly   = "monthly"
	ScheduleOneTime   = "oneTime"
)

// clockRegex matches clock expressions like "7:30", "18:05", "8am", "5:30pm".
var clockRegex = regexp.MustCompile(`(?i)^(\d{1,2})(?::(\d{2}))?\s*(am|pm)?$`)

// ParseReminderSpec parses a natural reminder phrase into its parts.
// Supported shapes:
//   - "walk every mon,wed,fri at 7:30"   (weekly)
//   - "feed every 4h"                    (countdown)
//   - "flea treatment monthly on 15 at 9am" (monthly)
//   - "vet visit on tomorrow 3pm"        (one-time)
//
// Everything before the schedule keyword becomes the action phrase.
func ParseReminderSpec(args []string) (*ReminderSpec, error) {
	spec := &ReminderSpec{}
	if len(args) == 0 {
		return nil, NewTimeParseError("reminder", "", "reminder phrase is required",
			"walk every mon,wed at 7:30", "feed every 4h", "vet visit on tomorrow 3pm")
	}

	tokens := tokenize(strings.Join(args, " "))

	// Find the schedule keyword; the action is everything before it.
	splitAt := -1
	for i, tok := range tokens {
		switch strings.ToLower(tok) {
		case "every", "monthly", "on":
			splitAt = i
		}
		if splitAt >= 0 {
			break
		}
	}
	if splitAt <= 0 {
		return nil, NewTimeParseError("reminder", strings.Join(args, " "),
			"missing schedule (every .../monthly on .../on ...)",
			"walk every mon,wed at 7:30", "feed every 4h", "flea treatment monthly on 15")
	}

	spec.Action = strings.Join(tokens[:splitAt], " ")
	rest := tokens[splitAt:]
	spec.RawSchedule = strings.Join(rest, " ")

	switch strings.ToLower(rest[0]) {
	case "every":
		return parseEvery(spec, rest[1:])
	case "monthly":
		return parseMonthly(spec, rest[1:])
	case "on":
		return parseOneTime(spec, rest[1:])
	}
	return nil, NewTimeParseError("reminder", spec.RawSchedule, "unrecognized schedule")
}

// parseEvery handles "every <weekdays> [at <time>]" and "every <duration>".
func parseEvery(spec *ReminderSpec, rest []string) (*ReminderSpec, error) {
	if len(rest) == 0 {
		return nil, NewTimeParseError("schedule", spec.RawSchedule,
			"expected weekdays or an interval after 'every'",
			"every mon,wed at 7:30", "every 4h")
	}

	scheduleTokens, timeTokens := splitAtKeyword(rest, "at")

	scheduleStr := strings.Join(scheduleTokens, " ")
	if days, ok := ParseWeekdays(scheduleStr); ok {
		spec.Schedule = ScheduleWeekly
		spec.Weekdays = days
		return parseTimeOfDayInto(spec, timeTokens)
	}

	if result := ParseDuration(scheduleStr); result.Valid && result.Duration > 0 {
		if len(timeTokens) > 0 {
			return nil, NewTimeParseError("schedule", spec.RawSchedule,
				"interval reminders repeat on the clock, not at a time of day",
				"every 4h", "every 90m")
		}
		spec.Schedule = ScheduleCountdown
		spec.Interval = result.Duration
		return spec, nil
	}

	return nil, NewWeekdaysError(scheduleStr)
}

// parseMonthly handles "on <day> [at <time>]" after "monthly".
func parseMonthly(spec *ReminderSpec, rest []string) (*ReminderSpec, error) {
	if len(rest) == 0 || strings.ToLower(rest[0]) != "on" || len(rest) < 2 {
		return nil, NewTimeParseError("schedule", spec.RawSchedule,
			"expected 'monthly on <day-of-month>'",
			"monthly on 15", "monthly on 31 at 9am")
	}

	dayTokens, timeTokens := splitAtKeyword(rest[1:], "at")
	if len(dayTokens) != 1 {
		return nil, NewTimeParseError("day of month", strings.Join(dayTokens, " "),
			"expected a single day number", "monthly on 15")
	}

	day, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSuffix(strings.TrimSuffix(strings.TrimSuffix(
		dayTokens[0], "st"), "nd"), "rd"), "th"))
	if err != nil || day < 1 || day > 31 {
		return nil, NewTimeParseError("day of month", dayTokens[0],
			"day must be between 1 and 31", "monthly on 1", "monthly on 31")
	}

	spec.Schedule = ScheduleMonthly
	spec.DayOfMonth = day
	return parseTimeOfDayInto(spec, timeTokens)
}

// parseOneTime handles "on <date expression>".
func parseOneTime(spec *ReminderSpec, rest []string) (*ReminderSpec, error) {
	input := strings.Join(rest, " ")
	result := ParseDeadline(input)
	if result.Error != nil {
		return nil, NewDeadlineError(input)
	}

	spec.Schedule = ScheduleOneTime
	spec.Date = result.Time
	spec.HasDate = true
	return spec, nil
}

// parseTimeOfDayInto parses the optional "at <time>" clause.
func parseTimeOfDayInto(spec *ReminderSpec, timeTokens []string) (*ReminderSpec, error) {
	if len(timeTokens) == 0 {
		return spec, nil
	}

	spec.RawTime = strings.Join(timeTokens, " ")
	hour, minute, ok := parseClock(spec.RawTime)
	if !ok {
		return nil, NewTimestampError(spec.RawTime)
	}

	spec.Hour = hour
	spec.Minute = minute
	spec.HasTime = true
	return spec, nil
}

// parseClock parses clock expressions like "7:30", "18:05", "8am", "5:30pm".
func parseClock(s string) (hour, minute int, ok bool) {
	match := clockRegex.FindStringSubmatch(strings.TrimSpace(s))
	if match == nil {
		return 0, 0, false
	}

	hour, _ = strconv.Atoi(match[1])
	if match[2] != "" {
		minute, _ = strconv.Atoi(match[2])
	}

	switch strings.ToLower(match[3]) {
	case "am":
		if hour < 1 || hour > 12 {
			return 0, 0, false
		}
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour < 1 || hour > 12 {
			return 0, 0, false
		}
		if hour != 12 {
			hour += 12
		}
	default:
		if hour > 23 {
			return 0, 0, false
		}
	}
	if minute > 59 {
		return 0, 0, false
	}

	return hour, minute, true
}

// splitAtKeyword splits tokens at the first case-insensitive occurrence
// of the keyword, which is dropped.
func splitAtKeyword(tokens []string, keyword string) (before, after []string) {
	for i, tok := range tokens {
		if strings.EqualFold(tok, keyword) {
			return tokens[:i], tokens[i+1:]
		}
	}
	return tokens, nil
}

// tokenize splits an input string into whitespace-separated tokens.
func tokenize(input string) []string {
	return strings.Fields(input)
}
