// Package parser provides argument and timestamp parsing for Pawminder.
package parser

import (
	"sort"
	"strings"
	"time"
)

// weekdayNames maps accepted spellings to weekdays.
var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "weds": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// ParseWeekday parses a single weekday name.
func ParseWeekday(s string) (time.Weekday, bool) {
	wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(s))]
	return wd, ok
}

// ParseWeekdays parses a comma-separated weekday list like "mon,wed,fri"
// or "monday, thursday". Shorthands "daily", "weekdays" and "weekends"
// expand to the obvious sets. Duplicates collapse; the result is sorted
// Sunday first.
func ParseWeekdays(s string) ([]time.Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return nil, false
	case "daily", "everyday", "every day":
		return []time.Weekday{
			time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
			time.Thursday, time.Friday, time.Saturday,
		}, true
	case "weekdays":
		return []time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
		}, true
	case "weekends":
		return []time.Weekday{time.Sunday, time.Saturday}, true
	}

	seen := make(map[time.Weekday]bool)
	var days []time.Weekday
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
		wd, ok := ParseWeekday(part)
		if !ok {
			return nil, false
		}
		if !seen[wd] {
			seen[wd] = true
			days = append(days, wd)
		}
	}
	if len(days) == 0 {
		return nil, false
	}

	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days, true
}

// FormatWeekdays renders a weekday list like "Mon, Wed, Fri".
func FormatWeekdays(days []time.Weekday) string {
	if len(days) == 0 {
		return "none"
	}
	if len(days) == 7 {
		return "every day"
	}

	parts := make([]string, len(days))
	for i, wd := range days {
		parts[i] = wd.String()[:3]
	}
	return strings.Join(parts, ", ")
}

// WeekdayExamples provides example weekday list formats.
var WeekdayExamples = []string{
	"mon,wed,fri",
	"monday, thursday",
	"daily",
	"weekdays",
	"weekends",
}

// NewWeekdaysError creates a weekday parse error with standard examples.
func NewWeekdaysError(input string) *TimeParseError {
	return &TimeParseError{
		Input:      input,
		Field:      "weekdays",
		Message:    "could not parse weekday list",
		Examples:   WeekdayExamples,
		Suggestion: "Separate weekday names or abbreviations with commas.",
	}
}
