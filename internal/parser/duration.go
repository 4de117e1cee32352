package parser

import (
	"strconv"
	"strings"
	"time"
)

// DurationResult holds a parsed interval.
type DurationResult struct {
	Duration time.Duration
	Valid    bool
	Error    error
}

// durationUnits maps the spellings accepted in reminder phrases to a
// base duration.
var durationUnits = map[string]time.Duration{
	"h": time.Hour, "hr": time.Hour, "hrs": time.Hour,
	"hour": time.Hour, "hours": time.Hour,
	"m": time.Minute, "min": time.Minute, "mins": time.Minute,
	"minute": time.Minute, "minutes": time.Minute,
	"s": time.Second, "sec": time.Second, "secs": time.Second,
	"second": time.Second, "seconds": time.Second,
	"d": 24 * time.Hour, "day": 24 * time.Hour, "days": 24 * time.Hour,
}

// ParseDuration reads intervals the way people type them in reminder
// phrases: "4h", "90m", "1h 30m", "2 hours", "1.5h", "2d". A bare
// number is taken as hours. Go's native duration syntax is accepted
// as-is.
func ParseDuration(input string) DurationResult {
	input = strings.TrimSpace(input)
	if input == "" {
		return DurationResult{}
	}

	if d, err := time.ParseDuration(input); err == nil {
		return DurationResult{Duration: d, Valid: true}
	}

	var total time.Duration
	for _, part := range splitDurationParts(input) {
		value, unit, ok := splitValueUnit(part)
		if !ok {
			return DurationResult{}
		}
		base, ok := durationUnits[unit]
		if !ok {
			if unit != "" {
				return DurationResult{}
			}
			base = time.Hour
		}
		total += time.Duration(value * float64(base))
	}

	if total <= 0 {
		return DurationResult{}
	}
	return DurationResult{Duration: total, Valid: true}
}

// splitDurationParts breaks "1h 30m" or "1h30m" into value+unit
// chunks. A new chunk starts whenever a digit follows a letter.
func splitDurationParts(input string) []string {
	var parts []string
	var cur strings.Builder
	prevLetter := false
	for _, r := range input {
		if r == ' ' || r == '\t' {
			continue
		}
		isDigit := (r >= '0' && r <= '9') || r == '.'
		if isDigit && prevLetter && cur.Len() > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
		}
		cur.WriteRune(r)
		prevLetter = !isDigit
	}
	if cur.Len() > 0 {
		parts = append(parts, cur.String())
	}
	return parts
}

// splitValueUnit separates the leading number from the trailing unit
// word in a chunk like "90m" or "2.5hours".
func splitValueUnit(part string) (value float64, unit string, ok bool) {
	split := len(part)
	for i, r := range part {
		if (r < '0' || r > '9') && r != '.' {
			split = i
			break
		}
	}
	if split == 0 {
		return 0, "", false
	}
	value, err := strconv.ParseFloat(part[:split], 64)
	if err != nil {
		return 0, "", false
	}
	return value, strings.ToLower(part[split:]), true
}
