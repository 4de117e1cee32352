package parser

// Care log entries accept natural language timestamps, so
// "log add rex walk --at 'yesterday 8am'" records the walk when it
// actually happened. Period expressions like "last week" resolve to
// the start of that period.

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"
)

// TimestampResult holds the parsed timestamp and any error.
type TimestampResult struct {
	Time  time.Time
	Error error
}

var periodExpr = regexp.MustCompile(`(?i)^(this|current|last|previous)\s+(hour|day|week|month|quarter|year)$`)

// ParseTimestamp parses a natural language point in time. Empty input
// and "now" both mean the current moment.
func ParseTimestamp(input string) TimestampResult {
	input = strings.TrimSpace(input)
	if input == "" || strings.EqualFold(input, "now") {
		return TimestampResult{Time: time.Now()}
	}

	if m := periodExpr.FindStringSubmatch(input); m != nil {
		modifier := strings.ToLower(m[1])
		back := modifier == "last" || modifier == "previous"
		return TimestampResult{Time: periodStart(time.Now(), strings.ToLower(m[2]), back)}
	}

	cfg := &dateparser.Configuration{CurrentTime: time.Now()}
	parsed, err := dateparser.Parse(cfg, input)
	if err != nil {
		return TimestampResult{Error: fmt.Errorf("could not parse time %q: %w", input, err)}
	}
	return TimestampResult{Time: parsed.Time}
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// weekStart returns midnight of the Monday of t's week.
func weekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return dayStart(t).AddDate(0, 0, -offset)
}

// periodStart returns the first instant of the named period containing
// now. With back set it shifts to the preceding period.
func periodStart(now time.Time, period string, back bool) time.Time {
	switch period {
	case "hour":
		start := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location())
		if back {
			start = start.Add(-time.Hour)
		}
		return start
	case "day":
		start := dayStart(now)
		if back {
			start = start.AddDate(0, 0, -1)
		}
		return start
	case "week":
		start := weekStart(now)
		if back {
			start = start.AddDate(0, 0, -7)
		}
		return start
	case "month":
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		if back {
			start = start.AddDate(0, -1, 0)
		}
		return start
	case "quarter":
		q := (int(now.Month()) - 1) / 3
		start := time.Date(now.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, now.Location())
		if back {
			start = start.AddDate(0, -3, 0)
		}
		return start
	case "year":
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		if back {
			start = start.AddDate(-1, 0, 0)
		}
		return start
	}
	return now
}

// TimeRange is a half-open window [Start, End).
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// GetPeriodRange resolves a period name like "today" or "last week"
// into the window it covers. Unrecognized input falls back to today.
func GetPeriodRange(period string) TimeRange {
	now := time.Now()
	period = strings.ToLower(strings.TrimSpace(period))
	last := strings.HasPrefix(period, "last") || strings.HasPrefix(period, "previous")

	switch {
	case strings.HasPrefix(period, "yesterday"):
		start := dayStart(now).AddDate(0, 0, -1)
		return TimeRange{Start: start, End: start.AddDate(0, 0, 1)}

	case strings.Contains(period, "week"):
		start := weekStart(now)
		if last {
			start = start.AddDate(0, 0, -7)
		}
		return TimeRange{Start: start, End: start.AddDate(0, 0, 7)}

	case strings.Contains(period, "month"):
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		if last {
			start = start.AddDate(0, -1, 0)
		}
		return TimeRange{Start: start, End: start.AddDate(0, 1, 0)}

	case strings.Contains(period, "year"):
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		if last {
			start = start.AddDate(-1, 0, 0)
		}
		return TimeRange{Start: start, End: start.AddDate(1, 0, 0)}

	default:
		start := dayStart(now)
		return TimeRange{Start: start, End: start.AddDate(0, 0, 1)}
	}
}
