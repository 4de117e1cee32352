package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"
)

// DeadlineResult holds the moment a one-time reminder should fire.
type DeadlineResult struct {
	Time  time.Time
	Error error
}

// offsetRegex matches shorthand offsets like "+5m", "+1h", "+2d".
var offsetRegex = regexp.MustCompile(`^\+(\d+)([smhdw])$`)

var offsetUnits = map[string]time.Duration{
	"s": time.Second,
	"m": time.Minute,
	"h": time.Hour,
	"d": 24 * time.Hour,
	"w": 7 * 24 * time.Hour,
}

// ParseDeadline reads a one-time reminder date: an offset ("+2h"),
// natural language ("tomorrow 3pm", "friday 5pm"), or an explicit
// date ("2026-09-15 14:00"). The result must lie in the future; a
// time-of-day already past today rolls over to tomorrow.
func ParseDeadline(input string) DeadlineResult {
	input = strings.TrimSpace(input)
	if input == "" {
		return DeadlineResult{Error: fmt.Errorf("date is required")}
	}

	if match := offsetRegex.FindStringSubmatch(input); match != nil {
		n, _ := strconv.Atoi(match[1])
		if n <= 0 {
			return DeadlineResult{Error: fmt.Errorf("offset must be positive")}
		}
		return DeadlineResult{Time: time.Now().Add(time.Duration(n) * offsetUnits[match[2]])}
	}

	cfg := &dateparser.Configuration{CurrentTime: time.Now()}
	parsed, err := dateparser.Parse(cfg, input)
	if err != nil {
		return DeadlineResult{Error: fmt.Errorf("could not parse date %q", input)}
	}

	when := parsed.Time
	if when.Before(time.Now()) {
		if !sameDay(when, time.Now()) {
			return DeadlineResult{Error: fmt.Errorf("date must be in the future")}
		}
		when = when.AddDate(0, 0, 1)
	}
	return DeadlineResult{Time: when}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
