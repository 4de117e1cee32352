// Package validate provides input validation helpers for Pawminder.
// All helpers reject before any state is touched, so a failed validation
// leaves the target exactly as it was.
package validate

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pawminder/pawminder/internal/errors"
)

const (
	// MaxActionNameLength is the maximum length for a custom action name.
	MaxActionNameLength = 32
	// MaxDogNameLength is the maximum length for a dog name.
	MaxDogNameLength = 64
	// MaxNoteLength is the maximum length for a log note.
	MaxNoteLength = 4096
	// MaxURLLength is the maximum length for a webhook URL.
	MaxURLLength = 2048
)

// Hour validates an hour of day.
func Hour(hour int) error {
	if hour < 0 || hour > 23 {
		return errors.NewUserErrorWithField("hour", fmt.Sprintf("%d", hour),
			"Hour out of range",
			"Hours must be between 0 and 23")
	}
	return nil
}

// Minute validates a minute of hour.
func Minute(minute int) error {
	if minute < 0 || minute > 59 {
		return errors.NewUserErrorWithField("minute", fmt.Sprintf("%d", minute),
			"Minute out of range",
			"Minutes must be between 0 and 59")
	}
	return nil
}

// DayOfMonth validates a day of month. Values up to 31 are accepted;
// months shorter than the target day clamp at computation time.
func DayOfMonth(day int) error {
	if day < 1 || day > 31 {
		return errors.NewUserErrorWithField("day", fmt.Sprintf("%d", day),
			"Day of month out of range",
			"Days must be between 1 and 31")
	}
	return nil
}

// Interval validates a countdown or snooze interval.
func Interval(d time.Duration) error {
	if d <= 0 {
		return errors.NewUserErrorWithField("interval", d.String(),
			"Interval must be positive",
			"Use a positive duration like '2h' or '45m'")
	}
	return nil
}

// Weekdays validates a weekday selection.
func Weekdays(days []time.Weekday) error {
	if len(days) == 0 {
		return errors.NewUserError(
			"No weekdays selected",
			"Select at least one weekday, like 'mon,wed,fri'")
	}
	for _, d := range days {
		if d < time.Sunday || d > time.Saturday {
			return errors.NewUserErrorWithField("weekday", fmt.Sprintf("%d", d),
				"Invalid weekday",
				"Weekdays run from Sunday (0) to Saturday (6)")
		}
	}
	return nil
}

// ActionName validates a custom action name.
func ActionName(name string) error {
	if utf8.RuneCountInString(name) > MaxActionNameLength {
		return errors.NewUserErrorWithField("action", name,
			"Custom action name too long",
			"Action names must be 32 characters or fewer")
	}
	return nil
}

// DogName validates a dog name.
func DogName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.NewUserError("Dog name cannot be empty", "Provide a name for the dog")
	}
	if utf8.RuneCountInString(name) > MaxDogNameLength {
		return errors.NewUserErrorWithField("dog", name,
			"Dog name too long",
			"Dog names must be 64 characters or fewer")
	}
	return nil
}

// Note validates a log note.
func Note(note string) error {
	if utf8.RuneCountInString(note) > MaxNoteLength {
		return errors.NewUserError(
			"Note too long",
			"Notes must be 4096 characters or fewer")
	}
	return nil
}

// URL validates a URL for use as a webhook endpoint.
func URL(rawURL string) error {
	if rawURL == "" {
		return errors.NewUserError("URL cannot be empty", "Provide a valid URL")
	}
	if len(rawURL) > MaxURLLength {
		return errors.NewUserError("URL too long", "URLs must be 2048 characters or fewer")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.NewUserErrorWithField("url", rawURL,
			"Invalid URL format",
			"Provide a valid URL starting with https://")
	}

	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return errors.NewUserErrorWithField("url", rawURL,
			"Invalid URL scheme",
			"URLs must use https:// (or http:// for localhost)")
	}

	hostname := parsed.Hostname()
	if hostname == "" {
		return errors.NewUserErrorWithField("url", rawURL,
			"Invalid URL: missing hostname",
			"Provide a valid URL like https://example.com/webhook")
	}

	isLocalhost := hostname == "localhost" || hostname == "127.0.0.1" || hostname == "::1"

	if parsed.Scheme == "http" && !isLocalhost {
		return errors.NewUserErrorWithField("url", rawURL,
			"HTTP not allowed for external URLs",
			"Use https:// for security. HTTP is only allowed for localhost.")
	}

	if !isLocalhost {
		return checkInternalIP(hostname)
	}
	return nil
}

// privateNets are the ranges a webhook URL may never point at. The
// daemon posts with ambient network access, so a crafted URL could
// otherwise reach hosts on the local network.
var privateNets = mustParseCIDRs(
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"127.0.0.0/8",
	"169.254.0.0/16",
	"fc00::/7",
	"fe80::/10",
	"::1/128",
)

func mustParseCIDRs(cidrs ...string) []*net.IPNet {
	nets := make([]*net.IPNet, len(cidrs))
	for i, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic("validate: bad CIDR " + cidr)
		}
		nets[i] = network
	}
	return nets
}

// checkInternalIP rejects hostnames that are, or resolve to, a private
// address. A hostname that fails to resolve passes; delivery will fail
// on its own later.
func checkInternalIP(hostname string) error {
	var ips []net.IP
	if ip := net.ParseIP(hostname); ip != nil {
		ips = []net.IP{ip}
	} else {
		resolved, err := net.LookupIP(hostname)
		if err != nil {
			return nil
		}
		ips = resolved
	}

	for _, ip := range ips {
		if isInternalIP(ip) {
			return errors.NewUserErrorWithField("url", hostname,
				"URL points to an internal address",
				"Webhook URLs must point to external services")
		}
	}
	return nil
}

func isInternalIP(ip net.IP) bool {
	for _, network := range privateNets {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// NonEmpty validates that a string is not empty.
func NonEmpty(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.NewUserError(
			field+" cannot be empty",
			"Provide a value for "+field)
	}
	return nil
}
