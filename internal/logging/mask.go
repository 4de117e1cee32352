package logging

import (
	"log/slog"
	"regexp"
	"strings"
)

// urlShowLength is how much of a webhook URL survives masking. Discord
// and Slack webhook URLs embed their token in the path.
const urlShowLength = 30

// sensitiveKeywords flag attribute keys whose values must never be
// logged in full.
var sensitiveKeywords = []string{
	"token", "secret", "password", "key", "auth", "bearer", "credential",
}

var urlPattern = regexp.MustCompile(`https?://[^\s"']+`)

// IsSensitiveKey reports whether an attribute key names a secret.
func IsSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, kw := range sensitiveKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// MaskValue hides a secret entirely.
func MaskValue(value string) string {
	if value == "" {
		return ""
	}
	n := len(value)
	if n > 8 {
		n = 8
	}
	return strings.Repeat("*", n)
}

// MaskURL keeps the host and the start of the path, hiding the token
// tail. Short URLs pass through.
func MaskURL(url string) string {
	if len(url) <= urlShowLength {
		return url
	}
	return url[:urlShowLength] + "***"
}

// MaskString masks every non-local URL embedded in s.
func MaskString(s string) string {
	return urlPattern.ReplaceAllStringFunc(s, func(url string) string {
		if strings.Contains(url, "localhost") || strings.Contains(url, "127.0.0.1") {
			return url
		}
		return MaskURL(url)
	})
}

// maskAttr is the slog ReplaceAttr hook: secrets by key, URL tokens by
// value. Group attrs are handled attr by attr as slog walks them.
func maskAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() != slog.KindString {
		return a
	}
	if IsSensitiveKey(a.Key) {
		return slog.String(a.Key, MaskValue(a.Value.String()))
	}
	return slog.String(a.Key, MaskString(a.Value.String()))
}
