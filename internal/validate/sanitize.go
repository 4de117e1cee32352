package validate

import (
	"strings"
	"unicode"
)

// SanitizeDogName trims a dog name and strips control characters so a
// pasted name cannot smuggle escape sequences into the terminal or a
// webhook payload.
func SanitizeDogName(name string) string {
	var sb strings.Builder
	for _, r := range strings.TrimSpace(name) {
		if !unicode.IsControl(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// SanitizeActionName normalizes a custom action phrase: trimmed,
// control characters dropped, inner whitespace runs collapsed to one
// space.
func SanitizeActionName(name string) string {
	fields := strings.FieldsFunc(name, unicode.IsSpace)
	for i, f := range fields {
		var sb strings.Builder
		for _, r := range f {
			if !unicode.IsControl(r) {
				sb.WriteRune(r)
			}
		}
		fields[i] = sb.String()
	}
	return strings.Join(fields, " ")
}

// SanitizeNote trims a note, drops NUL bytes, and normalizes line
// endings. Newlines and tabs are kept; notes are multi-line.
func SanitizeNote(note string) string {
	note = strings.TrimSpace(note)
	note = strings.ReplaceAll(note, "\x00", "")
	note = strings.ReplaceAll(note, "\r\n", "\n")
	return strings.ReplaceAll(note, "\r", "\n")
}
