// Package output provides output formatting for Pawminder.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// defaultTerminalWidth is assumed when the writer is not a terminal.
const defaultTerminalWidth = 80

// Format represents the output format type.
type Format string

const (
	FormatCLI   Format = "cli"
	FormatJSON  Format = "json"
	FormatPlain Format = "plain"
)

// ColorMode represents the color output mode.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// Time layouts used across all command output.
const (
	layoutFull  = "2006-01-02 15:04:05"
	layoutShort = "2006-01-02 15:04"
	layoutDate  = "2006-01-02"
	layoutClock = "15:04"
)

// Formatter handles output formatting.
type Formatter struct {
	Writer    io.Writer
	Format    Format
	ColorMode ColorMode
	NoNewline bool
}

// NewFormatter creates a formatter writing colored CLI output to
// stdout when stdout is a terminal.
func NewFormatter() *Formatter {
	return &Formatter{
		Writer:    os.Stdout,
		Format:    FormatCLI,
		ColorMode: ColorAuto,
	}
}

// IsColorEnabled returns true if color output is enabled.
func (f *Formatter) IsColorEnabled() bool {
	switch f.ColorMode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if w, ok := f.Writer.(*os.File); ok {
		return isatty.IsTerminal(w.Fd()) || isatty.IsCygwinTerminal(w.Fd())
	}
	return false
}

// TerminalWidth returns the width of the attached terminal, or a
// default when the writer is not a terminal.
func (f *Formatter) TerminalWidth() int {
	if w, ok := f.Writer.(*os.File); ok {
		if width, _, err := term.GetSize(int(w.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return defaultTerminalWidth
}

func (f *Formatter) Print(a ...interface{}) {
	fmt.Fprint(f.Writer, a...)
}

func (f *Formatter) Println(a ...interface{}) {
	fmt.Fprintln(f.Writer, a...)
}

func (f *Formatter) Printf(format string, a ...interface{}) {
	fmt.Fprintf(f.Writer, format, a...)
}

// JSON outputs data as indented JSON.
func (f *Formatter) JSON(v interface{}) error {
	encoder := json.NewEncoder(f.Writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// PrintJSON is an alias for JSON for consistency.
func (f *Formatter) PrintJSON(v interface{}) error {
	return f.JSON(v)
}

// FormatDuration renders a duration with its two largest units, so
// "1h 30m" rather than Go's "1h30m0s". Hours do not roll into days; a
// 25-hour countdown reads "25h".
func FormatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	case m > 0 && s > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	case m > 0:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// FormatDurationShort is FormatDuration with sub-minute detail dropped
// once a minute has passed.
func FormatDurationShort(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60

	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	case d >= time.Minute:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
}

// FormatTime formats a time in the local timezone.
func FormatTime(t time.Time) string {
	return t.Local().Format(layoutFull)
}

// FormatTimeShort formats a time without seconds.
func FormatTimeShort(t time.Time) string {
	return t.Local().Format(layoutShort)
}

// FormatDate formats a date only.
func FormatDate(t time.Time) string {
	return t.Local().Format(layoutDate)
}

// FormatTimeOnly formats a clock time without the date.
func FormatTimeOnly(t time.Time) string {
	return t.Local().Format(layoutClock)
}
