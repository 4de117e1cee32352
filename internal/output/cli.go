package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/pawminder/pawminder/internal/model"
)

// Styles for CLI output.
var (
	// Colors
	colorPrimary   = lipgloss.Color("#7C3AED") // Purple
	colorSecondary = lipgloss.Color("#10B981") // Green
	colorMuted     = lipgloss.Color("#6B7280") // Gray
	colorWarning   = lipgloss.Color("#F59E0B") // Yellow
	colorError     = lipgloss.Color("#EF4444") // Red
	colorSuccess   = lipgloss.Color("#10B981") // Green

	// Styles
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorSuccess)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorWarning)

	styleError = lipgloss.NewStyle().
			Foreground(colorError)

	styleMuted = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleBold = lipgloss.NewStyle().
			Bold(true)

	styleDog = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	styleAction = lipgloss.NewStyle().
			Foreground(colorSecondary)

	styleWhen = lipgloss.NewStyle().
			Bold(true)

	styleNote = lipgloss.NewStyle().
			Italic(true).
			Foreground(colorMuted)
)

// CLIFormatter provides CLI-specific formatting.
type CLIFormatter struct {
	*Formatter
}

// NewCLIFormatter creates a new CLI formatter.
func NewCLIFormatter(f *Formatter) *CLIFormatter {
	return &CLIFormatter{Formatter: f}
}

// Title prints a title.
func (c *CLIFormatter) Title(text string) {
	if c.IsColorEnabled() {
		c.Println(styleTitle.Render(text))
	} else {
		c.Println(text)
	}
}

// Success prints a success message.
func (c *CLIFormatter) Success(text string) {
	if c.IsColorEnabled() {
		c.Println(styleSuccess.Render("✓ " + text))
	} else {
		c.Println("✓ " + text)
	}
}

// Warning prints a warning message.
func (c *CLIFormatter) Warning(text string) {
	if c.IsColorEnabled() {
		c.Println(styleWarning.Render("⚠ " + text))
	} else {
		c.Println("⚠ " + text)
	}
}

// Error prints an error message.
func (c *CLIFormatter) Error(text string) {
	if c.IsColorEnabled() {
		c.Println(styleError.Render("✗ " + text))
	} else {
		c.Println("✗ " + text)
	}
}

// Muted prints muted text.
func (c *CLIFormatter) Muted(text string) {
	if c.IsColorEnabled() {
		c.Println(styleMuted.Render(text))
	} else {
		c.Println(text)
	}
}

// DogName formats a dog name.
func (c *CLIFormatter) DogName(name string) string {
	if c.IsColorEnabled() {
		return styleDog.Render(name)
	}
	return name
}

// ActionName formats a care action name.
func (c *CLIFormatter) ActionName(name string) string {
	if c.IsColorEnabled() {
		return styleAction.Render(name)
	}
	return name
}

// When formats a fire time or schedule description.
func (c *CLIFormatter) When(text string) string {
	if c.IsColorEnabled() {
		return styleWhen.Render(text)
	}
	return text
}

// Note formats a note.
func (c *CLIFormatter) Note(text string) string {
	if c.IsColorEnabled() {
		return styleNote.Render(text)
	}
	return text
}

// FormatDogAction formats "dog/action" notation.
func (c *CLIFormatter) FormatDogAction(dogName, action string) string {
	if action == "" {
		return c.DogName(dogName)
	}
	return c.DogName(dogName) + "/" + c.ActionName(action)
}

// DescribeSchedule renders a reminder's recurrence in one line.
func DescribeSchedule(r *model.Reminder) string {
	switch r.Kind {
	case model.KindCountdown:
		return fmt.Sprintf("every %s", FormatDurationShort(r.Countdown.ExecutionInterval))
	case model.KindWeekly:
		days := make([]string, len(r.Weekly.Weekdays))
		for i, wd := range r.Weekly.Weekdays {
			days[i] = wd.String()[:3]
		}
		dayList := strings.Join(days, ", ")
		if len(days) == 7 {
			dayList = "every day"
		} else if len(days) == 0 {
			dayList = "no days"
		}
		return fmt.Sprintf("%s at %02d:%02d", dayList, r.Weekly.Hour, r.Weekly.Minute)
	case model.KindMonthly:
		return fmt.Sprintf("monthly on day %d at %02d:%02d",
			r.Monthly.DayOfMonth, r.Monthly.Hour, r.Monthly.Minute)
	case model.KindOneTime:
		return fmt.Sprintf("once on %s", FormatTimeShort(r.OneTime.FireAt))
	}
	return string(r.Kind)
}

// PrintReminder prints one reminder with its schedule and next fire.
func (c *CLIFormatter) PrintReminder(r *model.Reminder, dogName string, fireAt time.Time, due bool) {
	c.Printf("#%d %s\n", r.ID, c.FormatDogAction(dogName, r.DisplayName()))
	c.Printf("  Schedule: %s\n", DescribeSchedule(r))

	switch {
	case !r.Enabled:
		c.Printf("  Next: %s\n", c.Note("disabled"))
	case !due:
		c.Printf("  Next: %s\n", c.Note("paused"))
	default:
		c.Printf("  Next: %s\n", c.When(FormatTime(fireAt)))
	}

	if r.IsSkipping() {
		c.Printf("  %s\n", c.Note("next occurrence skipped"))
	}
	if r.Snooze.IsEnabled {
		c.Printf("  %s\n", c.Note(fmt.Sprintf("snoozed for %s", FormatDurationShort(r.Snooze.ExecutionInterval))))
	}
}

// PrintLogEntry prints one care log entry.
func (c *CLIFormatter) PrintLogEntry(l *model.Log, dogName string) {
	c.Printf("%s  %s\n", FormatTimeShort(l.Timestamp), c.FormatDogAction(dogName, l.DisplayName()))
	if l.Note != "" {
		c.Printf("  Note: %s\n", c.Note(l.Note))
	}
}

// PrintPaused prints the family pause banner.
func (c *CLIFormatter) PrintPaused() {
	c.Warning("All reminders are paused.")
	c.Muted("Use 'pawminder resume' to resume alarms.")
}

// ProgressBar creates a simple progress bar.
func ProgressBar(percentage float64, width int) string {
	if percentage > 100 {
		percentage = 100
	}
	if percentage < 0 {
		percentage = 0
	}

	filled := int(float64(width) * percentage / 100)
	empty := width - filled

	bar := strings.Repeat("█", filled) + strings.Repeat("░", empty)
	return bar
}

// Table helpers for CLI output.
type TableRow struct {
	Columns []string
}

// PrintTable prints a simple table.
func (c *CLIFormatter) PrintTable(headers []string, rows []TableRow) {
	if len(rows) == 0 {
		return
	}

	// Calculate column widths, capping the widest column so the table
	// stays inside the terminal
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, col := range row.Columns {
			if i < len(widths) && len(col) > widths[i] {
				widths[i] = len(col)
			}
		}
	}

	total := 0
	for _, w := range widths {
		total += w + 2
	}
	if max := c.TerminalWidth(); total > max {
		widest := 0
		for i := range widths {
			if widths[i] > widths[widest] {
				widest = i
			}
		}
		widths[widest] -= total - max
		if widths[widest] < len(headers[widest]) {
			widths[widest] = len(headers[widest])
		}
	}

	// Print headers
	var headerLine strings.Builder
	for i, h := range headers {
		headerLine.WriteString(fmt.Sprintf("%-*s  ", widths[i], h))
	}
	c.Println(styleBold.Render(headerLine.String()))

	// Print separator
	var sep strings.Builder
	for _, w := range widths {
		sep.WriteString(strings.Repeat("─", w) + "  ")
	}
	c.Println(sep.String())

	// Print rows
	for _, row := range rows {
		var rowLine strings.Builder
		for i, col := range row.Columns {
			if i < len(widths) {
				rowLine.WriteString(fmt.Sprintf("%-*s  ", widths[i], col))
			}
		}
		c.Println(rowLine.String())
	}
}
