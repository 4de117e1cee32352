package output

import (
	"time"

	"github.com/pawminder/pawminder/internal/model"
)

// JSONFormatter provides JSON output formatting.
type JSONFormatter struct {
	*Formatter
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(f *Formatter) *JSONFormatter {
	return &JSONFormatter{Formatter: f}
}

// DogOutput is the JSON shape of a dog.
type DogOutput struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// NewDogOutput converts a dog to its JSON shape.
func NewDogOutput(d *model.Dog) *DogOutput {
	return &DogOutput{
		Key:       d.Key,
		Name:      d.Name,
		CreatedAt: d.CreatedAt.Format(time.RFC3339),
	}
}

// ReminderOutput is the JSON shape of a reminder.
type ReminderOutput struct {
	ID       int64  `json:"id"`
	Dog      string `json:"dog"`
	Action   string `json:"action"`
	Schedule string `json:"schedule"`
	Enabled  bool   `json:"enabled"`
	Skipping bool   `json:"skipping,omitempty"`
	Snoozed  bool   `json:"snoozed,omitempty"`
	NextFire string `json:"next_fire,omitempty"`
}

// NewReminderOutput converts a reminder to its JSON shape. fireAt is
// included only when due is true.
func NewReminderOutput(r *model.Reminder, dogName string, fireAt time.Time, due bool) *ReminderOutput {
	out := &ReminderOutput{
		ID:       r.ID,
		Dog:      dogName,
		Action:   r.DisplayName(),
		Schedule: DescribeSchedule(r),
		Enabled:  r.Enabled,
		Skipping: r.IsSkipping(),
		Snoozed:  r.Snooze.IsEnabled,
	}
	if due {
		out.NextFire = fireAt.Format(time.RFC3339)
	}
	return out
}

// LogOutput is the JSON shape of a care log entry.
type LogOutput struct {
	Key        string `json:"key"`
	Dog        string `json:"dog"`
	Action     string `json:"action"`
	Timestamp  string `json:"timestamp"`
	Note       string `json:"note,omitempty"`
	ReminderID int64  `json:"reminder_id,omitempty"`
}

// NewLogOutput converts a log entry to its JSON shape.
func NewLogOutput(l *model.Log, dogName string) *LogOutput {
	return &LogOutput{
		Key:        l.Key,
		Dog:        dogName,
		Action:     l.DisplayName(),
		Timestamp:  l.Timestamp.Format(time.RFC3339),
		Note:       l.Note,
		ReminderID: l.ReminderID,
	}
}

// RemindersResponse wraps a reminder list.
type RemindersResponse struct {
	Status    string            `json:"status"`
	Reminders []*ReminderOutput `json:"reminders"`
	Total     int               `json:"total"`
}

// DogsResponse wraps a dog list.
type DogsResponse struct {
	Status string       `json:"status"`
	Dogs   []*DogOutput `json:"dogs"`
	Total  int          `json:"total"`
}

// LogsResponse wraps a log list.
type LogsResponse struct {
	Status string       `json:"status"`
	Logs   []*LogOutput `json:"logs"`
	Total  int          `json:"total"`
}

// ErrorResponse is the JSON shape of a command error.
type ErrorResponse struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// PrintReminders prints a reminder list response.
func (j *JSONFormatter) PrintReminders(reminders []*ReminderOutput) error {
	return j.JSON(&RemindersResponse{
		Status:    "ok",
		Reminders: reminders,
		Total:     len(reminders),
	})
}

// PrintDogs prints a dog list response.
func (j *JSONFormatter) PrintDogs(dogs []*DogOutput) error {
	return j.JSON(&DogsResponse{
		Status: "ok",
		Dogs:   dogs,
		Total:  len(dogs),
	})
}

// PrintLogs prints a log list response.
func (j *JSONFormatter) PrintLogs(logs []*LogOutput) error {
	return j.JSON(&LogsResponse{
		Status: "ok",
		Logs:   logs,
		Total:  len(logs),
	})
}

// PrintError prints an error response.
func (j *JSONFormatter) PrintError(status, errMsg, message string) error {
	return j.JSON(&ErrorResponse{
		Status:  status,
		Error:   errMsg,
		Message: message,
	})
}
