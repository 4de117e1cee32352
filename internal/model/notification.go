package model

import (
	"time"
)

// NotificationType defines the type of notification.
type NotificationType string

// Notification types.
const (
	NotifyAlarm      NotificationType = "alarm"
	NotifySkip       NotificationType = "skip"
	NotifySnooze     NotificationType = "snooze"
	NotifyDailyRecap NotificationType = "daily_recap"
	NotifyTest       NotificationType = "test"
)

// Notification colors (Discord-compatible hex values).
const (
	ColorSuccess = 0x57F287 // Green
	ColorWarning = 0xFEE75C // Yellow
	ColorInfo    = 0x5865F2 // Blurple
	ColorError   = 0xED4245 // Red
	ColorPrimary = 0x3498DB // Blue
)

// notifyMeta drives per-type presentation in webhook payloads.
var notifyMeta = map[NotificationType]struct {
	label string
	icon  string
	color int
}{
	NotifyAlarm:      {"Reminder Due", "bell", ColorWarning},
	NotifySkip:       {"Occurrence Skipped", "fast_forward", ColorInfo},
	NotifySnooze:     {"Reminder Snoozed", "zzz", ColorPrimary},
	NotifyDailyRecap: {"Daily Recap", "dog", ColorSuccess},
	NotifyTest:       {"Test Notification", "test_tube", ColorPrimary},
}

// Notification is a message on its way to the configured webhooks.
// Fields become key/value pairs in embed-style payloads.
type Notification struct {
	Type      NotificationType  `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Color     int               `json:"color,omitempty"` // hex color for embeds
}

// NewNotification creates a new notification.
func NewNotification(t NotificationType, title, message string) *Notification {
	return &Notification{
		Type:      t,
		Title:     title,
		Message:   message,
		Fields:    make(map[string]string),
		Timestamp: time.Now(),
	}
}

// WithField adds a field to the notification.
func (n *Notification) WithField(key, value string) *Notification {
	if n.Fields == nil {
		n.Fields = make(map[string]string)
	}
	n.Fields[key] = value
	return n
}

// WithColor sets the embed color.
func (n *Notification) WithColor(color int) *Notification {
	n.Color = color
	return n
}

// DefaultColorForType returns the default embed color for a type.
func DefaultColorForType(t NotificationType) int {
	if meta, ok := notifyMeta[t]; ok {
		return meta.color
	}
	return ColorInfo
}

// Icon returns the emoji shortcode for the notification type.
func (n *Notification) Icon() string {
	if meta, ok := notifyMeta[n.Type]; ok {
		return meta.icon
	}
	return "bell"
}

// TypeLabel returns a human-readable label for the notification type.
func (n *Notification) TypeLabel() string {
	if meta, ok := notifyMeta[n.Type]; ok {
		return meta.label
	}
	return "Notification"
}
