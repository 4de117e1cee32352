package model

import (
	"regexp"
	"strings"
	"time"
)

// PrefixWebhook is the database key prefix for webhooks.
const PrefixWebhook = "webhook"

// Webhook type constants.
const (
	WebhookTypeDiscord = "discord"
	WebhookTypeSlack   = "slack"
	WebhookTypeGeneric = "generic"
)

// typeDetectors maps URL substrings to the webhook type they imply.
// Anything unrecognized is posted as a generic JSON payload.
var typeDetectors = map[string]string{
	"discord.com/api/webhooks": WebhookTypeDiscord,
	"hooks.slack.com":          WebhookTypeSlack,
}

// Webhook is a configured notification endpoint. Due reminders, snooze
// notices, and the daily recap go out through every enabled webhook.
type Webhook struct {
	Key       string    `json:"key"`
	Name      string    `json:"name" validate:"required,max=50"`
	Type      string    `json:"type" validate:"required,oneof=discord slack generic"`
	URL       string    `json:"url" validate:"required,url"`
	Enabled   bool      `json:"enabled"`
	Template  string    `json:"template,omitempty"` // generic webhooks only
	CreatedAt time.Time `json:"created_at"`
	LastUsed  time.Time `json:"last_used,omitempty"`
	LastError string    `json:"last_error,omitempty"`
}

// NewWebhook creates a new enabled webhook.
func NewWebhook(name, webhookType, url string) *Webhook {
	return &Webhook{
		Key:       GenerateWebhookKey(name),
		Name:      name,
		Type:      webhookType,
		URL:       url,
		Enabled:   true,
		CreatedAt: time.Now(),
	}
}

// GenerateWebhookKey generates a database key for a webhook.
func GenerateWebhookKey(name string) string {
	return PrefixWebhook + ":" + name
}

func (w *Webhook) SetKey(key string) { w.Key = key }

func (w *Webhook) GetKey() string { return w.Key }

// IsEnabled reports whether the webhook receives notifications.
func (w *Webhook) IsEnabled() bool {
	return w.Enabled
}

// MaskedURL truncates the URL for display. Discord and Slack URLs embed
// a secret token in the path, so list output never shows the full URL.
func (w *Webhook) MaskedURL() string {
	if len(w.URL) <= 40 {
		return w.URL
	}
	return w.URL[:30] + "***"
}

// ValidWebhookTypes returns the list of valid webhook types.
func ValidWebhookTypes() []string {
	return []string{WebhookTypeDiscord, WebhookTypeSlack, WebhookTypeGeneric}
}

// IsValidWebhookType checks if a type is valid.
func IsValidWebhookType(t string) bool {
	for _, valid := range ValidWebhookTypes() {
		if t == valid {
			return true
		}
	}
	return false
}

// Names are used verbatim in database keys and CLI arguments.
var webhookNameRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// IsValidWebhookName checks if a webhook name is valid.
func IsValidWebhookName(name string) bool {
	return name != "" && len(name) <= 50 && webhookNameRe.MatchString(name)
}

// DetectWebhookType guesses the webhook type from its URL.
func DetectWebhookType(url string) string {
	lower := strings.ToLower(url)
	for marker, whType := range typeDetectors {
		if strings.Contains(lower, marker) {
			return whType
		}
	}
	return WebhookTypeGeneric
}
