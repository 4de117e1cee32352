package storage

import (
	"time"

	"github.com/pawminder/pawminder/internal/model"
)

// WebhookRepo provides operations for Webhook entities. Webhooks are
// keyed by name, so names double as identifiers.
type WebhookRepo struct {
	db *DB
}

// NewWebhookRepo creates a new webhook repository.
func NewWebhookRepo(db *DB) *WebhookRepo {
	return &WebhookRepo{db: db}
}

// Create stores a new webhook, filling in key and creation time.
func (r *WebhookRepo) Create(webhook *model.Webhook) error {
	if webhook.Key == "" {
		webhook.Key = model.GenerateWebhookKey(webhook.Name)
	}
	if webhook.CreatedAt.IsZero() {
		webhook.CreatedAt = time.Now()
	}
	return r.db.Set(webhook)
}

// Get retrieves a webhook by name.
func (r *WebhookRepo) Get(name string) (*model.Webhook, error) {
	return r.GetByKey(model.GenerateWebhookKey(name))
}

// GetByKey retrieves a webhook by database key.
func (r *WebhookRepo) GetByKey(key string) (*model.Webhook, error) {
	webhook := &model.Webhook{}
	if err := r.db.Get(key, webhook); err != nil {
		return nil, err
	}
	return webhook, nil
}

// List retrieves all webhooks.
func (r *WebhookRepo) List() ([]*model.Webhook, error) {
	return GetAllByPrefix(r.db, model.PrefixWebhook+":", func() *model.Webhook {
		return &model.Webhook{}
	})
}

// ListEnabled retrieves the webhooks that should receive notifications.
func (r *WebhookRepo) ListEnabled() ([]*model.Webhook, error) {
	all, err := r.List()
	if err != nil {
		return nil, err
	}

	enabled := all[:0]
	for _, w := range all {
		if w.Enabled {
			enabled = append(enabled, w)
		}
	}
	return enabled, nil
}

// Update updates an existing webhook.
func (r *WebhookRepo) Update(webhook *model.Webhook) error {
	return r.db.Set(webhook)
}

// Delete removes a webhook by name.
func (r *WebhookRepo) Delete(name string) error {
	return r.db.Delete(model.GenerateWebhookKey(name))
}

// Exists checks if a webhook exists.
func (r *WebhookRepo) Exists(name string) (bool, error) {
	return r.db.Exists(model.GenerateWebhookKey(name))
}

// Enable turns notification delivery on for the named webhook.
func (r *WebhookRepo) Enable(name string) error {
	return r.mutate(name, func(w *model.Webhook) { w.Enabled = true })
}

// Disable turns delivery off without deleting the configuration.
func (r *WebhookRepo) Disable(name string) error {
	return r.mutate(name, func(w *model.Webhook) { w.Enabled = false })
}

// UpdateLastUsed records the outcome of the most recent delivery.
func (r *WebhookRepo) UpdateLastUsed(name string, lastErr error) error {
	return r.mutate(name, func(w *model.Webhook) {
		w.LastUsed = time.Now()
		w.LastError = ""
		if lastErr != nil {
			w.LastError = lastErr.Error()
		}
	})
}

// mutate applies fn to the stored webhook and writes it back.
func (r *WebhookRepo) mutate(name string, fn func(*model.Webhook)) error {
	webhook, err := r.Get(name)
	if err != nil {
		return err
	}
	fn(webhook)
	return r.db.Set(webhook)
}
