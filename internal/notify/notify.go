// Package notify delivers reminder notifications to household webhooks.
package notify

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pawminder/pawminder/internal/logging"
	"github.com/pawminder/pawminder/internal/model"
	"github.com/pawminder/pawminder/internal/storage"
)

// Dispatcher fans a notification out to every enabled webhook in the
// household. When a retry queue is attached, deliveries that fail after
// the client's immediate retries are parked there for later attempts.
type Dispatcher struct {
	webhooks *storage.WebhookRepo
	client   *Client
	retries  *RetryQueue
	debug    bool

	sent   atomic.Int64
	failed atomic.Int64
}

// NewDispatcher creates a dispatcher without a retry queue. Failed
// deliveries are reported in the results and dropped.
func NewDispatcher(webhooks *storage.WebhookRepo) *Dispatcher {
	return &Dispatcher{
		webhooks: webhooks,
		client:   NewClient(),
	}
}

// WithRetryQueue attaches a retry queue for failed deliveries. The
// daemon uses this; one-shot CLI sends do not.
func (d *Dispatcher) WithRetryQueue(q *RetryQueue) *Dispatcher {
	d.retries = q
	return d
}

// SetDebug enables debug logging of dispatch results.
func (d *Dispatcher) SetDebug(debug bool) {
	d.debug = debug
}

// DispatchResult reports the outcome of delivery to one webhook.
type DispatchResult struct {
	WebhookName string
	Success     bool
	StatusCode  int
	Duration    time.Duration
	Queued      bool
	Error       error
}

// SendNotification delivers n to every enabled webhook concurrently and
// returns one result per webhook. A nil slice means no webhooks are
// configured.
func (d *Dispatcher) SendNotification(ctx context.Context, n *model.Notification) []DispatchResult {
	hooks, err := d.webhooks.ListEnabled()
	if err != nil {
		return []DispatchResult{{
			WebhookName: "all",
			Error:       fmt.Errorf("listing webhooks: %w", err),
		}}
	}
	if len(hooks) == 0 {
		return nil
	}

	results := make([]DispatchResult, len(hooks))
	var wg sync.WaitGroup
	for i, wh := range hooks {
		wg.Add(1)
		go func(i int, wh *model.Webhook) {
			defer wg.Done()
			results[i] = d.deliver(ctx, n, wh)
		}(i, wh)
	}
	wg.Wait()
	return results
}

// SendToSingle delivers n to one webhook by name.
func (d *Dispatcher) SendToSingle(ctx context.Context, n *model.Notification, name string) DispatchResult {
	wh, err := d.webhooks.Get(name)
	if err != nil {
		return DispatchResult{
			WebhookName: name,
			Error:       fmt.Errorf("webhook not found: %w", err),
		}
	}
	return d.deliver(ctx, n, wh)
}

// TestWebhook sends a test notification to the named webhook so the
// user can verify its configuration.
func (d *Dispatcher) TestWebhook(ctx context.Context, name string) DispatchResult {
	n := model.NewNotification(
		model.NotifyTest,
		"Pawminder Test",
		"Your webhook is set up. Reminders for your dogs will arrive here.",
	).WithField("Webhook", name).WithField("Time", time.Now().Format("3:04 PM"))

	return d.SendToSingle(ctx, n, name)
}

func (d *Dispatcher) deliver(ctx context.Context, n *model.Notification, wh *model.Webhook) DispatchResult {
	result := DispatchResult{WebhookName: wh.Name}

	body, contentType, err := BuildPayload(wh, n)
	if err != nil {
		result.Error = fmt.Errorf("building payload: %w", err)
		d.recordUse(wh.Name, result.Error)
		return result
	}

	sent := d.client.Post(ctx, wh.URL, contentType, body)
	result.StatusCode = sent.StatusCode
	result.Duration = sent.Duration
	result.Error = sent.Error
	result.Success = sent.Error == nil
	d.recordUse(wh.Name, sent.Error)

	if sent.Error == nil {
		d.sent.Add(1)
	} else {
		d.failed.Add(1)
	}

	if sent.Error != nil && d.retries != nil {
		d.retries.Enqueue(wh.Name, wh.URL, contentType, body, sent.Error)
		result.Queued = true
	}
	if d.debug {
		logging.DebugLog("webhook dispatch",
			logging.KeyWebhook, wh.Name,
			logging.KeyStatus, sent.StatusCode,
			"queued", result.Queued,
			logging.KeyError, sent.Error)
	}
	return result
}

// recordUse updates the webhook's last-used timestamp and error. Status
// bookkeeping never blocks delivery.
func (d *Dispatcher) recordUse(name string, err error) {
	_ = d.webhooks.UpdateLastUsed(name, err)
}

// DeliveryStats counts deliveries over the dispatcher's lifetime.
type DeliveryStats struct {
	Sent   int64 `json:"sent"`
	Failed int64 `json:"failed"`
}

// Stats returns the lifetime delivery counters.
func (d *Dispatcher) Stats() DeliveryStats {
	return DeliveryStats{
		Sent:   d.sent.Load(),
		Failed: d.failed.Load(),
	}
}

// HasEnabledWebhooks reports whether any webhook would receive a send.
func (d *Dispatcher) HasEnabledWebhooks() bool {
	return d.CountEnabledWebhooks() > 0
}

// CountEnabledWebhooks returns the number of enabled webhooks.
func (d *Dispatcher) CountEnabledWebhooks() int {
	hooks, err := d.webhooks.ListEnabled()
	if err != nil {
		return 0
	}
	return len(hooks)
}
