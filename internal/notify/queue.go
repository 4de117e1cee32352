package notify

import (
	"context"
	"sync"
	"time"

	"github.com/pawminder/pawminder/internal/config"
	"github.com/pawminder/pawminder/internal/logging"
)

// pendingDelivery is a payload waiting for another delivery attempt.
type pendingDelivery struct {
	WebhookName string
	URL         string
	ContentType string
	Body        []byte
	EnqueuedAt  time.Time
	NextTry     time.Time
	Attempts    int
	LastError   string
}

// RetryQueue holds webhook payloads whose delivery failed and retries
// them on an exponential backoff schedule. The daemon runs one queue
// for its dispatcher's lifetime; payloads do not survive a restart.
type RetryQueue struct {
	mu      sync.RWMutex
	pending []*pendingDelivery
	client  *Client
	cancel  context.CancelFunc
	done    chan struct{}
	running bool

	totalQueued  int
	totalSent    int
	totalDropped int
}

// NewRetryQueue creates a stopped queue sharing the dispatcher's client.
func NewRetryQueue(client *Client) *RetryQueue {
	return &RetryQueue{client: client}
}

// Enqueue parks a failed delivery for retry.
func (q *RetryQueue) Enqueue(webhookName, url, contentType string, body []byte, cause error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	p := &pendingDelivery{
		WebhookName: webhookName,
		URL:         url,
		ContentType: contentType,
		Body:        body,
		EnqueuedAt:  time.Now(),
		NextTry:     time.Now().Add(backoffAfter(0)),
	}
	if cause != nil {
		p.LastError = cause.Error()
	}
	q.pending = append(q.pending, p)
	q.totalQueued++

	logging.Info("webhook delivery queued for retry",
		logging.KeyWebhook, webhookName,
		"queue_size", len(q.pending),
		logging.KeyError, cause)
}

// Start launches the background retry loop. Idempotent.
func (q *RetryQueue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	q.cancel = cancel
	q.done = make(chan struct{})
	q.running = true
	go q.loop(ctx)
}

// Stop halts the retry loop and waits for it to exit.
func (q *RetryQueue) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	cancel, done := q.cancel, q.done
	q.mu.Unlock()

	cancel()
	<-done
}

func (q *RetryQueue) loop(ctx context.Context) {
	defer close(q.done)

	ticker := time.NewTicker(config.Global.RetryQueue.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			q.flush(ctx)
		}
	}
}

// flush retries every delivery whose backoff has elapsed.
func (q *RetryQueue) flush(ctx context.Context) {
	now := time.Now()

	q.mu.Lock()
	var due, later []*pendingDelivery
	for _, p := range q.pending {
		if p.NextTry.After(now) {
			later = append(later, p)
		} else {
			due = append(due, p)
		}
	}
	q.pending = later
	q.mu.Unlock()

	for _, p := range due {
		q.retry(ctx, p)
	}
}

func (q *RetryQueue) retry(ctx context.Context, p *pendingDelivery) {
	p.Attempts++

	sent := q.client.Post(ctx, p.URL, p.ContentType, p.Body)
	if sent.Error == nil {
		q.mu.Lock()
		q.totalSent++
		q.mu.Unlock()
		logging.Info("queued webhook delivery succeeded",
			logging.KeyWebhook, p.WebhookName,
			"attempts", p.Attempts)
		return
	}

	p.LastError = sent.Error.Error()
	if p.Attempts >= config.Global.HTTP.MaxRetries {
		q.mu.Lock()
		q.totalDropped++
		q.mu.Unlock()
		logging.Warn("webhook delivery dropped after retries",
			logging.KeyWebhook, p.WebhookName,
			"attempts", p.Attempts,
			logging.KeyError, sent.Error)
		return
	}

	p.NextTry = time.Now().Add(backoffAfter(p.Attempts))
	q.mu.Lock()
	q.pending = append(q.pending, p)
	q.mu.Unlock()
}

// backoffAfter returns the pause before retry number attempt+1. The
// schedule saturates at its last entry.
func backoffAfter(attempt int) time.Duration {
	schedule := config.Global.RetryQueue.BackoffSchedule
	if attempt >= len(schedule) {
		return schedule[len(schedule)-1]
	}
	return schedule[attempt]
}

// QueueStats is a point-in-time snapshot of queue activity.
type QueueStats struct {
	QueueSize    int `json:"queue_size"`
	TotalQueued  int `json:"total_queued"`
	TotalSent    int `json:"total_sent"`
	TotalDropped int `json:"total_dropped"`
}

// Stats returns current counters.
func (q *RetryQueue) Stats() QueueStats {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return QueueStats{
		QueueSize:    len(q.pending),
		TotalQueued:  q.totalQueued,
		TotalSent:    q.totalSent,
		TotalDropped: q.totalDropped,
	}
}

// Pending returns the number of deliveries waiting for retry.
func (q *RetryQueue) Pending() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.pending)
}
