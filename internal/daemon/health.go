package daemon

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/adrg/xdg"

	"github.com/pawminder/pawminder/internal/logging"
	"github.com/pawminder/pawminder/internal/notify"
	"github.com/pawminder/pawminder/internal/storage"
)

// Health is a snapshot of the running daemon. The daemon writes one to
// the state directory every minute so `pawminder daemon status` can
// report on a process it cannot reach directly.
type Health struct {
	Status          string               `json:"status"`
	CheckedAt       time.Time            `json:"checked_at"`
	UptimeSeconds   int64                `json:"uptime_seconds"`
	Goroutines      int                  `json:"goroutines"`
	MemoryMB        float64              `json:"memory_mb"`
	ActiveAlarms    int                  `json:"active_alarms"`
	Notifications   notify.DeliveryStats `json:"notifications"`
	RetryQueue      notify.QueueStats    `json:"retry_queue"`
	DatabaseHealthy bool                 `json:"database_healthy"`
	DatabaseErrors  []string             `json:"database_errors,omitempty"`
	DiskWarning     string               `json:"disk_warning,omitempty"`
}

func healthPath() string {
	return filepath.Join(xdg.StateHome, AppName, "health.json")
}

// checkHealth inspects the daemon's moving parts. Only called from the
// daemon process itself.
func (d *Daemon) checkHealth() *Health {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	h := &Health{
		CheckedAt:     time.Now(),
		UptimeSeconds: int64(time.Since(d.startedAt).Seconds()),
		Goroutines:    runtime.NumGoroutine(),
		MemoryMB:      float64(memStats.Alloc) / 1024 / 1024,
		DiskWarning:   storage.CheckDiskSpaceWarning(filepath.Join(xdg.StateHome, AppName)),
	}

	if d.alarms != nil {
		h.ActiveAlarms = d.alarms.Table().Len()
	}
	if d.dispatcher != nil {
		h.Notifications = d.dispatcher.Stats()
	}
	if d.queue != nil {
		h.RetryQueue = d.queue.Stats()
	}

	report := storage.CheckDatabaseIntegrity(d.db)
	h.DatabaseHealthy = report.Healthy
	h.DatabaseErrors = report.Errors

	switch {
	case !h.DatabaseHealthy:
		h.Status = "unhealthy"
	case h.DiskWarning != "" || h.RetryQueue.QueueSize > 0:
		h.Status = "degraded"
	default:
		h.Status = "healthy"
	}
	return h
}

// writeHealthSnapshot persists the current health to the state
// directory. Runs on the daemon's cron, so failures are logged rather
// than returned.
func (d *Daemon) writeHealthSnapshot() {
	data, err := json.MarshalIndent(d.checkHealth(), "", "  ")
	if err != nil {
		logging.Warn("marshaling health snapshot", logging.KeyError, err)
		return
	}
	if err := storage.SafeWrite(healthPath(), data, 0644); err != nil {
		logging.Warn("writing health snapshot", logging.KeyError, err, "path", healthPath())
	}
}

// ReadHealth loads the last snapshot the daemon wrote.
func ReadHealth() (*Health, error) {
	data, err := os.ReadFile(healthPath())
	if err != nil {
		return nil, err
	}
	var h Health
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("parsing health snapshot: %w", err)
	}
	return &h, nil
}

func removeHealthFile() {
	if err := os.Remove(healthPath()); err != nil && !os.IsNotExist(err) {
		logging.Warn("removing health snapshot", logging.KeyError, err)
	}
}
