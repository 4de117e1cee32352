// Package config centralizes tunable runtime values. Every knob ships
// with a sensible default and can be overridden through a PAWMINDER_*
// environment variable, read once at startup.
package config

import (
	"os"
	"strconv"
	"time"
)

// RuntimeConfig holds the tunables for the daemon, the notification
// pipeline, and storage.
type RuntimeConfig struct {
	Daemon     DaemonConfig
	HTTP       HTTPConfig
	RetryQueue RetryQueueConfig
	Storage    StorageConfig
	Scheduler  SchedulerConfig
}

// DaemonConfig holds daemon process-control tunables.
type DaemonConfig struct {
	// StartupWait is how long `daemon start` waits for the background
	// process before checking whether it came up.
	StartupWait time.Duration

	// KillTimeout bounds graceful shutdown before SIGKILL.
	KillTimeout time.Duration
}

// HTTPConfig holds webhook HTTP client tunables.
type HTTPConfig struct {
	Timeout    time.Duration
	MaxRetries int

	// RetryDelays are the per-attempt delays; the first entry is the
	// wait before the initial attempt.
	RetryDelays []time.Duration
}

// RetryQueueConfig holds tunables for the failed-delivery queue.
type RetryQueueConfig struct {
	CheckInterval time.Duration

	// BackoffSchedule spaces redelivery attempts; a notification is
	// dropped once the schedule is exhausted.
	BackoffSchedule []time.Duration
}

// StorageConfig holds disk space thresholds for the database.
type StorageConfig struct {
	MinFreeSpace        uint64 // writes refused below this
	MinFreeSpaceWarning uint64 // health reports degraded below this
}

// SchedulerConfig holds reminder scheduling tunables.
type SchedulerConfig struct {
	// SnoozeInterval is the fallback snooze duration when neither the
	// family nor the command supplies one.
	SnoozeInterval time.Duration

	// DailyRecapAt is the local HH:MM for the daily care recap. Empty
	// disables the recap.
	DailyRecapAt string

	// AlarmGrace is how far past its fire time an alarm still counts
	// as due rather than missed during the catch-up pass.
	AlarmGrace time.Duration

	// SleepThreshold is the elapsed-time gap treated as a system
	// suspend; checks older than this are skipped on wake.
	SleepThreshold time.Duration
}

// DefaultRuntimeConfig returns the default runtime configuration.
func DefaultRuntimeConfig() *RuntimeConfig {
	return &RuntimeConfig{
		Daemon: DaemonConfig{
			StartupWait: 500 * time.Millisecond,
			KillTimeout: 5 * time.Second,
		},
		HTTP: HTTPConfig{
			Timeout:     30 * time.Second,
			MaxRetries:  3,
			RetryDelays: []time.Duration{0, 5 * time.Second, 30 * time.Second},
		},
		RetryQueue: RetryQueueConfig{
			CheckInterval: 30 * time.Second,
			BackoffSchedule: []time.Duration{
				5 * time.Second,
				30 * time.Second,
				2 * time.Minute,
				5 * time.Minute,
				15 * time.Minute,
			},
		},
		Storage: StorageConfig{
			MinFreeSpace:        10 * 1024 * 1024,
			MinFreeSpaceWarning: 50 * 1024 * 1024,
		},
		Scheduler: SchedulerConfig{
			SnoozeInterval: 5 * time.Minute,
			DailyRecapAt:   "21:00",
			AlarmGrace:     2 * time.Minute,
			SleepThreshold: 1 * time.Hour,
		},
	}
}

// Global is the process-wide configuration, defaults plus environment
// overrides.
var Global = initGlobal()

func initGlobal() *RuntimeConfig {
	cfg := DefaultRuntimeConfig()
	cfg.loadFromEnv()
	return cfg
}

// envDuration overwrites *dst when the variable parses as a duration.
// Zero and negative values are accepted only when allowZero is set.
func envDuration(name string, dst *time.Duration, allowZero bool) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil || (!allowZero && d <= 0) {
		return
	}
	*dst = d
}

func envInt(name string, dst *int) {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			*dst = n
		}
	}
}

func envBytes(name string, dst *uint64) {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func (c *RuntimeConfig) loadFromEnv() {
	envDuration("PAWMINDER_DAEMON_STARTUP_WAIT", &c.Daemon.StartupWait, true)
	envDuration("PAWMINDER_DAEMON_KILL_TIMEOUT", &c.Daemon.KillTimeout, true)

	envDuration("PAWMINDER_HTTP_TIMEOUT", &c.HTTP.Timeout, true)
	envInt("PAWMINDER_HTTP_MAX_RETRIES", &c.HTTP.MaxRetries)

	envDuration("PAWMINDER_RETRY_QUEUE_INTERVAL", &c.RetryQueue.CheckInterval, true)

	envBytes("PAWMINDER_MIN_FREE_SPACE", &c.Storage.MinFreeSpace)
	envBytes("PAWMINDER_MIN_FREE_SPACE_WARNING", &c.Storage.MinFreeSpaceWarning)

	envDuration("PAWMINDER_SNOOZE_INTERVAL", &c.Scheduler.SnoozeInterval, false)
	if v := os.Getenv("PAWMINDER_DAILY_RECAP_AT"); v != "" {
		c.Scheduler.DailyRecapAt = v
	}
	envDuration("PAWMINDER_ALARM_GRACE", &c.Scheduler.AlarmGrace, false)
	envDuration("PAWMINDER_SLEEP_THRESHOLD", &c.Scheduler.SleepThreshold, true)
}

// ReloadFromEnv re-applies environment overrides, mainly for tests.
func (c *RuntimeConfig) ReloadFromEnv() {
	c.loadFromEnv()
}

// Reset restores defaults, mainly for tests.
func (c *RuntimeConfig) Reset() {
	*c = *DefaultRuntimeConfig()
}
