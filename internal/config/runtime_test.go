package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultRuntimeConfig(t *testing.T) {
	cfg := DefaultRuntimeConfig()

	assert.Equal(t, 500*time.Millisecond, cfg.Daemon.StartupWait)
	assert.Equal(t, 5*time.Second, cfg.Daemon.KillTimeout)

	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 3, cfg.HTTP.MaxRetries)
	assert.Equal(t, []time.Duration{0, 5 * time.Second, 30 * time.Second}, cfg.HTTP.RetryDelays)

	assert.Equal(t, 30*time.Second, cfg.RetryQueue.CheckInterval)
	assert.Equal(t, []time.Duration{
		5 * time.Second,
		30 * time.Second,
		2 * time.Minute,
		5 * time.Minute,
		15 * time.Minute,
	}, cfg.RetryQueue.BackoffSchedule)

	assert.Equal(t, uint64(10*1024*1024), cfg.Storage.MinFreeSpace)
	assert.Equal(t, uint64(50*1024*1024), cfg.Storage.MinFreeSpaceWarning)

	assert.Equal(t, 5*time.Minute, cfg.Scheduler.SnoozeInterval)
	assert.Equal(t, "21:00", cfg.Scheduler.DailyRecapAt)
	assert.Equal(t, 2*time.Minute, cfg.Scheduler.AlarmGrace)
	assert.Equal(t, time.Hour, cfg.Scheduler.SleepThreshold)
}

func TestGlobalConfigExists(t *testing.T) {
	assert.NotNil(t, Global)
}

func TestConfigReset(t *testing.T) {
	Global.HTTP.Timeout = 1 * time.Second
	Global.Reset()
	assert.Equal(t, 30*time.Second, Global.HTTP.Timeout)
}

func TestConfigLoadFromEnv(t *testing.T) {
	t.Setenv("PAWMINDER_HTTP_TIMEOUT", "60s")
	t.Setenv("PAWMINDER_HTTP_MAX_RETRIES", "5")
	t.Setenv("PAWMINDER_DAEMON_KILL_TIMEOUT", "10s")

	cfg := DefaultRuntimeConfig()
	cfg.loadFromEnv()

	assert.Equal(t, 60*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 5, cfg.HTTP.MaxRetries)
	assert.Equal(t, 10*time.Second, cfg.Daemon.KillTimeout)
}

func TestConfigLoadFromEnvInvalidValues(t *testing.T) {
	t.Setenv("PAWMINDER_HTTP_TIMEOUT", "invalid")
	t.Setenv("PAWMINDER_HTTP_MAX_RETRIES", "not-a-number")
	t.Setenv("PAWMINDER_SNOOZE_INTERVAL", "-5m")

	cfg := DefaultRuntimeConfig()
	cfg.loadFromEnv()

	// Unparseable or out-of-range values keep the defaults.
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 3, cfg.HTTP.MaxRetries)
	assert.Equal(t, 5*time.Minute, cfg.Scheduler.SnoozeInterval)
}
