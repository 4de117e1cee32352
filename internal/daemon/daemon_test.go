package daemon

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawminder/pawminder/internal/storage"
)

// redirectStateHome points the XDG state directory at a temp dir so
// PID, state, and health files stay out of the real one.
func redirectStateHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)
	xdg.Reload()
	t.Cleanup(xdg.Reload)
	return dir
}

func openTestDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(storage.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPIDFile(t *testing.T) {
	redirectStateHome(t)

	t.Run("write read remove", func(t *testing.T) {
		p := NewPIDFile()
		require.NoError(t, p.Write())

		pid, err := p.Read()
		require.NoError(t, err)
		assert.Equal(t, os.Getpid(), pid)
		assert.True(t, p.IsRunning())
		assert.Equal(t, os.Getpid(), p.GetRunningPID())

		require.NoError(t, p.Remove())
		_, err = p.Read()
		assert.ErrorIs(t, err, ErrNotRunning)
		assert.False(t, p.IsRunning())
	})

	t.Run("dead pid is not running", func(t *testing.T) {
		p := NewPIDFile()
		require.NoError(t, os.MkdirAll(filepath.Dir(p.Path()), 0755))
		require.NoError(t, os.WriteFile(p.Path(), []byte("999999999"), 0644))
		defer p.Remove()

		assert.False(t, p.IsRunning())
		assert.Equal(t, 0, p.GetRunningPID())
	})

	t.Run("garbled pid file", func(t *testing.T) {
		p := NewPIDFile()
		require.NoError(t, os.MkdirAll(filepath.Dir(p.Path()), 0755))
		require.NoError(t, os.WriteFile(p.Path(), []byte("woof"), 0644))
		defer p.Remove()

		_, err := p.Read()
		assert.Error(t, err)
		assert.False(t, p.IsRunning())
	})
}

func TestProcessRunning(t *testing.T) {
	assert.True(t, processRunning(os.Getpid()))
	assert.False(t, processRunning(0))
	assert.False(t, processRunning(-1))
	assert.False(t, processRunning(999999999))
}

func TestDaemonCheckHealth(t *testing.T) {
	redirectStateHome(t)

	t.Run("healthy with open database", func(t *testing.T) {
		d := NewDaemon(openTestDB(t))
		d.startedAt = time.Now().Add(-90 * time.Second)

		h := d.checkHealth()
		assert.Equal(t, "healthy", h.Status)
		assert.True(t, h.DatabaseHealthy)
		assert.GreaterOrEqual(t, h.UptimeSeconds, int64(90))
		assert.GreaterOrEqual(t, h.Goroutines, 1)
		assert.Zero(t, h.ActiveAlarms)
	})

	t.Run("unhealthy without database", func(t *testing.T) {
		d := NewDaemon(nil)
		d.startedAt = time.Now()

		h := d.checkHealth()
		assert.Equal(t, "unhealthy", h.Status)
		assert.False(t, h.DatabaseHealthy)
		assert.NotEmpty(t, h.DatabaseErrors)
	})
}

func TestHealthSnapshotRoundTrip(t *testing.T) {
	redirectStateHome(t)

	d := NewDaemon(openTestDB(t))
	d.startedAt = time.Now()
	d.writeHealthSnapshot()

	h, err := ReadHealth()
	require.NoError(t, err)
	assert.Equal(t, "healthy", h.Status)
	assert.False(t, h.CheckedAt.IsZero())

	removeHealthFile()
	_, err = ReadHealth()
	assert.Error(t, err)
}

func TestGetStatus(t *testing.T) {
	redirectStateHome(t)

	t.Run("stopped", func(t *testing.T) {
		status := NewDaemon(nil).GetStatus()
		assert.False(t, status.Running)
		assert.Zero(t, status.PID)
		assert.Nil(t, status.Health)
	})

	t.Run("running with state and health", func(t *testing.T) {
		d := NewDaemon(openTestDB(t))
		require.NoError(t, d.pidFile.Write())
		defer d.pidFile.Remove()

		d.startedAt = time.Now().Add(-2 * time.Minute)
		require.NoError(t, d.writeState(&daemonState{StartedAt: d.startedAt}))
		defer d.removeState()
		d.writeHealthSnapshot()
		defer removeHealthFile()

		status := d.GetStatus()
		assert.True(t, status.Running)
		assert.Equal(t, os.Getpid(), status.PID)
		assert.Equal(t, "2m", status.Uptime)
		require.NotNil(t, status.Health)
		assert.Equal(t, "healthy", status.Health.Status)
	})
}

func TestStopWhenNotRunning(t *testing.T) {
	redirectStateHome(t)
	assert.ErrorIs(t, NewDaemon(nil).Stop(), ErrNotRunning)
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{5 * time.Minute, "5m"},
		{2 * time.Hour, "2h"},
		{2*time.Hour + 30*time.Minute, "2h 30m"},
		{48 * time.Hour, "2d"},
		{50 * time.Hour, "2d 2h"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatUptime(tt.d))
		})
	}
}

func TestLastLogError(t *testing.T) {
	t.Run("finds error line in tail", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "daemon.log")
		log := "daemon started\nsweep complete\nERROR database locked by another process\n"
		require.NoError(t, os.WriteFile(path, []byte(log), 0644))

		assert.Contains(t, lastLogError(path), "locked by another process")
	})

	t.Run("empty when log is clean", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "daemon.log")
		require.NoError(t, os.WriteFile(path, []byte("daemon started\n"), 0644))
		assert.Empty(t, lastLogError(path))
	})

	t.Run("empty when log is missing", func(t *testing.T) {
		assert.Empty(t, lastLogError(filepath.Join(t.TempDir(), "nope.log")))
	})
}

func TestRenderServiceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unit", "pawminder.service")
	data := struct{ Executable string }{Executable: "/usr/local/bin/pawminder"}

	require.NoError(t, renderServiceFile(path, "unit", "ExecStart={{.Executable}} daemon start\n", data))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ExecStart=/usr/local/bin/pawminder daemon start\n", string(content))
}
