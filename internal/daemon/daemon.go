package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/adrg/xdg"

	"github.com/pawminder/pawminder/internal/config"
	"github.com/pawminder/pawminder/internal/logging"
	"github.com/pawminder/pawminder/internal/notify"
	"github.com/pawminder/pawminder/internal/scheduler"
	"github.com/pawminder/pawminder/internal/storage"
)

// Daemon owns the scheduler, the notification retry queue, and the
// process bookkeeping (PID file, state file, health snapshots).
type Daemon struct {
	pidFile      *PIDFile
	db           *storage.DB
	dogRepo      *storage.DogRepo
	reminderRepo *storage.ReminderRepo
	logRepo      *storage.LogRepo
	familyRepo   *storage.FamilyRepo
	webhookRepo  *storage.WebhookRepo

	scheduler  *scheduler.Scheduler
	alarms     *scheduler.AlarmChecker
	dispatcher *notify.Dispatcher
	queue      *notify.RetryQueue

	startedAt time.Time
	debug     bool
}

// Status is what `pawminder daemon status` reports. Health is filled
// in from the last snapshot when the daemon is running.
type Status struct {
	Running   bool      `json:"running"`
	PID       int       `json:"pid,omitempty"`
	StartedAt time.Time `json:"started_at,omitempty"`
	Uptime    string    `json:"uptime,omitempty"`
	Health    *Health   `json:"health,omitempty"`
}

// NewDaemon creates a daemon manager. db may be nil for operations
// that only inspect the PID file (status, stop).
func NewDaemon(db *storage.DB) *Daemon {
	return &Daemon{
		pidFile:      NewPIDFile(),
		db:           db,
		dogRepo:      storage.NewDogRepo(db),
		reminderRepo: storage.NewReminderRepo(db),
		logRepo:      storage.NewLogRepo(db),
		familyRepo:   storage.NewFamilyRepo(db),
		webhookRepo:  storage.NewWebhookRepo(db),
	}
}

// SetDebug enables debug logging.
func (d *Daemon) SetDebug(debug bool) {
	d.debug = debug
}

// IsRunning reports whether a daemon process is alive.
func (d *Daemon) IsRunning() bool {
	return d.pidFile.IsRunning()
}

// GetStatus inspects the PID file, state file, and health snapshot.
func (d *Daemon) GetStatus() *Status {
	status := &Status{}

	pid := d.pidFile.GetRunningPID()
	if pid == 0 {
		return status
	}
	status.Running = true
	status.PID = pid

	if state, err := d.readState(); err == nil {
		status.StartedAt = state.StartedAt
		status.Uptime = formatUptime(time.Since(state.StartedAt))
	}
	if health, err := ReadHealth(); err == nil {
		status.Health = health
	}
	return status
}

// Start runs the daemon in the foreground until a shutdown signal or
// context cancellation.
func (d *Daemon) Start(ctx context.Context) error {
	if d.IsRunning() {
		return ErrAlreadyRunning
	}
	if err := d.pidFile.Write(); err != nil {
		return err
	}

	d.startedAt = time.Now()
	if err := d.writeState(&daemonState{StartedAt: d.startedAt}); err != nil {
		d.pidFile.Remove()
		return err
	}

	// One dispatcher is shared by the alarm checker and recap
	// generator so failed sends land in the retry queue.
	d.queue = notify.NewRetryQueue(notify.NewClient())
	d.dispatcher = notify.NewDispatcher(d.webhookRepo).WithRetryQueue(d.queue)
	d.dispatcher.SetDebug(d.debug)

	d.scheduler = scheduler.NewScheduler(d.db)
	d.scheduler.SetDebug(d.debug)

	sweep := scheduler.NewSkipSweep(d.reminderRepo, d.logRepo)
	d.scheduler.SetSkipSweep(sweep)

	d.alarms = scheduler.NewAlarmChecker(d.reminderRepo, d.familyRepo, d.dogRepo, d.webhookRepo)
	d.alarms.SetDispatcher(d.dispatcher)
	d.scheduler.SetAlarmChecker(d.alarms)

	recap := scheduler.NewRecapGenerator(d.dogRepo, d.reminderRepo, d.logRepo, d.familyRepo, d.webhookRepo)
	recap.SetDispatcher(d.dispatcher)
	d.scheduler.SetRecapGenerator(recap)

	d.queue.Start()
	if err := d.scheduler.Start(); err != nil {
		d.queue.Stop()
		d.pidFile.Remove()
		d.removeState()
		return err
	}

	if _, err := d.scheduler.AddJob("@every 1m", d.writeHealthSnapshot); err != nil {
		logging.Warn("scheduling health snapshots", logging.KeyError, err)
	}
	d.writeHealthSnapshot()

	logging.Info("daemon started", "pid", os.Getpid())

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()
	<-sigCtx.Done()

	logging.Info("daemon shutting down")
	d.scheduler.Stop()
	d.queue.Stop()
	d.pidFile.Remove()
	d.removeState()
	removeHealthFile()
	return nil
}

// StartBackground re-invokes the executable as a detached foreground
// daemon with output redirected to the log file, then waits for its
// PID file to appear.
func (d *Daemon) StartBackground() (int, error) {
	if d.IsRunning() {
		return d.pidFile.GetRunningPID(), ErrAlreadyRunning
	}

	executable, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("locating executable: %w", err)
	}

	args := []string{"daemon", "start", "--foreground"}
	if d.debug {
		args = append(args, "--debug")
	}

	cmd := exec.Command(executable, args...)
	cmd.Stdin = nil

	logPath := GetLogPath()
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err == nil {
		if logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644); err == nil {
			cmd.Stdout = logFile
			cmd.Stderr = logFile
		}
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("spawning daemon: %w", err)
	}

	time.Sleep(config.Global.Daemon.StartupWait)

	if !d.pidFile.IsRunning() {
		if line := lastLogError(logPath); line != "" {
			return 0, fmt.Errorf("daemon failed to start: %s", line)
		}
		return 0, fmt.Errorf("daemon failed to start (check logs: %s)", logPath)
	}

	return cmd.Process.Pid, nil
}

// Stop signals the running daemon and waits for it to exit.
func (d *Daemon) Stop() error {
	pid := d.pidFile.GetRunningPID()
	if pid == 0 {
		return ErrNotRunning
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("finding daemon process: %w", err)
	}

	if err := process.Signal(os.Interrupt); err != nil {
		if err := process.Kill(); err != nil {
			return fmt.Errorf("stopping daemon: %w", err)
		}
	}

	done := make(chan struct{})
	go func() {
		process.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(config.Global.Daemon.KillTimeout):
		process.Kill()
	}

	d.pidFile.Remove()
	d.removeState()
	removeHealthFile()
	return nil
}

// lastLogError scans the tail of the daemon log for a failure line to
// surface after an unsuccessful background start.
func lastLogError(logPath string) string {
	data, err := os.ReadFile(logPath)
	if err != nil {
		return ""
	}

	lines := strings.Split(string(data), "\n")
	start := len(lines) - 10
	if start < 0 {
		start = 0
	}
	for i := len(lines) - 1; i >= start; i-- {
		line := strings.TrimSpace(lines[i])
		if strings.Contains(strings.ToLower(line), "error") ||
			strings.Contains(line, "locked by another process") ||
			strings.Contains(line, "failed to") {
			return line
		}
	}
	return ""
}

// daemonState survives in the state directory for the lifetime of the
// process so a separate status invocation can compute uptime.
type daemonState struct {
	StartedAt time.Time `json:"started_at"`
}

func statePath() string {
	return filepath.Join(xdg.StateHome, AppName, "daemon.json")
}

func (d *Daemon) writeState(state *daemonState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(statePath()), 0755); err != nil {
		return err
	}
	return os.WriteFile(statePath(), data, 0644)
}

func (d *Daemon) readState() (*daemonState, error) {
	data, err := os.ReadFile(statePath())
	if err != nil {
		return nil, err
	}
	var state daemonState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (d *Daemon) removeState() {
	if err := os.Remove(statePath()); err != nil && !os.IsNotExist(err) {
		logging.Warn("removing daemon state file", logging.KeyError, err, "path", statePath())
	}
}

// GetLogPath returns the daemon log file location.
func GetLogPath() string {
	return filepath.Join(xdg.StateHome, AppName, "daemon.log")
}

func formatUptime(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		hours := int(d.Hours())
		if minutes := int(d.Minutes()) % 60; minutes > 0 {
			return fmt.Sprintf("%dh %dm", hours, minutes)
		}
		return fmt.Sprintf("%dh", hours)
	}
	days := int(d.Hours() / 24)
	if hours := int(d.Hours()) % 24; hours > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	return fmt.Sprintf("%dd", days)
}
