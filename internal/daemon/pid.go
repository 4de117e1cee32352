// Package daemon runs the background process that fires reminder
// alarms, sweeps skipped occurrences, and delivers webhook
// notifications for Pawminder.
package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/adrg/xdg"
)

// AppName is the application name used for state directories.
const AppName = "pawminder"

const pidFileName = "pawminder.pid"

var (
	ErrNotRunning     = errors.New("daemon is not running")
	ErrAlreadyRunning = errors.New("daemon is already running")
)

// PIDFile records the daemon's process ID in the XDG state directory.
// The state dir is used instead of the runtime dir because the latter
// is not guaranteed to exist on macOS.
type PIDFile struct {
	path string
}

// NewPIDFile returns the PID file manager for the default location.
func NewPIDFile() *PIDFile {
	return &PIDFile{path: filepath.Join(xdg.StateHome, AppName, pidFileName)}
}

// Write records the current process PID.
func (p *PIDFile) Write() error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	if err := os.WriteFile(p.path, []byte(strconv.Itoa(os.Getpid())), 0644); err != nil {
		return fmt.Errorf("writing pid file: %w", err)
	}
	return nil
}

// Read returns the recorded PID. A missing file means ErrNotRunning.
func (p *PIDFile) Read() (int, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrNotRunning
		}
		return 0, fmt.Errorf("reading pid file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("pid file %s is garbled: %w", p.path, err)
	}
	return pid, nil
}

// Remove deletes the PID file. A missing file is not an error.
func (p *PIDFile) Remove() error {
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing pid file: %w", err)
	}
	return nil
}

// GetRunningPID returns the recorded PID when that process is still
// alive, or 0.
func (p *PIDFile) GetRunningPID() int {
	pid, err := p.Read()
	if err != nil || !processRunning(pid) {
		return 0
	}
	return pid
}

// IsRunning reports whether the recorded process is alive.
func (p *PIDFile) IsRunning() bool {
	return p.GetRunningPID() != 0
}

// Path returns the PID file location.
func (p *PIDFile) Path() string {
	return p.path
}

// processRunning checks a PID with signal 0. On Unix FindProcess
// always succeeds, so the signal is the actual check.
func processRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
