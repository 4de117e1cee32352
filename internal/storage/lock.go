// Package storage provides the database layer for Pawminder.
package storage

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pawminder/pawminder/internal/errors"
)

// lockFileName sits next to the badger directory so only one daemon
// serves a data directory at a time.
const lockFileName = "pawminder.lock"

// errLockWouldBlock is returned by the platform shim when another
// process holds the lock.
var errLockWouldBlock = stderrors.New("lock held elsewhere")

// FileLock is an advisory lock on the data directory, holding the
// owner's PID for diagnostics.
type FileLock struct {
	path string
	file *os.File
}

// NewFileLock prepares a lock for the given data directory. Nothing is
// taken until Acquire.
func NewFileLock(dir string) *FileLock {
	return &FileLock{path: filepath.Join(dir, lockFileName)}
}

// Acquire takes the lock, clearing a stale lock left by a dead process
// first. A live holder yields errors.ErrLockHeld.
func (l *FileLock) Acquire() error {
	l.clearStale()

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("opening lock file: %w", err)
	}

	if err := flockTake(f); err != nil {
		f.Close()
		if stderrors.Is(err, errLockWouldBlock) {
			if pid := l.HolderPID(); pid > 0 {
				return fmt.Errorf("%w (PID %d)", errors.ErrLockHeld, pid)
			}
			return errors.ErrLockHeld
		}
		return fmt.Errorf("locking %s: %w", l.path, err)
	}

	if err := l.stampPID(f); err != nil {
		flockDrop(f)
		f.Close()
		return err
	}
	l.file = f
	return nil
}

// Release drops the lock and removes the lock file. Safe to call when
// the lock was never acquired.
func (l *FileLock) Release() error {
	if l.file == nil {
		return nil
	}
	if err := flockDrop(l.file); err != nil {
		l.file.Close()
		return err
	}
	if err := l.file.Close(); err != nil {
		return err
	}
	l.file = nil
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// HolderPID reads the PID recorded in the lock file, or 0.
func (l *FileLock) HolderPID() int {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}
	return pid
}

func (l *FileLock) stampPID(f *os.File) error {
	if err := f.Truncate(0); err != nil {
		return fmt.Errorf("writing lock file: %w", err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		return fmt.Errorf("writing lock file: %w", err)
	}
	if _, err := fmt.Fprintf(f, "%d", os.Getpid()); err != nil {
		return fmt.Errorf("writing lock file: %w", err)
	}
	return f.Sync()
}

// clearStale removes a lock file whose recorded process no longer
// exists.
func (l *FileLock) clearStale() {
	pid := l.HolderPID()
	if pid <= 0 || processAlive(pid) {
		return
	}
	os.Remove(l.path)
}
