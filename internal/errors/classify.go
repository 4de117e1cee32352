package errors

import (
	"errors"
	"syscall"
)

// Category groups errors by how the CLI should present them.
type Category int

const (
	CategoryUnknown Category = iota
	// CategoryUser covers input the caller can correct.
	CategoryUser
	// CategorySystem covers the environment: disk, permissions, a
	// corrupted database.
	CategorySystem
	// CategoryRecoverable covers transient failures worth retrying.
	CategoryRecoverable
)

func (c Category) String() string {
	switch c {
	case CategoryUser:
		return "user"
	case CategorySystem:
		return "system"
	case CategoryRecoverable:
		return "recoverable"
	default:
		return "unknown"
	}
}

// Classify places an error in a category, looking at the typed errors
// of this package first, then sentinels and syscall errnos.
func Classify(err error) Category {
	switch {
	case err == nil:
		return CategoryUnknown
	case IsUserError(err):
		return CategoryUser
	case IsSystemError(err), isSystemLevel(err):
		return CategorySystem
	case IsRecoverableError(err), isTransient(err):
		return CategoryRecoverable
	default:
		return CategoryUnknown
	}
}

func isSystemLevel(err error) bool {
	if errors.Is(err, ErrDiskFull) ||
		errors.Is(err, ErrDatabaseCorrupted) ||
		errors.Is(err, ErrPermissionDenied) {
		return true
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ENOSPC, syscall.EACCES, syscall.EPERM, syscall.ENOENT, syscall.EIO, syscall.EROFS:
			return true
		}
	}
	return false
}

func isTransient(err error) bool {
	if errors.Is(err, ErrNetworkUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrLockHeld) {
		return true
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.EAGAIN, syscall.EINTR, syscall.ETIMEDOUT, syscall.ECONNREFUSED, syscall.ECONNRESET:
			return true
		}
	}
	return false
}

// FormatByCategory renders an error for the terminal the way its
// category deserves: user errors stand alone, system errors get
// labelled, transient ones mention the retry.
func FormatByCategory(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()

	switch Classify(err) {
	case CategoryUser:
		if s := GetSuggestion(err); s != "" {
			return msg + "\n" + s
		}
		return msg
	case CategorySystem:
		if s := GetSuggestion(err); s != "" {
			return "System error: " + msg + "\n" + s
		}
		return "System error: " + msg
	case CategoryRecoverable:
		return msg + " (will retry automatically)"
	default:
		return msg
	}
}
