// Package storage provides the database layer for Pawminder.
package storage

import (
	"path/filepath"

	"github.com/adrg/xdg"
	badger "github.com/dgraph-io/badger/v4"

	"github.com/pawminder/pawminder/internal/logging"
)

const (
	// AppName is the application name used for data directories.
	AppName = "pawminder"
)

// DB wraps a Badger database connection. On-disk databases also hold
// the data-directory file lock for their lifetime.
type DB struct {
	db   *badger.DB
	lock *FileLock
}

// Options configures the database connection.
type Options struct {
	// Path is the database directory path. Empty string uses in-memory mode.
	Path string
	// InMemory forces in-memory mode regardless of Path.
	InMemory bool
}

// DefaultPath returns the default database path following XDG spec.
func DefaultPath() string {
	return filepath.Join(xdg.DataHome, AppName, "db")
}

// Open opens or creates a database at the given path. A corrupted
// on-disk database gets one recovery attempt (backup, value-log GC,
// reopen) before the error surfaces.
func Open(opts Options) (*DB, error) {
	var (
		badgerOpts badger.Options
		lock       *FileLock
	)

	if opts.InMemory || opts.Path == "" {
		// In-memory mode for testing
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := EnsureDirectory(opts.Path); err != nil {
			return nil, err
		}
		lock = NewFileLock(opts.Path)
		if err := lock.Acquire(); err != nil {
			return nil, err
		}
		badgerOpts = badger.DefaultOptions(opts.Path)
	}

	// Reduce logging noise
	badgerOpts = badgerOpts.WithLoggingLevel(badger.ERROR)

	db, err := badger.Open(badgerOpts)
	if err != nil && !badgerOpts.InMemory && IsCorruptionError(err) {
		logging.Warn("database looks corrupted, attempting recovery", logging.KeyError, err)
		if rerr := AttemptRecovery(opts.Path); rerr != nil {
			return nil, rerr
		}
		db, err = badger.Open(badgerOpts)
	}
	if err != nil {
		if lock != nil {
			lock.Release()
		}
		return nil, err
	}

	return &DB{db: db, lock: lock}, nil
}

// Close closes the database and releases the directory lock.
func (d *DB) Close() error {
	err := d.db.Close()
	if d.lock != nil {
		if lerr := d.lock.Release(); err == nil {
			err = lerr
		}
		d.lock = nil
	}
	return err
}

// Badger returns the underlying Badger database for advanced operations.
func (d *DB) Badger() *badger.DB {
	return d.db
}
