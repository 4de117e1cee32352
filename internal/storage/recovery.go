package storage

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/pawminder/pawminder/internal/errors"
	"github.com/pawminder/pawminder/internal/logging"
)

// IntegrityReport summarizes a database health check.
type IntegrityReport struct {
	Healthy    bool      `json:"healthy"`
	CheckedAt  time.Time `json:"checked_at"`
	ErrorCount int       `json:"error_count"`
	Errors     []string  `json:"errors,omitempty"`
}

// CheckDatabaseIntegrity samples keys and reads their values to detect
// corruption. The daemon's health check runs this periodically.
func CheckDatabaseIntegrity(db *DB) *IntegrityReport {
	report := &IntegrityReport{CheckedAt: time.Now(), Healthy: true}

	if db == nil || db.db == nil {
		report.Healthy = false
		report.ErrorCount = 1
		report.Errors = []string{"database not open"}
		return report
	}

	err := db.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchSize = 10
		it := txn.NewIterator(opts)
		defer it.Close()

		sampled := 0
		for it.Rewind(); it.Valid() && sampled < 100; it.Next() {
			item := it.Item()
			if err := item.Value(func([]byte) error { return nil }); err != nil {
				report.Errors = append(report.Errors, fmt.Sprintf("unreadable value at key %s", item.Key()))
				report.ErrorCount++
			}
			sampled++
		}
		return nil
	})
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("iteration failed: %v", err))
		report.ErrorCount++
	}

	report.Healthy = report.ErrorCount == 0
	return report
}

// IsCorruptionError reports whether err looks like badger-level
// corruption rather than an ordinary open failure.
func IsCorruptionError(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, errors.ErrDatabaseCorrupted) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"checksum mismatch", "corrupt", "unexpected eof", "bad magic", "truncated",
	} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// AttemptRecovery backs the data directory up, then reopens badger
// with value-log GC to shed damaged tail entries. The caller retries
// Open afterwards.
func AttemptRecovery(dbPath string) error {
	backupPath, err := BackupDatabase(dbPath)
	if err != nil {
		// Recovery may still work on an unbackable directory.
		logging.Warn("backup before recovery failed", logging.KeyError, err)
	}

	opts := badger.DefaultOptions(dbPath).
		WithLoggingLevel(badger.ERROR).
		WithNumVersionsToKeep(1)
	db, err := badger.Open(opts)
	if err != nil {
		return errors.NewSystemError("reopening database for recovery", err)
	}
	defer db.Close()

	for db.RunValueLogGC(0.5) == nil {
	}

	logging.Info("database recovery completed", "backup_path", backupPath)
	return nil
}

// BackupDatabase copies the data directory into a timestamped sibling
// under backups/ and returns the backup path.
func BackupDatabase(dbPath string) (string, error) {
	if dbPath == "" {
		return "", fmt.Errorf("database path is empty")
	}

	backupDir := filepath.Join(filepath.Dir(dbPath), "backups")
	if err := os.MkdirAll(backupDir, 0700); err != nil {
		return "", fmt.Errorf("creating backup directory: %w", err)
	}

	backupPath := filepath.Join(backupDir, "db-"+time.Now().Format("20060102-150405"))
	if err := copyTree(dbPath, backupPath); err != nil {
		return "", fmt.Errorf("copying database: %w", err)
	}

	logging.Info("database backup created", logging.KeyOperation, "backup", "path", backupPath)
	return backupPath, nil
}

func copyTree(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dst, info.Mode()); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		from := filepath.Join(src, entry.Name())
		to := filepath.Join(dst, entry.Name())
		if entry.IsDir() {
			err = copyTree(from, to)
		} else {
			err = copyFile(from, to)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
