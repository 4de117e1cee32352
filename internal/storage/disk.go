package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pawminder/pawminder/internal/config"
	"github.com/pawminder/pawminder/internal/errors"
)

// DiskSpaceInfo describes the filesystem holding the data directory.
type DiskSpaceInfo struct {
	Path       string
	TotalBytes uint64
	FreeBytes  uint64
	UsedBytes  uint64
}

// FreePercent returns the free share of the filesystem.
func (d *DiskSpaceInfo) FreePercent() float64 {
	if d.TotalBytes == 0 {
		return 0
	}
	return float64(d.FreeBytes) / float64(d.TotalBytes) * 100
}

// CheckDiskSpace fails with ErrDiskFull when free space at path is
// below the configured minimum. An unreadable filesystem passes; the
// write itself will surface the real error.
func CheckDiskSpace(path string) error {
	info, err := GetDiskSpace(path)
	if err != nil {
		return nil
	}
	minFree := config.Global.Storage.MinFreeSpace
	if info.FreeBytes < minFree {
		return errors.NewSystemError(
			fmt.Sprintf("insufficient disk space: %d MB free, need at least %d MB",
				info.FreeBytes/(1024*1024), minFree/(1024*1024)),
			errors.ErrDiskFull,
		)
	}
	return nil
}

// CheckDiskSpaceWarning returns a warning line when free space is
// below the configured warning threshold, or "".
func CheckDiskSpaceWarning(path string) string {
	info, err := GetDiskSpace(path)
	if err != nil {
		return ""
	}
	if info.FreeBytes < config.Global.Storage.MinFreeSpaceWarning {
		return fmt.Sprintf("Warning: Low disk space (%d MB free)", info.FreeBytes/(1024*1024))
	}
	return ""
}

// SafeWrite writes data to path atomically: disk-space check, temp
// file in the same directory, fsync, rename.
func SafeWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := CheckDiskSpace(dir); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".pawminder-*.tmp")
	if err != nil {
		return diskWriteError("create temp file", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return diskWriteError("write", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return diskWriteError("sync", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	committed = true
	return nil
}

// EnsureDirectory creates a private directory after checking space.
func EnsureDirectory(path string) error {
	if err := CheckDiskSpace(filepath.Dir(path)); err != nil {
		return err
	}
	if err := os.MkdirAll(path, 0700); err != nil {
		return diskWriteError("mkdir", err)
	}
	return nil
}

func diskWriteError(op string, err error) error {
	if isDiskFullError(err) {
		return errors.NewSystemErrorWithOp(op, "disk full", errors.ErrDiskFull)
	}
	return fmt.Errorf("%s: %w", op, err)
}
