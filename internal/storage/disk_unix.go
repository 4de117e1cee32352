//go:build !windows

package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// GetDiskSpace stats the filesystem at path, climbing to the nearest
// existing parent first.
func GetDiskSpace(path string) (*DiskSpaceInfo, error) {
	path = nearestExisting(path)

	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return nil, fmt.Errorf("statfs %s: %w", path, err)
	}

	info := &DiskSpaceInfo{
		Path:       path,
		TotalBytes: stat.Blocks * uint64(stat.Bsize),
		FreeBytes:  stat.Bavail * uint64(stat.Bsize),
	}
	info.UsedBytes = info.TotalBytes - info.FreeBytes
	return info, nil
}

func nearestExisting(path string) string {
	for {
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(path)
		if parent == path {
			return path
		}
		path = parent
	}
}

// isDiskFullError reports ENOSPC, unwrapping a PathError if present.
func isDiskFullError(err error) bool {
	if err == nil {
		return false
	}
	if pathErr, ok := err.(*os.PathError); ok {
		err = pathErr.Err
	}
	errno, ok := err.(syscall.Errno)
	return ok && errno == syscall.ENOSPC
}
