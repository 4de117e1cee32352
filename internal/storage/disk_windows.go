//go:build windows

package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"unsafe"
)

var (
	kernel32            = syscall.NewLazyDLL("kernel32.dll")
	getDiskFreeSpaceExW = kernel32.NewProc("GetDiskFreeSpaceExW")
)

// GetDiskSpace stats the volume at path, climbing to the nearest
// existing parent first.
func GetDiskSpace(path string) (*DiskSpaceInfo, error) {
	path = nearestExisting(path)

	pathPtr, err := syscall.UTF16PtrFromString(path)
	if err != nil {
		return nil, fmt.Errorf("converting path: %w", err)
	}

	var freeAvail, total, totalFree uint64
	ret, _, err := getDiskFreeSpaceExW.Call(
		uintptr(unsafe.Pointer(pathPtr)),
		uintptr(unsafe.Pointer(&freeAvail)),
		uintptr(unsafe.Pointer(&total)),
		uintptr(unsafe.Pointer(&totalFree)),
	)
	if ret == 0 {
		return nil, fmt.Errorf("querying disk space: %w", err)
	}

	info := &DiskSpaceInfo{
		Path:       path,
		TotalBytes: total,
		FreeBytes:  freeAvail,
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

// isDiskFullError reports ERROR_DISK_FULL, unwrapping a PathError if
// present.
func isDiskFullError(err error) bool {
	const errorDiskFull = syscall.Errno(112)
	if err == nil {
		return false
	}
	if pathErr, ok := err.(*os.PathError); ok {
		err = pathErr.Err
	}
	errno, ok := err.(syscall.Errno)
	return ok && errno == errorDiskFull
}
