//go:build windows

package storage

import (
	"os"
	"syscall"
	"unsafe"
)

var (
	lockKernel32     = syscall.NewLazyDLL("kernel32.dll")
	procLockFileEx   = lockKernel32.NewProc("LockFileEx")
	procUnlockFileEx = lockKernel32.NewProc("UnlockFileEx")
)

const (
	lockfileExclusiveLock   = 0x2
	lockfileFailImmediately = 0x1
	errorLockViolation      = syscall.Errno(33)
)

func flockTake(f *os.File) error {
	var ol syscall.Overlapped
	ret, _, err := procLockFileEx.Call(
		f.Fd(),
		lockfileExclusiveLock|lockfileFailImmediately,
		0, 1, 0,
		uintptr(unsafe.Pointer(&ol)),
	)
	if ret == 0 {
		if errno, ok := err.(syscall.Errno); ok && errno == errorLockViolation {
			return errLockWouldBlock
		}
		return err
	}
	return nil
}

func flockDrop(f *os.File) error {
	var ol syscall.Overlapped
	ret, _, err := procUnlockFileEx.Call(
		f.Fd(),
		0, 1, 0,
		uintptr(unsafe.Pointer(&ol)),
	)
	if ret == 0 {
		return err
	}
	return nil
}

// processAlive checks whether a process handle can still be opened.
func processAlive(pid int) bool {
	h, err := syscall.OpenProcess(syscall.PROCESS_QUERY_INFORMATION, false, uint32(pid))
	if err != nil {
		return false
	}
	syscall.CloseHandle(h)
	return true
}
