package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/pawminder/pawminder/internal/errors"
)

func TestFileLock_AcquireRelease(t *testing.T) {
	t.Run("acquires and releases lock", func(t *testing.T) {
		dir := t.TempDir()
		lock := NewFileLock(dir)

		require.NoError(t, lock.Acquire())

		lockPath := filepath.Join(dir, lockFileName)
		data, err := os.ReadFile(lockPath)
		require.NoError(t, err)
		assert.Equal(t, strconv.Itoa(os.Getpid()), string(data))

		require.NoError(t, lock.Release())

		_, err = os.Stat(lockPath)
		assert.True(t, os.IsNotExist(err), "lock file should be removed after release")
	})

	t.Run("second acquire reports the holder", func(t *testing.T) {
		dir := t.TempDir()
		lock1 := NewFileLock(dir)
		require.NoError(t, lock1.Acquire())
		defer lock1.Release()

		lock2 := NewFileLock(dir)
		err := lock2.Acquire()
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrLockHeld)
		assert.Contains(t, err.Error(), fmt.Sprintf("PID %d", os.Getpid()))
	})

	t.Run("release without acquire is a no-op", func(t *testing.T) {
		lock := NewFileLock(t.TempDir())
		assert.NoError(t, lock.Release())
	})

	t.Run("reacquire after release", func(t *testing.T) {
		dir := t.TempDir()
		lock := NewFileLock(dir)
		require.NoError(t, lock.Acquire())
		require.NoError(t, lock.Release())
		require.NoError(t, lock.Acquire())
		require.NoError(t, lock.Release())
	})
}

func TestFileLock_StaleLock(t *testing.T) {
	t.Run("clears lock left by a dead process", func(t *testing.T) {
		dir := t.TempDir()

		// PIDs this large are not handed out on any supported platform.
		stale := filepath.Join(dir, lockFileName)
		require.NoError(t, os.WriteFile(stale, []byte("999999999"), 0644))

		lock := NewFileLock(dir)
		require.NoError(t, lock.Acquire())
		defer lock.Release()

		assert.Equal(t, os.Getpid(), lock.HolderPID())
	})

	t.Run("garbage lock file does not block acquire", func(t *testing.T) {
		dir := t.TempDir()
		stale := filepath.Join(dir, lockFileName)
		require.NoError(t, os.WriteFile(stale, []byte("not-a-pid"), 0644))

		lock := NewFileLock(dir)
		require.NoError(t, lock.Acquire())
		defer lock.Release()
	})
}

func TestFileLock_HolderPID(t *testing.T) {
	t.Run("returns zero when no lock file exists", func(t *testing.T) {
		lock := NewFileLock(t.TempDir())
		assert.Equal(t, 0, lock.HolderPID())
	})

	t.Run("returns recorded pid", func(t *testing.T) {
		dir := t.TempDir()
		lock := NewFileLock(dir)
		require.NoError(t, lock.Acquire())
		defer lock.Release()

		assert.Equal(t, os.Getpid(), lock.HolderPID())
	})
}

func TestOpen_HoldsDirectoryLock(t *testing.T) {
	dir := t.TempDir()

	db, err := Open(Options{Path: dir})
	require.NoError(t, err)

	_, err = Open(Options{Path: dir})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrLockHeld)

	require.NoError(t, db.Close())

	db2, err := Open(Options{Path: dir})
	require.NoError(t, err)
	require.NoError(t, db2.Close())
}
