// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

//go:build unix

package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// ErrLocked is returned by TryLockFile when another holder has the lock.
var ErrLocked = errors.New("file is locked by another process")

// FileLock is an exclusive advisory lock (flock(2)) on a lock file.
// Locks taken through separate FileLocks conflict even within one process.
type FileLock struct {
	f *os.File
}

// LockFile blocks until it holds an exclusive lock on path, creating the
// file with DataFilePerm if needed.
func LockFile(path string) (*FileLock, error) {
	return lockFile(path, unix.LOCK_EX)
}

// TryLockFile is LockFile without waiting; it fails with ErrLocked if the
// lock is held elsewhere.
func TryLockFile(path string) (*FileLock, error) {
	return lockFile(path, unix.LOCK_EX|unix.LOCK_NB)
}

func lockFile(path string, how int) (*FileLock, error) {
	if err := os.MkdirAll(filepath.Dir(path), DataDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, DataFilePerm) // #nosec G304 - path comes from config
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}
	fd := int(f.Fd()) // #nosec G115 - file descriptors are small integers
	for {
		err = unix.Flock(fd, how)
		if !errors.Is(err, unix.EINTR) {
			break
		}
	}
	if err != nil {
		_ = f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, fmt.Errorf("%w: %s", ErrLocked, path)
		}
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}
	return &FileLock{f: f}, nil
}

// Unlock releases the lock. The lock file is left in place so that every
// holder locks the same inode.
func (l *FileLock) Unlock() error {
	if l == nil || l.f == nil {
		return nil
	}
	err := unix.Flock(int(l.f.Fd()), unix.LOCK_UN) // #nosec G115 - file descriptors are small integers
	if cerr := l.f.Close(); err == nil {
		err = cerr
	}
	l.f = nil
	return err
}
