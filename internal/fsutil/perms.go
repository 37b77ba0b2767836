// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package fsutil provides filesystem helpers for the apvault data directory.
// Data files are private to the user (0600 files, 0700 dirs) because the
// directory holds signer key files next to ledger snapshots.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// DataDirPerm is the permission mode for data directories.
const DataDirPerm os.FileMode = 0700

// DataFilePerm is the permission mode for data files.
const DataFilePerm os.FileMode = 0600

// MkdirAll creates a directory and all parents with data permissions.
// Unlike os.MkdirAll, this explicitly sets permissions after creation to
// bypass umask restrictions.
func MkdirAll(path string) error {
	if err := os.MkdirAll(path, DataDirPerm); err != nil {
		return err
	}
	return os.Chmod(path, DataDirPerm)
}

// WriteFile writes data to a file with data permissions.
func WriteFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, DataFilePerm); err != nil {
		return err
	}
	return os.Chmod(path, DataFilePerm)
}

// WriteFileAtomic writes data to a temporary file in the same directory and
// renames it over path, so readers never observe a partial file.
// Missing parents are created with DataDirPerm; existing ones keep their mode.
func WriteFileAtomic(path string, data []byte) error {
	tmpName, err := writeTemp(path, data)
	if err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

// WriteFileExclusive is WriteFileAtomic that fails with an error matching
// os.ErrExist instead of replacing an existing file.
func WriteFileExclusive(path string, data []byte) error {
	tmpName, err := writeTemp(path, data)
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmpName) }()
	// link(2) refuses to replace the target, unlike rename(2).
	return os.Link(tmpName, path)
}

// writeTemp writes data to a synced private temp file next to path.
func writeTemp(path string, data []byte) (string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DataDirPerm); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return "", err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", err
	}
	if err := tmp.Chmod(DataFilePerm); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", fmt.Errorf("failed to set permissions on %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", err
	}
	return tmpName, nil
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
