// Package fileutil provides the file system primitives agentsync mutates
// provider configs and skill directories with: atomic writes, recursive
// copies that keep symlinks as symlinks, and directory links.
package fileutil

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/thoreinstein/agentsync/internal/errors"
)

// DefaultFilePerm is used for new files when no existing mode is known.
const DefaultFilePerm fs.FileMode = 0o644

// AtomicWriteFile writes data to a file atomically using a temp file + rename pattern.
// An interrupted write leaves the original file intact.
//
// The caller is responsible for ensuring the parent directory exists.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	// Same directory so the rename stays on one filesystem.
	tmp, err := os.CreateTemp(dir, ".agentsync-atomic-*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}

	tmpName := tmp.Name()
	renamed := false
	defer func() {
		if !renamed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "writing temp file")
	}

	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return errors.Wrap(err, "setting file permissions")
	}

	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}

	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrap(err, "renaming temp file")
	}
	renamed = true

	return nil
}

// WriteFilePreservingMode atomically replaces path with data, keeping the
// permission bits of the existing file. New files get DefaultFilePerm.
// Missing parent directories are created.
func WriteFilePreservingMode(path string, data []byte) error {
	perm := DefaultFilePerm
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating directory for %s", path)
	}
	return AtomicWriteFile(path, data, perm)
}
