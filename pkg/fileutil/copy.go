package fileutil

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/thoreinstein/agentsync/internal/errors"
)

// CopyPath copies src to dst. Directories are copied recursively, regular
// files byte for byte with their mode, and symlinks are recreated as
// symlinks with the same target rather than followed. dst must not exist.
func CopyPath(src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return errors.Wrapf(err, "stat %s", src)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errors.Wrapf(err, "creating parent of %s", dst)
	}

	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		return copySymlink(src, dst)
	case info.IsDir():
		return CopyDir(src, dst)
	default:
		return CopyFile(src, dst)
	}
}

// CopyDir recursively copies the directory src to dst, creating dst.
func CopyDir(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return errors.Wrapf(err, "stat %s", src)
	}
	if err := os.MkdirAll(dst, info.Mode().Perm()|0o700); err != nil {
		return errors.Wrapf(err, "creating directory %s", dst)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return errors.Wrapf(err, "reading directory %s", src)
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		switch {
		case entry.Type()&fs.ModeSymlink != 0:
			if err := copySymlink(srcPath, dstPath); err != nil {
				return err
			}
		case entry.IsDir():
			if err := CopyDir(srcPath, dstPath); err != nil {
				return err
			}
		default:
			if err := CopyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
	}

	return nil
}

// CopyFile copies a single regular file from src to dst, keeping its mode.
func CopyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "opening source file %s", src)
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return errors.Wrapf(err, "stating source file %s", src)
	}

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return errors.Wrapf(err, "creating destination file %s", dst)
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return errors.Wrapf(err, "copying %s to %s", src, dst)
	}

	if err := dstFile.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", dst)
	}

	// OpenFile honours umask; force the recorded bits.
	return errors.Wrapf(os.Chmod(dst, srcInfo.Mode().Perm()), "setting permissions on %s", dst)
}

func copySymlink(src, dst string) error {
	target, err := os.Readlink(src)
	if err != nil {
		return errors.Wrapf(err, "reading link %s", src)
	}
	return errors.Wrapf(os.Symlink(target, dst), "recreating link %s", dst)
}

// Exists reports whether something (including a dangling symlink) exists at path.
func Exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Wrapf(err, "stat %s", path)
}
