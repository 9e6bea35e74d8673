package fileutil

import (
	"io"
	"os"

	"github.com/thoreinstein/agentsync/internal/errors"
)

// MaxFileSize is the default read limit for user-supplied documents such as
// batch plans (1MB).
const MaxFileSize = 1024 * 1024

// ErrFileTooLarge indicates that a file exceeded the read limit.
var ErrFileTooLarge = errors.New("file exceeds maximum size")

// ReadFileWithLimit reads a file of at most MaxFileSize bytes.
func ReadFileWithLimit(path string) ([]byte, error) {
	return ReadFileLimit(path, MaxFileSize)
}

// ReadFileLimit reads a file of at most limit bytes and returns
// ErrFileTooLarge for anything bigger.
func ReadFileLimit(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening file")
	}
	defer f.Close()

	// Fail fast when the size is already known.
	if info, err := f.Stat(); err == nil && info.Size() > limit {
		return nil, errors.Wrapf(ErrFileTooLarge, "%s is %d bytes, limit %d", path, info.Size(), limit)
	}

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, errors.Wrap(err, "reading file")
	}
	if int64(len(data)) > limit {
		return nil, errors.Wrapf(ErrFileTooLarge, "%s exceeds limit %d", path, limit)
	}

	return data, nil
}
