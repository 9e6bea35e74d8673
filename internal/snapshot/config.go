package snapshot

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/thoreinstein/agentsync/internal/errors"
	"github.com/thoreinstein/agentsync/pkg/fileutil"
)

// ConfigEntry is the captured state of one config file.
type ConfigEntry struct {
	// Path is absolute and clean.
	Path string

	// Existed is false when the file was absent at capture time.
	Existed bool

	// Data is the exact file content when Existed.
	Data []byte

	// Mode holds the permission bits when Existed.
	Mode fs.FileMode
}

// ConfigSnapshot is the captured state of a set of distinct config files,
// in first-seen order.
type ConfigSnapshot struct {
	Entries []ConfigEntry
}

// CaptureConfigs records the current content of every distinct path.
// Paths are made absolute before deduplication, so two spellings of one
// file are captured once. A file that does not exist is recorded as
// absent; any other read failure aborts the capture.
func CaptureConfigs(paths []string) (*ConfigSnapshot, error) {
	snap := &ConfigSnapshot{Entries: make([]ConfigEntry, 0, len(paths))}
	seen := make(map[string]bool, len(paths))

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, errors.Wrapf(err, "resolving %s", p)
		}
		if seen[abs] {
			continue
		}
		seen[abs] = true

		entry, err := captureFile(abs)
		if err != nil {
			return nil, err
		}
		snap.Entries = append(snap.Entries, entry)
	}
	return snap, nil
}

func captureFile(path string) (ConfigEntry, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ConfigEntry{Path: path}, nil
		}
		return ConfigEntry{}, errors.Wrapf(err, "stat %s", path)
	}
	if info.IsDir() {
		return ConfigEntry{}, errors.Newf("config path %s is a directory", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ConfigEntry{}, errors.Wrapf(err, "reading %s", path)
	}
	return ConfigEntry{Path: path, Existed: true, Data: data, Mode: info.Mode().Perm()}, nil
}

// Paths returns the captured paths in order.
func (s *ConfigSnapshot) Paths() []string {
	out := make([]string, len(s.Entries))
	for i, e := range s.Entries {
		out[i] = e.Path
	}
	return out
}

// Restore puts every captured file back: absent files are removed and
// present files are rewritten byte for byte with their recorded mode.
// Every entry is attempted. Restoring twice leaves the same end state.
func (s *ConfigSnapshot) Restore() []error {
	var errs []error
	for _, e := range s.Entries {
		if err := e.restore(); err != nil {
			errs = append(errs, errors.Mark(err, errors.ErrRollbackStep))
		}
	}
	return errs
}

func (e ConfigEntry) restore() error {
	if !e.Existed {
		if err := os.Remove(e.Path); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "removing %s", e.Path)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(e.Path), 0o755); err != nil {
		return errors.Wrapf(err, "recreating parent of %s", e.Path)
	}
	return errors.Wrapf(fileutil.AtomicWriteFile(e.Path, e.Data, e.Mode), "restoring %s", e.Path)
}
