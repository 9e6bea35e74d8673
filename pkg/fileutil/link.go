package fileutil

import (
	"os"
	"path/filepath"

	"github.com/thoreinstein/agentsync/internal/errors"
)

// LinkDir creates a directory link at link pointing to target. On Unix this
// is a symlink. On Windows, where symlinks need elevated privileges, it falls
// back to a directory junction. The parent of link is created if needed.
func LinkDir(target, link string) error {
	if err := os.MkdirAll(filepath.Dir(link), 0o755); err != nil {
		return errors.Wrapf(err, "creating parent of %s", link)
	}
	if err := os.Symlink(target, link); err != nil {
		if jerr := junction(target, link); jerr != nil {
			return errors.Wrapf(errors.Join(err, jerr), "linking %s -> %s", link, target)
		}
	}
	return nil
}
