//go:build windows

package fileutil

import (
	"os/exec"
	"path/filepath"

	"github.com/thoreinstein/agentsync/internal/errors"
)

// junction creates an NTFS directory junction, which needs no privileges.
func junction(target, link string) error {
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(link), target)
	}
	out, err := exec.Command("cmd", "/c", "mklink", "/J", link, target).CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "mklink /J: %s", out)
	}
	return nil
}
