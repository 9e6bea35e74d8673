//go:build !windows

package fileutil

import "github.com/thoreinstein/agentsync/internal/errors"

func junction(_, _ string) error {
	return errors.New("directory junctions are only available on windows")
}
