package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"github.com/thoreinstein/agentsync/internal/errors"
)

// AppName is the directory name used under the XDG base directories.
const AppName = "agentsync"

// Sentinel errors for path resolution.
var (
	// ErrHomeDirNotFound indicates the user's home directory could not be determined.
	ErrHomeDirNotFound = errors.New("home directory not found")

	// ErrInvalidPath indicates the provided path is malformed or invalid.
	ErrInvalidPath = errors.New("invalid path")
)

// DefaultDirPerm is the default permission for newly created directories.
const DefaultDirPerm = 0o755

// EnsureDir creates the directory and any necessary parents.
// If perm is 0, DefaultDirPerm is used. It is a no-op when the directory exists.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return os.MkdirAll(path, perm)
}

// Home returns the user's home directory, or "" if it cannot be determined.
// Use ResolveHome for proper error handling.
func Home() string {
	h, _ := ResolveHome()
	return h
}

// ResolveHome returns the user's home directory.
// Returns ErrHomeDirNotFound if the directory cannot be determined.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
	}
	return home, nil
}

// ConfigHome returns the XDG config home directory.
func ConfigHome() string {
	return xdg.ConfigHome
}

// DataHome returns the XDG data home directory.
func DataHome() string {
	return xdg.DataHome
}

// AppConfigDir returns <ConfigHome>/agentsync.
func AppConfigDir() string {
	return filepath.Join(ConfigHome(), AppName)
}

// AppDataDir returns <DataHome>/agentsync, the root of canonical skill storage.
func AppDataDir() string {
	return filepath.Join(DataHome(), AppName)
}

// ExpandHome replaces a leading "~" or "~/" in path with home.
// Other paths are returned unchanged.
func ExpandHome(path, home string) string {
	switch {
	case path == "~":
		return home
	case strings.HasPrefix(path, "~/"), strings.HasPrefix(path, `~\`):
		return filepath.Join(home, path[2:])
	default:
		return path
	}
}

// Resolve turns path into a clean absolute path. "~" is expanded against
// home, and relative paths are joined onto base.
func Resolve(path, home, base string) (string, error) {
	if path == "" || strings.ContainsRune(path, '\x00') {
		return "", errors.Wrapf(ErrInvalidPath, "%q", path)
	}
	path = ExpandHome(path, home)
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(err, "resolving %s", path)
	}
	return abs, nil
}
