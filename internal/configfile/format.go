package configfile

import (
	"path/filepath"
	"strings"

	"github.com/thoreinstein/agentsync/internal/errors"
)

// Format identifies a config file encoding.
type Format string

// Supported formats.
const (
	FormatJSON  Format = "json"
	FormatJSONC Format = "jsonc"
	FormatYAML  Format = "yaml"
	FormatTOML  Format = "toml"
)

// ErrUnsupportedFormat is returned for a Format outside the supported set.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// FormatForPath guesses a format from the file extension. Unknown
// extensions are treated as JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonc", ".json5":
		return FormatJSONC
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

// Valid reports whether f is a supported format.
func (f Format) Valid() bool {
	switch f {
	case FormatJSON, FormatJSONC, FormatYAML, FormatTOML:
		return true
	}
	return false
}

func splitKey(key string) ([]string, error) {
	if key == "" {
		return nil, errors.New("empty section key")
	}
	parts := strings.Split(key, ".")
	for _, p := range parts {
		if p == "" {
			return nil, errors.Newf("malformed section key %q", key)
		}
	}
	return parts, nil
}
