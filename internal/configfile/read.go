package configfile

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/agentsync/internal/errors"
)

// Reader looks up a single named entry in a config file.
type Reader interface {
	ReadEntry(path string, format Format, key, name string) (any, bool, error)
}

// Writer merges a single named entry into a config file.
type Writer interface {
	Write(path string, format Format, key, name string, value any) error
}

// Files is the on-disk Reader and Writer.
type Files struct{}

// ReadEntry implements Reader.
func (Files) ReadEntry(path string, format Format, key, name string) (any, bool, error) {
	return ReadEntry(path, format, key, name)
}

// Write implements Writer.
func (Files) Write(path string, format Format, key, name string, value any) error {
	return Write(path, format, key, name, value)
}

// Read decodes the config file at path. A missing or blank file yields an
// empty map. Values are in their decoder's native types; use Normalize
// before comparing values across formats.
func Read(path string, format Format) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	doc, err := decode(data, format)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return doc, nil
}

// ReadEntry returns the entry called name inside the section key (dotted
// for nested sections). Missing file, section, or entry reports false
// without error.
func ReadEntry(path string, format Format, key, name string) (any, bool, error) {
	parts, err := splitKey(key)
	if err != nil {
		return nil, false, err
	}

	doc, err := Read(path, format)
	if err != nil {
		return nil, false, err
	}

	section, ok := lookup(doc, parts)
	if !ok {
		return nil, false, nil
	}
	entry, ok := section[name]
	return entry, ok, nil
}

func decode(data []byte, format Format) (map[string]any, error) {
	doc := map[string]any{}
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}

	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	case FormatJSONC:
		std, err := hujson.Standardize(data)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(std, &doc); err != nil {
			return nil, err
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%q", string(format))
	}

	// A document consisting only of "null" decodes to a nil map.
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

// lookup walks parts through nested maps. A missing or non-map step
// reports false.
func lookup(doc map[string]any, parts []string) (map[string]any, bool) {
	cur := doc
	for _, p := range parts {
		next, ok := asMap(cur[p])
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	default:
		return nil, false
	}
}
