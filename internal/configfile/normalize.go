package configfile

import (
	"encoding/json"
	"fmt"

	"github.com/thoreinstein/agentsync/internal/errors"
)

// Normalize converts a decoded value into the shapes encoding/json produces:
// map[string]any, []any, string, float64, bool, and nil. Values read from
// YAML or TOML and values built in Go compare equal after normalization when
// they would serialize to the same JSON.
func Normalize(v any) (any, error) {
	data, err := json.Marshal(stringKeys(v))
	if err != nil {
		return nil, errors.Wrap(err, "normalizing value")
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrap(err, "normalizing value")
	}
	return out, nil
}

// stringKeys rewrites map[any]any, which encoding/json rejects, into
// map[string]any at every depth.
func stringKeys(v any) any {
	switch t := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = stringKeys(val)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = stringKeys(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = stringKeys(val)
		}
		return out
	default:
		return v
	}
}
