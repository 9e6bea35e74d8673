package configfile

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/agentsync/internal/errors"
	"github.com/thoreinstein/agentsync/pkg/fileutil"
)

// Write stores value under name inside the section key of the config file
// at path, creating the file and any intermediate sections as needed. An
// existing entry with the same name is replaced; sibling entries and other
// top-level settings are preserved.
func Write(path string, format Format, key, name string, value any) error {
	parts, err := splitKey(key)
	if err != nil {
		return err
	}
	if name == "" {
		return errors.New("empty entry name")
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "reading %s", path)
	}

	var out []byte
	switch format {
	case FormatJSON:
		out, err = editJSON(data, parts, name, value)
	case FormatJSONC:
		out, err = editJSONC(data, parts, name, value)
	case FormatYAML:
		out, err = editYAML(data, parts, name, value)
	case FormatTOML:
		out, err = editTOML(data, parts, name, value)
	default:
		err = errors.Wrapf(ErrUnsupportedFormat, "%q", string(format))
	}
	if err != nil {
		return errors.Wrapf(err, "updating %s", path)
	}

	return errors.Wrapf(fileutil.WriteFilePreservingMode(path, out), "writing %s", path)
}

// setEntry places value at parts+name inside doc, creating maps on the way.
func setEntry(doc map[string]any, parts []string, name string, value any) error {
	cur := doc
	for i, p := range parts {
		existing, present := cur[p]
		if !present || existing == nil {
			next := map[string]any{}
			cur[p] = next
			cur = next
			continue
		}
		next, ok := asMap(existing)
		if !ok {
			return errors.Newf("section %q is not an object", strings.Join(parts[:i+1], "."))
		}
		cur[p] = next
		cur = next
	}
	cur[name] = value
	return nil
}

func editJSON(data []byte, parts []string, name string, value any) ([]byte, error) {
	doc, err := decode(data, FormatJSON)
	if err != nil {
		return nil, err
	}
	if err := setEntry(doc, parts, name, value); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, errors.Wrap(err, "encoding JSON")
	}
	return buf.Bytes(), nil
}

// editJSONC patches the parsed hujson tree so comments, trailing commas,
// and the formatting of untouched members survive.
func editJSONC(data []byte, parts []string, name string, value any) ([]byte, error) {
	fresh := len(bytes.TrimSpace(data)) == 0
	if fresh {
		data = []byte("{}")
	}

	root, err := hujson.Parse(data)
	if err != nil {
		return nil, err
	}
	if _, ok := root.Value.(*hujson.Object); !ok {
		return nil, errors.New("top-level value is not an object")
	}

	var ops []patchOp
	pointer := ""
	for i, p := range parts {
		pointer += "/" + escapePointer(p)
		found := root.Find(pointer)
		if found == nil {
			ops = append(ops, patchOp{Op: "add", Path: pointer, Value: map[string]any{}})
			continue
		}
		if _, ok := found.Value.(*hujson.Object); !ok {
			return nil, errors.Newf("section %q is not an object", strings.Join(parts[:i+1], "."))
		}
	}

	entry := pointer + "/" + escapePointer(name)
	op := "add"
	if len(ops) == 0 && root.Find(entry) != nil {
		op = "replace"
	}
	ops = append(ops, patchOp{Op: op, Path: entry, Value: value})

	patch, err := json.Marshal(ops)
	if err != nil {
		return nil, errors.Wrap(err, "encoding patch")
	}
	if err := root.Patch(patch); err != nil {
		return nil, errors.Wrap(err, "applying patch")
	}

	// Only lay out documents we created; existing ones keep their shape.
	if fresh {
		root.Format()
	}
	out := root.Pack()
	if !bytes.HasSuffix(out, []byte("\n")) {
		out = append(out, '\n')
	}
	return out, nil
}

type patchOp struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// escapePointer escapes a JSON Pointer reference token (RFC 6901).
func escapePointer(s string) string {
	s = strings.ReplaceAll(s, "~", "~0")
	return strings.ReplaceAll(s, "/", "~1")
}

// editYAML edits the yaml.v3 node tree so comments survive.
func editYAML(data []byte, parts []string, name string, value any) ([]byte, error) {
	var doc yaml.Node
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	}
	if doc.Kind == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode}
	}
	// A comment-only document has no root node yet.
	if doc.Kind == yaml.DocumentNode && len(doc.Content) == 0 {
		doc.Content = []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, errors.New("top-level value is not a mapping")
	}

	cur := doc.Content[0]
	for i, p := range parts {
		next := mappingValue(cur, p)
		switch {
		case next == nil:
			next = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			cur.Content = append(cur.Content, scalarKey(p), next)
		case next.Kind == yaml.ScalarNode && next.Tag == "!!null":
			*next = yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		case next.Kind != yaml.MappingNode:
			return nil, errors.Newf("section %q is not a mapping", strings.Join(parts[:i+1], "."))
		}
		cur = next
	}

	var encoded yaml.Node
	if err := encoded.Encode(value); err != nil {
		return nil, errors.Wrap(err, "encoding entry")
	}
	if existing := mappingValue(cur, name); existing != nil {
		*existing = encoded
	} else {
		cur.Content = append(cur.Content, scalarKey(name), &encoded)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, errors.Wrap(err, "encoding YAML")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "encoding YAML")
	}
	return buf.Bytes(), nil
}

// mappingValue returns the value node for key in a mapping node, or nil.
func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func scalarKey(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func editTOML(data []byte, parts []string, name string, value any) ([]byte, error) {
	doc, err := decode(data, FormatTOML)
	if err != nil {
		return nil, err
	}
	if err := setEntry(doc, parts, name, value); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(doc); err != nil {
		return nil, errors.Wrap(err, "encoding TOML")
	}
	return buf.Bytes(), nil
}
