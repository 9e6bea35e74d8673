// Package plan defines batch operations and loads them from plan files.
//
// A plan file is YAML, JSON, or TOML:
//
//	providers: [claude, opencode]
//	minimum_priority: medium
//	mcp:
//	  - name: github
//	    scope: project
//	    server:
//	      command: npx
//	      args: [-y, "@modelcontextprotocol/server-github"]
//	skills:
//	  - name: review
//	    source: ./skills/review
//	    global: false
package plan

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/agentsync/internal/configfile"
	"github.com/thoreinstein/agentsync/internal/errors"
	"github.com/thoreinstein/agentsync/internal/mcp"
	"github.com/thoreinstein/agentsync/internal/provider"
	"github.com/thoreinstein/agentsync/pkg/fileutil"
)

// MCPOperation installs one server into every targeted provider.
type MCPOperation struct {
	// ServerName is the key the server is stored under.
	ServerName string `json:"name" yaml:"name" toml:"name"`

	// Scope selects the provider config. Empty means project.
	Scope provider.Scope `json:"scope,omitempty" yaml:"scope,omitempty" toml:"scope,omitempty"`

	Server *mcp.Server `json:"server" yaml:"server" toml:"server"`
}

// TargetScope returns the scope with the default applied.
func (o MCPOperation) TargetScope() provider.Scope {
	if o.Scope == "" {
		return provider.ScopeProject
	}
	return o.Scope
}

// SkillOperation installs one skill into every targeted provider.
type SkillOperation struct {
	// SkillName is the installed directory name.
	SkillName string `json:"name" yaml:"name" toml:"name"`

	// SourcePath is the directory holding SKILL.md.
	SourcePath string `json:"source" yaml:"source" toml:"source"`

	// Global selects global storage. Nil means true.
	Global *bool `json:"global,omitempty" yaml:"global,omitempty" toml:"global,omitempty"`
}

// IsGlobal returns Global with the default applied.
func (o SkillOperation) IsGlobal() bool {
	return o.Global == nil || *o.Global
}

// Plan is a batch of operations.
type Plan struct {
	Providers       []string         `json:"providers,omitempty" yaml:"providers,omitempty" toml:"providers,omitempty"`
	MinimumPriority string           `json:"minimum_priority,omitempty" yaml:"minimum_priority,omitempty" toml:"minimum_priority,omitempty"`
	MCP             []MCPOperation   `json:"mcp,omitempty" yaml:"mcp,omitempty" toml:"mcp,omitempty"`
	Skills          []SkillOperation `json:"skills,omitempty" yaml:"skills,omitempty" toml:"skills,omitempty"`
}

// Load reads the plan at path, choosing the decoder by extension. Unknown
// fields are rejected. Relative skill sources are resolved against the
// plan's directory.
func Load(path string) (*Plan, error) {
	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading plan %s", path)
	}

	p, err := Parse(data, configfile.FormatForPath(path))
	if err != nil {
		return nil, errors.Wrapf(err, "parsing plan %s", path)
	}

	base := filepath.Dir(path)
	for i := range p.Skills {
		src := p.Skills[i].SourcePath
		if src != "" && !filepath.IsAbs(src) {
			p.Skills[i].SourcePath = filepath.Join(base, src)
		}
	}
	return p, nil
}

// Parse decodes a plan document.
func Parse(data []byte, format configfile.Format) (*Plan, error) {
	var p Plan
	var err error

	switch format {
	case configfile.FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&p)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	case configfile.FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&p)
	case configfile.FormatJSON, configfile.FormatJSONC:
		if data, err = hujson.Standardize(data); err != nil {
			break
		}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&p)
	default:
		err = errors.Wrapf(configfile.ErrUnsupportedFormat, "%q", string(format))
	}
	if err != nil {
		return nil, errors.Mark(err, errors.ErrValidation)
	}
	return &p, nil
}
