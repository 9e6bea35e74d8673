package provider

import (
	"maps"
	"path/filepath"
	"slices"

	"github.com/thoreinstein/agentsync/internal/configfile"
	"github.com/thoreinstein/agentsync/internal/errors"
	"github.com/thoreinstein/agentsync/internal/mcp"
)

// Scope selects which copy of a provider's configuration is targeted.
type Scope string

// Scope values.
const (
	ScopeProject Scope = "project"
	ScopeGlobal  Scope = "global"
)

// ParseScope validates a user-supplied scope. Empty means project.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case "", ScopeProject:
		return ScopeProject, nil
	case ScopeGlobal:
		return ScopeGlobal, nil
	default:
		return "", errors.Validationf("invalid scope %q (valid: project, global)", s)
	}
}

// SkillScope maps the boolean global flag of a skill operation to a Scope.
func SkillScope(global bool) Scope {
	if global {
		return ScopeGlobal
	}
	return ScopeProject
}

// ScopeConfig locates a provider's configuration for one scope.
//
// Relative paths are resolved against the project directory for
// ScopeProject and against the provider's ConfigDir for ScopeGlobal.
type ScopeConfig struct {
	// ConfigPath is the file holding MCP server entries.
	ConfigPath string

	// Format is the encoding of ConfigPath.
	Format configfile.Format

	// Key is the (possibly dotted) section holding server entries.
	Key string

	// SkillDir is the directory skills are linked into. Empty means the
	// provider has no skills support for this scope.
	SkillDir string
}

// Provider is an AI coding assistant whose configuration agentsync edits.
// A Provider is not modified once built.
type Provider struct {
	// ID is the stable identifier used in flags, plans, and results.
	ID string

	// DisplayName is the human-readable product name.
	DisplayName string

	// Priority ranks the provider for batch selection.
	Priority Priority

	// ConfigDir is the provider's global configuration directory. It is
	// the base for relative global paths and the installation marker.
	ConfigDir string

	// Scopes holds the per-scope locations. A missing key means the
	// provider has no configuration for that scope.
	Scopes map[Scope]ScopeConfig

	// Transports lists the MCP transports the provider can run.
	Transports []mcp.Transport

	// SupportsHeaders reports whether remote servers may carry headers.
	SupportsHeaders bool
}

// ScopeConfig returns the configuration for scope, or a validation error
// when the provider has none.
func (p *Provider) ScopeConfig(scope Scope) (ScopeConfig, error) {
	sc, ok := p.Scopes[scope]
	if !ok {
		return ScopeConfig{}, errors.Validationf("provider %s has no %s scope", p.ID, scope)
	}
	return sc, nil
}

// HasScope reports whether the provider is configurable at scope.
func (p *Provider) HasScope(scope Scope) bool {
	_, ok := p.Scopes[scope]
	return ok
}

// ConfigPath returns the absolute MCP config path for scope.
func (p *Provider) ConfigPath(scope Scope, projectDir string) (string, error) {
	sc, err := p.ScopeConfig(scope)
	if err != nil {
		return "", err
	}
	return p.resolve(sc.ConfigPath, scope, projectDir)
}

// SkillDir returns the absolute skills directory for scope, or "" when the
// provider does not support skills there.
func (p *Provider) SkillDir(scope Scope, projectDir string) (string, error) {
	sc, ok := p.Scopes[scope]
	if !ok || sc.SkillDir == "" {
		return "", nil
	}
	return p.resolve(sc.SkillDir, scope, projectDir)
}

// SupportsTransport reports whether t is in the provider's transport set.
func (p *Provider) SupportsTransport(t mcp.Transport) bool {
	return slices.Contains(p.Transports, t)
}

// WithConfigDir returns a copy of p whose global base directory is dir.
// Relative global paths move with it.
func (p *Provider) WithConfigDir(dir string) *Provider {
	c := *p
	c.ConfigDir = dir
	c.Scopes = maps.Clone(p.Scopes)
	c.Transports = slices.Clone(p.Transports)
	return &c
}

func (p *Provider) resolve(path string, scope Scope, projectDir string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	base := p.ConfigDir
	if scope == ScopeProject {
		if projectDir == "" {
			return "", errors.Validationf("provider %s: project scope requires a project directory", p.ID)
		}
		base = projectDir
	}
	abs, err := filepath.Abs(filepath.Join(base, path))
	if err != nil {
		return "", errors.Wrapf(err, "resolving %s for %s", path, p.ID)
	}
	return abs, nil
}
