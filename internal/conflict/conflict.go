// Package conflict finds the (provider, server) pairs where installing an
// MCP server would fail or would silently change an existing entry.
//
// Detection only reads config files. Its result does not depend on the
// order providers or operations are given in.
package conflict

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/thoreinstein/agentsync/internal/configfile"
	"github.com/thoreinstein/agentsync/internal/errors"
	"github.com/thoreinstein/agentsync/internal/plan"
	"github.com/thoreinstein/agentsync/internal/provider"
	"github.com/thoreinstein/agentsync/internal/transform"
)

// Code classifies a conflict.
type Code string

// Code values.
const (
	// CodeUnsupportedTransport means the provider cannot run the server's transport.
	CodeUnsupportedTransport Code = "unsupported-transport"

	// CodeUnsupportedHeaders means the server needs headers the provider cannot send.
	CodeUnsupportedHeaders Code = "unsupported-headers"

	// CodeExistingMismatch means an entry with the same name already exists
	// with different content.
	CodeExistingMismatch Code = "existing-mismatch"
)

// Conflict is one problem for one (provider, server, scope).
type Conflict struct {
	ProviderID string         `json:"provider"`
	ServerName string         `json:"server"`
	Scope      provider.Scope `json:"scope"`
	Code       Code           `json:"code"`
	Message    string         `json:"message"`
}

// Key identifies the (provider, server, scope) pair a conflict is about.
func (c Conflict) Key() PairKey {
	return PairKey{ProviderID: c.ProviderID, ServerName: c.ServerName, Scope: c.Scope}
}

// PairKey identifies one provider/operation pair.
type PairKey struct {
	ProviderID string
	ServerName string
	Scope      provider.Scope
}

// Detector compares desired servers against provider capabilities and
// existing config entries.
type Detector struct {
	// Reader reads existing entries. Defaults to configfile.Files.
	Reader configfile.Reader

	// Transforms must be the registry the installer writes with.
	Transforms *transform.Registry

	// ProjectDir anchors project-scope config paths.
	ProjectDir string
}

// Detect checks every (provider, operation) pair and returns the conflicts
// sorted by provider, server, scope, and code. A provider without the
// operation's scope is a validation error; an unreadable or malformed
// config file is returned as an error.
func (d *Detector) Detect(providers []*provider.Provider, ops []plan.MCPOperation) ([]Conflict, error) {
	reader := d.Reader
	if reader == nil {
		reader = configfile.Files{}
	}

	conflicts := []Conflict{}
	for _, p := range providers {
		for _, op := range ops {
			c, err := d.check(reader, p, op)
			if err != nil {
				return nil, err
			}
			if c != nil {
				conflicts = append(conflicts, *c)
			}
		}
	}

	slices.SortFunc(conflicts, func(a, b Conflict) int {
		return cmp.Or(
			cmp.Compare(a.ProviderID, b.ProviderID),
			cmp.Compare(a.ServerName, b.ServerName),
			cmp.Compare(a.Scope, b.Scope),
			cmp.Compare(a.Code, b.Code),
		)
	})
	return conflicts, nil
}

func (d *Detector) check(reader configfile.Reader, p *provider.Provider, op plan.MCPOperation) (*Conflict, error) {
	if op.Server == nil {
		return nil, errors.Validationf("server %q has no configuration", op.ServerName)
	}
	scope := op.TargetScope()
	sc, err := p.ScopeConfig(scope)
	if err != nil {
		return nil, err
	}

	newConflict := func(code Code, msg string) *Conflict {
		return &Conflict{ProviderID: p.ID, ServerName: op.ServerName, Scope: scope, Code: code, Message: msg}
	}

	transport := op.Server.ResolvedTransport()
	if !p.SupportsTransport(transport) {
		return newConflict(CodeUnsupportedTransport,
			fmt.Sprintf("%s does not support the %s transport", p.ID, transport)), nil
	}
	if op.Server.HasHeaders() && !p.SupportsHeaders {
		return newConflict(CodeUnsupportedHeaders,
			fmt.Sprintf("%s does not support HTTP headers", p.ID)), nil
	}

	path, err := p.ConfigPath(scope, d.ProjectDir)
	if err != nil {
		return nil, err
	}
	existing, found, err := reader.ReadEntry(path, sc.Format, sc.Key, op.ServerName)
	if err != nil {
		return nil, errors.Wrapf(err, "checking %s", p.ID)
	}
	if !found {
		return nil, nil
	}

	desired := d.Transforms.Apply(p.ID, op.ServerName, op.Server)
	same, err := Equal(existing, desired)
	if err != nil {
		return nil, errors.Wrapf(err, "comparing %s entry in %s", op.ServerName, path)
	}
	if same {
		return nil, nil
	}
	return newConflict(CodeExistingMismatch,
		fmt.Sprintf("%s already has a different %q entry in %s", p.ID, op.ServerName, path)), nil
}

// Equal reports whether a and b are structurally equal once normalized to
// JSON shapes: object keys compare without regard to order, arrays compare
// element by element in order, and numbers compare by value.
func Equal(a, b any) (bool, error) {
	na, err := configfile.Normalize(a)
	if err != nil {
		return false, err
	}
	nb, err := configfile.Normalize(b)
	if err != nil {
		return false, err
	}
	return equalNormalized(na, nb), nil
}

func equalNormalized(a, b any) bool {
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, x := range av {
			y, ok := bv[k]
			if !ok || !equalNormalized(x, y) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !equalNormalized(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		// Scalars after normalization: string, float64, bool, nil.
		return a == b
	}
}
