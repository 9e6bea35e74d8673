// Package policy installs MCP servers pair by pair, deciding per
// (provider, server) what to do about detected conflicts.
//
// Unlike package batch, nothing here is captured or rolled back. Each
// install stands on its own.
package policy

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/thoreinstein/agentsync/internal/conflict"
	"github.com/thoreinstein/agentsync/internal/errors"
	"github.com/thoreinstein/agentsync/internal/logging"
	"github.com/thoreinstein/agentsync/internal/mcp"
	"github.com/thoreinstein/agentsync/internal/plan"
	"github.com/thoreinstein/agentsync/internal/provider"
)

// Policy selects how conflicts are handled.
type Policy string

// Policy values.
const (
	// Fail installs nothing when any conflict exists.
	Fail Policy = "fail"

	// Skip installs every pair without a conflict.
	Skip Policy = "skip"

	// Overwrite installs every pair; conflicts are reported only.
	Overwrite Policy = "overwrite"
)

// Policies returns the accepted policies.
func Policies() []Policy {
	return []Policy{Fail, Skip, Overwrite}
}

// ParsePolicy validates user input. Empty means Fail.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return Fail, nil
	case Fail, Skip, Overwrite:
		return p, nil
	default:
		return "", errors.Validationf("invalid conflict policy %q (valid: %s)", s, joinPolicies())
	}
}

func joinPolicies() string {
	names := make([]string, 0, 3)
	for _, p := range Policies() {
		names = append(names, string(p))
	}
	return strings.Join(names, ", ")
}

// MCPInstaller writes one server entry into one provider config.
type MCPInstaller interface {
	InstallMCP(p *provider.Provider, scope provider.Scope, name string, server *mcp.Server) mcp.InstallOutcome
}

// Skipped records a pair that was not installed because of a conflict.
type Skipped struct {
	ProviderID string         `json:"provider"`
	ServerName string         `json:"server"`
	Scope      provider.Scope `json:"scope"`
	Code       conflict.Code  `json:"code"`
}

// Result reports what an Apply call did.
type Result struct {
	// Conflicts is the full conflict set, computed before anything is
	// installed.
	Conflicts []conflict.Conflict `json:"conflicts"`

	Applied []mcp.InstallOutcome `json:"applied"`
	Skipped []Skipped            `json:"skipped"`
}

// Failed reports whether any attempted install failed.
func (r *Result) Failed() bool {
	for _, o := range r.Applied {
		if !o.Success {
			return true
		}
	}
	return false
}

// Applier installs servers according to a Policy.
type Applier struct {
	Detector *conflict.Detector
	MCP      MCPInstaller
	Logger   *slog.Logger
}

// Apply detects conflicts for every (provider, operation) pair, then
// installs pairs as policy allows. An install failure is recorded in
// Applied and does not stop later pairs. A detection error is returned
// before anything is installed.
//
// ctx is checked before each install; on cancellation the partial result
// is returned with the context error.
func (a *Applier) Apply(ctx context.Context, providers []*provider.Provider, ops []plan.MCPOperation, policy Policy) (*Result, error) {
	logger := logging.OrDiscard(a.Logger).With("policy", policy)

	switch policy {
	case Fail, Skip, Overwrite:
	default:
		return nil, errors.Validationf("invalid conflict policy %q", policy)
	}
	if err := plan.ValidateMCP(ops); err != nil {
		return nil, err
	}

	conflicts, err := a.Detector.Detect(providers, ops)
	if err != nil {
		return nil, errors.Wrap(err, "detecting conflicts")
	}
	res := &Result{
		Conflicts: conflicts,
		Applied:   []mcp.InstallOutcome{},
		Skipped:   []Skipped{},
	}
	logger.Debug("conflicts detected", "count", len(conflicts))

	if policy == Fail && len(conflicts) > 0 {
		return res, nil
	}

	// First conflict per pair; conflicts are sorted by code within a pair.
	first := make(map[conflict.PairKey]conflict.Code, len(conflicts))
	for _, c := range conflicts {
		if _, ok := first[c.Key()]; !ok {
			first[c.Key()] = c.Code
		}
	}

	for _, op := range ops {
		scope := op.TargetScope()
		for _, p := range providers {
			key := conflict.PairKey{ProviderID: p.ID, ServerName: op.ServerName, Scope: scope}
			if code, ok := first[key]; ok && policy == Skip {
				res.Skipped = append(res.Skipped, Skipped{ProviderID: p.ID, ServerName: op.ServerName, Scope: scope, Code: code})
				logger.Debug("pair skipped", "provider", p.ID, "server", op.ServerName, "code", code)
				continue
			}
			if err := ctx.Err(); err != nil {
				return res, errors.Wrap(err, "apply interrupted")
			}
			out := a.MCP.InstallMCP(p, scope, op.ServerName, op.Server)
			res.Applied = append(res.Applied, out)
			if !out.Success {
				logger.Warn("install failed", "provider", p.ID, "server", op.ServerName, "error", out.Error)
			}
		}
	}
	return res, nil
}

// Summary returns a one-line description of r.
func (r *Result) Summary() string {
	ok := 0
	for _, o := range r.Applied {
		if o.Success {
			ok++
		}
	}
	return fmt.Sprintf("%d installed, %d failed, %d skipped, %d conflicts",
		ok, len(r.Applied)-ok, len(r.Skipped), len(r.Conflicts))
}
