// Package installer writes canonical MCP servers into provider config files.
package installer

import (
	"log/slog"

	"github.com/thoreinstein/agentsync/internal/configfile"
	"github.com/thoreinstein/agentsync/internal/errors"
	"github.com/thoreinstein/agentsync/internal/logging"
	"github.com/thoreinstein/agentsync/internal/mcp"
	"github.com/thoreinstein/agentsync/internal/provider"
	"github.com/thoreinstein/agentsync/internal/transform"
)

// Installer writes one server entry per call.
type Installer struct {
	// Writer persists entries. Defaults to configfile.Files.
	Writer configfile.Writer

	// Transforms shapes the entry per provider. Nil means canonical.
	Transforms *transform.Registry

	// ProjectDir anchors project-scope config paths.
	ProjectDir string

	Logger *slog.Logger
}

// InstallMCP validates server, shapes it for p, and writes it under name in
// p's config for scope. It never returns an error; failures are reported
// in the outcome.
func (i *Installer) InstallMCP(p *provider.Provider, scope provider.Scope, name string, server *mcp.Server) mcp.InstallOutcome {
	out := mcp.InstallOutcome{
		ProviderID: p.ID,
		ServerName: name,
		Scope:      string(scope),
	}
	logger := logging.OrDiscard(i.Logger).With("provider", p.ID, "server", name, "scope", scope)

	if err := i.install(p, scope, name, server, &out); err != nil {
		out.Error = err.Error()
		logger.Debug("mcp install failed", "error", err)
		return out
	}

	out.Success = true
	logger.Debug("mcp server installed", "path", out.ConfigPath)
	return out
}

func (i *Installer) install(p *provider.Provider, scope provider.Scope, name string, server *mcp.Server, out *mcp.InstallOutcome) error {
	if err := mcp.ValidateName(name); err != nil {
		return err
	}
	if err := server.Validate(); err != nil {
		return err
	}

	sc, err := p.ScopeConfig(scope)
	if err != nil {
		return err
	}
	path, err := p.ConfigPath(scope, i.ProjectDir)
	if err != nil {
		return err
	}
	out.ConfigPath = path

	if t := server.ResolvedTransport(); !p.SupportsTransport(t) {
		return errors.Mark(errors.Newf("%s does not support %s transport", p.ID, t), errors.ErrConflict)
	}
	if server.HasHeaders() && !p.SupportsHeaders {
		return errors.Mark(errors.Newf("%s does not support headers", p.ID), errors.ErrConflict)
	}

	value := i.Transforms.Apply(p.ID, name, server)

	w := i.Writer
	if w == nil {
		w = configfile.Files{}
	}
	return w.Write(path, sc.Format, sc.Key, name, value)
}
