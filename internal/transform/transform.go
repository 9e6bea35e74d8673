// Package transform turns a canonical MCP server into the entry shape each
// provider stores in its config file.
//
// The same Func is used to produce the value that gets written and the
// value an existing entry is compared against, so an installed entry and a
// conflict check can never disagree about what "the desired value" is.
package transform

import (
	"maps"

	"github.com/thoreinstein/agentsync/internal/mcp"
	"github.com/thoreinstein/agentsync/internal/provider"
)

// Func maps a named canonical server to a provider's entry value.
type Func func(name string, s *mcp.Server) map[string]any

// Registry maps provider ids to transforms.
type Registry struct {
	funcs map[string]Func
}

// New returns an empty registry; every lookup falls back to Canonical.
func New() *Registry {
	return &Registry{funcs: make(map[string]Func)}
}

// Default returns a registry with the shapes of the built-in providers.
func Default() *Registry {
	r := New()
	r.Register(provider.IDClaude, Claude)
	r.Register(provider.IDCursor, Cursor)
	r.Register(provider.IDGemini, Gemini)
	r.Register(provider.IDOpenCode, OpenCode)
	r.Register(provider.IDCodex, Codex)
	r.Register(provider.IDVSCode, VSCode)
	r.Register(provider.IDWindsurf, Windsurf)
	r.Register(provider.IDGoose, Goose)
	return r
}

// Register sets the transform for id, replacing any previous one.
func (r *Registry) Register(id string, fn Func) {
	r.funcs[id] = fn
}

// Lookup returns the transform for id, or Canonical when none is registered.
func (r *Registry) Lookup(id string) Func {
	if r != nil {
		if fn, ok := r.funcs[id]; ok {
			return fn
		}
	}
	return Canonical
}

// Apply is shorthand for Lookup(id)(name, s).
func (r *Registry) Apply(id, name string, s *mcp.Server) map[string]any {
	return r.Lookup(id)(name, s)
}

// Canonical is the passthrough shape: the canonical fields under their own
// names, with the transport made explicit.
func Canonical(_ string, s *mcp.Server) map[string]any {
	out := map[string]any{"type": string(s.ResolvedTransport())}
	putLocal(out, s, "command", "args", "env")
	putRemote(out, s, "url", "headers")
	if s.Disabled {
		out["disabled"] = true
	}
	return out
}

// Claude writes the .mcp.json / ~/.claude.json shape.
func Claude(name string, s *mcp.Server) map[string]any {
	out := map[string]any{"type": string(s.ResolvedTransport())}
	putLocal(out, s, "command", "args", "env")
	putRemote(out, s, "url", "headers")
	return out
}

// Cursor infers the transport from the fields present, so none is written.
func Cursor(_ string, s *mcp.Server) map[string]any {
	out := map[string]any{}
	putLocal(out, s, "command", "args", "env")
	putRemote(out, s, "url", "headers")
	if s.Disabled {
		out["disabled"] = true
	}
	return out
}

// Gemini distinguishes SSE ("url") from streamable HTTP ("httpUrl").
func Gemini(_ string, s *mcp.Server) map[string]any {
	out := map[string]any{}
	putLocal(out, s, "command", "args", "env")
	if s.ResolvedTransport() == mcp.TransportHTTP {
		putRemote(out, s, "httpUrl", "headers")
	} else {
		putRemote(out, s, "url", "headers")
	}
	return out
}

// OpenCode type constants.
const (
	openCodeLocal  = "local"
	openCodeRemote = "remote"
)

// OpenCode joins command and args into one array, calls env
// "environment", and uses positive "enabled" logic.
func OpenCode(_ string, s *mcp.Server) map[string]any {
	out := map[string]any{"enabled": !s.Disabled}
	if s.IsLocal() {
		out["type"] = openCodeLocal
		command := make([]string, 0, 1+len(s.Args))
		command = append(command, s.Command)
		command = append(command, s.Args...)
		out["command"] = command
		if len(s.Env) > 0 {
			out["environment"] = maps.Clone(s.Env)
		}
		return out
	}
	out["type"] = openCodeRemote
	putRemote(out, s, "url", "headers")
	return out
}

// Codex stores stdio servers only.
func Codex(_ string, s *mcp.Server) map[string]any {
	out := map[string]any{}
	putLocal(out, s, "command", "args", "env")
	return out
}

// VSCode requires an explicit type on every server.
func VSCode(_ string, s *mcp.Server) map[string]any {
	out := map[string]any{"type": string(s.ResolvedTransport())}
	putLocal(out, s, "command", "args", "env")
	putRemote(out, s, "url", "headers")
	return out
}

// Windsurf calls the remote endpoint "serverUrl".
func Windsurf(_ string, s *mcp.Server) map[string]any {
	out := map[string]any{}
	putLocal(out, s, "command", "args", "env")
	putRemote(out, s, "serverUrl", "headers")
	if s.Disabled {
		out["disabled"] = true
	}
	return out
}

// Goose extensions repeat their name and use goose's own field names.
func Goose(name string, s *mcp.Server) map[string]any {
	out := map[string]any{
		"name":    name,
		"enabled": !s.Disabled,
	}
	switch s.ResolvedTransport() {
	case mcp.TransportStdio:
		out["type"] = "stdio"
		putLocal(out, s, "cmd", "args", "envs")
	case mcp.TransportHTTP:
		out["type"] = "streamable_http"
		putRemote(out, s, "uri", "headers")
	default:
		out["type"] = "sse"
		putRemote(out, s, "uri", "headers")
	}
	return out
}

func putLocal(out map[string]any, s *mcp.Server, commandKey, argsKey, envKey string) {
	if s.Command == "" {
		return
	}
	out[commandKey] = s.Command
	if len(s.Args) > 0 {
		out[argsKey] = append([]string(nil), s.Args...)
	}
	if len(s.Env) > 0 {
		out[envKey] = maps.Clone(s.Env)
	}
}

func putRemote(out map[string]any, s *mcp.Server, urlKey, headersKey string) {
	if s.URL == "" {
		return
	}
	out[urlKey] = s.URL
	if len(s.Headers) > 0 {
		out[headersKey] = maps.Clone(s.Headers)
	}
}
