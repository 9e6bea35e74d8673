package mcp

import (
	"maps"
	"slices"
)

// Transport is the protocol a client uses to talk to an MCP server.
type Transport string

// Transport values.
const (
	// TransportStdio indicates local process communication via stdin/stdout.
	// This is the default transport when a Command is specified.
	TransportStdio Transport = "stdio"

	// TransportSSE indicates remote server communication via Server-Sent Events.
	// This is the default transport when only a URL is specified.
	TransportSSE Transport = "sse"

	// TransportHTTP indicates remote server communication via streamable HTTP.
	TransportHTTP Transport = "http"
)

// Transports returns every known transport in a fixed order.
func Transports() []Transport {
	return []Transport{TransportStdio, TransportSSE, TransportHTTP}
}

// Valid reports whether t is a known transport.
func (t Transport) Valid() bool {
	return slices.Contains(Transports(), t)
}

// Server represents a canonical MCP server configuration. The server's name
// is not part of the value; it is the key the server is stored under.
type Server struct {
	// Transport specifies the communication protocol. Empty means inferred.
	Transport Transport `json:"transport,omitempty" yaml:"transport,omitempty" toml:"transport,omitempty"`

	// Command is the executable for local (stdio) servers.
	Command string `json:"command,omitempty" yaml:"command,omitempty" toml:"command,omitempty"`

	// Args are command-line arguments passed to Command.
	Args []string `json:"args,omitempty" yaml:"args,omitempty" toml:"args,omitempty"`

	// URL is the endpoint for remote servers.
	URL string `json:"url,omitempty" yaml:"url,omitempty" toml:"url,omitempty"`

	// Env contains environment variables passed to the server process.
	Env map[string]string `json:"env,omitempty" yaml:"env,omitempty" toml:"env,omitempty"`

	// Headers contains HTTP headers for remote connections.
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty" toml:"headers,omitempty"`

	// Disabled marks the server as installed but turned off, for providers
	// that support it.
	Disabled bool `json:"disabled,omitempty" yaml:"disabled,omitempty" toml:"disabled,omitempty"`
}

// ResolvedTransport returns the explicit transport, or the inferred one:
// stdio when Command is set, otherwise sse when URL is set. It returns the
// empty string when nothing can be inferred.
func (s *Server) ResolvedTransport() Transport {
	switch {
	case s.Transport != "":
		return s.Transport
	case s.Command != "":
		return TransportStdio
	case s.URL != "":
		return TransportSSE
	default:
		return ""
	}
}

// IsLocal returns true if this server uses the stdio transport.
func (s *Server) IsLocal() bool {
	return s.ResolvedTransport() == TransportStdio
}

// IsRemote returns true if this server uses a network transport.
func (s *Server) IsRemote() bool {
	t := s.ResolvedTransport()
	return t == TransportSSE || t == TransportHTTP
}

// HasHeaders reports whether the server requests any HTTP headers.
func (s *Server) HasHeaders() bool {
	return len(s.Headers) > 0
}

// Clone returns a deep copy of s.
func (s *Server) Clone() *Server {
	if s == nil {
		return nil
	}
	c := *s
	c.Args = slices.Clone(s.Args)
	c.Env = maps.Clone(s.Env)
	c.Headers = maps.Clone(s.Headers)
	return &c
}

// InstallOutcome reports the result of writing one server entry into one
// provider config. Failures are carried in the value rather than returned
// as errors so a caller can keep going.
type InstallOutcome struct {
	ProviderID string `json:"provider"`
	ServerName string `json:"server"`
	Scope      string `json:"scope"`
	ConfigPath string `json:"config_path,omitempty"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}
