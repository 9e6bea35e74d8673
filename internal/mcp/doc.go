// Package mcp provides the canonical MCP (Model Context Protocol) server
// configuration that agentsync installs into provider configs.
//
// A [Server] is provider-agnostic. Each provider stores servers in its own
// shape; the translation lives in internal/transform and the write path in
// internal/mcp/installer.
//
// # Transports
//
// Three transports are recognized:
//
//   - [TransportStdio]: a local process launched from Command and Args
//   - [TransportSSE]: a remote server reached over Server-Sent Events
//   - [TransportHTTP]: a remote server reached over streamable HTTP
//
// When Transport is empty it is inferred: stdio when Command is set,
// otherwise sse when URL is set. See [Server.ResolvedTransport].
//
//	server := &mcp.Server{
//	    Command: "npx",
//	    Args:    []string{"-y", "@modelcontextprotocol/server-github"},
//	    Env:     map[string]string{"GITHUB_TOKEN": "${GITHUB_TOKEN}"},
//	}
package mcp
