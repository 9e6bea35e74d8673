// Package provider describes the AI coding assistants agentsync can install
// into: where each keeps its MCP config for project and global scope, the
// config format and section key, where it looks for skills, and which MCP
// transports it understands.
//
// Providers are plain values. [Builtins] returns the shipped catalog,
// [Registry] indexes a set of providers by id, and [SelectByPriority] picks
// the subset a batch targets.
package provider
