package provider

import (
	"path/filepath"

	"github.com/thoreinstein/agentsync/internal/configfile"
	"github.com/thoreinstein/agentsync/internal/mcp"
)

// Provider identifiers for the built-in catalog.
const (
	IDClaude   = "claude"
	IDCursor   = "cursor"
	IDOpenCode = "opencode"
	IDCodex    = "codex"
	IDGemini   = "gemini"
	IDVSCode   = "vscode"
	IDWindsurf = "windsurf"
	IDGoose    = "goose"
)

var allTransports = []mcp.Transport{mcp.TransportStdio, mcp.TransportSSE, mcp.TransportHTTP}

// Builtins returns the shipped provider catalog with global paths rooted at
// home. The order is fixed and is the order of Registry.All.
func Builtins(home string) []*Provider {
	return []*Provider{
		{
			ID:          IDClaude,
			DisplayName: "Claude Code",
			Priority:    PriorityHigh,
			ConfigDir:   filepath.Join(home, ".claude"),
			Scopes: map[Scope]ScopeConfig{
				ScopeProject: {ConfigPath: ".mcp.json", Format: configfile.FormatJSON, Key: "mcpServers", SkillDir: filepath.Join(".claude", "skills")},
				// MCP servers live in ~/.claude.json, not inside ~/.claude.
				ScopeGlobal: {ConfigPath: filepath.Join(home, ".claude.json"), Format: configfile.FormatJSON, Key: "mcpServers", SkillDir: "skills"},
			},
			Transports:      allTransports,
			SupportsHeaders: true,
		},
		{
			ID:          IDCursor,
			DisplayName: "Cursor",
			Priority:    PriorityHigh,
			ConfigDir:   filepath.Join(home, ".cursor"),
			Scopes: map[Scope]ScopeConfig{
				ScopeProject: {ConfigPath: filepath.Join(".cursor", "mcp.json"), Format: configfile.FormatJSON, Key: "mcpServers", SkillDir: filepath.Join(".cursor", "skills")},
				ScopeGlobal:  {ConfigPath: "mcp.json", Format: configfile.FormatJSON, Key: "mcpServers", SkillDir: "skills"},
			},
			Transports:      allTransports,
			SupportsHeaders: true,
		},
		{
			ID:          IDOpenCode,
			DisplayName: "OpenCode",
			Priority:    PriorityMedium,
			ConfigDir:   filepath.Join(home, ".config", "opencode"),
			Scopes: map[Scope]ScopeConfig{
				ScopeProject: {ConfigPath: "opencode.jsonc", Format: configfile.FormatJSONC, Key: "mcp", SkillDir: filepath.Join(".opencode", "skills")},
				ScopeGlobal:  {ConfigPath: "opencode.jsonc", Format: configfile.FormatJSONC, Key: "mcp", SkillDir: "skills"},
			},
			Transports:      allTransports,
			SupportsHeaders: true,
		},
		{
			ID:          IDCodex,
			DisplayName: "Codex CLI",
			Priority:    PriorityMedium,
			ConfigDir:   filepath.Join(home, ".codex"),
			Scopes: map[Scope]ScopeConfig{
				ScopeProject: {ConfigPath: filepath.Join(".codex", "config.toml"), Format: configfile.FormatTOML, Key: "mcp_servers", SkillDir: filepath.Join(".codex", "skills")},
				ScopeGlobal:  {ConfigPath: "config.toml", Format: configfile.FormatTOML, Key: "mcp_servers", SkillDir: "skills"},
			},
			Transports: []mcp.Transport{mcp.TransportStdio},
		},
		{
			ID:          IDGemini,
			DisplayName: "Gemini CLI",
			Priority:    PriorityMedium,
			ConfigDir:   filepath.Join(home, ".gemini"),
			Scopes: map[Scope]ScopeConfig{
				ScopeProject: {ConfigPath: filepath.Join(".gemini", "settings.json"), Format: configfile.FormatJSON, Key: "mcpServers", SkillDir: filepath.Join(".gemini", "skills")},
				ScopeGlobal:  {ConfigPath: "settings.json", Format: configfile.FormatJSON, Key: "mcpServers", SkillDir: "skills"},
			},
			Transports:      allTransports,
			SupportsHeaders: true,
		},
		{
			ID:          IDVSCode,
			DisplayName: "VS Code",
			Priority:    PriorityMedium,
			ConfigDir:   filepath.Join(home, ".vscode"),
			Scopes: map[Scope]ScopeConfig{
				ScopeProject: {ConfigPath: filepath.Join(".vscode", "mcp.json"), Format: configfile.FormatJSONC, Key: "servers"},
			},
			Transports:      allTransports,
			SupportsHeaders: true,
		},
		{
			ID:          IDWindsurf,
			DisplayName: "Windsurf",
			Priority:    PriorityLow,
			ConfigDir:   filepath.Join(home, ".codeium", "windsurf"),
			Scopes: map[Scope]ScopeConfig{
				ScopeGlobal: {ConfigPath: "mcp_config.json", Format: configfile.FormatJSON, Key: "mcpServers"},
			},
			Transports:      []mcp.Transport{mcp.TransportStdio, mcp.TransportSSE},
			SupportsHeaders: true,
		},
		{
			ID:          IDGoose,
			DisplayName: "Goose",
			Priority:    PriorityLow,
			ConfigDir:   filepath.Join(home, ".config", "goose"),
			Scopes: map[Scope]ScopeConfig{
				ScopeGlobal: {ConfigPath: "config.yaml", Format: configfile.FormatYAML, Key: "extensions"},
			},
			Transports: []mcp.Transport{mcp.TransportStdio, mcp.TransportSSE},
		},
	}
}
