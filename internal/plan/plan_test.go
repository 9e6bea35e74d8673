package plan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/agentsync/internal/errors"
	"github.com/thoreinstein/agentsync/internal/mcp"
	"github.com/thoreinstein/agentsync/internal/provider"
)

const yamlPlan = `providers: [claude, opencode]
minimum_priority: medium
mcp:
  - name: github
    scope: global
    server:
      command: npx
      args: [-y, "@modelcontextprotocol/server-github"]
      env:
        GITHUB_TOKEN: ${GITHUB_TOKEN}
skills:
  - name: review
    source: ./skills/review
    global: false
`

const tomlPlan = `providers = ["codex"]

[[mcp]]
name = "docs"

[mcp.server]
transport = "http"
url = "https://docs.example.com/mcp"

[[skills]]
name = "review"
source = "/abs/review"
`

const jsonPlan = `{
  // comments are allowed
  "mcp": [{"name": "remote", "server": {"url": "https://x.example.com/sse"}}],
}`

func writePlan(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := writePlan(t, "plan.yaml", yamlPlan)

	p, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, p.Validate())

	assert.Equal(t, []string{"claude", "opencode"}, p.Providers)
	assert.Equal(t, "medium", p.MinimumPriority)
	require.Len(t, p.MCP, 1)
	assert.Equal(t, "github", p.MCP[0].ServerName)
	assert.Equal(t, provider.ScopeGlobal, p.MCP[0].TargetScope())
	assert.Equal(t, mcp.TransportStdio, p.MCP[0].Server.ResolvedTransport())
	assert.Equal(t, "${GITHUB_TOKEN}", p.MCP[0].Server.Env["GITHUB_TOKEN"])

	require.Len(t, p.Skills, 1)
	assert.False(t, p.Skills[0].IsGlobal())
	assert.Equal(t, filepath.Join(filepath.Dir(path), "skills", "review"), p.Skills[0].SourcePath)
}

func TestLoad_TOML(t *testing.T) {
	p, err := Load(writePlan(t, "plan.toml", tomlPlan))
	require.NoError(t, err)
	require.NoError(t, p.Validate())

	assert.Equal(t, provider.ScopeProject, p.MCP[0].TargetScope())
	assert.Equal(t, mcp.TransportHTTP, p.MCP[0].Server.Transport)
	assert.True(t, p.Skills[0].IsGlobal())
	assert.Equal(t, "/abs/review", p.Skills[0].SourcePath)
}

func TestLoad_JSONWithComments(t *testing.T) {
	p, err := Load(writePlan(t, "plan.json", jsonPlan))
	require.NoError(t, err)
	require.NoError(t, p.Validate())
	assert.Equal(t, mcp.TransportSSE, p.MCP[0].Server.ResolvedTransport())
}

func TestLoad_UnknownField(t *testing.T) {
	_, err := Load(writePlan(t, "plan.yaml", "mcp: []\nskils: []\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	stdio := &mcp.Server{Command: "npx"}

	tests := []struct {
		name    string
		plan    Plan
		wantMsg string
	}{
		{
			name:    "empty plan",
			plan:    Plan{},
			wantMsg: "no operations",
		},
		{
			name:    "bad priority",
			plan:    Plan{MinimumPriority: "urgent", MCP: []MCPOperation{{ServerName: "a", Server: stdio}}},
			wantMsg: "invalid priority",
		},
		{
			name:    "missing server",
			plan:    Plan{MCP: []MCPOperation{{ServerName: "a"}}},
			wantMsg: "server is required",
		},
		{
			name:    "bad scope",
			plan:    Plan{MCP: []MCPOperation{{ServerName: "a", Scope: "user", Server: stdio}}},
			wantMsg: "invalid scope",
		},
		{
			name: "duplicate server in scope",
			plan: Plan{MCP: []MCPOperation{
				{ServerName: "a", Server: stdio},
				{ServerName: "a", Scope: provider.ScopeProject, Server: stdio},
			}},
			wantMsg: "already targeted",
		},
		{
			name: "duplicate skill",
			plan: Plan{Skills: []SkillOperation{
				{SkillName: "review", SourcePath: "/a"},
				{SkillName: "review", SourcePath: "/b"},
			}},
			wantMsg: "already targeted",
		},
		{
			name:    "bad skill name",
			plan:    Plan{Skills: []SkillOperation{{SkillName: "Review", SourcePath: "/a"}}},
			wantMsg: "lowercase",
		},
		{
			name:    "missing source",
			plan:    Plan{Skills: []SkillOperation{{SkillName: "review"}}},
			wantMsg: "source is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.plan.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrValidation))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestValidate_SameNameDifferentScopes(t *testing.T) {
	global := false
	p := Plan{
		MCP: []MCPOperation{
			{ServerName: "a", Server: &mcp.Server{Command: "x"}},
			{ServerName: "a", Scope: provider.ScopeGlobal, Server: &mcp.Server{Command: "x"}},
		},
		Skills: []SkillOperation{
			{SkillName: "review", SourcePath: "/a"},
			{SkillName: "review", SourcePath: "/a", Global: &global},
		},
	}
	assert.NoError(t, p.Validate())
}
