package conflict

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/agentsync/internal/configfile"
	"github.com/thoreinstein/agentsync/internal/errors"
	"github.com/thoreinstein/agentsync/internal/mcp"
	"github.com/thoreinstein/agentsync/internal/plan"
	"github.com/thoreinstein/agentsync/internal/provider"
	"github.com/thoreinstein/agentsync/internal/transform"
)

func testProvider(id string, transports ...mcp.Transport) *provider.Provider {
	return &provider.Provider{
		ID:       id,
		Priority: provider.PriorityHigh,
		Scopes: map[provider.Scope]provider.ScopeConfig{
			provider.ScopeProject: {ConfigPath: id + ".json", Format: configfile.FormatJSON, Key: "mcpServers"},
		},
		Transports:      transports,
		SupportsHeaders: true,
	}
}

func newDetector(t *testing.T) *Detector {
	t.Helper()
	return &Detector{Transforms: transform.Default(), ProjectDir: t.TempDir()}
}

func TestDetect_UnsupportedTransport(t *testing.T) {
	d := newDetector(t)
	p1 := testProvider("p1", mcp.TransportStdio, mcp.TransportSSE)
	p2 := testProvider("p2", mcp.TransportStdio)
	ops := []plan.MCPOperation{{ServerName: "remote", Server: &mcp.Server{URL: "https://example.com/sse"}}}

	got, err := d.Detect([]*provider.Provider{p1, p2}, ops)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p2", got[0].ProviderID)
	assert.Equal(t, CodeUnsupportedTransport, got[0].Code)
	assert.Equal(t, "remote", got[0].ServerName)
	assert.Equal(t, provider.ScopeProject, got[0].Scope)
}

func TestDetect_UnsupportedHeaders(t *testing.T) {
	d := newDetector(t)
	p := testProvider("p1", mcp.TransportSSE)
	p.SupportsHeaders = false
	ops := []plan.MCPOperation{{
		ServerName: "remote",
		Server:     &mcp.Server{URL: "https://example.com", Headers: map[string]string{"Authorization": "x"}},
	}}

	got, err := d.Detect([]*provider.Provider{p}, ops)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, CodeUnsupportedHeaders, got[0].Code)
}

func TestDetect_ExistingEntry(t *testing.T) {
	server := &mcp.Server{Command: "npx", Args: []string{"-y", "pkg"}}

	tests := []struct {
		name     string
		existing map[string]any
		want     bool
	}{
		{
			name:     "identical entry",
			existing: map[string]any{"type": "stdio", "command": "npx", "args": []any{"-y", "pkg"}},
		},
		{
			name:     "different args",
			existing: map[string]any{"type": "stdio", "command": "npx", "args": []any{"pkg", "-y"}},
			want:     true,
		},
		{
			name:     "extra field",
			existing: map[string]any{"type": "stdio", "command": "npx", "args": []any{"-y", "pkg"}, "env": map[string]any{"A": "1"}},
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDetector(t)
			p := testProvider("p1", mcp.TransportStdio)
			path := filepath.Join(d.ProjectDir, "p1.json")
			require.NoError(t, configfile.Write(path, configfile.FormatJSON, "mcpServers", "github", tt.existing))

			got, err := d.Detect([]*provider.Provider{p}, []plan.MCPOperation{{ServerName: "github", Server: server}})
			require.NoError(t, err)
			if !tt.want {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, 1)
			assert.Equal(t, CodeExistingMismatch, got[0].Code)
		})
	}
}

func TestDetect_IgnoresSiblingEntries(t *testing.T) {
	d := newDetector(t)
	p := testProvider("p1", mcp.TransportStdio)
	path := filepath.Join(d.ProjectDir, "p1.json")
	content := `{
  "theme": "dark",
  "mcpServers": {
    "other": {"command": "something-else"},
    "github": {"args": ["-y", "pkg"], "command": "npx", "type": "stdio"}
  }
}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	ops := []plan.MCPOperation{{ServerName: "github", Server: &mcp.Server{Command: "npx", Args: []string{"-y", "pkg"}}}}
	got, err := d.Detect([]*provider.Provider{p}, ops)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDetect_OrderIndependent(t *testing.T) {
	d := newDetector(t)
	a := testProvider("a", mcp.TransportStdio)
	b := testProvider("b", mcp.TransportStdio)
	c := testProvider("c", mcp.TransportStdio, mcp.TransportSSE)
	ops := []plan.MCPOperation{
		{ServerName: "remote", Server: &mcp.Server{URL: "https://example.com"}},
		{ServerName: "api", Server: &mcp.Server{Transport: mcp.TransportHTTP, URL: "https://example.com/mcp"}},
	}

	first, err := d.Detect([]*provider.Provider{a, b, c}, ops)
	require.NoError(t, err)
	second, err := d.Detect([]*provider.Provider{c, b, a}, []plan.MCPOperation{ops[1], ops[0]})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, first, 5)
	assert.Equal(t, "a", first[0].ProviderID)
	assert.Equal(t, "api", first[0].ServerName)
	assert.Equal(t, "c", first[4].ProviderID)
}

func TestDetect_Errors(t *testing.T) {
	d := newDetector(t)

	t.Run("missing scope", func(t *testing.T) {
		p := testProvider("p1", mcp.TransportStdio)
		ops := []plan.MCPOperation{{ServerName: "s", Scope: provider.ScopeGlobal, Server: &mcp.Server{Command: "x"}}}
		_, err := d.Detect([]*provider.Provider{p}, ops)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrValidation))
	})

	t.Run("malformed config", func(t *testing.T) {
		p := testProvider("broken", mcp.TransportStdio)
		path := filepath.Join(d.ProjectDir, "broken.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

		ops := []plan.MCPOperation{{ServerName: "s", Server: &mcp.Server{Command: "x"}}}
		_, err := d.Detect([]*provider.Provider{p}, ops)
		require.Error(t, err)
		assert.Contains(t, err.Error(), path)
	})
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"key order", map[string]any{"a": 1, "b": 2}, map[string]any{"b": 2, "a": 1}, true},
		{"int and float", map[string]any{"n": 1}, map[string]any{"n": 1.0}, true},
		{"array order", []any{"x", "y"}, []any{"y", "x"}, false},
		{"string slice", []string{"x"}, []any{"x"}, true},
		{"nested", map[string]any{"e": map[string]string{"K": "v"}}, map[string]any{"e": map[string]any{"K": "v"}}, true},
		{"missing key", map[string]any{"a": 1}, map[string]any{"a": 1, "b": nil}, false},
		{"type differs", map[string]any{"a": "1"}, map[string]any{"a": 1}, false},
		{"yaml map", map[any]any{"a": true}, map[string]any{"a": true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Equal(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
