package doctor

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/agentsync/internal/backup"
	"github.com/thoreinstein/agentsync/internal/configfile"
	"github.com/thoreinstein/agentsync/internal/mcp"
	"github.com/thoreinstein/agentsync/internal/provider"
)

type staticCheck struct {
	name   string
	status Severity
}

func (c staticCheck) Name() string     { return c.name }
func (c staticCheck) Category() string { return "test" }
func (c staticCheck) Run() *CheckResult {
	return &CheckResult{Name: c.name, Category: "test", Status: c.status}
}

func TestRunner_Summary(t *testing.T) {
	r := NewRunner(
		staticCheck{"a", SeverityPass},
		staticCheck{"b", SeverityWarning},
	)
	r.AddCheck(staticCheck{"c", SeverityError})

	report := r.Run(context.Background())
	assert.Len(t, report.Results, 3)
	assert.Equal(t, Summary{Passed: 1, Warnings: 1, Errors: 1}, report.Summary)
	assert.True(t, report.HasErrors())
	assert.True(t, report.HasWarnings())
}

func TestRunner_StopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report := NewRunner(staticCheck{"a", SeverityPass}).Run(ctx)
	assert.Empty(t, report.Results)
}

func TestSeverity_JSON(t *testing.T) {
	data, err := json.Marshal(CheckResult{Name: "x", Status: SeverityWarning})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"status":"warning"`)
}

func testProvider(dir string) *provider.Provider {
	return &provider.Provider{
		ID:        "p1",
		Priority:  provider.PriorityHigh,
		ConfigDir: dir,
		Scopes: map[provider.Scope]provider.ScopeConfig{
			provider.ScopeProject: {ConfigPath: "p1.json", Format: configfile.FormatJSON, Key: "mcpServers", SkillDir: "skills"},
			provider.ScopeGlobal:  {ConfigPath: "config.toml", Format: configfile.FormatTOML, Key: "mcp_servers"},
		},
		Transports: []mcp.Transport{mcp.TransportStdio},
	}
}

func TestProviderCheck(t *testing.T) {
	home := t.TempDir()
	missing := testProvider(filepath.Join(home, "missing"))

	res := (&ProviderCheck{Providers: []*provider.Provider{missing}}).Run()
	assert.Equal(t, SeverityWarning, res.Status)

	present := testProvider(home)
	res = (&ProviderCheck{Providers: []*provider.Provider{missing, present}}).Run()
	assert.Equal(t, SeverityPass, res.Status)
	assert.Contains(t, res.Message, "1 of 2")
}

func TestConfigSyntaxCheck(t *testing.T) {
	project := t.TempDir()
	global := t.TempDir()
	p := testProvider(global)

	res := (&ConfigSyntaxCheck{Providers: []*provider.Provider{p}, ProjectDir: project}).Run()
	assert.Equal(t, SeverityInfo, res.Status)

	require.NoError(t, os.WriteFile(filepath.Join(project, "p1.json"), []byte(`{"mcpServers": {}}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(global, "config.toml"), []byte("[mcp_servers\n"), 0o644))

	res = (&ConfigSyntaxCheck{Providers: []*provider.Provider{p}, ProjectDir: project}).Run()
	assert.Equal(t, SeverityError, res.Status)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, filepath.Join(global, "config.toml"), res.Issues[0].Path)
	assert.Equal(t, "p1", res.Issues[0].ProviderID)
}

func TestSecretPermissionCheck(t *testing.T) {
	project := t.TempDir()
	p := testProvider(t.TempDir())
	path := filepath.Join(project, "p1.json")
	content := `{"mcpServers": {"gh": {"command": "gh", "env": {"GITHUB_TOKEN": "abc"}}}}`

	tests := []struct {
		name    string
		content string
		mode    os.FileMode
		want    Severity
	}{
		{"private file", content, 0o600, SeverityPass},
		{"shared file with secret", content, 0o644, SeverityWarning},
		{"shared file without secret", `{"mcpServers": {"gh": {"command": "gh"}}}`, 0o644, SeverityPass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, os.WriteFile(path, []byte(tt.content), tt.mode))
			require.NoError(t, os.Chmod(path, tt.mode))

			res := (&SecretPermissionCheck{Providers: []*provider.Provider{p}, ProjectDir: project}).Run()
			assert.Equal(t, tt.want, res.Status)
			if tt.want == SeverityWarning {
				assert.Contains(t, res.FixHint, "chmod 600")
			}
		})
	}
}

func TestSkillLinkCheck(t *testing.T) {
	project := t.TempDir()
	p := testProvider(t.TempDir())
	skills := filepath.Join(project, "skills")
	require.NoError(t, os.MkdirAll(skills, 0o755))

	target := filepath.Join(t.TempDir(), "review")
	require.NoError(t, os.MkdirAll(target, 0o755))
	require.NoError(t, os.Symlink(target, filepath.Join(skills, "review")))
	require.NoError(t, os.Symlink(filepath.Join(t.TempDir(), "gone"), filepath.Join(skills, "gone")))

	res := (&SkillLinkCheck{Providers: []*provider.Provider{p}, ProjectDir: project}).Run()
	assert.Equal(t, SeverityWarning, res.Status)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, filepath.Join(skills, "gone"), res.Issues[0].Path)
	assert.Contains(t, res.Message, "1 of 2")
}

func TestStaleBackupCheck(t *testing.T) {
	dir := t.TempDir()

	res := (&StaleBackupCheck{Dir: dir}).Run()
	assert.Equal(t, SeverityPass, res.Status)

	root, err := backup.NewRoot(dir, time.Now())
	require.NoError(t, err)

	res = (&StaleBackupCheck{Dir: dir}).Run()
	assert.Equal(t, SeverityWarning, res.Status)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, root.Path(), res.Issues[0].Path)
}
