package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/agentsync/internal/batch"
	"github.com/thoreinstein/agentsync/internal/config"
	"github.com/thoreinstein/agentsync/internal/errors"
)

type testEnv struct {
	home    string
	project string
	data    string
	backups string
}

// newTestEnv isolates HOME and the config search path, and writes a
// config whose data and backup directories live under t.TempDir.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		home:    t.TempDir(),
		project: t.TempDir(),
		data:    t.TempDir(),
		backups: t.TempDir(),
	}
	cfgDir := t.TempDir()
	t.Setenv("HOME", env.home)
	t.Setenv(config.ConfigDirEnv, cfgDir)

	cfg := "version: 1\ndata_dir: " + env.data + "\nbackup_dir: " + env.backups + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte(cfg), 0o600))
	return env
}

func (e *testEnv) writePlan(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.project, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--project-dir", e.project}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func decodeEnvelope(t *testing.T, out string, data any) envelope {
	t.Helper()
	var raw struct {
		envelope
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &raw), out)
	if data != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return raw.envelope
}

func writeSkill(t *testing.T, dir, name string) {
	t.Helper()
	skillDir := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(skillDir, 0o755))
	content := "---\nname: " + name + "\ndescription: test\n---\nbody\n"
	require.NoError(t, os.WriteFile(filepath.Join(skillDir, "SKILL.md"), []byte(content), 0o644))
}

func TestVersion_JSON(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "version", "--json")
	require.NoError(t, err)

	var v versionJSON
	got := decodeEnvelope(t, out, &v)
	assert.True(t, got.OK)
	assert.Equal(t, "version", got.Command)
	assert.Equal(t, "dev", v.Version)
}

func TestProviders_MinPriority(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.MkdirAll(filepath.Join(env.home, ".cursor"), 0o755))

	out, err := env.run(t, "providers", "--min-priority", "high", "--json")
	require.NoError(t, err)

	var list []providerJSON
	decodeEnvelope(t, out, &list)
	require.Len(t, list, 2)
	assert.Equal(t, "claude", list[0].ID)
	assert.False(t, list[0].Installed)
	assert.Equal(t, "cursor", list[1].ID)
	assert.True(t, list[1].Installed)
}

func TestProviders_Text(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "providers")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 8)
	assert.Contains(t, lines[0], "claude")
	assert.Contains(t, lines[7], "goose")
}

func TestApply_Success(t *testing.T) {
	env := newTestEnv(t)
	writeSkill(t, env.project, "review")
	path := env.writePlan(t, "plan.yaml", `providers: [claude, codex]
mcp:
  - name: github
    server:
      command: gh-mcp
skills:
  - name: review
    source: ./review
    global: false
`)

	out, err := env.run(t, "apply", path, "--json")
	require.NoError(t, err, out)

	var res struct {
		Success        bool     `json:"success"`
		Providers      []string `json:"providers"`
		MCPApplied     int      `json:"mcp_applied"`
		SkillsApplied  int      `json:"skills_applied"`
		RollbackErrors []string `json:"rollback_errors"`
	}
	got := decodeEnvelope(t, out, &res)
	assert.True(t, got.OK)
	assert.True(t, res.Success)
	assert.Equal(t, []string{"claude", "codex"}, res.Providers)
	assert.Equal(t, 2, res.MCPApplied)
	assert.Equal(t, 1, res.SkillsApplied)
	assert.NotNil(t, res.RollbackErrors)

	assert.FileExists(t, filepath.Join(env.project, ".mcp.json"))
	assert.FileExists(t, filepath.Join(env.project, ".codex", "config.toml"))
	assert.FileExists(t, filepath.Join(env.project, ".claude", "skills", "review", "SKILL.md"))
}

func TestApply_RollsBackOnFailure(t *testing.T) {
	env := newTestEnv(t)
	existing := []byte("{\n  \"mcpServers\": {}\n}\n")
	require.NoError(t, os.WriteFile(filepath.Join(env.project, ".mcp.json"), existing, 0o644))
	path := env.writePlan(t, "plan.yaml", `providers: [claude]
mcp:
  - name: github
    server: {command: gh-mcp}
skills:
  - name: missing
    source: ./does-not-exist
    global: false
`)

	out, err := env.run(t, "apply", path, "--json")
	require.Error(t, err)
	assert.Equal(t, errors.ExitSystem, errors.ExitCode(err))

	var res struct {
		MCPApplied        int  `json:"mcp_applied"`
		RollbackPerformed bool `json:"rollback_performed"`
	}
	got := decodeEnvelope(t, out, &res)
	assert.False(t, got.OK)
	assert.NotEmpty(t, got.Error)
	assert.Equal(t, 1, res.MCPApplied)
	assert.True(t, res.RollbackPerformed)

	after, err := os.ReadFile(filepath.Join(env.project, ".mcp.json"))
	require.NoError(t, err)
	assert.Equal(t, existing, after)
}

func TestApply_InvalidPlan(t *testing.T) {
	env := newTestEnv(t)
	path := env.writePlan(t, "plan.yaml", "providers: [claude]\n")

	out, err := env.run(t, "apply", path, "--json")
	require.Error(t, err)
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
	got := decodeEnvelope(t, out, nil)
	assert.False(t, got.OK)
	assert.Contains(t, got.Error, "no operations")
}

func TestMCPCheck_ReportsConflicts(t *testing.T) {
	env := newTestEnv(t)
	path := env.writePlan(t, "plan.yaml", `providers: [claude, codex]
mcp:
  - name: remote
    server: {url: "https://example.com/sse"}
`)

	out, err := env.run(t, "mcp", "check", path, "--json")
	require.Error(t, err)
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
	assert.True(t, errors.Is(err, errors.ErrConflict))

	var conflicts []struct {
		Provider string `json:"provider"`
		Code     string `json:"code"`
	}
	decodeEnvelope(t, out, &conflicts)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "codex", conflicts[0].Provider)
	assert.Equal(t, "unsupported-transport", conflicts[0].Code)
}

func TestMCPApply_Policies(t *testing.T) {
	plan := `providers: [claude, codex]
mcp:
  - name: remote
    server: {url: "https://example.com/sse"}
`

	t.Run("fail", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.run(t, "mcp", "apply", env.writePlan(t, "plan.yaml", plan))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrConflict))
		assert.NoFileExists(t, filepath.Join(env.project, ".mcp.json"))
	})

	t.Run("skip", func(t *testing.T) {
		env := newTestEnv(t)
		out, err := env.run(t, "mcp", "apply", env.writePlan(t, "plan.yaml", plan), "--on-conflict", "skip")
		require.NoError(t, err, out)
		assert.Contains(t, out, "1 installed, 0 failed, 1 skipped, 1 conflicts")
		assert.FileExists(t, filepath.Join(env.project, ".mcp.json"))
		assert.NoFileExists(t, filepath.Join(env.project, ".codex", "config.toml"))
	})

	t.Run("invalid policy", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.run(t, "mcp", "apply", env.writePlan(t, "plan.yaml", plan), "--on-conflict", "merge")
		require.Error(t, err)
		assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
	})
}

func TestSetupLogging_QuietAndVerbose(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "-q", "-v", "version")
	require.Error(t, err)
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
}

func TestExecute_PrintsSuggestion(t *testing.T) {
	env := newTestEnv(t)
	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetArgs([]string{"--project-dir", env.project, "apply", filepath.Join(env.project, "missing.yaml")})

	var stderr bytes.Buffer
	err := execute(root, &stderr)
	require.Error(t, err)
	assert.Contains(t, stderr.String(), "Error:")
}

func TestDoctor(t *testing.T) {
	t.Run("clean environment", func(t *testing.T) {
		env := newTestEnv(t)
		out, err := env.run(t, "doctor")
		require.NoError(t, err, out)
		assert.Contains(t, out, "config-syntax")
		assert.Contains(t, out, "0 errors")
	})

	t.Run("malformed config", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, os.WriteFile(filepath.Join(env.project, ".mcp.json"), []byte("{"), 0o644))

		out, err := env.run(t, "doctor", "--json")
		require.Error(t, err)
		assert.Equal(t, errors.ExitUser, errors.ExitCode(err))

		var report struct {
			Results []struct {
				Name   string `json:"name"`
				Status string `json:"status"`
			} `json:"results"`
		}
		got := decodeEnvelope(t, out, &report)
		assert.False(t, got.OK)
		require.Len(t, report.Results, 5)
		assert.Equal(t, "config-syntax", report.Results[1].Name)
		assert.Equal(t, "error", report.Results[1].Status)
	})
}

func TestBatchError(t *testing.T) {
	tests := []struct {
		name       string
		res        *batch.Result
		wantCode   int
		validation bool
	}{
		{"success", &batch.Result{Success: true}, errors.ExitSuccess, false},
		{"rejected", &batch.Result{Rejected: true, Error: "no providers"}, errors.ExitUser, true},
		{"snapshot failed", &batch.Result{Error: "capturing config files: permission denied"}, errors.ExitSystem, false},
		{"rolled back", &batch.Result{RollbackPerformed: true, Error: "installing github into claude"}, errors.ExitSystem, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := batchError(tt.res)
			if tt.wantCode == errors.ExitSuccess {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.ExitCode(err))
			assert.Equal(t, tt.validation, errors.Is(err, errors.ErrValidation))
		})
	}
}
