package backup

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/agentsync/internal/provider"
)

func TestNewRoot_Name(t *testing.T) {
	parent := t.TempDir()
	now := time.Date(2026, 1, 23, 10, 7, 12, 0, time.UTC)

	r, err := NewRoot(parent, now)
	require.NoError(t, err)

	name := filepath.Base(r.Path())
	assert.True(t, strings.HasPrefix(name, Prefix+"20260123T100712-"), name)
	assert.Len(t, name, len(Prefix+"20260123T100712-")+8)
	assert.Equal(t, parent, filepath.Dir(r.Path()))

	info, err := os.Stat(r.Path())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewRoot_UniqueWithinSameSecond(t *testing.T) {
	parent := t.TempDir()
	now := time.Now()

	seen := map[string]bool{}
	for range 20 {
		r, err := NewRoot(parent, now)
		require.NoError(t, err)
		assert.False(t, seen[r.Path()], "root names collided: %s", r.Path())
		seen[r.Path()] = true
	}
}

func TestNewRoot_CreatesParent(t *testing.T) {
	parent := filepath.Join(t.TempDir(), "deep", "backups")
	r, err := NewRoot(parent, time.Now())
	require.NoError(t, err)
	assert.DirExists(t, r.Path())
}

func TestRoot_Layout(t *testing.T) {
	r := &Root{path: "/b"}
	assert.Equal(t, filepath.Join("/b", "canonical", "global", "review"), r.CanonicalPath(provider.ScopeGlobal, "review"))
	assert.Equal(t, filepath.Join("/b", "providers", "claude", "project", "review"), r.ProviderPath("claude", provider.ScopeProject, "review"))
	assert.NotEqual(t, r.CanonicalPath(provider.ScopeGlobal, "review"), r.CanonicalPath(provider.ScopeProject, "review"))
}

func TestRoot_CleanupIsIdempotent(t *testing.T) {
	r, err := NewRoot(t.TempDir(), time.Now())
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(r.CanonicalPath(provider.ScopeGlobal, "review"), 0o755))

	require.NoError(t, r.Cleanup())
	assert.NoDirExists(t, r.Path())
	require.NoError(t, r.Cleanup())
}
