package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureConfigs_Dedup(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	require.NoError(t, os.WriteFile(a, []byte(`{"a":1}`), 0o644))

	snap, err := CaptureConfigs([]string{a, filepath.Join(dir, ".", "a.json"), filepath.Join(dir, "b.json"), a})
	require.NoError(t, err)

	assert.Equal(t, []string{a, filepath.Join(dir, "b.json")}, snap.Paths())
	assert.True(t, snap.Entries[0].Existed)
	assert.Equal(t, []byte(`{"a":1}`), snap.Entries[0].Data)
	assert.False(t, snap.Entries[1].Existed)
}

func TestCaptureConfigs_DirectoryIsError(t *testing.T) {
	t.Parallel()

	_, err := CaptureConfigs([]string{t.TempDir()})
	assert.Error(t, err)
}

func TestConfigSnapshot_RestoreByteIdentical(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	existing := filepath.Join(dir, "settings.json")
	original := []byte("{\n  // comment\n  \"mcpServers\": {}\n}\n")
	require.NoError(t, os.WriteFile(existing, original, 0o600))
	created := filepath.Join(dir, "nested", "new.json")

	snap, err := CaptureConfigs([]string{existing, created})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(existing, []byte("mutated"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Dir(created), 0o755))
	require.NoError(t, os.WriteFile(created, []byte("{}"), 0o644))

	assert.Empty(t, snap.Restore())

	got, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, original, got)
	info, err := os.Stat(existing)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	assert.NoFileExists(t, created)
}

func TestConfigSnapshot_RestoreTwiceIsNoop(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	present := filepath.Join(dir, "a.toml")
	absent := filepath.Join(dir, "b.toml")
	require.NoError(t, os.WriteFile(present, []byte("x = 1\n"), 0o644))

	snap, err := CaptureConfigs([]string{present, absent})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(absent, []byte("y = 2\n"), 0o644))

	assert.Empty(t, snap.Restore())
	first, err := os.ReadFile(present)
	require.NoError(t, err)

	assert.Empty(t, snap.Restore())
	second, err := os.ReadFile(present)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NoFileExists(t, absent)
}

func TestConfigSnapshot_RestoreRecreatesDeletedParent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, ".cursor", "mcp.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	snap, err := CaptureConfigs([]string{path})
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(filepath.Dir(path)))

	assert.Empty(t, snap.Restore())
	assert.FileExists(t, path)
}
