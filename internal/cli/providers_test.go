package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/agentsync/internal/errors"
	"github.com/thoreinstein/agentsync/internal/provider"
)

func TestResolveProviders(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".codex"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".gemini"), 0o755))
	reg, err := provider.NewDefaultRegistry(home, nil)
	require.NoError(t, err)

	tests := []struct {
		name     string
		ids      []string
		defaults []string
		want     []string
	}{
		{"explicit", []string{"cursor", "claude"}, []string{"goose"}, []string{"cursor", "claude"}},
		{"defaults", nil, []string{"goose"}, []string{"goose"}},
		{"detected", nil, nil, []string{"codex", "gemini"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveProviders(reg, tt.ids, tt.defaults)
			require.NoError(t, err)
			assert.Equal(t, tt.want, provider.IDs(got))
		})
	}
}

func TestResolveProviders_Errors(t *testing.T) {
	reg, err := provider.NewDefaultRegistry(t.TempDir(), nil)
	require.NoError(t, err)

	_, err = ResolveProviders(reg, []string{"claude", "nope"}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnknownProvider))

	_, err = ResolveProviders(reg, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoProvidersAvailable))
}
