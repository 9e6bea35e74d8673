package prompt

import (
	"testing"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/agentsync/internal/errors"
	"github.com/thoreinstein/agentsync/internal/provider"
)

func fixedFinder(idx []int, err error) FindMultiFunc {
	return func(_ any, itemFunc func(int) string, _ ...fuzzyfinder.Option) ([]int, error) {
		// Exercise the label function the way the finder would.
		_ = itemFunc(0)
		return idx, err
	}
}

func testProviders() []*provider.Provider {
	return provider.Builtins("/home/test")[:4]
}

func TestPickProviders(t *testing.T) {
	all := testProviders()

	tests := []struct {
		name    string
		in      []*provider.Provider
		finder  FindMultiFunc
		want    []string
		wantErr error
	}{
		{"empty", nil, fixedFinder(nil, nil), nil, ErrNoProviders},
		{"single skips prompt", all[:1], fixedFinder(nil, errors.New("should not run")), []string{"claude"}, nil},
		{"keeps input order", all, fixedFinder([]int{3, 0}, nil), []string{"claude", "codex"}, nil},
		{"abort", all, fixedFinder(nil, fuzzyfinder.ErrAbort), nil, ErrSelectionCancelled},
		{"nothing chosen", all, fixedFinder([]int{}, nil), nil, ErrSelectionCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewPickerWithFinder(tt.finder).PickProviders(tt.in)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, provider.IDs(got))
		})
	}
}

func TestPickProviders_FinderError(t *testing.T) {
	_, err := NewPickerWithFinder(fixedFinder(nil, errors.New("no tty"))).PickProviders(testProviders())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tty")
}

func TestDescribe(t *testing.T) {
	out := describe(testProviders()[3])
	assert.Contains(t, out, "Codex CLI")
	assert.Contains(t, out, "Transports: stdio")
	assert.Contains(t, out, "Headers:    false")
	assert.Contains(t, out, "config.toml")
}
