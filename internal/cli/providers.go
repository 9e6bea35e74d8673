// Package cli provides CLI-specific helpers for the agentsync command.
package cli

import (
	"github.com/thoreinstein/agentsync/internal/errors"
	"github.com/thoreinstein/agentsync/internal/provider"
)

// ErrNoProvidersAvailable is returned when nothing was requested and no
// provider is installed.
var ErrNoProvidersAvailable = errors.New("no providers available")

// ResolveProviders returns the providers a command should target.
//
// Explicit ids win over configured defaults; with neither, every installed
// provider is used. Unknown ids are a validation error naming all of them.
func ResolveProviders(reg *provider.Registry, ids, defaults []string) ([]*provider.Provider, error) {
	switch {
	case len(ids) > 0:
		return reg.Resolve(ids)
	case len(defaults) > 0:
		return reg.Resolve(defaults)
	}

	detected := provider.DetectInstalled(reg.All())
	if len(detected) == 0 {
		return nil, errors.Wrapf(ErrNoProvidersAvailable,
			"none of %v is installed; pass --provider to choose explicitly", reg.IDs())
	}
	return detected, nil
}
