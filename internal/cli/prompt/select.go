// Package prompt provides interactive CLI prompts for user input.
package prompt

import (
	"fmt"
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/thoreinstein/agentsync/internal/errors"
	"github.com/thoreinstein/agentsync/internal/provider"
)

// Sentinel errors for provider selection.
var (
	ErrNoProviders        = errors.New("no providers to select from")
	ErrSelectionCancelled = errors.New("selection cancelled")
)

// FindMultiFunc matches fuzzyfinder.FindMulti.
type FindMultiFunc func(slice any, itemFunc func(i int) string, opts ...fuzzyfinder.Option) ([]int, error)

// Picker lets the user choose a subset of providers.
type Picker struct {
	find FindMultiFunc
}

// NewPicker returns a Picker backed by the terminal fuzzy finder.
func NewPicker() *Picker {
	return &Picker{find: fuzzyfinder.FindMulti}
}

// NewPickerWithFinder returns a Picker using find, for testing.
func NewPickerWithFinder(find FindMultiFunc) *Picker {
	return &Picker{find: find}
}

// PickProviders prompts for one or more of providers and returns them in
// their original order.
//
// Returns:
//   - ErrNoProviders if the list is empty
//   - The list unchanged if it has one element (no prompt)
//   - ErrSelectionCancelled if the user aborts or selects nothing
func (p *Picker) PickProviders(providers []*provider.Provider) ([]*provider.Provider, error) {
	switch len(providers) {
	case 0:
		return nil, ErrNoProviders
	case 1:
		return providers, nil
	}

	idx, err := p.find(
		providers,
		func(i int) string {
			return fmt.Sprintf("%s (%s, %s)", providers[i].ID, providers[i].DisplayName, providers[i].Priority)
		},
		fuzzyfinder.WithHeader("Tab to select providers, Enter to confirm"),
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return ""
			}
			return describe(providers[i])
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil, ErrSelectionCancelled
		}
		return nil, errors.Wrap(err, "selecting providers")
	}
	if len(idx) == 0 {
		return nil, ErrSelectionCancelled
	}

	chosen := make(map[int]bool, len(idx))
	for _, i := range idx {
		chosen[i] = true
	}
	out := make([]*provider.Provider, 0, len(idx))
	for i, pr := range providers {
		if chosen[i] {
			out = append(out, pr)
		}
	}
	return out, nil
}

func describe(p *provider.Provider) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n\nPriority:   %s\n", p.DisplayName, p.Priority)
	transports := make([]string, len(p.Transports))
	for i, t := range p.Transports {
		transports[i] = string(t)
	}
	fmt.Fprintf(&sb, "Transports: %s\n", strings.Join(transports, ", "))
	fmt.Fprintf(&sb, "Headers:    %t\n", p.SupportsHeaders)
	for _, scope := range []provider.Scope{provider.ScopeProject, provider.ScopeGlobal} {
		if sc, err := p.ScopeConfig(scope); err == nil {
			fmt.Fprintf(&sb, "%-11s %s (%s)\n", string(scope)+":", sc.ConfigPath, sc.Format)
		}
	}
	return sb.String()
}
