package provider

import (
	"regexp"
	"sync"

	"github.com/thoreinstein/agentsync/internal/errors"
)

// Sentinel errors for registry operations.
var (
	// ErrProviderAlreadyRegistered is returned when attempting to register
	// a provider with an id that is already in use.
	ErrProviderAlreadyRegistered = errors.New("provider already registered")

	// ErrInvalidProviderID is returned when attempting to register
	// a provider with an invalid id.
	ErrInvalidProviderID = errors.New("invalid provider id")
)

var idPattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// Registry manages provider registration and lookup.
// It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]*Provider
	order     []string
}

// NewRegistry creates a new empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]*Provider),
	}
}

// NewDefaultRegistry returns a registry holding Builtins(home). Entries in
// configDirs replace the global configuration directory of the provider
// with the same id; unknown ids are an error.
func NewDefaultRegistry(home string, configDirs map[string]string) (*Registry, error) {
	r := NewRegistry()
	for _, p := range Builtins(home) {
		if dir, ok := configDirs[p.ID]; ok && dir != "" {
			p = p.WithConfigDir(dir)
		}
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	for id := range configDirs {
		if r.Get(id) == nil {
			return nil, errors.Mark(errors.Newf("config override for unknown provider %q", id), errors.ErrUnknownProvider)
		}
	}
	return r, nil
}

// Register adds a provider to the registry.
// Returns an error if:
//   - The provider id is empty or invalid
//   - A provider with the same id is already registered
func (r *Registry) Register(p *Provider) error {
	if p == nil || !idPattern.MatchString(p.ID) {
		return ErrInvalidProviderID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[p.ID]; exists {
		return errors.Wrap(ErrProviderAlreadyRegistered, p.ID)
	}

	r.providers[p.ID] = p
	r.order = append(r.order, p.ID)
	return nil
}

// Get returns the provider with id, or nil.
func (r *Registry) Get(id string) *Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.providers[id]
}

// All returns every registered provider in registration order.
func (r *Registry) All() []*Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.order) == 0 {
		return nil
	}
	results := make([]*Provider, 0, len(r.order))
	for _, id := range r.order {
		results = append(results, r.providers[id])
	}
	return results
}

// IDs returns the registered ids in registration order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.order) == 0 {
		return nil
	}
	return append([]string(nil), r.order...)
}

// Resolve maps ids to providers, preserving order and dropping duplicates.
// Every unknown id is reported in one error matching ErrUnknownProvider.
func (r *Registry) Resolve(ids []string) ([]*Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool, len(ids))
	var (
		out     []*Provider
		unknown []error
	)
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		p, ok := r.providers[id]
		if !ok {
			unknown = append(unknown, errors.Newf("unknown provider %q", id))
			continue
		}
		out = append(out, p)
	}

	if len(unknown) > 0 {
		return nil, errors.Mark(errors.Join(unknown...), errors.ErrUnknownProvider)
	}
	return out, nil
}
