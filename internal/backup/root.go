package backup

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/thoreinstein/agentsync/internal/errors"
	"github.com/thoreinstein/agentsync/internal/provider"
)

// Prefix starts the name of every batch root directory.
const Prefix = "agentsync-batch-"

// timestampFormat matches the backup id format used in directory names.
const timestampFormat = "20060102T150405"

// Root is a uniquely named directory holding one batch call's backups.
type Root struct {
	path string

	once sync.Once
	err  error
}

// NewRoot creates a new root under parent, or under os.TempDir() when
// parent is empty. The directory name combines now with a random suffix.
func NewRoot(parent string, now time.Time) (*Root, error) {
	if parent == "" {
		parent = os.TempDir()
	}
	if err := os.MkdirAll(parent, 0o700); err != nil {
		return nil, errors.Wrapf(err, "creating backup parent %s", parent)
	}

	name := Prefix + now.UTC().Format(timestampFormat) + "-" + uuid.NewString()[:8]
	path := filepath.Join(parent, name)

	// Mkdir rather than MkdirAll: an existing directory means a collision.
	if err := os.Mkdir(path, 0o700); err != nil {
		return nil, errors.Wrapf(err, "creating backup root %s", path)
	}
	return &Root{path: path}, nil
}

// Path returns the root directory.
func (r *Root) Path() string {
	return r.path
}

// CanonicalPath is where the canonical copy of skill at scope is backed up.
// A skill name may appear once per scope in a batch, so scope is part of
// the path.
func (r *Root) CanonicalPath(scope provider.Scope, skill string) string {
	return filepath.Join(r.path, "canonical", string(scope), skill)
}

// ProviderPath is where a provider's link path for skill at scope is
// backed up.
func (r *Root) ProviderPath(providerID string, scope provider.Scope, skill string) string {
	return filepath.Join(r.path, "providers", providerID, string(scope), skill)
}

// Cleanup removes the root and everything in it. Later calls return the
// result of the first.
func (r *Root) Cleanup() error {
	r.once.Do(func() {
		r.err = errors.Wrapf(os.RemoveAll(r.path), "removing backup root %s", r.path)
	})
	return r.err
}
