package config

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/thoreinstein/agentsync/internal/errors"
	"github.com/thoreinstein/agentsync/internal/policy"
	"github.com/thoreinstein/agentsync/internal/provider"
)

// Validation errors for configuration fields.
var (
	// ErrVersionTooLow indicates the version field is below the minimum.
	ErrVersionTooLow = errors.New("version must be >= 1")

	// ErrUnsupportedVersion indicates a version newer than this build.
	ErrUnsupportedVersion = errors.New("unsupported config version")

	// ErrInvalidProvider indicates an unrecognized provider id.
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")
)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	switch {
	case cfg.Version < 1:
		errs = append(errs, ErrVersionTooLow)
	case cfg.Version > CurrentVersion:
		errs = append(errs, errors.Wrapf(ErrUnsupportedVersion, "%d", cfg.Version))
	}

	known := builtinIDs()
	for _, id := range cfg.DefaultProviders {
		if !slices.Contains(known, id) {
			errs = append(errs, &ProviderError{Field: "default_providers", Provider: id, Err: ErrInvalidProvider})
		}
	}
	for id, o := range cfg.Providers {
		if !slices.Contains(known, id) {
			errs = append(errs, &ProviderError{Field: "providers", Provider: id, Err: ErrInvalidProvider})
			continue
		}
		if err := validatePath(o.ConfigDir); err != nil {
			errs = append(errs, &PathError{Field: "providers." + id + ".config_dir", Path: o.ConfigDir, Err: err})
		}
	}

	if _, err := provider.ParsePriority(cfg.MinimumPriority); err != nil {
		errs = append(errs, err)
	}
	if _, err := policy.ParsePolicy(cfg.ConflictPolicy); err != nil {
		errs = append(errs, err)
	}

	for field, path := range map[string]string{"backup_dir": cfg.BackupDir, "data_dir": cfg.DataDir} {
		if err := validatePath(path); err != nil {
			errs = append(errs, &PathError{Field: field, Path: path, Err: err})
		}
	}

	return errs
}

func builtinIDs() []string {
	return provider.IDs(provider.Builtins(""))
}

// validatePath checks if a path string is well-formed.
// It does not check if the path exists, only that it's syntactically valid.
func validatePath(path string) error {
	// Empty paths are valid (they mean "use default")
	if path == "" {
		return nil
	}

	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}

	cleaned := filepath.Clean(path)
	if cleaned == "" || cleaned == "." {
		return ErrInvalidPath
	}

	return nil
}

// ProviderError represents an error for a specific provider id.
type ProviderError struct {
	Field    string
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return e.Field + ": " + e.Err.Error() + ": " + e.Provider
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// PathError represents an error for a specific path field.
type PathError struct {
	Field string
	Path  string
	Err   error
}

func (e *PathError) Error() string {
	return e.Field + ": " + e.Err.Error() + ": " + e.Path
}

func (e *PathError) Unwrap() error {
	return e.Err
}
