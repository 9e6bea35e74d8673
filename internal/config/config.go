// Package config loads agentsync's own settings using Viper.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/thoreinstein/agentsync/internal/errors"
	"github.com/thoreinstein/agentsync/internal/paths"
	"github.com/thoreinstein/agentsync/internal/policy"
	"github.com/thoreinstein/agentsync/internal/provider"
)

// EnvPrefix prefixes environment overrides, e.g. AGENTSYNC_BACKUP_DIR.
const EnvPrefix = "AGENTSYNC"

// ConfigDirEnv overrides the directory searched for config.yaml.
const ConfigDirEnv = EnvPrefix + "_CONFIG_DIR"

// CurrentVersion is the newest config version this build understands.
const CurrentVersion = 1

// Config represents the top-level configuration structure.
type Config struct {
	Version          int                         `mapstructure:"version" yaml:"version"`
	DefaultProviders []string                    `mapstructure:"default_providers" yaml:"default_providers"`
	MinimumPriority  string                      `mapstructure:"minimum_priority" yaml:"minimum_priority"`
	ConflictPolicy   string                      `mapstructure:"conflict_policy" yaml:"conflict_policy"`
	BackupDir        string                      `mapstructure:"backup_dir" yaml:"backup_dir,omitempty"`
	DataDir          string                      `mapstructure:"data_dir" yaml:"data_dir,omitempty"`
	Providers        map[string]ProviderOverride `mapstructure:"providers" yaml:"providers,omitempty"`
}

// ProviderOverride contains configuration overrides for a specific provider.
type ProviderOverride struct {
	ConfigDir string `mapstructure:"config_dir" yaml:"config_dir"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Version:         CurrentVersion,
		MinimumPriority: string(provider.PriorityLow),
		ConflictPolicy:  string(policy.Fail),
	}
}

// New returns a Viper instance with agentsync's search paths, environment
// binding, and defaults.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Search paths (in order of precedence)
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		v.AddConfigPath(dir)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath(paths.AppConfigDir())
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("version", d.Version)
	v.SetDefault("default_providers", []string{})
	v.SetDefault("minimum_priority", d.MinimumPriority)
	v.SetDefault("conflict_policy", d.ConflictPolicy)
	v.SetDefault("backup_dir", "")
	v.SetDefault("data_dir", "")
	return v
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file and a missing file
// is an error. If path is empty, the default locations are searched and
// defaults are used when nothing is found.
func Load(path string) (*Config, error) {
	return LoadWith(New(), path)
}

// LoadWith is Load using a caller-provided Viper instance, so flags bound
// to v take precedence over the file.
func LoadWith(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
			// Implicit load with no file: defaults apply.
		case errors.As(err, &notFound), os.IsNotExist(err):
			return nil, errors.Mark(errors.Wrapf(err, "config file not found at %s", path), errors.ErrNotFound)
		default:
			return nil, errors.Mark(errors.Wrap(err, "reading config file"), errors.ErrInvalidConfig)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "unmarshaling config"), errors.ErrInvalidConfig)
	}
	cfg.expand(paths.Home())

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.Mark(errors.Wrap(errors.Join(errs...), "validating config"), errors.ErrInvalidConfig)
	}
	return &cfg, nil
}

// expand resolves ~ in every path setting.
func (c *Config) expand(home string) {
	c.BackupDir = paths.ExpandHome(c.BackupDir, home)
	c.DataDir = paths.ExpandHome(c.DataDir, home)
	for id, o := range c.Providers {
		o.ConfigDir = paths.ExpandHome(o.ConfigDir, home)
		c.Providers[id] = o
	}
}

// ConfigDirs returns the provider config directory overrides keyed by
// provider id.
func (c *Config) ConfigDirs() map[string]string {
	if len(c.Providers) == 0 {
		return nil
	}
	out := make(map[string]string, len(c.Providers))
	for id, o := range c.Providers {
		if o.ConfigDir != "" {
			out[id] = filepath.Clean(o.ConfigDir)
		}
	}
	return out
}

// Priority returns the parsed minimum priority.
func (c *Config) Priority() provider.Priority {
	p, err := provider.ParsePriority(c.MinimumPriority)
	if err != nil {
		return provider.PriorityLow
	}
	return p
}

// Policy returns the parsed conflict policy.
func (c *Config) Policy() policy.Policy {
	p, err := policy.ParsePolicy(c.ConflictPolicy)
	if err != nil {
		return policy.Fail
	}
	return p
}
