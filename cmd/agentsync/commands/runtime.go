package commands

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/agentsync/internal/batch"
	"github.com/thoreinstein/agentsync/internal/cli"
	"github.com/thoreinstein/agentsync/internal/config"
	"github.com/thoreinstein/agentsync/internal/conflict"
	"github.com/thoreinstein/agentsync/internal/errors"
	"github.com/thoreinstein/agentsync/internal/logging"
	"github.com/thoreinstein/agentsync/internal/mcp/installer"
	"github.com/thoreinstein/agentsync/internal/paths"
	"github.com/thoreinstein/agentsync/internal/plan"
	"github.com/thoreinstein/agentsync/internal/policy"
	"github.com/thoreinstein/agentsync/internal/provider"
	"github.com/thoreinstein/agentsync/internal/skill"
	"github.com/thoreinstein/agentsync/internal/transform"
)

// runtime is everything a command needs, built once per invocation.
type runtime struct {
	cfg        *config.Config
	registry   *provider.Registry
	transforms *transform.Registry
	projectDir string
	logger     *slog.Logger
}

func newRuntime(c *cobra.Command, opts *options) (*runtime, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, errors.NewConfigError(err)
	}

	home, err := paths.ResolveHome()
	if err != nil {
		return nil, errors.NewSystemError(err, "set $HOME")
	}
	reg, err := provider.NewDefaultRegistry(home, cfg.ConfigDirs())
	if err != nil {
		return nil, errors.NewConfigError(err)
	}

	projectDir := opts.projectDir
	if projectDir == "" {
		if projectDir, err = os.Getwd(); err != nil {
			return nil, errors.NewSystemError(errors.Wrap(err, "getting working directory"), "pass --project-dir")
		}
	}
	projectDir, err = filepath.Abs(projectDir)
	if err != nil {
		return nil, errors.NewUserError(errors.Wrap(err, "resolving project directory"), "")
	}

	return &runtime{
		cfg:        cfg,
		registry:   reg,
		transforms: transform.Default(),
		projectDir: projectDir,
		logger:     logging.FromContext(c.Context()),
	}, nil
}

// targets resolves providers from the first non-empty of flag ids and plan
// ids, then config defaults, then detection.
func (r *runtime) targets(flagIDs, planIDs []string) ([]*provider.Provider, error) {
	ids := flagIDs
	if len(ids) == 0 {
		ids = planIDs
	}
	providers, err := cli.ResolveProviders(r.registry, ids, r.cfg.DefaultProviders)
	if err != nil {
		return nil, errors.NewUserError(err, "run 'agentsync providers' to list provider ids")
	}
	return providers, nil
}

// priority returns the first non-empty of flag, plan, and config values.
func (r *runtime) priority(flag, planValue string) (provider.Priority, error) {
	s := flag
	if s == "" {
		s = planValue
	}
	if s == "" {
		s = r.cfg.MinimumPriority
	}
	p, err := provider.ParsePriority(s)
	if err != nil {
		return "", errors.NewUserError(err, "")
	}
	return p, nil
}

func (r *runtime) mcpInstaller() *installer.Installer {
	return &installer.Installer{
		Transforms: r.transforms,
		ProjectDir: r.projectDir,
		Logger:     r.logger,
	}
}

func (r *runtime) layout() skill.Layout {
	return skill.Layout{DataDir: r.cfg.DataDir, ProjectDir: r.projectDir}
}

func (r *runtime) executor() *batch.Executor {
	return &batch.Executor{
		MCP:        r.mcpInstaller(),
		Skills:     &skill.Installer{Layout: r.layout(), Logger: r.logger},
		Layout:     r.layout(),
		ProjectDir: r.projectDir,
		BackupDir:  r.cfg.BackupDir,
		Logger:     r.logger,
	}
}

func (r *runtime) detector() *conflict.Detector {
	return &conflict.Detector{Transforms: r.transforms, ProjectDir: r.projectDir}
}

func (r *runtime) applier() *policy.Applier {
	return &policy.Applier{Detector: r.detector(), MCP: r.mcpInstaller(), Logger: r.logger}
}

// loadPlan reads and validates a plan file.
func loadPlan(path string) (*plan.Plan, error) {
	p, err := plan.Load(path)
	if err != nil {
		return nil, errors.NewUserError(err, "")
	}
	if err := p.Validate(); err != nil {
		return nil, errors.NewUserError(err, "")
	}
	return p, nil
}

// loadMCPPlan reads a plan and validates only its MCP operations.
func loadMCPPlan(path string) (*plan.Plan, error) {
	p, err := plan.Load(path)
	if err != nil {
		return nil, errors.NewUserError(err, "")
	}
	if len(p.MCP) == 0 {
		return nil, errors.NewUserError(errors.Validationf("%s has no mcp operations", path), "")
	}
	if err := plan.ValidateMCP(p.MCP); err != nil {
		return nil, errors.NewUserError(err, "")
	}
	return p, nil
}
