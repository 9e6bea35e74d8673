// Package commands implements the CLI commands for agentsync.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/agentsync/cmd"
	"github.com/thoreinstein/agentsync/internal/errors"
	"github.com/thoreinstein/agentsync/internal/logging"
)

// options holds the persistent flags shared by every command.
type options struct {
	providers  []string
	projectDir string
	configPath string
	verbosity  int
	quiet      bool
	logFormat  string
	logFile    string
	jsonOutput bool
}

// NewRootCmd builds the command tree. Each call returns an independent tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "agentsync",
		Short: "Install MCP servers and skills across AI coding assistants",
		Long: `agentsync installs MCP server entries and skills into the configuration
of many AI coding assistants at once.

A plan file lists the servers and skills to install. "agentsync apply"
installs all of them or none: if any step fails, every file it changed is
put back exactly as it was. "agentsync mcp apply" installs servers pair by
pair and lets you choose what happens when a provider already has a
different entry.

Use --provider to target specific providers, or omit it to target the
configured defaults or every detected provider.`,
		Example: `  # Install everything in a plan, all or nothing
  agentsync apply plan.yaml

  # Only high and medium priority providers
  agentsync apply plan.yaml --min-priority medium

  # Preview conflicts, then install while skipping them
  agentsync mcp check plan.yaml
  agentsync mcp apply plan.yaml --on-conflict skip`,
		Version:       cmd.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			return setupLogging(c, opts)
		},
		Run: func(c *cobra.Command, _ []string) {
			_ = c.Help()
		},
	}
	root.SetVersionTemplate("agentsync version {{.Version}}\n")

	pf := root.PersistentFlags()
	pf.StringSliceVarP(&opts.providers, "provider", "p", nil,
		"target provider(s) (default: configured defaults, else all detected)")
	pf.StringVar(&opts.projectDir, "project-dir", "",
		"project directory for project-scope installs (default: current directory)")
	pf.StringVar(&opts.configPath, "config", "",
		"config file (default: ~/.config/agentsync/config.yaml)")
	pf.CountVarP(&opts.verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	pf.BoolVarP(&opts.quiet, "quiet", "q", false,
		"suppress non-error output")
	pf.StringVar(&opts.logFormat, "log-format", "text",
		"log format: text, json")
	pf.StringVar(&opts.logFile, "log-file", "",
		"write logs to file in JSON format")
	pf.BoolVar(&opts.jsonOutput, "json", false,
		"print results as a JSON envelope")

	root.AddCommand(
		newApplyCmd(opts),
		newDoctorCmd(opts),
		newMCPCmd(opts),
		newProvidersCmd(opts),
		newVersionCmd(opts),
	)
	return root
}

// setupLogging configures the command logger based on verbosity flags.
func setupLogging(c *cobra.Command, opts *options) error {
	if opts.quiet && opts.verbosity > 0 {
		return errors.NewUserError(errors.New("--quiet and --verbose conflict"), "use one of --quiet or --verbose")
	}

	var level slog.Level
	if opts.quiet {
		level = slog.LevelError
	} else {
		v := opts.verbosity
		if v == 0 {
			if val, ok := os.LookupEnv("AGENTSYNC_DEBUG"); ok {
				switch val {
				case "1", "true":
					v = 2
				case "2":
					v = 3
				}
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	handlerOpts := &slog.HandlerOptions{Level: level, ReplaceAttr: logging.Redact}

	var primary slog.Handler
	switch logging.Format(opts.logFormat) {
	case logging.FormatJSON:
		primary = slog.NewJSONHandler(c.ErrOrStderr(), handlerOpts)
	default:
		primary = logging.NewHandler(c.ErrOrStderr(), handlerOpts)
	}

	var file slog.Handler
	if opts.logFile != "" {
		f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return errors.NewUserError(err, "failed to open log file")
		}
		// File output uses JSON format
		file = slog.NewJSONHandler(f, handlerOpts)
	}
	handler := logging.NewMultiHandler(primary, file)

	ctx := c.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	c.SetContext(logging.NewContext(ctx, slog.New(handler)))
	return nil
}

// Execute runs the root command and prints any error to stderr.
func Execute() error {
	return execute(NewRootCmd(), os.Stderr)
}

func execute(root *cobra.Command, stderr io.Writer) error {
	err := root.ExecuteContext(context.Background())
	if err == nil {
		return nil
	}
	if errors.Is(err, errReported) {
		return err
	}

	red := color.New(color.FgRed, color.Bold)
	fmt.Fprintf(stderr, "%s %v\n", red.Sprint("Error:"), err)
	var exitErr *errors.ExitError
	if errors.As(err, &exitErr) && exitErr.Suggestion != "" {
		fmt.Fprintf(stderr, "       %s\n", exitErr.Suggestion)
	}
	return err
}
