package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/agentsync/internal/conflict"
	"github.com/thoreinstein/agentsync/internal/errors"
	"github.com/thoreinstein/agentsync/internal/plan"
	"github.com/thoreinstein/agentsync/internal/policy"
	"github.com/thoreinstein/agentsync/internal/provider"
)

func newMCPCmd(opts *options) *cobra.Command {
	c := &cobra.Command{
		Use:   "mcp",
		Short: "Check and install MCP servers pair by pair",
		Long: `Check a plan's MCP servers against provider capabilities and existing
entries, or install them one provider at a time.

Unlike "agentsync apply", "mcp apply" does not roll back: each install
stands on its own.`,
	}
	c.AddCommand(newMCPCheckCmd(opts), newMCPApplyCmd(opts))
	return c
}

func newMCPCheckCmd(opts *options) *cobra.Command {
	var minPriority string

	c := &cobra.Command{
		Use:   "check <plan>",
		Short: "Report conflicts without changing anything",
		Long: `Report every (provider, server) pair that cannot be installed as-is:

  unsupported-transport  the provider cannot run the server's transport
  unsupported-headers    the server needs HTTP headers the provider ignores
  existing-mismatch      an entry with the same name already differs

Exits non-zero when any conflict is found.`,
		Example: `  agentsync mcp check plan.yaml
  agentsync mcp check plan.yaml --min-priority high --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			conflicts, err := runMCPCheck(c, opts, args[0], minPriority)
			if conflicts == nil {
				return render(c, opts, "mcp check", nil, err, nil)
			}
			return render(c, opts, "mcp check", conflicts, err, func(w io.Writer) { printConflicts(w, conflicts) })
		},
	}
	c.Flags().StringVar(&minPriority, "min-priority", "",
		"lowest provider priority to target: high, medium, low")
	return c
}

func newMCPApplyCmd(opts *options) *cobra.Command {
	var (
		minPriority string
		onConflict  string
	)

	c := &cobra.Command{
		Use:   "apply <plan>",
		Short: "Install servers, handling conflicts by policy",
		Long: `Install each server into each provider, deciding per pair what to do
about conflicts:

  fail       install nothing if any conflict exists (default)
  skip       install every pair without a conflict
  overwrite  install every pair; conflicts are reported only

The default comes from conflict_policy in the config file.`,
		Example: `  agentsync mcp apply plan.yaml --on-conflict skip`,
		Args:    cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			res, err := runMCPApply(c, opts, args[0], minPriority, onConflict)
			if res == nil {
				return render(c, opts, "mcp apply", nil, err, nil)
			}
			return render(c, opts, "mcp apply", res, err, func(w io.Writer) { printPolicyResult(w, res) })
		},
	}
	c.Flags().StringVar(&minPriority, "min-priority", "",
		"lowest provider priority to target: high, medium, low")
	c.Flags().StringVar(&onConflict, "on-conflict", "",
		"conflict policy: fail, skip, overwrite")
	return c
}

// mcpTargets loads an MCP plan and the priority-filtered providers for it.
func mcpTargets(c *cobra.Command, opts *options, path, minPriority string) (*runtime, *plan.Plan, []*provider.Provider, error) {
	rt, err := newRuntime(c, opts)
	if err != nil {
		return nil, nil, nil, err
	}
	p, err := loadMCPPlan(path)
	if err != nil {
		return nil, nil, nil, err
	}
	providers, err := rt.targets(opts.providers, p.Providers)
	if err != nil {
		return nil, nil, nil, err
	}
	minimum, err := rt.priority(minPriority, p.MinimumPriority)
	if err != nil {
		return nil, nil, nil, err
	}
	selected := provider.SelectByPriority(providers, minimum)
	if len(selected) == 0 {
		return nil, nil, nil, errors.NewUserError(errors.Validationf("no providers at or above %s priority", minimum), "")
	}
	return rt, p, selected, nil
}

func runMCPCheck(c *cobra.Command, opts *options, path, minPriority string) ([]conflict.Conflict, error) {
	rt, p, providers, err := mcpTargets(c, opts, path, minPriority)
	if err != nil {
		return nil, err
	}
	conflicts, err := rt.detector().Detect(providers, p.MCP)
	if err != nil {
		return nil, errors.NewUserError(err, "")
	}
	if len(conflicts) > 0 {
		return conflicts, errors.NewUserError(
			errors.Mark(errors.Newf("%d conflict(s) found", len(conflicts)), errors.ErrConflict),
			"use 'agentsync mcp apply --on-conflict skip|overwrite' to proceed")
	}
	return conflicts, nil
}

func runMCPApply(c *cobra.Command, opts *options, path, minPriority, onConflict string) (*policy.Result, error) {
	rt, p, providers, err := mcpTargets(c, opts, path, minPriority)
	if err != nil {
		return nil, err
	}
	pol := rt.cfg.Policy()
	if onConflict != "" {
		if pol, err = policy.ParsePolicy(onConflict); err != nil {
			return nil, errors.NewUserError(err, "")
		}
	}

	res, err := rt.applier().Apply(c.Context(), providers, p.MCP, pol)
	if err != nil {
		if res == nil {
			return nil, errors.NewUserError(err, "")
		}
		return res, errors.NewSystemError(err, "")
	}

	switch {
	case pol == policy.Fail && len(res.Conflicts) > 0:
		return res, errors.NewUserError(
			errors.Mark(errors.Newf("%d conflict(s) found; nothing installed", len(res.Conflicts)), errors.ErrConflict),
			"rerun with --on-conflict skip or overwrite")
	case res.Failed():
		return res, errors.NewSystemError(errors.Mark(errors.New(res.Summary()), errors.ErrExecution), "")
	}
	return res, nil
}

func printConflicts(w io.Writer, conflicts []conflict.Conflict) {
	if len(conflicts) == 0 {
		fmt.Fprintf(w, "%s No conflicts\n", okMark)
		return
	}
	for _, c := range conflicts {
		fmt.Fprintf(w, "%s %s/%s %s %s\n", failMark, bold(c.ProviderID), c.ServerName, faint("["+string(c.Code)+"]"), c.Message)
	}
}

func printPolicyResult(w io.Writer, res *policy.Result) {
	for _, o := range res.Applied {
		if o.Success {
			fmt.Fprintf(w, "%s %s/%s %s\n", okMark, bold(o.ProviderID), o.ServerName, faint(o.ConfigPath))
		} else {
			fmt.Fprintf(w, "%s %s/%s %s\n", failMark, bold(o.ProviderID), o.ServerName, o.Error)
		}
	}
	for _, s := range res.Skipped {
		fmt.Fprintf(w, "%s %s/%s skipped %s\n", skipMark, bold(s.ProviderID), s.ServerName, faint("["+string(s.Code)+"]"))
	}
	if len(res.Applied) == 0 && len(res.Skipped) == 0 {
		printConflicts(w, res.Conflicts)
	}
	fmt.Fprintln(w, res.Summary())
}
