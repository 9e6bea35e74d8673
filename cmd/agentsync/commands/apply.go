package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/agentsync/internal/batch"
	"github.com/thoreinstein/agentsync/internal/cli/prompt"
	"github.com/thoreinstein/agentsync/internal/errors"
	"github.com/thoreinstein/agentsync/internal/provider"
)

func newApplyCmd(opts *options) *cobra.Command {
	var (
		minPriority string
		pick        bool
	)

	c := &cobra.Command{
		Use:   "apply <plan>",
		Short: "Install every server and skill in a plan, or none of them",
		Long: `Install every MCP server and skill listed in a plan file into the
selected providers as one unit.

Before the first write, every config file and skill path the plan can touch
is recorded. If any install fails, completed skill installs are removed and
every recorded file and path is restored exactly. Rollback steps that fail
are listed; anything listed may need manual attention.

Plan files may be YAML, JSON, JSONC, or TOML.`,
		Example: `  agentsync apply plan.yaml
  agentsync apply plan.toml --provider claude,codex
  agentsync apply plan.yaml --pick --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			res, err := runApply(c, opts, args[0], minPriority, pick)
			if res == nil {
				return render(c, opts, "apply", nil, err, nil)
			}
			return render(c, opts, "apply", res, err, func(w io.Writer) { printBatchResult(w, res) })
		},
	}
	c.Flags().StringVar(&minPriority, "min-priority", "",
		"lowest provider priority to target: high, medium, low")
	c.Flags().BoolVar(&pick, "pick", false,
		"choose providers interactively")
	return c
}

func runApply(c *cobra.Command, opts *options, path, minPriority string, pick bool) (*batch.Result, error) {
	rt, err := newRuntime(c, opts)
	if err != nil {
		return nil, err
	}
	p, err := loadPlan(path)
	if err != nil {
		return nil, err
	}
	providers, err := rt.targets(opts.providers, p.Providers)
	if err != nil {
		return nil, err
	}
	minimum, err := rt.priority(minPriority, p.MinimumPriority)
	if err != nil {
		return nil, err
	}

	if pick {
		providers, err = prompt.NewPicker().PickProviders(provider.SelectByPriority(providers, minimum))
		if err != nil {
			return nil, errors.NewUserError(err, "")
		}
	}

	res := rt.executor().Run(c.Context(), batch.Request{
		Providers:       providers,
		MinimumPriority: minimum,
		MCP:             p.MCP,
		Skills:          p.Skills,
	})
	return res, batchError(res)
}

// batchError maps a failed result to an exit error.
func batchError(res *batch.Result) error {
	if res.Success {
		return nil
	}
	if res.Rejected {
		return errors.NewUserError(errors.Mark(errors.New(res.Error), errors.ErrValidation), "nothing was changed")
	}
	if !res.RollbackPerformed {
		return errors.NewSystemError(errors.New(res.Error), "snapshot failed before any change; check file permissions and backup_dir")
	}
	err := errors.Mark(errors.New(res.Error), errors.ErrExecution)
	if len(res.RollbackErrors) > 0 {
		return errors.NewSystemError(err,
			fmt.Sprintf("rolled back with %d error(s); the listed paths may need manual repair", len(res.RollbackErrors)))
	}
	return errors.NewSystemError(err, "all changes were rolled back")
}

func printBatchResult(w io.Writer, res *batch.Result) {
	if res.Success {
		fmt.Fprintf(w, "%s Applied %d server install(s) and %d skill(s) to %s\n",
			okMark, res.MCPApplied, res.SkillsApplied, bold(joinIDs(res.Providers)))
		return
	}
	if !res.RollbackPerformed {
		return
	}
	fmt.Fprintf(w, "%s Batch failed after %d server install(s) and %d skill(s); rolled back\n",
		failMark, res.MCPApplied, res.SkillsApplied)
	for _, e := range res.RollbackErrors {
		fmt.Fprintf(w, "  %s %s\n", failMark, e)
	}
}
