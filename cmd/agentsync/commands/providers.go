package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/agentsync/internal/provider"
)

// providerJSON is the --json shape of one provider.
type providerJSON struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Priority   provider.Priority `json:"priority"`
	Installed  bool              `json:"installed"`
	ConfigDir  string            `json:"config_dir"`
	Transports []string          `json:"transports"`
	Headers    bool              `json:"headers"`
	Scopes     []string          `json:"scopes"`
}

func newProvidersCmd(opts *options) *cobra.Command {
	var minPriority string

	c := &cobra.Command{
		Use:   "providers",
		Short: "List known providers by priority",
		Long: `List every known provider at or above a priority, highest first.
Providers of equal priority keep their catalog order.

A provider is installed when its global configuration directory exists.`,
		Example: `  agentsync providers
  agentsync providers --min-priority medium --json`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			list, err := runProviders(c, opts, minPriority)
			if list == nil {
				return render(c, opts, "providers", nil, err, nil)
			}
			return render(c, opts, "providers", list, err, func(w io.Writer) { printProviders(w, list) })
		},
	}
	c.Flags().StringVar(&minPriority, "min-priority", "",
		"lowest provider priority to list: high, medium, low")
	return c
}

func runProviders(c *cobra.Command, opts *options, minPriority string) ([]providerJSON, error) {
	rt, err := newRuntime(c, opts)
	if err != nil {
		return nil, err
	}
	minimum, err := rt.priority(minPriority, "")
	if err != nil {
		return nil, err
	}

	candidates := rt.registry.All()
	if len(opts.providers) > 0 {
		if candidates, err = rt.targets(opts.providers, nil); err != nil {
			return nil, err
		}
	}

	selected := provider.SelectByPriority(candidates, minimum)
	list := make([]providerJSON, 0, len(selected))
	for _, p := range selected {
		entry := providerJSON{
			ID:        p.ID,
			Name:      p.DisplayName,
			Priority:  p.Priority,
			Installed: provider.Detect(p).Status == provider.StatusInstalled,
			ConfigDir: p.ConfigDir,
			Headers:   p.SupportsHeaders,
		}
		for _, t := range p.Transports {
			entry.Transports = append(entry.Transports, string(t))
		}
		for _, s := range []provider.Scope{provider.ScopeProject, provider.ScopeGlobal} {
			if p.HasScope(s) {
				entry.Scopes = append(entry.Scopes, string(s))
			}
		}
		list = append(list, entry)
	}
	return list, nil
}

func printProviders(w io.Writer, list []providerJSON) {
	for _, p := range list {
		mark := faint("·")
		if p.Installed {
			mark = okMark
		}
		fmt.Fprintf(w, "%s %s %-7s %-14s %s\n",
			mark, bold(fmt.Sprintf("%-10s", p.ID)), p.Priority, p.Name, faint(strings.Join(p.Transports, ",")+" "+strings.Join(p.Scopes, ",")))
	}
}

func joinIDs(ids []string) string {
	return strings.Join(ids, ", ")
}
