package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/agentsync/cmd"
)

type versionJSON struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

func newVersionCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version information",
		Long:  `Print the version, commit, and build date of agentsync.`,
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			v := versionJSON{Version: cmd.Version, Commit: cmd.Revision(), Date: cmd.Date}
			return render(c, opts, "version", v, nil, func(w io.Writer) {
				fmt.Fprintf(w, "agentsync version %s\n", v.Version)
				fmt.Fprintf(w, "  commit: %s\n", v.Commit)
				fmt.Fprintf(w, "  built:  %s\n", v.Date)
			})
		},
	}
}
