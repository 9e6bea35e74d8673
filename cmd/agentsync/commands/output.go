package commands

import (
	"encoding/json"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/agentsync/internal/errors"
)

// errReported marks errors whose details were already printed.
var errReported = errors.New("reported")

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	failMark = color.New(color.FgRed).Sprint("✗")
	skipMark = color.New(color.FgYellow).Sprint("-")
	bold     = color.New(color.Bold).SprintFunc()
	faint    = color.New(color.Faint).SprintFunc()
)

// envelope is the --json output shape of every command.
type envelope struct {
	OK      bool   `json:"ok"`
	Command string `json:"command"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// render writes data as a JSON envelope or through text, and returns cmdErr
// so the exit code reflects it. In JSON mode the error is part of the
// envelope and is not printed again.
func render(c *cobra.Command, opts *options, name string, data any, cmdErr error, text func(w io.Writer)) error {
	w := c.OutOrStdout()

	if opts.jsonOutput {
		env := envelope{OK: cmdErr == nil, Command: name, Data: data}
		if cmdErr != nil {
			env.Error = cmdErr.Error()
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(env); err != nil {
			return errors.NewSystemError(errors.Wrap(err, "encoding output"), "")
		}
		if cmdErr != nil {
			return errors.NewExitError(errors.Mark(cmdErr, errReported), errors.ExitCode(cmdErr))
		}
		return nil
	}

	if text != nil && !opts.quiet && data != nil {
		text(w)
	}
	return cmdErr
}
