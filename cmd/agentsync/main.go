// Package main is the entry point for the agentsync CLI.
package main

import (
	"os"

	"github.com/thoreinstein/agentsync/cmd/agentsync/commands"
	"github.com/thoreinstein/agentsync/internal/errors"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(errors.ExitCode(err))
	}
}
