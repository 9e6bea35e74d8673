package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/agentsync/internal/doctor"
	"github.com/thoreinstein/agentsync/internal/errors"
)

func newDoctorCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose provider configs, skill links, and backups",
		Long: `Run diagnostic checks against the files agentsync manages:

  provider-detection   which providers are installed
  config-syntax        every existing provider config parses
  secret-permissions   configs holding credentials are not world-readable
  skill-links          linked skills resolve to an existing directory
  stale-backups        no backups were left by an interrupted batch

Exits non-zero when any check reports an error.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			report, err := runDoctor(c, opts)
			if report == nil {
				return render(c, opts, "doctor", nil, err, nil)
			}
			return render(c, opts, "doctor", report, err, func(w io.Writer) { printReport(w, report) })
		},
	}
}

func runDoctor(c *cobra.Command, opts *options) (*doctor.Report, error) {
	rt, err := newRuntime(c, opts)
	if err != nil {
		return nil, err
	}

	providers := rt.registry.All()
	if len(opts.providers) > 0 {
		if providers, err = rt.targets(opts.providers, nil); err != nil {
			return nil, err
		}
	}

	runner := doctor.NewRunner(
		&doctor.ProviderCheck{Providers: providers},
		&doctor.ConfigSyntaxCheck{Providers: providers, ProjectDir: rt.projectDir},
		&doctor.SecretPermissionCheck{Providers: providers, ProjectDir: rt.projectDir},
		&doctor.SkillLinkCheck{Providers: providers, ProjectDir: rt.projectDir},
		&doctor.StaleBackupCheck{Dir: rt.cfg.BackupDir},
	)
	report := runner.Run(c.Context())
	rt.logger.Debug("doctor finished",
		"passed", report.Summary.Passed,
		"warnings", report.Summary.Warnings,
		"errors", report.Summary.Errors)

	if report.HasErrors() {
		return report, errors.NewUserError(
			errors.Newf("%d check(s) failed", report.Summary.Errors),
			"fix the reported errors and run 'agentsync doctor' again")
	}
	return report, nil
}

func printReport(w io.Writer, report *doctor.Report) {
	for _, r := range report.Results {
		mark := okMark
		switch r.Status {
		case doctor.SeverityInfo:
			mark = faint("·")
		case doctor.SeverityWarning:
			mark = skipMark
		case doctor.SeverityError:
			mark = failMark
		}
		fmt.Fprintf(w, "%s %s %s\n", mark, bold(fmt.Sprintf("%-19s", r.Name)), r.Message)
		for _, i := range r.Issues {
			fmt.Fprintf(w, "    %s: %s\n", i.Path, i.Problem)
		}
		if r.FixHint != "" && len(r.Issues) > 0 {
			fmt.Fprintf(w, "    %s\n", faint("fix: "+r.FixHint))
		}
	}
	s := report.Summary
	fmt.Fprintf(w, "\n%d passed, %d info, %d warnings, %d errors\n", s.Passed, s.Info, s.Warnings, s.Errors)
}
