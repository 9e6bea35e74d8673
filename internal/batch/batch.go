package batch

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/thoreinstein/agentsync/internal/backup"
	"github.com/thoreinstein/agentsync/internal/errors"
	"github.com/thoreinstein/agentsync/internal/logging"
	"github.com/thoreinstein/agentsync/internal/mcp"
	"github.com/thoreinstein/agentsync/internal/plan"
	"github.com/thoreinstein/agentsync/internal/provider"
	"github.com/thoreinstein/agentsync/internal/skill"
	"github.com/thoreinstein/agentsync/internal/snapshot"
)

// State is a step of the batch lifecycle.
type State string

// Lifecycle states, in order. A batch ends in Committed or RolledBack.
const (
	StateIdle         State = "idle"
	StateSnapshotting State = "snapshotting"
	StateApplying     State = "applying"
	StateCommitted    State = "committed"
	StateRollingBack  State = "rolling-back"
	StateRolledBack   State = "rolled-back"
)

// MCPInstaller writes one server entry into one provider config.
type MCPInstaller interface {
	InstallMCP(p *provider.Provider, scope provider.Scope, name string, server *mcp.Server) mcp.InstallOutcome
}

// SkillInstaller installs and removes skills across providers.
type SkillInstaller interface {
	Install(source, name string, providers []*provider.Provider, global bool, projectDir string) skill.InstallResult
	Remove(name string, providers []*provider.Provider, global bool, projectDir string) skill.RemoveResult
}

// Request is one batch.
type Request struct {
	// Providers is the candidate set before priority filtering.
	Providers []*provider.Provider

	// MinimumPriority filters Providers. Empty means low.
	MinimumPriority provider.Priority

	MCP    []plan.MCPOperation
	Skills []plan.SkillOperation
}

// Result reports the outcome of a batch.
type Result struct {
	Success bool `json:"success"`

	// Providers lists the targeted provider ids in apply order.
	Providers []string `json:"providers"`

	MCPApplied    int `json:"mcp_applied"`
	SkillsApplied int `json:"skills_applied"`

	// Rejected is set when the request failed validation. A failure with
	// neither Rejected nor RollbackPerformed happened while taking
	// snapshots; nothing was changed in either case.
	Rejected bool `json:"rejected,omitempty"`

	RollbackPerformed bool `json:"rollback_performed"`

	// RollbackErrors lists rollback steps that failed. It is never nil; an
	// empty list after a rollback means every change was reverted.
	RollbackErrors []string `json:"rollback_errors"`

	Error string `json:"error,omitempty"`
}

// Executor runs batches.
type Executor struct {
	MCP    MCPInstaller
	Skills SkillInstaller

	// Layout locates canonical skill storage.
	Layout skill.Layout

	// ProjectDir anchors project-scope config and skill paths.
	ProjectDir string

	// BackupDir is the parent of per-batch backup directories. Empty means
	// the system temp directory.
	BackupDir string

	Logger *slog.Logger

	// Now is the clock used to name backup directories. Nil means time.Now.
	Now func() time.Time
}

// appliedSkill is a skill install that completed, kept for undo.
type appliedSkill struct {
	op     plan.SkillOperation
	linked []*provider.Provider
}

// run holds the mutable state of one Run call.
type run struct {
	e      *Executor
	logger *slog.Logger
	state  State
	result *Result

	providers []*provider.Provider
	configs   *snapshot.ConfigSnapshot
	skills    []*snapshot.SkillSnapshot
	root      *backup.Root
	applied   []appliedSkill
}

// Run executes req. It never returns nil and never returns a Go error:
// validation problems, install failures, and rollback failures are all
// reported in the Result.
//
// ctx is checked before each apply step. Cancellation stops further steps
// and rolls back what was applied.
func (e *Executor) Run(ctx context.Context, req Request) *Result {
	r := &run{
		e:      e,
		logger: logging.OrDiscard(e.Logger),
		state:  StateIdle,
		result: &Result{Providers: []string{}, RollbackErrors: []string{}},
	}

	if err := r.validate(req); err != nil {
		r.result.Rejected = true
		r.result.Error = err.Error()
		r.logger.Debug("batch rejected", "error", err)
		return r.result
	}

	r.transition(StateSnapshotting)
	if err := r.snapshot(req); err != nil {
		_ = r.cleanup()
		r.result.Error = err.Error()
		r.logger.Debug("batch snapshot failed", "error", err)
		return r.result
	}

	r.transition(StateApplying)
	if err := r.apply(ctx, req); err != nil {
		r.result.Error = err.Error()
		r.logger.Debug("batch step failed", "error", err)
		r.transition(StateRollingBack)
		r.rollback()
		r.result.RollbackPerformed = true
		r.transition(StateRolledBack)
		return r.result
	}

	if err := r.root.Cleanup(); err != nil {
		r.logger.Warn("removing backup directory", "path", r.root.Path(), "error", err)
	}
	r.result.Success = true
	r.transition(StateCommitted)
	return r.result
}

func (r *run) transition(s State) {
	r.logger.Debug("batch state", "from", r.state, "to", s)
	r.state = s
}

func (r *run) validate(req Request) error {
	var errs []error
	if len(req.MCP) > 0 && r.e.MCP == nil {
		errs = append(errs, errors.New("no MCP installer configured"))
	}
	if len(req.Skills) > 0 && r.e.Skills == nil {
		errs = append(errs, errors.New("no skill installer configured"))
	}
	if err := plan.ValidateMCP(req.MCP); err != nil {
		errs = append(errs, err)
	}
	if err := plan.ValidateSkills(req.Skills); err != nil {
		errs = append(errs, err)
	}
	minimum, err := provider.ParsePriority(string(req.MinimumPriority))
	if err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errors.Mark(errors.Join(errs...), errors.ErrValidation)
	}

	r.providers = provider.SelectByPriority(req.Providers, minimum)
	if len(r.providers) == 0 {
		return errors.Validationf("no providers at or above %s priority", minimum)
	}
	for _, op := range req.MCP {
		scope := op.TargetScope()
		for _, p := range r.providers {
			if !p.HasScope(scope) {
				errs = append(errs, errors.Validationf("%s: provider %s has no %s scope", op.ServerName, p.ID, scope))
			}
		}
	}
	if len(errs) > 0 {
		return errors.Mark(errors.Join(errs...), errors.ErrValidation)
	}

	r.result.Providers = provider.IDs(r.providers)
	return nil
}

func (r *run) snapshot(req Request) error {
	var paths []string
	for _, op := range req.MCP {
		for _, p := range r.providers {
			path, err := p.ConfigPath(op.TargetScope(), r.e.ProjectDir)
			if err != nil {
				return err
			}
			paths = append(paths, path)
		}
	}

	configs, err := snapshot.CaptureConfigs(paths)
	if err != nil {
		return errors.Wrap(err, "capturing config files")
	}
	r.configs = configs

	now := time.Now
	if r.e.Now != nil {
		now = r.e.Now
	}
	root, err := backup.NewRoot(r.e.BackupDir, now())
	if err != nil {
		return err
	}
	r.root = root

	layout := r.e.Layout.WithProject(r.e.ProjectDir)
	for _, op := range req.Skills {
		s, err := snapshot.CaptureSkill(layout, r.providers, op.SkillName, op.IsGlobal(), root)
		if err != nil {
			return errors.Wrapf(err, "capturing skill %s", op.SkillName)
		}
		r.skills = append(r.skills, s)
	}

	r.logger.Debug("batch snapshot taken",
		"config_files", len(configs.Entries),
		"skills", len(r.skills),
		"backup", root.Path())
	return nil
}

func (r *run) apply(ctx context.Context, req Request) error {
	for _, op := range req.MCP {
		for _, p := range r.providers {
			if err := ctx.Err(); err != nil {
				return errors.Mark(errors.Wrap(err, "batch interrupted"), errors.ErrExecution)
			}
			out := r.e.MCP.InstallMCP(p, op.TargetScope(), op.ServerName, op.Server)
			if !out.Success {
				return errors.Mark(errors.Newf("installing %s into %s: %s", op.ServerName, p.ID, out.Error), errors.ErrExecution)
			}
			r.result.MCPApplied++
		}
	}

	for _, op := range req.Skills {
		if err := ctx.Err(); err != nil {
			return errors.Mark(errors.Wrap(err, "batch interrupted"), errors.ErrExecution)
		}
		res := r.e.Skills.Install(op.SourcePath, op.SkillName, r.providers, op.IsGlobal(), r.e.ProjectDir)
		if !res.Success || len(res.Errors) > 0 {
			return errors.Mark(errors.Newf("installing skill %s: %s", op.SkillName, joinMessages(res.Errors)), errors.ErrExecution)
		}
		r.applied = append(r.applied, appliedSkill{op: op, linked: linkedProviders(r.providers, res.LinkedAgents)})
		r.result.SkillsApplied++
	}
	return nil
}

// rollback attempts every undo step and records each failure.
func (r *run) rollback() {
	record := func(err error) {
		r.logger.Warn("rollback step failed", "error", err)
		r.result.RollbackErrors = append(r.result.RollbackErrors, err.Error())
	}

	for i := len(r.applied) - 1; i >= 0; i-- {
		a := r.applied[i]
		res := r.e.Skills.Remove(a.op.SkillName, a.linked, a.op.IsGlobal(), r.e.ProjectDir)
		for _, msg := range res.Errors {
			record(errors.Mark(errors.Newf("removing skill %s: %s", a.op.SkillName, msg), errors.ErrRollbackStep))
		}
	}

	for _, err := range r.configs.Restore() {
		record(err)
	}
	for _, s := range r.skills {
		for _, err := range s.Restore() {
			record(err)
		}
	}

	if err := r.cleanup(); err != nil {
		record(errors.Mark(err, errors.ErrRollbackStep))
	}
}

func (r *run) cleanup() error {
	if r.root == nil {
		return nil
	}
	return r.root.Cleanup()
}

// linkedProviders returns the providers whose ids appear in ids, in
// providers order.
func linkedProviders(providers []*provider.Provider, ids []string) []*provider.Provider {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	var out []*provider.Provider
	for _, p := range providers {
		if _, ok := set[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out
}

func joinMessages(msgs []string) string {
	if len(msgs) == 0 {
		return "install reported failure"
	}
	return strings.Join(msgs, "; ")
}
