package plan

import (
	"strings"

	"github.com/thoreinstein/agentsync/internal/errors"
	"github.com/thoreinstein/agentsync/internal/mcp"
	"github.com/thoreinstein/agentsync/internal/provider"
	"github.com/thoreinstein/agentsync/internal/skill"
)

// Validate checks the whole plan and reports every problem at once. The
// returned error matches errors.ErrValidation.
func (p *Plan) Validate() error {
	var errs []error
	if _, err := provider.ParsePriority(p.MinimumPriority); err != nil {
		errs = append(errs, err)
	}
	for _, id := range p.Providers {
		if strings.TrimSpace(id) == "" {
			errs = append(errs, errors.New("providers: empty provider id"))
		}
	}
	if len(p.MCP) == 0 && len(p.Skills) == 0 {
		errs = append(errs, errors.New("plan has no operations"))
	}
	if err := ValidateMCP(p.MCP); err != nil {
		errs = append(errs, err)
	}
	if err := ValidateSkills(p.Skills); err != nil {
		errs = append(errs, err)
	}
	return joinValidation(errs)
}

// ValidateMCP checks each operation and rejects two operations writing the
// same server name into the same scope.
func ValidateMCP(ops []MCPOperation) error {
	var errs []error
	seen := make(map[string]int, len(ops))

	for i, op := range ops {
		if err := mcp.ValidateName(op.ServerName); err != nil {
			errs = append(errs, errors.Wrapf(err, "mcp[%d]", i))
		}
		if _, err := provider.ParseScope(string(op.Scope)); err != nil {
			errs = append(errs, errors.Wrapf(err, "mcp[%d]", i))
		}
		if op.Server == nil {
			errs = append(errs, errors.Newf("mcp[%d]: server is required", i))
		} else if err := op.Server.Validate(); err != nil {
			errs = append(errs, errors.Wrapf(err, "mcp[%d] %s", i, op.ServerName))
		}

		key := string(op.TargetScope()) + "\x00" + op.ServerName
		if prev, dup := seen[key]; dup && op.ServerName != "" {
			errs = append(errs, errors.Newf("mcp[%d]: server %q already targeted by mcp[%d] in %s scope", i, op.ServerName, prev, op.TargetScope()))
		} else {
			seen[key] = i
		}
	}
	return joinValidation(errs)
}

// ValidateSkills checks each operation and rejects duplicate skill names
// within one storage scope.
func ValidateSkills(ops []SkillOperation) error {
	var errs []error
	seen := make(map[string]int, len(ops))

	for i, op := range ops {
		if err := skill.ValidateName(op.SkillName); err != nil {
			errs = append(errs, errors.Wrapf(err, "skills[%d]", i))
		}
		if strings.TrimSpace(op.SourcePath) == "" {
			errs = append(errs, errors.Newf("skills[%d] %s: source is required", i, op.SkillName))
		}

		key := string(provider.SkillScope(op.IsGlobal())) + "\x00" + op.SkillName
		if prev, dup := seen[key]; dup && op.SkillName != "" {
			errs = append(errs, errors.Newf("skills[%d]: skill %q already targeted by skills[%d]", i, op.SkillName, prev))
		} else {
			seen[key] = i
		}
	}
	return joinValidation(errs)
}

func joinValidation(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return errors.Mark(errors.Join(errs...), errors.ErrValidation)
}
