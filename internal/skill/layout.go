package skill

import (
	"path/filepath"

	"github.com/thoreinstein/agentsync/internal/errors"
	"github.com/thoreinstein/agentsync/internal/paths"
	"github.com/thoreinstein/agentsync/internal/provider"
)

// Layout resolves where skills live on disk.
type Layout struct {
	// DataDir holds global canonical copies. Defaults to the XDG data
	// directory for agentsync.
	DataDir string

	// ProjectDir holds project canonical copies and anchors provider
	// project skill directories.
	ProjectDir string
}

// WithProject returns a copy of l anchored at projectDir. An empty
// projectDir keeps the current one.
func (l Layout) WithProject(projectDir string) Layout {
	if projectDir != "" {
		l.ProjectDir = projectDir
	}
	return l
}

// CanonicalPath returns the canonical storage directory for a skill.
func (l Layout) CanonicalPath(name string, global bool) (string, error) {
	if global {
		dataDir := l.DataDir
		if dataDir == "" {
			dataDir = paths.AppDataDir()
		}
		return filepath.Join(dataDir, "skills", name), nil
	}
	if l.ProjectDir == "" {
		return "", errors.Validationf("project skill %s requires a project directory", name)
	}
	return filepath.Join(l.ProjectDir, ".agents", "skills", name), nil
}

// LinkPath returns where p expects the skill, or "" when p has no skills
// directory for the scope.
func (l Layout) LinkPath(p *provider.Provider, name string, global bool) (string, error) {
	dir, err := p.SkillDir(provider.SkillScope(global), l.ProjectDir)
	if err != nil || dir == "" {
		return "", err
	}
	return filepath.Join(dir, name), nil
}
