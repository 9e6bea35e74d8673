package snapshot

import (
	"io/fs"
	"os"

	"github.com/thoreinstein/agentsync/internal/backup"
	"github.com/thoreinstein/agentsync/internal/errors"
	"github.com/thoreinstein/agentsync/internal/provider"
	"github.com/thoreinstein/agentsync/internal/skill"
	"github.com/thoreinstein/agentsync/pkg/fileutil"
)

// PathKind classifies what sat at a provider's skill path.
type PathKind string

// PathKind values.
const (
	KindMissing   PathKind = "missing"
	KindSymlink   PathKind = "symlink"
	KindDirectory PathKind = "directory"
	KindFile      PathKind = "file"
)

// PathSnapshot is the captured state of one provider's link path.
type PathSnapshot struct {
	ProviderID string
	Path       string
	Kind       PathKind

	// LinkTarget is the raw link target for KindSymlink.
	LinkTarget string

	// BackupPath holds a copy for KindDirectory and KindFile.
	BackupPath string
}

// SkillSnapshot is the captured state of one skill across canonical
// storage and every targeted provider.
type SkillSnapshot struct {
	SkillName        string
	CanonicalPath    string
	CanonicalExisted bool
	CanonicalBackup  string
	Paths            []PathSnapshot
}

// CaptureSkill records the state a skill operation is about to change.
// Existing canonical content and provider directories or files are copied
// under root; symlinks are recorded by target. Providers with no skills
// directory for the operation's scope are not recorded.
func CaptureSkill(layout skill.Layout, providers []*provider.Provider, name string, global bool, root *backup.Root) (*SkillSnapshot, error) {
	canonical, err := layout.CanonicalPath(name, global)
	if err != nil {
		return nil, err
	}

	scope := provider.SkillScope(global)
	snap := &SkillSnapshot{SkillName: name, CanonicalPath: canonical}

	existed, err := fileutil.Exists(canonical)
	if err != nil {
		return nil, err
	}
	if existed {
		snap.CanonicalExisted = true
		snap.CanonicalBackup = root.CanonicalPath(scope, name)
		if err := fileutil.CopyPath(canonical, snap.CanonicalBackup); err != nil {
			return nil, errors.Wrapf(err, "backing up %s", canonical)
		}
	}

	for _, p := range providers {
		link, err := layout.LinkPath(p, name, global)
		if err != nil {
			return nil, err
		}
		if link == "" {
			continue
		}
		ps, err := capturePath(p.ID, link, root.ProviderPath(p.ID, scope, name))
		if err != nil {
			return nil, err
		}
		snap.Paths = append(snap.Paths, ps)
	}
	return snap, nil
}

func capturePath(providerID, path, backupPath string) (PathSnapshot, error) {
	ps := PathSnapshot{ProviderID: providerID, Path: path}

	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			ps.Kind = KindMissing
			return ps, nil
		}
		return ps, errors.Wrapf(err, "stat %s", path)
	}

	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		target, err := os.Readlink(path)
		if err != nil {
			return ps, errors.Wrapf(err, "reading link %s", path)
		}
		ps.Kind = KindSymlink
		ps.LinkTarget = target
		return ps, nil
	case info.IsDir():
		ps.Kind = KindDirectory
	default:
		ps.Kind = KindFile
	}

	ps.BackupPath = backupPath
	if err := fileutil.CopyPath(path, backupPath); err != nil {
		return ps, errors.Wrapf(err, "backing up %s", path)
	}
	return ps, nil
}

// Restore returns canonical storage and every recorded provider path to
// their captured state, in that order. Every step is attempted.
func (s *SkillSnapshot) Restore() []error {
	var errs []error
	record := func(err error) {
		if err != nil {
			errs = append(errs, errors.Mark(err, errors.ErrRollbackStep))
		}
	}

	record(errors.Wrapf(os.RemoveAll(s.CanonicalPath), "removing %s", s.CanonicalPath))
	if s.CanonicalExisted {
		record(errors.Wrapf(fileutil.CopyPath(s.CanonicalBackup, s.CanonicalPath), "restoring %s", s.CanonicalPath))
	}

	for _, ps := range s.Paths {
		record(ps.restore())
	}
	return errs
}

func (ps PathSnapshot) restore() error {
	if err := os.RemoveAll(ps.Path); err != nil {
		return errors.Wrapf(err, "%s: clearing %s", ps.ProviderID, ps.Path)
	}

	switch ps.Kind {
	case KindMissing:
		return nil
	case KindSymlink:
		return errors.Wrapf(fileutil.LinkDir(ps.LinkTarget, ps.Path), "%s: relinking %s", ps.ProviderID, ps.Path)
	case KindDirectory, KindFile:
		return errors.Wrapf(fileutil.CopyPath(ps.BackupPath, ps.Path), "%s: restoring %s", ps.ProviderID, ps.Path)
	default:
		return errors.Newf("%s: unknown path kind %q", ps.ProviderID, ps.Kind)
	}
}
