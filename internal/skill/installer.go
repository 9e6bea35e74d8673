package skill

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/thoreinstein/agentsync/internal/errors"
	"github.com/thoreinstein/agentsync/internal/logging"
	"github.com/thoreinstein/agentsync/internal/provider"
	"github.com/thoreinstein/agentsync/pkg/fileutil"
)

// InstallResult reports what Install changed.
type InstallResult struct {
	Success       bool     `json:"success"`
	CanonicalPath string   `json:"canonical_path,omitempty"`
	LinkedAgents  []string `json:"linked_agents"`
	Errors        []string `json:"errors,omitempty"`
}

// RemoveResult reports what Remove deleted.
type RemoveResult struct {
	// Removed lists provider ids whose link path was removed.
	Removed []string `json:"removed"`

	// CanonicalRemoved reports whether the canonical copy was deleted.
	CanonicalRemoved bool `json:"canonical_removed"`

	Errors []string `json:"errors,omitempty"`
}

// Installer places skills into canonical storage and links them into
// provider skill directories.
type Installer struct {
	Layout Layout
	Logger *slog.Logger
}

// Install copies source into canonical storage as name and links it into
// every provider that has a skills directory for the scope. Providers
// without one are skipped silently. Per-provider failures are collected;
// the remaining providers are still attempted.
func (i *Installer) Install(source, name string, providers []*provider.Provider, global bool, projectDir string) InstallResult {
	res := InstallResult{LinkedAgents: []string{}}
	layout := i.Layout.WithProject(projectDir)
	logger := logging.OrDiscard(i.Logger).With("skill", name, "global", global)

	fail := func(err error) InstallResult {
		res.Errors = append(res.Errors, err.Error())
		return res
	}

	if err := ValidateName(name); err != nil {
		return fail(err)
	}
	src, err := filepath.Abs(source)
	if err != nil {
		return fail(errors.Wrapf(err, "resolving %s", source))
	}
	if err := CheckSource(src, name); err != nil {
		return fail(err)
	}

	canonical, err := layout.CanonicalPath(name, global)
	if err != nil {
		return fail(err)
	}
	res.CanonicalPath = canonical

	if src != canonical {
		if err := os.RemoveAll(canonical); err != nil {
			return fail(errors.Wrapf(err, "clearing %s", canonical))
		}
		if err := fileutil.CopyPath(src, canonical); err != nil {
			return fail(errors.Wrapf(err, "copying skill to %s", canonical))
		}
	}
	logger.Debug("skill stored", "path", canonical)

	for _, p := range providers {
		link, err := layout.LinkPath(p, name, global)
		if err != nil {
			res.Errors = append(res.Errors, errors.Wrapf(err, "%s", p.ID).Error())
			continue
		}
		if link == "" {
			continue
		}
		if err := placeLink(canonical, link); err != nil {
			res.Errors = append(res.Errors, errors.Wrapf(err, "%s", p.ID).Error())
			continue
		}
		res.LinkedAgents = append(res.LinkedAgents, p.ID)
		logger.Debug("skill linked", "provider", p.ID, "path", link)
	}

	res.Success = len(res.Errors) == 0
	return res
}

// placeLink replaces whatever is at link with a link to canonical, or a
// copy of it when linking is not possible.
func placeLink(canonical, link string) error {
	if err := os.RemoveAll(link); err != nil {
		return errors.Wrapf(err, "clearing %s", link)
	}
	if err := fileutil.LinkDir(canonical, link); err == nil {
		return nil
	}
	return errors.Wrapf(fileutil.CopyPath(canonical, link), "copying skill to %s", link)
}

// Remove deletes name from every given provider's skills directory and
// then deletes the canonical copy. Link paths that point somewhere else,
// or directories that are not skills, are left alone. Missing paths are
// not errors.
func (i *Installer) Remove(name string, providers []*provider.Provider, global bool, projectDir string) RemoveResult {
	res := RemoveResult{Removed: []string{}}
	layout := i.Layout.WithProject(projectDir)
	logger := logging.OrDiscard(i.Logger).With("skill", name, "global", global)

	if err := ValidateName(name); err != nil {
		res.Errors = append(res.Errors, err.Error())
		return res
	}
	canonical, err := layout.CanonicalPath(name, global)
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
		return res
	}

	for _, p := range providers {
		link, err := layout.LinkPath(p, name, global)
		if err != nil {
			res.Errors = append(res.Errors, errors.Wrapf(err, "%s", p.ID).Error())
			continue
		}
		if link == "" {
			continue
		}
		removed, err := removeManaged(link, canonical)
		if err != nil {
			res.Errors = append(res.Errors, errors.Wrapf(err, "%s", p.ID).Error())
			continue
		}
		if removed {
			res.Removed = append(res.Removed, p.ID)
			logger.Debug("skill unlinked", "provider", p.ID, "path", link)
		}
	}

	if ok, err := fileutil.Exists(canonical); err != nil {
		res.Errors = append(res.Errors, err.Error())
	} else if ok {
		if err := os.RemoveAll(canonical); err != nil {
			res.Errors = append(res.Errors, errors.Wrapf(err, "removing %s", canonical).Error())
		} else {
			res.CanonicalRemoved = true
		}
	}
	return res
}

// removeManaged deletes link if it is a link to canonical or a copied
// skill directory.
func removeManaged(link, canonical string) (bool, error) {
	info, err := os.Lstat(link)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "stat %s", link)
	}

	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		target, err := os.Readlink(link)
		if err != nil {
			return false, errors.Wrapf(err, "reading link %s", link)
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(link), target)
		}
		if filepath.Clean(target) != filepath.Clean(canonical) {
			return false, nil
		}
	case info.IsDir():
		if _, err := os.Stat(filepath.Join(link, ManifestFile)); err != nil {
			return false, nil
		}
	default:
		return false, nil
	}

	if err := os.RemoveAll(link); err != nil {
		return false, errors.Wrapf(err, "removing %s", link)
	}
	return true, nil
}
