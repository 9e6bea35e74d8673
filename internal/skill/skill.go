package skill

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/thoreinstein/agentsync/internal/errors"
	"github.com/thoreinstein/agentsync/pkg/frontmatter"
)

// ManifestFile is the file every skill directory must contain.
const ManifestFile = "SKILL.md"

const maxNameLength = 64

var nameRegex = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Metadata is the SKILL.md frontmatter.
type Metadata struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	License     string            `yaml:"license,omitempty"`
	Metadata    map[string]string `yaml:"metadata,omitempty"`
}

// ValidateName checks that name is usable as a directory name in every
// provider: lowercase alphanumeric with single hyphens between segments.
func ValidateName(name string) error {
	switch {
	case name == "":
		return errors.Validationf("skill name is required")
	case len(name) > maxNameLength:
		return errors.Validationf("skill name %q exceeds maximum length of %d characters", name, maxNameLength)
	case nameRegex.MatchString(name):
		return nil
	case strings.HasPrefix(name, "-") || strings.HasSuffix(name, "-"):
		return errors.Validationf("skill name %q cannot start or end with a hyphen", name)
	case strings.Contains(name, "--"):
		return errors.Validationf("skill name %q cannot contain consecutive hyphens", name)
	case strings.ToLower(name) != name:
		return errors.Validationf("skill name %q must be lowercase", name)
	default:
		return errors.Validationf("skill name %q must be lowercase alphanumeric with single hyphens between segments", name)
	}
}

// ReadMetadata parses dir/SKILL.md. A missing file or missing frontmatter
// is an error.
func ReadMetadata(dir string) (*Metadata, error) {
	path := filepath.Join(dir, ManifestFile)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Validationf("%s has no %s", dir, ManifestFile)
		}
		return nil, errors.Wrapf(err, "stat %s", path)
	}

	meta, _, err := frontmatter.ParseFile[Metadata](path)
	if err != nil {
		return nil, errors.Mark(err, errors.ErrValidation)
	}
	return &meta, nil
}

// CheckSource verifies that dir is a skill directory for name.
func CheckSource(dir, name string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return errors.Wrapf(err, "skill source %s", dir)
	}
	if !info.IsDir() {
		return errors.Validationf("skill source %s is not a directory", dir)
	}

	meta, err := ReadMetadata(dir)
	if err != nil {
		return err
	}
	if meta.Name != "" && meta.Name != name {
		return errors.Validationf("%s declares name %q, expected %q", ManifestFile, meta.Name, name)
	}
	return nil
}
