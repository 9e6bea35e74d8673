package doctor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/thoreinstein/agentsync/internal/backup"
	"github.com/thoreinstein/agentsync/internal/configfile"
	"github.com/thoreinstein/agentsync/internal/logging"
	"github.com/thoreinstein/agentsync/internal/provider"
)

// scopes is the order in which provider scopes are inspected.
var scopes = []provider.Scope{provider.ScopeProject, provider.ScopeGlobal}

// configFile is one provider config that exists on disk.
type configFile struct {
	providerID string
	path       string
	format     configfile.Format
}

// existingConfigs returns the config files of providers that exist, each
// path once. Project scope is skipped when projectDir is empty.
func existingConfigs(providers []*provider.Provider, projectDir string) []configFile {
	var out []configFile
	seen := make(map[string]bool)
	for _, p := range providers {
		for _, scope := range scopes {
			sc, err := p.ScopeConfig(scope)
			if err != nil {
				continue
			}
			path, err := p.ConfigPath(scope, projectDir)
			if err != nil || seen[path] {
				continue
			}
			if info, err := os.Stat(path); err != nil || info.IsDir() {
				continue
			}
			seen[path] = true
			out = append(out, configFile{providerID: p.ID, path: path, format: sc.Format})
		}
	}
	return out
}

// ProviderCheck reports which providers are installed.
type ProviderCheck struct {
	Providers []*provider.Provider
}

var _ Check = (*ProviderCheck)(nil)

// Name returns the unique identifier for this check.
func (c *ProviderCheck) Name() string { return "provider-detection" }

// Category returns the grouping for this check.
func (c *ProviderCheck) Category() string { return "provider" }

// Run executes the provider detection check.
func (c *ProviderCheck) Run() *CheckResult {
	installed := provider.DetectInstalled(c.Providers)
	result := &CheckResult{Name: c.Name(), Category: c.Category()}

	if len(installed) == 0 {
		result.Status = SeverityWarning
		result.Message = "no providers detected; agentsync has nothing to manage"
		result.FixHint = "install a supported assistant or pass --provider explicitly"
		return result
	}

	result.Status = SeverityPass
	result.Message = fmt.Sprintf("%d of %d provider(s) installed: %s",
		len(installed), len(c.Providers), strings.Join(provider.IDs(installed), ", "))
	return result
}

// ConfigSyntaxCheck parses every existing provider config file.
type ConfigSyntaxCheck struct {
	Providers  []*provider.Provider
	ProjectDir string
}

var _ Check = (*ConfigSyntaxCheck)(nil)

// Name returns the unique identifier for this check.
func (c *ConfigSyntaxCheck) Name() string { return "config-syntax" }

// Category returns the grouping for this check.
func (c *ConfigSyntaxCheck) Category() string { return "config" }

// Run executes the syntax validation check.
func (c *ConfigSyntaxCheck) Run() *CheckResult {
	files := existingConfigs(c.Providers, c.ProjectDir)
	result := &CheckResult{Name: c.Name(), Category: c.Category()}

	if len(files) == 0 {
		result.Status = SeverityInfo
		result.Message = "no config files found to validate"
		return result
	}

	for _, f := range files {
		if _, err := configfile.Read(f.path, f.format); err != nil {
			result.Issues = append(result.Issues, Issue{
				Path:       f.path,
				ProviderID: f.providerID,
				Problem:    err.Error(),
				Severity:   SeverityError,
			})
		}
	}

	result.Status = worst(result.Issues)
	if len(result.Issues) > 0 {
		result.Message = fmt.Sprintf("%d of %d config file(s) have syntax errors", len(result.Issues), len(files))
		result.FixHint = "fix the syntax in each file; installs into these providers will fail until then"
		return result
	}
	result.Message = fmt.Sprintf("%d config file(s) validated successfully", len(files))
	return result
}

// maxSecretFilePerm is the widest mode accepted for a config holding secrets.
const maxSecretFilePerm os.FileMode = 0o600

// SecretPermissionCheck flags config files that hold credentials and are
// readable by other users.
type SecretPermissionCheck struct {
	Providers  []*provider.Provider
	ProjectDir string
}

var _ Check = (*SecretPermissionCheck)(nil)

// Name returns the unique identifier for this check.
func (c *SecretPermissionCheck) Name() string { return "secret-permissions" }

// Category returns the grouping for this check.
func (c *SecretPermissionCheck) Category() string { return "filesystem" }

// Run executes the permission check.
func (c *SecretPermissionCheck) Run() *CheckResult {
	files := existingConfigs(c.Providers, c.ProjectDir)
	result := &CheckResult{Name: c.Name(), Category: c.Category()}

	var hints []string
	for _, f := range files {
		info, err := os.Stat(f.path)
		if err != nil || info.Mode().Perm()&^maxSecretFilePerm == 0 {
			continue
		}
		doc, err := configfile.Read(f.path, f.format)
		if err != nil || !containsSecret(doc) {
			continue
		}
		result.Issues = append(result.Issues, Issue{
			Path:       f.path,
			ProviderID: f.providerID,
			Problem:    fmt.Sprintf("contains credentials and has mode %04o", info.Mode().Perm()),
			Severity:   SeverityWarning,
		})
		hints = append(hints, "chmod 600 "+f.path)
	}

	result.Status = worst(result.Issues)
	if len(result.Issues) > 0 {
		result.Message = fmt.Sprintf("%d config file(s) with credentials are readable by others", len(result.Issues))
		result.FixHint = strings.Join(hints, "; ")
		return result
	}
	result.Message = fmt.Sprintf("%d config file(s) checked", len(files))
	return result
}

// containsSecret reports whether any key in v looks like a credential name
// or any string value looks like a known token.
func containsSecret(v any) bool {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			if s, ok := val.(string); ok && s != "" && logging.ShouldMask(k) {
				return true
			}
			if containsSecret(val) {
				return true
			}
		}
	case []any:
		for _, val := range t {
			if containsSecret(val) {
				return true
			}
		}
	case string:
		return logging.ContainsTokenPrefix(t)
	}
	return false
}

// SkillLinkCheck finds skill links whose target no longer exists.
type SkillLinkCheck struct {
	Providers  []*provider.Provider
	ProjectDir string
}

var _ Check = (*SkillLinkCheck)(nil)

// Name returns the unique identifier for this check.
func (c *SkillLinkCheck) Name() string { return "skill-links" }

// Category returns the grouping for this check.
func (c *SkillLinkCheck) Category() string { return "skill" }

// Run executes the link check.
func (c *SkillLinkCheck) Run() *CheckResult {
	result := &CheckResult{Name: c.Name(), Category: c.Category()}

	var checked int
	var hints []string
	for _, p := range c.Providers {
		for _, scope := range scopes {
			dir, err := p.SkillDir(scope, c.ProjectDir)
			if err != nil || dir == "" {
				continue
			}
			entries, err := os.ReadDir(dir)
			if err != nil {
				continue
			}
			for _, e := range entries {
				if e.Type()&os.ModeSymlink == 0 {
					continue
				}
				checked++
				link := filepath.Join(dir, e.Name())
				if _, err := os.Stat(link); err == nil {
					continue
				}
				target, _ := os.Readlink(link)
				result.Issues = append(result.Issues, Issue{
					Path:       link,
					ProviderID: p.ID,
					Problem:    "dangling link to " + target,
					Severity:   SeverityWarning,
				})
				hints = append(hints, "rm "+link)
			}
		}
	}

	result.Status = worst(result.Issues)
	if len(result.Issues) > 0 {
		result.Message = fmt.Sprintf("%d of %d skill link(s) are dangling", len(result.Issues), checked)
		result.FixHint = strings.Join(hints, "; ")
		return result
	}
	result.Message = fmt.Sprintf("%d skill link(s) resolve", checked)
	return result
}

// StaleBackupCheck finds backup directories left by batches that did not
// finish, which means their changes may not have been rolled back.
type StaleBackupCheck struct {
	// Dir is the backup parent. Empty means the system temp directory.
	Dir string
}

var _ Check = (*StaleBackupCheck)(nil)

// Name returns the unique identifier for this check.
func (c *StaleBackupCheck) Name() string { return "stale-backups" }

// Category returns the grouping for this check.
func (c *StaleBackupCheck) Category() string { return "batch" }

// Run executes the backup check.
func (c *StaleBackupCheck) Run() *CheckResult {
	dir := c.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	result := &CheckResult{Name: c.Name(), Category: c.Category()}

	entries, err := os.ReadDir(dir)
	if err != nil {
		result.Status = SeverityInfo
		result.Message = fmt.Sprintf("backup directory %s not readable", dir)
		return result
	}

	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), backup.Prefix) {
			continue
		}
		result.Issues = append(result.Issues, Issue{
			Path:     filepath.Join(dir, e.Name()),
			Problem:  "left by an interrupted batch",
			Severity: SeverityWarning,
		})
	}

	result.Status = worst(result.Issues)
	if len(result.Issues) > 0 {
		result.Message = fmt.Sprintf("%d interrupted batch(es) found", len(result.Issues))
		result.FixHint = "review the provider configs those batches targeted, then delete the listed directories"
		return result
	}
	result.Message = "no interrupted batches"
	return result
}
