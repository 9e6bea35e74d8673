package provider

import (
	"os"
)

// InstallStatus indicates the installation state of a provider.
type InstallStatus string

const (
	// StatusInstalled indicates the provider's global config directory exists.
	StatusInstalled InstallStatus = "installed"

	// StatusNotInstalled indicates the provider's global config directory does not exist.
	StatusNotInstalled InstallStatus = "not_installed"
)

// DetectionResult contains information about a detected provider.
type DetectionResult struct {
	// ID is the provider identifier.
	ID string `json:"id"`

	// ConfigDir is the global configuration directory that was probed.
	ConfigDir string `json:"config_dir"`

	// Status indicates the installation state of the provider.
	Status InstallStatus `json:"status"`
}

// Detect checks whether p is installed. A provider counts as installed when
// its global configuration directory exists.
func Detect(p *Provider) *DetectionResult {
	status := StatusNotInstalled
	if dirExists(p.ConfigDir) {
		status = StatusInstalled
	}
	return &DetectionResult{
		ID:        p.ID,
		ConfigDir: p.ConfigDir,
		Status:    status,
	}
}

// DetectInstalled returns only the installed providers, in input order.
func DetectInstalled(providers []*Provider) []*Provider {
	installed := make([]*Provider, 0, len(providers))
	for _, p := range providers {
		if Detect(p).Status == StatusInstalled {
			installed = append(installed, p)
		}
	}
	return installed
}

// dirExists returns true if the path exists and is a directory.
func dirExists(path string) bool {
	if path == "" {
		return false
	}

	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return info.IsDir()
}
