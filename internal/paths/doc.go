// Package paths provides cross-platform path resolution for agentsync.
//
// It wraps github.com/adrg/xdg for the XDG Base Directory locations and
// provides the home-directory expansion used by provider definitions, whose
// global config paths are written as "~/.claude.json" and similar.
//
//	paths.AppConfigDir() // ~/.config/agentsync
//	paths.AppDataDir()   // ~/.local/share/agentsync (canonical skill storage)
//
// Provider-specific locations live in the provider package; this package
// only knows about agentsync's own directories.
package paths
