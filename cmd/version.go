// Package cmd holds the agentsync build metadata, set at link time with
// -ldflags "-X github.com/thoreinstein/agentsync/cmd.Version=...".
package cmd

import "runtime/debug"

var (
	// Version is the release version, or "dev" for local builds.
	Version = "dev"
	// Commit is the VCS revision the binary was built from.
	Commit = "none"
	// Date is the build timestamp.
	Date = "unknown"
)

// Revision returns Commit, falling back to the revision recorded by the Go
// toolchain when the binary was built without ldflags.
func Revision() string {
	if Commit != "none" {
		return Commit
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Commit
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			return s.Value
		}
	}
	return Commit
}
