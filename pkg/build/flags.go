// SPDX-License-Identifier: MIT

// Package build exposes metadata injected at compile time via -ldflags:
// application name, semantic version, git commit, and build timestamp.
package build

type Info struct {
	Name    string
	Version string
	Commit  string
	Time    string
}

// Populated by -ldflags at build time; the defaults cover `go run`
// during development.
var (
	buildName    = "physarum"
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildTime    = "unknown"
)

// GetInfo returns the build metadata for this binary.
func GetInfo() Info {
	return Info{
		Name:    buildName,
		Version: buildVersion,
		Commit:  buildCommit,
		Time:    buildTime,
	}
}
