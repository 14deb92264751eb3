// SPDX-License-Identifier: MIT
//
// Package build carries build metadata (name, version, commit, timestamp)
// embedded with -ldflags at compile time. Development builds that were not
// stamped fall back to placeholder values instead of failing.
package build

// Populated via -ldflags, e.g.:
//
//	-X github.com/Arcadesys/doctorfeelgood-sub001/pkg/build.buildVersion=v1.2.3
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
)

// Info describes the running binary.
type Info struct {
	Name    string
	Time    string
	Commit  string
	Version string
}

var info = Info{
	Name:    "blsd",
	Time:    "unknown",
	Commit:  "unknown",
	Version: "dev",
}

// Initialize copies any stamped ldflags values over the development
// defaults. Call once, early in startup.
func Initialize() {
	if buildName != "" {
		info.Name = buildName
	}
	if buildTime != "" {
		info.Time = buildTime
	}
	if buildCommit != "" {
		info.Commit = buildCommit
	}
	if buildVersion != "" {
		info.Version = buildVersion
	}
}

// GetInfo returns the build information for the running binary.
func GetInfo() Info {
	return info
}
