// Package version carries build information stamped in with -ldflags.
package version

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// Set at build time:
//
//	go build -ldflags "-X tgnotify/internal/shared/version.Version=v1.2.0 -X tgnotify/internal/shared/version.Commit=abc123"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Normalize ensures version string has "v" prefix for semver compatibility.
// Examples: "1.2.3" -> "v1.2.3", "v1.2.3" -> "v1.2.3"
func Normalize(version string) string {
	version = strings.TrimSpace(version)
	if version == "" {
		return ""
	}
	if !strings.HasPrefix(version, "v") {
		return "v" + version
	}
	return version
}

// IsRelease reports whether v is a valid semver release without a prerelease suffix.
func IsRelease(v string) bool {
	v = Normalize(v)
	return semver.IsValid(v) && semver.Prerelease(v) == ""
}

// Current returns the running version, normalized when it is a semver tag.
func Current() string {
	if n := Normalize(Version); semver.IsValid(n) {
		return semver.Canonical(n)
	}
	return Version
}

// String formats the full build information for the version command.
func String() string {
	return fmt.Sprintf("tgnotify %s (commit %s, built %s)", Current(), Commit, BuildTime)
}
