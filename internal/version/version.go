package version

import (
	"sort"
	"strings"

	"golang.org/x/mod/semver"
)

// Version is the service version, overridden at build time with
// -ldflags "-X github.com/Xunop/e-library/internal/version.Version=x.y.z".
var Version = "0.1.0"

func GetCurrentVersion() string {
	return Version
}

// GetMinorVersion returns "major.minor" of a version string.
func GetMinorVersion(version string) string {
	return strings.TrimPrefix(semver.MajorMinor(canonical(version)), "v")
}

// GetSchemaVersion returns the version the database schema is tagged with,
// patch releases never change the schema.
func GetSchemaVersion(version string) string {
	return GetMinorVersion(version) + ".0"
}

// IsVersionGreaterOrEqualThan returns true if version is greater than or equal to target.
func IsVersionGreaterOrEqualThan(version, target string) bool {
	return semver.Compare(canonical(version), canonical(target)) >= 0
}

// IsVersionGreaterThan returns true if version is greater than target.
func IsVersionGreaterThan(version, target string) bool {
	return semver.Compare(canonical(version), canonical(target)) > 0
}

func canonical(version string) string {
	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	return version
}

type SortVersion []string

func (s SortVersion) Len() int {
	return len(s)
}

func (s SortVersion) Swap(i, j int) {
	s[i], s[j] = s[j], s[i]
}

func (s SortVersion) Less(i, j int) bool {
	return semver.Compare(canonical(s[i]), canonical(s[j])) < 0
}

// Sort orders versions ascending in place.
func Sort(versions []string) {
	sort.Sort(SortVersion(versions))
}
