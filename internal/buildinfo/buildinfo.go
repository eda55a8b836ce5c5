// Package buildinfo reports version details recorded by the Go toolchain.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

// Version returns the module version or "dev" when unset.
func Version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info == nil {
		return "dev"
	}
	return mainVersion(info)
}

func mainVersion(info *debug.BuildInfo) string {
	version := info.Main.Version
	if version == "" || version == "(devel)" {
		return "dev"
	}
	return version
}

// Tags returns the GOFLAGS build tags recorded at compile time.
func Tags() string {
	return setting("-tags")
}

// Revision returns the VCS revision the binary was built from, shortened to
// 12 characters and suffixed with "-dirty" for modified trees.
func Revision() string {
	rev := setting("vcs.revision")
	if rev == "" {
		return ""
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	if setting("vcs.modified") == "true" {
		rev += "-dirty"
	}
	return rev
}

func setting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info == nil {
		return ""
	}
	return settingFrom(info, key)
}

func settingFrom(info *debug.BuildInfo, key string) string {
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}

// VersionWithTags returns the version string and tags if present.
func VersionWithTags() string {
	return withTags(Version(), Tags())
}

func withTags(version, tags string) string {
	if tags == "" {
		return version
	}
	return fmt.Sprintf("%s (tags: %s)", version, tags)
}
