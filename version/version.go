// Package version reports the modsynth build.
package version

import (
	"fmt"
	"runtime/debug"
)

// You can set the version at build time using something like:
// go build -ldflags "-X github.com/vsariola/modsynth/version.Version=$(git describe --dirty)"

var Version string

var Hash = func() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	return hash(info.Settings)
}()

var VersionOrHash = func() string {
	if Version != "" {
		return Version
	}
	return Hash
}()

// hash returns the short vcs revision, suffixed with -dirty for modified
// trees.
func hash(settings []debug.BuildSetting) string {
	var revision string
	modified := false
	for _, setting := range settings {
		switch setting.Key {
		case "vcs.modified":
			modified = setting.Value == "true"
		case "vcs.revision":
			revision = setting.Value
		}
	}
	if len(revision) > 7 {
		revision = revision[:7]
	}
	if revision != "" && modified {
		return revision + "-dirty"
	}
	return revision
}

// Describe returns a one-line description of the build, e.g.
// "modsynth v0.1.0 (go1.25.0)".
func Describe() string {
	v := VersionOrHash
	if v == "" {
		v = "(devel)"
	}
	goVersion := "unknown"
	if info, ok := debug.ReadBuildInfo(); ok {
		goVersion = info.GoVersion
	}
	return fmt.Sprintf("modsynth %s (%s)", v, goVersion)
}
