// Package versions describes the running mxn-svg build.
package versions

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

const unknownStr = "unknown"

// Build information, set with -ldflags "-X github.com/stacklok/mxn-svg/pkg/versions.Version=..."
var (
	// Version is the released version, "dev" for local builds
	Version = "dev"
	// Commit is the git commit the binary was built from
	Commit = unknownStr
	// BuildDate is when the binary was built
	BuildDate = unknownStr
	// BuildType is "release" for official releases and "development" otherwise
	BuildType = "development"
)

// VersionInfo is printed by the version command
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	Release   bool   `json:"release"`
}

// String renders the info on one line
func (i VersionInfo) String() string {
	return fmt.Sprintf("mxn-svg %s (commit %s, built %s, %s, %s)",
		i.Version, i.Commit, i.BuildDate, i.GoVersion, i.Platform)
}

// GetVersionInfo returns the version information of this binary
func GetVersionInfo() VersionInfo {
	return versionInfo(Version, Commit, BuildDate, BuildType, readVCS)
}

// readVCS returns the revision and time recorded by the Go toolchain
func readVCS() (revision, at string) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", ""
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.time":
			at = setting.Value
		}
	}
	return revision, at
}

func versionInfo(version, commit, buildDate, buildType string, vcs func() (string, string)) VersionInfo {
	if strings.HasPrefix(version, "dev") {
		revision, at := vcs()
		if commit == unknownStr && revision != "" {
			commit = revision
		}
		if buildDate == unknownStr && at != "" {
			buildDate = at
		}
	}

	if buildDate != unknownStr {
		if t, err := time.Parse(time.RFC3339, buildDate); err == nil {
			buildDate = t.UTC().Format("2006-01-02 15:04:05 MST")
		}
	}

	// Local builds are named after the first 8 characters of the commit
	if version == "dev" {
		version = fmt.Sprintf("build-%.*s", 8, commit)
	}

	return VersionInfo{
		Version:   version,
		Commit:    commit,
		BuildDate: buildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		Release:   buildType == "release",
	}
}
