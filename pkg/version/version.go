// Package version exposes build metadata injected at build time.
package version

import (
	"runtime"
	"time"
)

var (
	// Version is the semantic version, injected via -ldflags.
	Version = "dev"
	// GitCommit is the git commit hash, injected at build time.
	GitCommit = "unknown"
	// BuildDate is the build timestamp, injected at build time.
	BuildDate = "unknown"
	// GoVersion is the Go compiler version.
	GoVersion = runtime.Version()
	// Platform is the OS/Arch pair.
	Platform = runtime.GOOS + "/" + runtime.GOARCH
)

// BuildInfo contains metadata about the despauth build.
type BuildInfo struct {
	Version   string    `json:"version" yaml:"version"`
	GitCommit string    `json:"gitCommit" yaml:"git-commit"`
	BuildDate string    `json:"buildDate" yaml:"build-date"`
	GoVersion string    `json:"goVersion" yaml:"go-version"`
	Platform  string    `json:"platform" yaml:"platform"`
	BuildTime time.Time `json:"buildTime,omitempty" yaml:"build-time,omitempty"`
}

// GetBuildInfo returns build metadata, parsing BuildDate when it is RFC3339.
func GetBuildInfo() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: GoVersion,
		Platform:  Platform,
	}
	if t, err := time.Parse(time.RFC3339, BuildDate); err == nil {
		info.BuildTime = t
	}
	return info
}
