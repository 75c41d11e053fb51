// Package version holds build metadata for the agentmd binary.
//
// Release builds set the variables with ldflags:
//
//	go build -ldflags "-X github.com/jmylchreest/agentmd/internal/version.Version=1.0.0 ..."
//
// Binaries installed with go install fall back to the module build info.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	Dirty     = "false"
	BuildDate = "unknown"
)

// Info is the build metadata reported by `agentmd version`.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	Dirty     bool   `json:"dirty" yaml:"dirty"`
	BuildDate string `json:"build_date" yaml:"build_date"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

// Get returns the build metadata, preferring ldflags values over the
// embedded module build info.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		Dirty:     Dirty == "true",
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = strings.TrimPrefix(bi.Main.Version, "v")
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "unknown" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.BuildDate == "unknown" {
				info.BuildDate = s.Value
			}
		case "vcs.modified":
			if s.Value == "true" {
				info.Dirty = true
			}
		}
	}
	return info
}

// String is the version with a -dirty suffix for modified trees.
func String() string {
	return Get().String()
}

func (i Info) String() string {
	if i.Dirty {
		return i.Version + "-dirty"
	}
	return i.Version
}

// UserAgent is the User-Agent the fetchers send by default.
func UserAgent() string {
	return "agentmd/" + String() + " (+https://github.com/jmylchreest/agentmd)"
}

// Text renders the multi-line form printed by `agentmd version`.
func (i Info) Text() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "agentmd %s\n", i)
	fmt.Fprintf(&sb, "  commit:  %s\n", i.Commit)
	fmt.Fprintf(&sb, "  built:   %s\n", i.BuildDate)
	fmt.Fprintf(&sb, "  go:      %s\n", i.GoVersion)
	fmt.Fprintf(&sb, "  os/arch: %s", i.Platform)
	return sb.String()
}
