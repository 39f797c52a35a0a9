package buildinfo

import (
	"runtime"
	"runtime/debug"
	"sync"
)

// Build-time variables (set via ldflags).
var (
	// Version is the semantic version.
	Version = "dev"

	// Commit is the git commit hash.
	Commit = "unknown"

	// BuildTime is the build timestamp.
	BuildTime = "unknown"
)

// Info contains build information.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildTime string `json:"build_time" yaml:"build_time"`
	GoVersion string `json:"go_version" yaml:"go_version"`
}

var (
	resolveOnce sync.Once
	resolved    Info
)

// Get returns the build information.
func Get() Info {
	resolveOnce.Do(func() {
		resolved = resolve(Version, Commit, BuildTime, readVCS())
	})
	return resolved
}

type vcsStamp struct {
	revision string
	time     string
	modified bool
}

func readVCS() vcsStamp {
	var stamp vcsStamp
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return stamp
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			stamp.revision = s.Value
		case "vcs.time":
			stamp.time = s.Value
		case "vcs.modified":
			stamp.modified = s.Value == "true"
		}
	}
	return stamp
}

// resolve prefers ldflags values and fills the gaps from the VCS stamp.
func resolve(version, commit, buildTime string, stamp vcsStamp) Info {
	if commit == "unknown" && stamp.revision != "" {
		commit = stamp.revision
		if len(commit) > 12 {
			commit = commit[:12]
		}
		if stamp.modified {
			commit += "-dirty"
		}
	}
	if buildTime == "unknown" && stamp.time != "" {
		buildTime = stamp.time
	}
	return Info{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}
}

// String returns a formatted version string.
func String() string {
	info := Get()
	return info.Version + " (" + info.Commit + ") built at " + info.BuildTime + " with " + info.GoVersion
}
