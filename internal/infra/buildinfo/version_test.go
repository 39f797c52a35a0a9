package buildinfo

import (
	"runtime"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()

	if info.Version == "" || info.Commit == "" || info.BuildTime == "" {
		t.Errorf("Get() = %+v, no field may be empty", info)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q, want %q", info.GoVersion, runtime.Version())
	}
}

func TestString(t *testing.T) {
	s := String()
	info := Get()

	if !strings.HasPrefix(s, info.Version+" ("+info.Commit+")") {
		t.Errorf("String() = %q", s)
	}
	if !strings.HasSuffix(s, runtime.Version()) {
		t.Errorf("String() = %q, should end with the Go version", s)
	}
}

func TestResolve(t *testing.T) {
	stamp := vcsStamp{
		revision: "0123456789abcdef0123",
		time:     "2026-01-02T03:04:05Z",
		modified: true,
	}

	tests := []struct {
		name       string
		commit     string
		buildTime  string
		stamp      vcsStamp
		wantCommit string
		wantTime   string
	}{
		{"ldflags win", "abc1234", "2025-12-31", stamp, "abc1234", "2025-12-31"},
		{"vcs fallback", "unknown", "unknown", stamp, "0123456789ab-dirty", "2026-01-02T03:04:05Z"},
		{"clean short revision", "unknown", "unknown", vcsStamp{revision: "abc"}, "abc", "unknown"},
		{"no stamp", "unknown", "unknown", vcsStamp{}, "unknown", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := resolve("v1.0.0", tt.commit, tt.buildTime, tt.stamp)
			if info.Commit != tt.wantCommit {
				t.Errorf("Commit = %q, want %q", info.Commit, tt.wantCommit)
			}
			if info.BuildTime != tt.wantTime {
				t.Errorf("BuildTime = %q, want %q", info.BuildTime, tt.wantTime)
			}
			if info.Version != "v1.0.0" {
				t.Errorf("Version = %q", info.Version)
			}
		})
	}
}
