// Package buildinfo exposes the version of the running binary.
//
// Release builds inject the values with ldflags:
//
//	go build -ldflags "-X github.com/yndnr/jobboard-go/internal/infra/buildinfo.Version=v1.2.0 \
//	  -X github.com/yndnr/jobboard-go/internal/infra/buildinfo.Commit=$(git rev-parse --short HEAD)"
//
// Without ldflags the commit and time fall back to the VCS stamp the Go
// toolchain embeds, and GoVersion always reports the running runtime.
package buildinfo
