// Package version holds build metadata injected at link time:
//
//	go build -ldflags "-X litegpt/internal/version.Version=v1.0.0 -X litegpt/internal/version.Commit=$(git rev-parse --short HEAD) -X litegpt/internal/version.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package version

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info returns a single-line summary of the build.
func Info() string {
	return fmt.Sprintf("litegpt %s (commit %s, built %s)", Version, Commit, Date)
}
