// Package version holds build metadata injected with -ldflags.
package version

import "fmt"

// These variables are populated by the Go linker (LDFLAGS) at build time.
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// String formats the build metadata on one line.
func String() string {
	return fmt.Sprintf("deflake %s (commit %s, built %s)", Version, CommitHash, BuildDate)
}
