// Package build provides version and build information for modkit.
// It has no dependencies on other internal packages.
package build

import "fmt"

var (
	// Version information - set via ldflags during build
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Info returns a one-line summary for `modkit version`.
func Info() string {
	return fmt.Sprintf("modkit %s (commit %s, built %s)", Version, Commit, BuildDate)
}
