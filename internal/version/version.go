// Package version provides build version information and runtime metadata.
package version

import (
	"fmt"
	"runtime"
	"time"
)

var (
	// These are set via ldflags at build time
	Version = "dev"
	Commit  = "unknown"
	Date    = ""
)

// Info returns a human-readable version string.
func Info() string {
	date := Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	return fmt.Sprintf("copilot-usage %s (commit: %s, built: %s, %s/%s)",
		Version, Commit, date, runtime.GOOS, runtime.GOARCH)
}
