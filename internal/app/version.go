package app

import "fmt"

// Build metadata, stamped by the release build.
// Example: go build -ldflags "-X github.com/spraakbanken/saldowsd/internal/app.Version=1.0.0"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// BuildVersion is printed by `saldowsd --version` and logged when serve starts.
func BuildVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildTime)
}
