package buildinfo

import "fmt"

// Set via -ldflags "-X github.com/exim-ops/ledgerrecon/internal/buildinfo.Version=..." at release time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String renders the build stamp shown by --version and the health endpoint.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
