package core

import "fmt"

// Build metadata, injected with ldflags:
//
//	go build -ldflags "-X cardupdater/core.Version=$(git describe --tags --always) \
//	  -X cardupdater/core.GitCommit=$(git rev-parse --short HEAD) \
//	  -X cardupdater/core.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" .
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// GetVersionInfo returns a one-line version string.
//
// Examples:
//   - "v1.0.0 (built 2024-01-15T10:30:00Z, commit abc1234)"
//   - "dev (built unknown, commit unknown)"
func GetVersionInfo() string {
	return fmt.Sprintf("%s (built %s, commit %s)", Version, BuildTime, GitCommit)
}

// UserAgent is sent on outgoing API requests.
func UserAgent() string {
	return "cardupdater/" + Version
}
