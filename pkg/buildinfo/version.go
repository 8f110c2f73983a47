// Package buildinfo holds version information injected at build time:
//
//	go build -ldflags "-X github.com/matzehuels/scenesync/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/scenesync/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/scenesync/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/scenesync
package buildinfo

import "fmt"

var (
	// Version is the semantic version, "dev" for local builds.
	Version = "dev"
	// Commit is the git commit the binary was built from.
	Commit = "none"
	// Date is the build timestamp.
	Date = "unknown"
)

// Template returns the cobra version template, which prints the command
// name followed by the build details.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
