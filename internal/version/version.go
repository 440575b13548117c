// Package version holds build metadata for indexed, injected at link time:
//
//	go build -ldflags "-X github.com/jmylchreest/indexed/internal/version.Version=x.y.z \
//	  -X github.com/jmylchreest/indexed/internal/version.Commit=$(git rev-parse HEAD) \
//	  -X github.com/jmylchreest/indexed/internal/version.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package version

import (
	"fmt"
	"runtime"
)

// unknown marks metadata that was not injected.
const unknown = "unknown"

var (
	// Version is the semantic version of the application.
	Version = "dev"

	// Commit is the git commit hash of the build.
	Commit = unknown

	// Date is the build date in RFC3339 format.
	Date = unknown
)

// Info is the build metadata of the running binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetInfo returns the build metadata of the running binary.
func GetInfo() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// ShortCommit returns at most the first 8 characters of the commit hash.
func (i Info) ShortCommit() string {
	return i.Commit[:min(8, len(i.Commit))]
}

// String formats the metadata on one line. Commit and date are only included
// when both were injected.
func (i Info) String() string {
	if i.Commit != unknown && i.Date != unknown {
		return fmt.Sprintf("indexed version %s (commit: %s, built: %s, %s, %s)",
			i.Version, i.ShortCommit(), i.Date, i.GoVersion, i.Platform)
	}
	return fmt.Sprintf("indexed version %s (%s, %s)", i.Version, i.GoVersion, i.Platform)
}

// String returns the one-line description of the running binary.
func String() string {
	return GetInfo().String()
}

// Short returns the bare version, as shown by --version.
func Short() string {
	return Version
}
