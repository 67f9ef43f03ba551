// Package buildinfo holds the version stamped into trackdash at link time.
//
//	go build -ldflags "-X github.com/matzehuels/trackdash/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/trackdash/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/trackdash/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Template is the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}

// UserAgent identifies the dashboard in outgoing HTTP requests.
func UserAgent() string {
	return "trackdash/" + Version
}

// CacheScope prefixes cache keys so that artifacts from one build are never
// served by another. Dev builds include the short commit when it is known.
func CacheScope() string {
	if Commit == "none" || len(Commit) < 7 {
		return Version + ":"
	}
	return Version + "+" + Commit[:7] + ":"
}
