// Package version provides build-time version information.
//
// Variables are set at build time via ldflags:
//
//	go build -ldflags "-X github.com/rickgao/tablesync/internal/version.Version=1.0.0 \
//	                   -X github.com/rickgao/tablesync/internal/version.Commit=$(git rev-parse --short HEAD) \
//	                   -X github.com/rickgao/tablesync/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/tablesync
package version

import "runtime/debug"

// Build-time variables (set via ldflags)
var (
	// Version is the semantic version (e.g., "1.0.0")
	Version = "dev"

	// Commit is the git commit hash (short form)
	Commit = "unknown"

	// BuildTime is the UTC build timestamp (ISO 8601)
	BuildTime = "unknown"
)

// String returns a formatted version string.
func String() string {
	return Version + " (" + Commit + ") built " + BuildTime
}

// Resolve fills Commit and BuildTime from the embedded VCS stamp when they
// were not set via ldflags (e.g. go install).
func Resolve() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	resolve(info.Settings)
}

func resolve(settings []debug.BuildSetting) {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if Commit == "unknown" && s.Value != "" {
				Commit = s.Value
				if len(Commit) > 7 {
					Commit = Commit[:7]
				}
			}
		case "vcs.time":
			if BuildTime == "unknown" && s.Value != "" {
				BuildTime = s.Value
			}
		}
	}
}
