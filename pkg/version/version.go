package version

import "fmt"

// Injected at build time via -ldflags "-X frameworks/dbdoctor/pkg/version.Version=..."
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Name is the binary name reported to the server as application_name.
const Name = "dbdoctor"

// Info is the build metadata attached to rendered reports.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
}

func GetInfo() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
	}
}

// GetShortCommit returns the short git commit hash (first 7 characters)
func GetShortCommit() string {
	if len(GitCommit) >= 7 {
		return GitCommit[:7]
	}
	return GitCommit
}

// ApplicationName is the value sent as the Postgres application_name so the
// probe sessions can be told apart in pg_stat_activity.
func ApplicationName() string {
	return fmt.Sprintf("%s/%s", Name, Version)
}
