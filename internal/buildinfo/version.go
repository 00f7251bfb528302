// Package buildinfo holds values stamped in at link time:
//
//	go build -ldflags "-X github.com/YoshitsuguKoike/noterefiner/internal/buildinfo.Version=v1.0.0 \
//	  -X github.com/YoshitsuguKoike/noterefiner/internal/buildinfo.Commit=$(git rev-parse --short HEAD)"
package buildinfo

var (
	Version = "dev"
	Commit  = ""
)

// GetVersion returns Version, or "dev" for unstamped builds
func GetVersion() string {
	if Version == "" {
		return "dev"
	}
	return Version
}

// String is the version with the commit appended when known
func String() string {
	if Commit == "" {
		return GetVersion()
	}
	return GetVersion() + " (" + Commit + ")"
}
