// Package version reports the build version of agora binaries
package version

// BuildInfo holds version information about the build
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info returns the build information
// version, commit and date are stamped with
// -ldflags "-X 'agora/internal/core/version.version=v0.1.0' -X 'agora/internal/core/version.commit=abcd'"
func Info() BuildInfo {
	return BuildInfo{
		Service: Service,
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

// Service is the name binaries report in health and version payloads
const Service = "agora"

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
