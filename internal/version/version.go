// Package version contains build version information.
package version

// Build metadata, overridden at link time:
//
//	go build -ldflags "-X github.com/bissquit/hotel-booking/internal/version.Version=1.2.0"
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)
