// Package version holds build version information.
package version

// Set at build time via -ldflags:
//
//	-X github.com/bucketops/bucketctl/internal/version.Version=v0.3.0
//	-X github.com/bucketops/bucketctl/internal/version.BuildTime=2026-08-25
var (
	Version   = "v0.3.0-dev"
	BuildTime = "unknown"
)
