// bucketctl - CLI for managing artifact buckets and files
package main

import (
	"os"

	"github.com/bucketops/bucketctl/internal/cli"
	"github.com/bucketops/bucketctl/internal/version"
)

// Version information - overridden at release time via LDFLAGS
var (
	Version   = "v0.3.0"
	BuildTime = "2026-08-25"
)

func main() {
	// Set version in version package (canonical source for all packages)
	version.Version = Version
	version.BuildTime = BuildTime

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
