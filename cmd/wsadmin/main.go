// Package main provides the entry point for wsadmin, the admin dashboard
// backend of a cloud workspace platform.
package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"

	"wsadmin/internal/api"
	"wsadmin/internal/cli"
)

// Version information set during build time
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	api.Version = Version

	cmd := cli.NewRootCmd(Version)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		log.Error().
			Err(err).
			Str("commit", GitCommit).
			Str("build_time", BuildTime).
			Msg("Command failed")
		os.Exit(1)
	}
}
