// Package cli implements the wsadmin command line.
package cli

import (
	"github.com/spf13/cobra"

	"wsadmin/internal/config"
)

// NewRootCmd creates the wsadmin root command with all subcommands.
func NewRootCmd(version string) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "wsadmin",
		Short:         "Admin dashboard backend for cloud workspaces",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	load := func() (*config.Config, error) {
		cfg, err := config.LoadFile(configPath)
		if err != nil {
			return nil, err
		}
		config.InitLogger(cfg.Log)
		return cfg, nil
	}

	cmd.AddCommand(
		newServeCmd(load),
		newMigrateCmd(load),
		newSeedCmd(load),
		newPagesCmd(),
	)

	return cmd
}

// configLoader loads and validates configuration for a subcommand.
type configLoader func() (*config.Config, error)
