package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"wsadmin/internal/server"
)

func newServeCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and maintenance jobs",
		Long: `Runs the HTTP API and the maintenance scheduler until SIGINT or SIGTERM.
Pending migrations are applied on startup.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return server.New(cfg).Run(ctx)
		},
	}
}
