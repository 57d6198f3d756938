package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"wsadmin/internal/storage"
)

func newSeedCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "seed FILE",
		Short: "Load YAML fixtures into the store",
		Example: `  # Load users, teams, projects and workspaces
  wsadmin seed fixtures.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open fixtures: %w", err)
			}
			defer file.Close()

			fixtures, err := storage.LoadFixtures(file)
			if err != nil {
				return err
			}

			store, err := storage.Open(cmd.Context(), cfg.Storage)
			if err != nil {
				return err
			}
			defer store.Close()

			result, err := store.Seed(cmd.Context(), fixtures)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d users, %d teams, %d members, %d projects, %d workspaces\n",
				result.Users, result.Teams, result.Members, result.Projects, result.Workspaces)
			return nil
		},
	}
}
