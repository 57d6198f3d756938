package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"wsadmin/internal/storage"
)

func newMigrateCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending migrations and print the migration status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			// Open applies pending migrations.
			store, err := storage.Open(cmd.Context(), cfg.Storage)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.Migrator().Status(cmd.Context())
			if err != nil {
				return err
			}
			return printMigrations(cmd.OutOrStdout(), records)
		},
	}
}

func printMigrations(out io.Writer, records []storage.MigrationRecord) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tNAME\tAPPLIED AT")
	for _, r := range records {
		fmt.Fprintf(w, "%d\t%s\t%s\n", r.Version, r.Name, r.AppliedAt.Format(time.RFC3339))
	}
	return w.Flush()
}
