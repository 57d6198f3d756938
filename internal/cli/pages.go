package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"wsadmin/internal/pagination"
)

func newPagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pages TOTAL CURRENT",
		Short: "Print the page control for TOTAL pages with CURRENT selected",
		Example: `  wsadmin pages 28 7
  1 ... 6 7 8 ... 28`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			total, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid total %q: %w", args[0], err)
			}
			current, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid current page %q: %w", args[1], err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), pagination.ComputeWindow(total, current).String())
			return nil
		},
	}
}
