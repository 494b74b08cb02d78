package cli

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"
)

func newDowngradeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "downgrade [steps]",
		Short: "Roll back one or more revisions",
		Long:  "Roll back the given number of revisions, most recent first. Defaults to a single step.",
		Example: `  migrate downgrade
  migrate downgrade 3`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("invalid step count %q: expected a positive integer", args[0])
				}
				steps = n
			}

			tool, err := getTool(cmd.Context())
			if err != nil {
				return err
			}

			slog.Info("Rolling back revisions", "steps", steps)

			if err := tool.Downgrade(cmd.Context(), steps); err != nil {
				return fmt.Errorf("downgrade failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✨ Rolled back %d revision(s).\n", steps)
			return nil
		},
	}
}
