package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Roll the schema back to the base revision",
		Long:  "Roll back every applied revision. The schema ends up empty; the revision files stay untouched.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tool, err := getTool(cmd.Context())
			if err != nil {
				return err
			}

			slog.Info("Resetting schema to base revision")

			if err := tool.Reset(cmd.Context()); err != nil {
				return fmt.Errorf("reset failed: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "✨ Schema reset to base.")
			return nil
		},
	}
}
