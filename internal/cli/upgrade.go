package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

func newUpgradeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upgrade",
		Short: "Upgrade the schema to the latest revision",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tool, err := getTool(cmd.Context())
			if err != nil {
				return err
			}

			slog.Info("Applying all pending revisions")

			if err := tool.UpgradeLatest(cmd.Context()); err != nil {
				return fmt.Errorf("upgrade failed: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "✨ Schema is up to date!")
			return nil
		},
	}
}
