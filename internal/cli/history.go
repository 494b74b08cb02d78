package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show the full revision history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tool, err := getTool(cmd.Context())
			if err != nil {
				return err
			}

			slog.Info("Fetching revision history")

			if err := tool.HistoryVerbose(cmd.Context()); err != nil {
				return fmt.Errorf("history failed: %w", err)
			}
			return nil
		},
	}
}
