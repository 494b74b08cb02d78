package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

func newCurrentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the revision the database is at",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tool, err := getTool(cmd.Context())
			if err != nil {
				return err
			}

			slog.Info("Checking current revision")

			if err := tool.Current(cmd.Context()); err != nil {
				return fmt.Errorf("current revision lookup failed: %w", err)
			}
			return nil
		},
	}
}
