package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

func newCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <message>",
		Short: "Generate a new revision from model changes",
		Long: `Ask the engine to diff the models against the current schema and write
a new revision file. The message becomes the revision description.`,
		Example: `  migrate create "add users table"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tool, err := getTool(cmd.Context())
			if err != nil {
				return err
			}

			slog.Info("Generating new revision", "message", args[0])

			if err := tool.GenerateRevision(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("revision generation failed: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "✨ New revision generated.")
			return nil
		},
	}
}
