package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zeedivx/web-starter/internal/jsonutil"
	"github.com/zeedivx/web-starter/internal/mcptool"
)

// NewMCPCmd exposes the dispatcher's operations as Model Context Protocol
// tools over stdio.
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI assistant integration",
		Long: `Start the Model Context Protocol (MCP) server for AI assistants.
IMPORTANT: This command uses stdin/stdout for communication.
Logs are automatically redirected to stderr.`,
		Annotations: map[string]string{annotationOffline: "true"},
		RunE:        runMCP,
	}
	cmd.AddCommand(newMCPConfigCmd())
	return cmd
}

func runMCP(cmd *cobra.Command, _ []string) error {
	server, err := mcptool.NewServer(appVersion)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	slog.Info("Starting MCP server", "pid", os.Getpid())

	if err := server.Run(cmd.Context()); err != nil {
		if isClosingError(err) {
			slog.Info("MCP server session ended", "reason", "client disconnected")
			return nil
		}
		return fmt.Errorf("mcp server failure: %w", err)
	}

	return nil
}

func isClosingError(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		strings.Contains(err.Error(), "EOF")
}

func newMCPConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Generate MCP configuration JSON for AI assistants",
		RunE: func(cmd *cobra.Command, _ []string) error {
			exePath, err := os.Executable()
			if err != nil {
				return fmt.Errorf("could not determine executable path: %w", err)
			}

			cfg, err := getConfig(cmd.Context())
			if err != nil {
				return err
			}

			clientConfig := map[string]any{
				"mcpServers": map[string]any{
					"schema-migration": map[string]any{
						"command": exePath,
						"args":    []string{"mcp"},
						"env": map[string]string{
							"MIGRATOR_BIN": cfg.Migrator.Bin,
							"DB_HOST":      cfg.Database.Host,
							"DB_NAME":      cfg.Database.Name,
						},
					},
				},
			}

			encoder := jsonutil.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(clientConfig)
		},
	}
}
