package mcptool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/zeedivx/web-starter/internal/config"
	"github.com/zeedivx/web-starter/internal/migration"
)

// Server exposes the migration dispatcher's operations as MCP tools over
// stdio. Every tool call maps to exactly one engine invocation, with the
// engine's combined output forwarded in the tool result.
type Server struct {
	mcpServer *mcp.Server
	tool      *migration.Tool
	capture   *migration.CaptureRunner
}

func NewServer(version string) (*Server, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	capture := &migration.CaptureRunner{}
	tool := migration.NewTool(migration.ToolOptions{
		Bin:         cfg.Migrator.Bin,
		ConfigFile:  cfg.Migrator.ConfigFile,
		WorkDir:     cfg.Migrator.WorkDir,
		DatabaseURL: cfg.Database.DSN(),
		Runner:      capture,
	})

	return newServerWithTool(tool, capture, version), nil
}

func newServerWithTool(tool *migration.Tool, capture *migration.CaptureRunner, version string) *Server {
	serverImpl := &mcp.Implementation{
		Name:    "schema-migration",
		Version: version,
	}

	s := &Server{
		mcpServer: mcp.NewServer(serverImpl, nil),
		tool:      tool,
		capture:   capture,
	}
	s.registerTools()
	return s
}

// registerTools defines the tool schemas and connects them to handlers.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "migration_current",
		Description: "Show the revision the database schema is currently at.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, s.handleCurrent)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "migration_history",
		Description: "Show the full revision history, most recent first.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, s.handleHistory)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "migration_upgrade",
		Description: "Apply every pending revision so the schema reaches the latest state.",
	}, s.handleUpgrade)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "migration_downgrade",
		Description: "Roll back the given number of revisions (default 1).",
	}, s.handleDowngrade)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "migration_create",
		Description: "Generate a new revision file from model changes with the given message.",
	}, s.handleCreate)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "migration_reset",
		Description: "Roll the schema all the way back to the base revision. Destructive.",
	}, s.handleReset)
}

// Run serves the MCP session on stdin/stdout until the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
