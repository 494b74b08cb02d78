package mcptool

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) handleCurrent(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ emptyArgs,
) (*mcp.CallToolResult, any, error) {
	if err := s.tool.Current(ctx); err != nil {
		return toolErrorResult(s.report(fmt.Sprintf("Current revision lookup failed: %v", err))), nil, nil
	}
	return toolTextResult(s.report("### Current revision")), nil, nil
}

func (s *Server) handleHistory(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ emptyArgs,
) (*mcp.CallToolResult, any, error) {
	if err := s.tool.HistoryVerbose(ctx); err != nil {
		return toolErrorResult(s.report(fmt.Sprintf("History lookup failed: %v", err))), nil, nil
	}
	return toolTextResult(s.report("### Revision history")), nil, nil
}

func (s *Server) handleUpgrade(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ emptyArgs,
) (*mcp.CallToolResult, any, error) {
	if err := s.tool.UpgradeLatest(ctx); err != nil {
		return toolErrorResult(s.report(fmt.Sprintf("Upgrade failed: %v", err))), nil, nil
	}
	return toolTextResult(s.report("✅ Schema upgraded to the latest revision.")), nil, nil
}

func (s *Server) handleDowngrade(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	args stepsArgs,
) (*mcp.CallToolResult, any, error) {
	steps := args.Steps
	if steps == 0 {
		steps = 1
	}
	if steps < 0 {
		return toolErrorResult("steps must be a positive number"), nil, nil
	}

	if err := s.tool.Downgrade(ctx, steps); err != nil {
		return toolErrorResult(s.report(fmt.Sprintf("Downgrade failed: %v", err))), nil, nil
	}
	return toolTextResult(s.report(fmt.Sprintf("✅ Rolled back %d revision(s).", steps))), nil, nil
}

func (s *Server) handleCreate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	args messageArgs,
) (*mcp.CallToolResult, any, error) {
	message := strings.TrimSpace(args.Message)
	if message == "" {
		return toolErrorResult("message is required"), nil, nil
	}

	if err := s.tool.GenerateRevision(ctx, message); err != nil {
		return toolErrorResult(s.report(fmt.Sprintf("Revision generation failed: %v", err))), nil, nil
	}
	return toolTextResult(s.report(fmt.Sprintf("🚀 Generated new revision: %s", message))), nil, nil
}

func (s *Server) handleReset(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ emptyArgs,
) (*mcp.CallToolResult, any, error) {
	if err := s.tool.Reset(ctx); err != nil {
		return toolErrorResult(s.report(fmt.Sprintf("Reset failed: %v", err))), nil, nil
	}
	return toolTextResult(s.report("✅ Schema reset to the base revision.")), nil, nil
}

// report appends the engine's captured output to the message so the
// assistant sees what the engine actually printed.
func (s *Server) report(header string) string {
	out := strings.TrimSpace(s.capture.LastOutput())
	if out == "" {
		return header
	}
	return header + "\n\n```\n" + out + "\n```"
}

func toolErrorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: message}},
	}
}

func toolTextResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: message}},
	}
}
