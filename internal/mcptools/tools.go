// Package mcptools exposes each gate as an MCP tool.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/danielpatrickdp/fcs-gates/internal/gate"
	"github.com/danielpatrickdp/fcs-gates/internal/logging"
)

// ServerName identifies this MCP server to clients.
const ServerName = "fcs-gates"

// #region gate-tool
// GateTool handles the score_<gate> MCP tool for one gate.
type GateTool struct {
	gate     *gate.Gate
	recorder *logging.Recorder
}

// NewGateTool creates a GateTool. recorder may be nil.
func NewGateTool(g *gate.Gate, recorder *logging.Recorder) *GateTool {
	return &GateTool{gate: g, recorder: recorder}
}

// ToolName maps a gate name to its tool name, e.g. score_question_depth.
func ToolName(gateName string) string {
	return "score_" + strings.ReplaceAll(gateName, "-", "_")
}

// Definition returns the MCP tool definition.
func (t *GateTool) Definition() mcp.Tool {
	spec := t.gate.Spec()
	return mcp.NewTool(ToolName(spec.Name),
		mcp.WithDescription(fmt.Sprintf(
			"Score text with the %s gate. Returns %s when %s >= %.1f, otherwise %s, with three dimension sub-scores.",
			spec.Name, spec.PassLabel, spec.ScoreField, spec.Threshold, spec.FailLabel,
		)),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The text to score."),
		),
	)
}

// Handle evaluates the call's arguments exactly as an HTTP body would be.
// Gate errors are returned as a normal JSON result with the error field set.
func (t *GateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(req.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode arguments: %v", err)), nil
	}
	res := t.gate.Evaluate(raw)
	if t.recorder != nil {
		t.recorder.Record("mcp", "", res)
	}

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// #endregion gate-tool

// #region server
// NewServer registers one tool per gate on a new MCP server.
func NewServer(gates []*gate.Gate, recorder *logging.Recorder, version string) *server.MCPServer {
	s := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)
	for _, g := range gates {
		tool := NewGateTool(g, recorder)
		s.AddTool(tool.Definition(), tool.Handle)
	}
	return s
}

// #endregion server
