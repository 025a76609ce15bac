package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/finadvisor/orchestrator/schema"
)

const Version = "1.0.0"

// Handler runs one orchestration end to end.
type Handler interface {
	Handle(ctx context.Context, query, document string) schema.ServiceResponseEnvelope
}

// New builds an MCP server exposing the orchestrator as a single tool,
// for hosts that speak MCP instead of HTTP.
func New(h Handler) *server.MCPServer {
	s := server.NewMCPServer("finadvisor-orchestrator", Version,
		server.WithToolCapabilities(false),
	)

	tool := mcp.NewTool("orchestrate",
		mcp.WithDescription("Classify a user message and route it to the right assistant: knowledge-base answering, document analysis or shopping advice."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The user message to classify and answer."),
		),
		mcp.WithString("document",
			mcp.Description("Optional base64-encoded document accompanying the message."),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		document := req.GetString("document", "")

		env := h.Handle(ctx, query, document)
		out, err := json.Marshal(env)
		if err != nil {
			return nil, fmt.Errorf("encode orchestration result failed, err: %w", err)
		}
		return mcp.NewToolResultText(string(out)), nil
	})

	return s
}

// ServeStdio blocks serving the MCP protocol over stdin/stdout.
func ServeStdio(h Handler) error {
	return server.ServeStdio(New(h))
}
