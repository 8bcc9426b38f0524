package tools

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ListPersonasInput defines the input schema for the list_personas tool.
type ListPersonasInput struct{}

// NewListPersonasHandler creates the list_personas tool handler.
func NewListPersonasHandler(deps *Dependencies) mcp.ToolHandlerFor[ListPersonasInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListPersonasInput) (*mcp.CallToolResult, any, error) {
		jsonBytes, _ := json.MarshalIndent(deps.Catalog.Participants(), "", "  ")
		return TextResult(string(jsonBytes)), nil, nil
	}
}

// ListCouncilsInput defines the input schema for the list_councils tool.
type ListCouncilsInput struct{}

// NewListCouncilsHandler creates the list_councils tool handler.
func NewListCouncilsHandler(deps *Dependencies) mcp.ToolHandlerFor[ListCouncilsInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListCouncilsInput) (*mcp.CallToolResult, any, error) {
		jsonBytes, _ := json.MarshalIndent(deps.Catalog.Councils(), "", "  ")
		return TextResult(string(jsonBytes)), nil, nil
	}
}
