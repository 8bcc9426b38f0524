package tools

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lukasreiter/quorum/internal/db"
)

const storageHint = "Start the server with SURREALDB_URL set to enable session storage"

// ListSessionsInput defines the input schema for the list_sessions tool.
type ListSessionsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max sessions to return, default 20"`
}

// NewListSessionsHandler creates the list_sessions tool handler.
func NewListSessionsHandler(deps *Dependencies) mcp.ToolHandlerFor[ListSessionsInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListSessionsInput) (*mcp.CallToolResult, any, error) {
		if deps.Store == nil {
			return ErrorResult("Session storage is not configured", storageHint), nil, nil
		}

		summaries, err := deps.Store.ListSessions(ctx, input.Limit)
		if err != nil {
			deps.Logger.Error("list sessions failed", "error", err)
			return ErrorResult("Listing sessions failed", "Database may be unavailable"), nil, nil
		}

		jsonBytes, _ := json.MarshalIndent(summaries, "", "  ")
		return TextResult(string(jsonBytes)), nil, nil
	}
}

// GetSessionInput defines the input schema for the get_session tool.
type GetSessionInput struct {
	ID string `json:"id" jsonschema:"required,Session ID"`
}

// NewGetSessionHandler creates the get_session tool handler. Returns the
// full session including the transcript.
func NewGetSessionHandler(deps *Dependencies) mcp.ToolHandlerFor[GetSessionInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input GetSessionInput) (*mcp.CallToolResult, any, error) {
		if deps.Store == nil {
			return ErrorResult("Session storage is not configured", storageHint), nil, nil
		}
		if input.ID == "" {
			return ErrorResult("Session ID cannot be empty", "Use list_sessions to find session IDs"), nil, nil
		}

		session, err := deps.Store.GetSession(ctx, input.ID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return ErrorResult("Session "+input.ID+" not found", "Use list_sessions to find session IDs"), nil, nil
			}
			deps.Logger.Error("get session failed", "id", input.ID, "error", err)
			return ErrorResult("Loading session failed", "Database may be unavailable"), nil, nil
		}

		jsonBytes, _ := json.MarshalIndent(session, "", "  ")
		return TextResult(string(jsonBytes)), nil, nil
	}
}

// DeleteSessionInput defines the input schema for the delete_session tool.
type DeleteSessionInput struct {
	ID string `json:"id" jsonschema:"required,Session ID to delete"`
}

// NewDeleteSessionHandler creates the delete_session tool handler.
func NewDeleteSessionHandler(deps *Dependencies) mcp.ToolHandlerFor[DeleteSessionInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input DeleteSessionInput) (*mcp.CallToolResult, any, error) {
		if deps.Store == nil {
			return ErrorResult("Session storage is not configured", storageHint), nil, nil
		}
		if input.ID == "" {
			return ErrorResult("Session ID cannot be empty", ""), nil, nil
		}

		if err := deps.Store.DeleteSession(ctx, input.ID); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return ErrorResult("Session "+input.ID+" not found", ""), nil, nil
			}
			deps.Logger.Error("delete session failed", "id", input.ID, "error", err)
			return ErrorResult("Deleting session failed", "Database may be unavailable"), nil, nil
		}

		deps.Logger.Info("session deleted", "id", input.ID)
		return TextResult("Deleted session " + input.ID), nil, nil
	}
}
