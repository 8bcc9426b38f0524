package tools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterAll registers all tools with the MCP server.
// This is called from main after server creation but before Run().
func RegisterAll(server *mcp.Server, deps *Dependencies) {
	// Ping tool - test/placeholder
	mcp.AddTool(server, &mcp.Tool{
		Name:        "ping",
		Description: "Test tool - responds with pong or echoes input",
	}, NewPingHandler(deps))

	// Convene tool - run a full debate session
	mcp.AddTool(server, &mcp.Tool{
		Name:        "convene",
		Description: "Convene a council to debate a question over multiple rounds and return the decision record",
	}, NewConveneHandler(deps))

	// Catalog tools
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_personas",
		Description: "List the debate personas available for councils",
	}, NewListPersonasHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_councils",
		Description: "List the available councils with their members and round counts",
	}, NewListCouncilsHandler(deps))

	// Session storage tools
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_sessions",
		Description: "List stored debate sessions, most recent first",
	}, NewListSessionsHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_session",
		Description: "Load a stored debate session including its full transcript",
	}, NewGetSessionHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_session",
		Description: "Delete a stored debate session",
	}, NewDeleteSessionHandler(deps))
}
