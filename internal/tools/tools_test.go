//go:build integration

package tools_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukasreiter/quorum/internal/catalog"
	"github.com/lukasreiter/quorum/internal/debate"
	"github.com/lukasreiter/quorum/internal/models"
	"github.com/lukasreiter/quorum/internal/tools"
)

// testLogger creates a logger for test visibility.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// stubRunner returns a fixed finished session for any input.
type stubRunner struct {
	session *models.Session
}

func (r *stubRunner) Run(_ context.Context, in debate.RunInput) (*models.Session, error) {
	s := *r.session
	s.Question = in.Question
	s.Council = in.Council
	return &s, nil
}

func finishedSession() *models.Session {
	return &models.Session{
		ID: "sess-tools-1",
		Decision: &models.DecisionRecord{
			Decisions:     []string{"proceed"},
			Dissent:       []string{},
			OpenQuestions: []string{},
			Actions:       []string{},
			Confidence:    models.ConfidenceHigh,
			Summary:       "Council reached consensus.",
		},
		Metadata: models.SessionMetadata{
			TurnCount:    5,
			RoundCount:   2,
			BackendCalls: 6,
			Duration:     90 * time.Second,
		},
	}
}

// startSession wires a tool-registered server to an in-memory client.
func startSession(t *testing.T, deps *tools.Dependencies) *mcp.ClientSession {
	t.Helper()

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "test-quorum",
		Version: "0.0.1-test",
	}, nil)
	tools.RegisterAll(server, deps)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	go func() {
		_ = server.Run(ctx, serverTransport)
	}()
	time.Sleep(50 * time.Millisecond)

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err, "client should connect successfully")
	t.Cleanup(func() { session.Close() })
	return session
}

func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	textContent, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "content should be TextContent")
	return textContent.Text
}

func TestToolRegistration(t *testing.T) {
	deps := &tools.Dependencies{
		Runner:  &stubRunner{session: finishedSession()},
		Catalog: catalog.Default(),
		Logger:  testLogger(),
	}
	session := startSession(t, deps)
	ctx := context.Background()

	result, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	require.Len(t, result.Tools, 7)

	names := make(map[string]bool)
	for _, tool := range result.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"ping", "convene", "list_personas", "list_councils", "list_sessions", "get_session", "delete_session"} {
		assert.True(t, names[want], "tool %s should be registered", want)
	}
}

func TestPingTool(t *testing.T) {
	deps := &tools.Dependencies{
		Runner:  &stubRunner{session: finishedSession()},
		Catalog: catalog.Default(),
		Logger:  testLogger(),
	}
	session := startSession(t, deps)
	ctx := context.Background()

	t.Run("ping returns pong", func(t *testing.T) {
		result, err := session.CallTool(ctx, &mcp.CallToolParams{
			Name:      "ping",
			Arguments: map[string]any{},
		})
		require.NoError(t, err)
		assert.False(t, result.IsError)
		assert.Equal(t, "pong", textOf(t, result))
	})

	t.Run("ping echoes input", func(t *testing.T) {
		result, err := session.CallTool(ctx, &mcp.CallToolParams{
			Name:      "ping",
			Arguments: map[string]any{"echo": "hello world"},
		})
		require.NoError(t, err)
		assert.Equal(t, "hello world", textOf(t, result))
	})
}

func TestConveneTool(t *testing.T) {
	deps := &tools.Dependencies{
		Runner:  &stubRunner{session: finishedSession()},
		Catalog: catalog.Default(),
		Logger:  testLogger(),
	}
	session := startSession(t, deps)
	ctx := context.Background()

	t.Run("runs a debate and reports the decision", func(t *testing.T) {
		result, err := session.CallTool(ctx, &mcp.CallToolParams{
			Name: "convene",
			Arguments: map[string]any{
				"question": "Should we adopt the proposal?",
				"council":  "tech-review",
			},
		})
		require.NoError(t, err)
		assert.False(t, result.IsError)

		var parsed struct {
			SessionID string                 `json:"session_id"`
			Decision  *models.DecisionRecord `json:"decision"`
			TurnCount int                    `json:"turn_count"`
			Stored    bool                   `json:"stored"`
		}
		require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &parsed))
		assert.Equal(t, "sess-tools-1", parsed.SessionID)
		require.NotNil(t, parsed.Decision)
		assert.Equal(t, []string{"proceed"}, parsed.Decision.Decisions)
		assert.Equal(t, 5, parsed.TurnCount)
		assert.False(t, parsed.Stored, "no store configured")
	})

	t.Run("unknown council is a tool error", func(t *testing.T) {
		result, err := session.CallTool(ctx, &mcp.CallToolParams{
			Name: "convene",
			Arguments: map[string]any{
				"question": "q",
				"council":  "bogus",
			},
		})
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, textOf(t, result), "list_councils")
	})

	t.Run("empty question is a tool error", func(t *testing.T) {
		result, err := session.CallTool(ctx, &mcp.CallToolParams{
			Name: "convene",
			Arguments: map[string]any{
				"question": "",
				"council":  "tech-review",
			},
		})
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})
}

func TestCatalogTools(t *testing.T) {
	deps := &tools.Dependencies{
		Runner:  &stubRunner{session: finishedSession()},
		Catalog: catalog.Default(),
		Logger:  testLogger(),
	}
	session := startSession(t, deps)
	ctx := context.Background()

	t.Run("list_personas", func(t *testing.T) {
		result, err := session.CallTool(ctx, &mcp.CallToolParams{
			Name:      "list_personas",
			Arguments: map[string]any{},
		})
		require.NoError(t, err)

		var personas []models.Participant
		require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &personas))
		assert.NotEmpty(t, personas)
	})

	t.Run("list_councils", func(t *testing.T) {
		result, err := session.CallTool(ctx, &mcp.CallToolParams{
			Name:      "list_councils",
			Arguments: map[string]any{},
		})
		require.NoError(t, err)

		var councils []models.Council
		require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &councils))
		ids := make(map[string]bool)
		for _, c := range councils {
			ids[c.ID] = true
		}
		assert.True(t, ids["tech-review"])
	})
}

func TestSessionToolsWithoutStore(t *testing.T) {
	deps := &tools.Dependencies{
		Runner:  &stubRunner{session: finishedSession()},
		Catalog: catalog.Default(),
		Logger:  testLogger(),
	}
	session := startSession(t, deps)
	ctx := context.Background()

	for _, name := range []string{"list_sessions", "delete_session"} {
		args := map[string]any{}
		if name == "delete_session" {
			args["id"] = "x"
		}
		result, err := session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
		require.NoError(t, err, name)
		assert.True(t, result.IsError, "%s should error without storage", name)
		assert.Contains(t, textOf(t, result), "not configured")
	}
}
