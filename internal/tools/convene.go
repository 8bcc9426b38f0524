package tools

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lukasreiter/quorum/internal/catalog"
	"github.com/lukasreiter/quorum/internal/config"
	"github.com/lukasreiter/quorum/internal/debate"
	"github.com/lukasreiter/quorum/internal/llm"
	"github.com/lukasreiter/quorum/internal/models"
)

// ConveneInput defines the input schema for the convene tool.
type ConveneInput struct {
	Question string `json:"question" jsonschema:"required,The question or decision to debate"`
	Council  string `json:"council" jsonschema:"required,Council ID, see list_councils"`
	Rounds   int    `json:"rounds,omitempty" jsonschema:"Override the council's round count (1-3)"`
}

// conveneResult is the tool's JSON response shape.
type conveneResult struct {
	SessionID string                 `json:"session_id"`
	Decision  *models.DecisionRecord `json:"decision"`
	TurnCount int                    `json:"turn_count"`
	Truncated bool                   `json:"truncated,omitempty"`
	Stored    bool                   `json:"stored"`
	Duration  string                 `json:"duration"`
}

// NewConveneHandler creates the convene tool handler: it runs a full
// debate session and returns the decision record. Long-running; the
// transcript is persisted when a store is configured.
func NewConveneHandler(deps *Dependencies) mcp.ToolHandlerFor[ConveneInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ConveneInput) (*mcp.CallToolResult, any, error) {
		if input.Question == "" {
			return ErrorResult("Question cannot be empty", "Provide the question to debate"), nil, nil
		}
		council, participants, err := deps.Catalog.ResolveCouncil(input.Council)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return ErrorResult("Unknown council "+input.Council, "Use list_councils to see available councils"), nil, nil
			}
			return ErrorResult("Council resolution failed: "+err.Error(), ""), nil, nil
		}
		if input.Rounds != 0 {
			council.Rounds = config.ClampRounds(input.Rounds)
		}

		deps.Logger.Info("convene tool starting debate",
			"council", council.ID,
			"rounds", council.Rounds)

		session, runErr := deps.Runner.Run(ctx, debate.RunInput{
			Question:     input.Question,
			Council:      council,
			Participants: participants,
		})
		if runErr != nil && session == nil {
			return ErrorResult("Debate failed: "+runErr.Error(), ""), nil, nil
		}
		if runErr != nil {
			// Partial session: the degraded decision record explains what
			// remains usable, so report it instead of failing outright.
			deps.Logger.Warn("debate truncated", "session", session.ID, "error", runErr)
		}
		if errors.Is(runErr, llm.ErrAborted) {
			return ErrorResult("Debate cancelled", ""), nil, nil
		}

		stored := false
		if deps.Store != nil {
			storeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := deps.Store.CreateSession(storeCtx, session); err != nil {
				deps.Logger.Error("session persist failed", "session", session.ID, "error", err)
			} else {
				stored = true
			}
		}

		jsonBytes, _ := json.MarshalIndent(conveneResult{
			SessionID: session.ID,
			Decision:  session.Decision,
			TurnCount: session.Metadata.TurnCount,
			Truncated: session.Metadata.Truncated,
			Stored:    stored,
			Duration:  session.Metadata.Duration.Round(time.Millisecond).String(),
		}, "", "  ")

		deps.Logger.Info("convene tool completed",
			"session", session.ID,
			"turns", session.Metadata.TurnCount,
			"truncated", session.Metadata.Truncated)

		return TextResult(string(jsonBytes)), nil, nil
	}
}
