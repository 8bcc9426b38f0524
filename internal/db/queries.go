package db

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/lukasreiter/quorum/internal/models"
)

// sessionRecord is the stored shape of a session. The record ID carries the
// session ID; everything else mirrors models.Session.
type sessionRecord struct {
	ID          surrealmodels.RecordID `json:"id"`
	Question    string                 `json:"question"`
	Council     models.Council         `json:"council"`
	Transcript  []models.TurnMessage   `json:"transcript"`
	Decision    *models.DecisionRecord `json:"decision,omitempty"`
	StartedAt   time.Time              `json:"started_at"`
	CompletedAt time.Time              `json:"completed_at"`
	Metadata    models.SessionMetadata `json:"metadata"`
}

// SessionSummary is the list-view projection of a stored session.
type SessionSummary struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	CouncilID string    `json:"council_id"`
	StartedAt time.Time `json:"started_at"`
	TurnCount int       `json:"turn_count"`
	Truncated bool      `json:"truncated"`
}

func (r *sessionRecord) toSession() (*models.Session, error) {
	id, ok := r.ID.ID.(string)
	if !ok {
		return nil, fmt.Errorf("unexpected session ID type: %T", r.ID.ID)
	}
	return &models.Session{
		ID:          id,
		Question:    r.Question,
		Council:     r.Council,
		Transcript:  r.Transcript,
		Decision:    r.Decision,
		StartedAt:   r.StartedAt,
		CompletedAt: r.CompletedAt,
		Metadata:    r.Metadata,
	}, nil
}

// CreateSession stores a finished session. The session ID becomes the
// record ID; storing the same session twice yields ErrSessionExists.
func (c *Client) CreateSession(ctx context.Context, s *models.Session) error {
	_, err := surrealdb.Query[any](ctx, c.db, `
		CREATE type::record("session", $id) CONTENT {
			question: $question,
			council: $council,
			transcript: $transcript,
			decision: $decision,
			started_at: $started_at,
			completed_at: $completed_at,
			metadata: $metadata
		}
	`, map[string]any{
		"id":           s.ID,
		"question":     s.Question,
		"council":      s.Council,
		"transcript":   s.Transcript,
		"decision":     s.Decision,
		"started_at":   s.StartedAt,
		"completed_at": s.CompletedAt,
		"metadata":     s.Metadata,
	})
	if err != nil {
		return fmt.Errorf("create session: %w", wrapQueryError(err))
	}
	return nil
}

// GetSession retrieves a session by ID. Returns ErrNotFound if absent.
func (c *Client) GetSession(ctx context.Context, id string) (*models.Session, error) {
	results, err := surrealdb.Query[[]sessionRecord](ctx, c.db, `
		SELECT * FROM type::record("session", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get session: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return (*results)[0].Result[0].toSession()
}

// ListSessions returns session summaries, most recent first.
func (c *Client) ListSessions(ctx context.Context, limit int) ([]SessionSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	results, err := surrealdb.Query[[]sessionRecord](ctx, c.db, `
		SELECT * FROM session ORDER BY started_at DESC LIMIT $limit
	`, map[string]any{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return []SessionSummary{}, nil
	}
	records := (*results)[0].Result
	summaries := make([]SessionSummary, 0, len(records))
	for i := range records {
		s, err := records[i].toSession()
		if err != nil {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		summaries = append(summaries, SessionSummary{
			ID:        s.ID,
			Question:  s.Question,
			CouncilID: s.Council.ID,
			StartedAt: s.StartedAt,
			TurnCount: s.Metadata.TurnCount,
			Truncated: s.Metadata.Truncated,
		})
	}
	return summaries, nil
}

// DeleteSession removes a session by ID. Returns ErrNotFound if absent.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	// SurrealDB DELETE is a no-op on missing records; probe first so the
	// caller can distinguish.
	if _, err := c.GetSession(ctx, id); err != nil {
		return err
	}
	_, err := surrealdb.Query[any](ctx, c.db, `
		DELETE type::record("session", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("delete session: %w", wrapQueryError(err))
	}
	return nil
}
