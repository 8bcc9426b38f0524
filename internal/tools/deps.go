// Package tools provides MCP tool handlers and registration.
package tools

import (
	"context"
	"log/slog"

	"github.com/lukasreiter/quorum/internal/catalog"
	"github.com/lukasreiter/quorum/internal/db"
	"github.com/lukasreiter/quorum/internal/debate"
	"github.com/lukasreiter/quorum/internal/models"
)

// SessionStore is the persistence surface tool handlers use. Nil disables
// the session tools' storage paths.
type SessionStore interface {
	CreateSession(ctx context.Context, s *models.Session) error
	GetSession(ctx context.Context, id string) (*models.Session, error)
	ListSessions(ctx context.Context, limit int) ([]db.SessionSummary, error)
	DeleteSession(ctx context.Context, id string) error
}

// Dependencies holds shared services for tool handlers.
// Passed to handler factories via closure capture.
type Dependencies struct {
	Runner  debate.Runner
	Catalog *catalog.Static
	Store   SessionStore
	Logger  *slog.Logger
}
