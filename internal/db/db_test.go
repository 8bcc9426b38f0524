//go:build integration

package db

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/lukasreiter/quorum/internal/models"
)

var testDB *Client
var testContainer testcontainers.Container

// TestMain sets up and tears down the SurrealDB container for all tests.
func TestMain(m *testing.M) {
	// Disable ryuk (cleanup container) as it can cause issues in some environments
	os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")

	ctx := context.Background()

	var err error
	testContainer, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "surrealdb/surrealdb:v3.0.0-beta.1",
			ExposedPorts: []string{"8000/tcp"},
			Cmd:          []string{"start", "--log", "info", "--user", "root", "--pass", "root"},
			WaitingFor:   wait.ForLog("Started web server").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		log.Fatalf("Failed to start SurrealDB container: %v", err)
	}

	host, err := testContainer.Host(ctx)
	if err != nil {
		log.Fatalf("Failed to get container host: %v", err)
	}
	// Workaround: testcontainers may return "null" as host in some environments
	if host == "" || host == "null" {
		host = "localhost"
	}
	mappedPort, err := testContainer.MappedPort(ctx, "8000")
	if err != nil {
		log.Fatalf("Failed to get mapped port: %v", err)
	}

	testDB, err = NewClient(ctx, Config{
		URL:       fmt.Sprintf("ws://%s:%s/rpc", host, mappedPort.Port()),
		Namespace: "test",
		Database:  "test",
		Username:  "root",
		Password:  "root",
		AuthLevel: "root",
	}, nil)
	if err != nil {
		log.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := testDB.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	code := m.Run()

	_ = testDB.Close(ctx)
	_ = testContainer.Terminate(ctx)

	os.Exit(code)
}

func storedSession(id string, started time.Time) *models.Session {
	s := &models.Session{
		ID:       id,
		Question: "Should we adopt the new cache?",
		Council: models.Council{
			ID:           "tech-review",
			Name:         "Tech Review",
			Participants: []string{"architect", "skeptic"},
			Rounds:       1,
		},
		StartedAt:   started,
		CompletedAt: started.Add(2 * time.Minute),
		Decision: &models.DecisionRecord{
			Decisions:     []string{"adopt"},
			Dissent:       []string{},
			OpenQuestions: []string{},
			Actions:       []string{"benchmark first"},
			Confidence:    models.ConfidenceMedium,
			Summary:       "Adopt with a benchmark gate.",
		},
		Metadata: models.SessionMetadata{
			Duration:     2 * time.Minute,
			TurnCount:    3,
			RoundCount:   1,
			BackendCalls: 4,
		},
	}
	s.Append("Moderator", models.RoleModerator, "Opening.", 0)
	s.Append("Maren", "architect", "For.", 1)
	s.Append("Dana", "skeptic", "Against.", 1)
	return s
}

func TestSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, testDB.WipeData(ctx), "cleanup sessions")

	want := storedSession("roundtrip-1", time.Now().UTC().Truncate(time.Millisecond))
	require.NoError(t, testDB.CreateSession(ctx, want), "should store session")

	got, err := testDB.GetSession(ctx, want.ID)
	require.NoError(t, err, "should load session")

	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Question, got.Question)
	assert.Equal(t, want.Council.ID, got.Council.ID)
	assert.Len(t, got.Transcript, 3)
	assert.Equal(t, want.Transcript[1].Speaker, got.Transcript[1].Speaker)
	require.NotNil(t, got.Decision)
	assert.Equal(t, want.Decision.Summary, got.Decision.Summary)
	assert.Equal(t, want.Metadata.BackendCalls, got.Metadata.BackendCalls)
}

func TestCreateSessionDuplicate(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, testDB.WipeData(ctx), "cleanup sessions")

	s := storedSession("dup-1", time.Now().UTC())
	require.NoError(t, testDB.CreateSession(ctx, s))

	err := testDB.CreateSession(ctx, s)
	assert.ErrorIs(t, err, ErrSessionExists)
}

func TestGetSessionNotFound(t *testing.T) {
	ctx := context.Background()
	_, err := testDB.GetSession(ctx, "no-such-session")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListSessionsOrderedByStart(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, testDB.WipeData(ctx), "cleanup sessions")

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		s := storedSession(fmt.Sprintf("list-%d", i), base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, testDB.CreateSession(ctx, s))
	}

	summaries, err := testDB.ListSessions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	assert.Equal(t, "list-2", summaries[0].ID, "most recent first")
	assert.Equal(t, "list-0", summaries[2].ID)
	assert.Equal(t, 3, summaries[0].TurnCount)

	limited, err := testDB.ListSessions(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestDeleteSession(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, testDB.WipeData(ctx), "cleanup sessions")

	s := storedSession("del-1", time.Now().UTC())
	require.NoError(t, testDB.CreateSession(ctx, s))

	require.NoError(t, testDB.DeleteSession(ctx, s.ID))
	_, err := testDB.GetSession(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, testDB.DeleteSession(ctx, s.ID), ErrNotFound)
}
