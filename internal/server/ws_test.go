package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukasreiter/quorum/internal/catalog"
	"github.com/lukasreiter/quorum/internal/debate"
	"github.com/lukasreiter/quorum/internal/metrics"
	"github.com/lukasreiter/quorum/internal/models"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeRunner replays a scripted event sequence and returns a fixed session.
type fakeRunner struct {
	mu      sync.Mutex
	events  []debate.Event
	session *models.Session
	err     error
	inputs  []debate.RunInput
}

func (f *fakeRunner) Run(_ context.Context, in debate.RunInput) (*models.Session, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, in)
	f.mu.Unlock()
	for _, e := range f.events {
		in.Emit(e)
	}
	in.Emit(debate.Event{Type: debate.EventStreamEnd})
	return f.session, f.err
}

// memoryStore records persisted sessions.
type memoryStore struct {
	mu       sync.Mutex
	sessions []*models.Session
}

func (m *memoryStore) CreateSession(_ context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = append(m.sessions, s)
	return nil
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err, "websocket dial")
	if resp != nil {
		resp.Body.Close()
	}
	return conn
}

func readEvents(t *testing.T, conn *websocket.Conn) []debate.Event {
	t.Helper()
	var events []debate.Event
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var e debate.Event
		if err := conn.ReadJSON(&e); err != nil {
			t.Fatalf("read event: %v", err)
		}
		events = append(events, e)
		if e.Type == debate.EventStreamEnd {
			return events
		}
	}
}

func TestStreamServerDebateFlow(t *testing.T) {
	runner := &fakeRunner{
		events: []debate.Event{
			{Type: debate.EventTurnStarted, Speaker: "Moderator", Round: 0},
			{Type: debate.EventToken, Speaker: "Moderator", Text: "opening"},
			{Type: debate.EventDecision, Record: &models.DecisionRecord{Summary: "done"}},
		},
		session: &models.Session{ID: "sess-ws-1"},
	}
	store := &memoryStore{}
	srv := NewStreamServer(runner, catalog.Default(), store, metrics.NewCollector(), quietLogger())

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dialWS(t, ts)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(RunRequest{
		Question: "Should we roll out feature flags?",
		Council:  "tech-review",
	}))

	events := readEvents(t, conn)
	require.Len(t, events, 4)
	assert.Equal(t, debate.EventTurnStarted, events[0].Type)
	assert.Equal(t, debate.EventToken, events[1].Type)
	assert.Equal(t, debate.EventDecision, events[2].Type)
	require.NotNil(t, events[2].Record)
	assert.Equal(t, "done", events[2].Record.Summary)

	// The runner saw the resolved council with ordered participants.
	require.Len(t, runner.inputs, 1)
	in := runner.inputs[0]
	assert.Equal(t, "tech-review", in.Council.ID)
	require.Len(t, in.Participants, len(in.Council.Participants))
	for i, id := range in.Council.Participants {
		assert.Equal(t, id, in.Participants[i].ID)
	}

	// Persisted once the stream completed.
	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.sessions) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "sess-ws-1", store.sessions[0].ID)
}

func TestStreamServerUnknownCouncil(t *testing.T) {
	runner := &fakeRunner{}
	srv := NewStreamServer(runner, catalog.Default(), nil, metrics.NewCollector(), quietLogger())

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dialWS(t, ts)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(RunRequest{Question: "q", Council: "no-such-council"}))

	events := readEvents(t, conn)
	require.Len(t, events, 2)
	assert.Equal(t, debate.EventError, events[0].Type)
	assert.Contains(t, events[0].Message, "not found")
	assert.Empty(t, runner.inputs, "runner must not start for an unknown council")
}

func TestStreamServerRoundsOverrideClamped(t *testing.T) {
	runner := &fakeRunner{session: &models.Session{ID: "s"}}
	srv := NewStreamServer(runner, catalog.Default(), nil, metrics.NewCollector(), quietLogger())

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dialWS(t, ts)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(RunRequest{Question: "q", Council: "tech-review", Rounds: 99}))
	readEvents(t, conn)

	require.Len(t, runner.inputs, 1)
	assert.Equal(t, 3, runner.inputs[0].Council.Rounds, "rounds override clamped to the maximum")
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	collector := metrics.NewCollector()
	collector.RecordTiming(metrics.OpSession, 1500*time.Millisecond)
	srv := NewStreamServer(&fakeRunner{}, catalog.Default(), nil, collector, quietLogger())

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp2, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
	assert.Equal(t, "application/json", resp2.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp2.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "session")
}
