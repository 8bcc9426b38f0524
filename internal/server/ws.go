package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lukasreiter/quorum/internal/catalog"
	"github.com/lukasreiter/quorum/internal/config"
	"github.com/lukasreiter/quorum/internal/debate"
	"github.com/lukasreiter/quorum/internal/metrics"
	"github.com/lukasreiter/quorum/internal/models"
)

// SessionStore is the subset of persistence the stream server needs.
// Nil disables persistence.
type SessionStore interface {
	CreateSession(ctx context.Context, s *models.Session) error
}

// RunRequest is the first and only frame a WebSocket client sends: one
// debate to run. Rounds, when non-zero, overrides the council's default.
type RunRequest struct {
	Question string `json:"question"`
	Council  string `json:"council"`
	Rounds   int    `json:"rounds,omitempty"`
}

// StreamServer serves debates over WebSocket: one request frame in, the
// session's event stream out, then the connection closes.
type StreamServer struct {
	runner    debate.Runner
	catalog   *catalog.Static
	store     SessionStore
	collector *metrics.Collector
	logger    *slog.Logger
	upgrader  websocket.Upgrader
}

// NewStreamServer creates a stream server. store may be nil.
func NewStreamServer(runner debate.Runner, cat *catalog.Static, store SessionStore, collector *metrics.Collector, logger *slog.Logger) *StreamServer {
	return &StreamServer{
		runner:    runner,
		catalog:   cat,
		store:     store,
		collector: collector,
		logger:    logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for local dev
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Handler returns the HTTP mux: /ws for debates, /health and /metrics.
func (s *StreamServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	mux.HandleFunc("/metrics", s.handleMetrics)
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *StreamServer) Run(ctx context.Context, port string) error {
	httpServer := &http.Server{
		Addr:        ":" + port,
		Handler:     s.Handler(),
		ReadTimeout: 5 * time.Second,
		// No WriteTimeout: debate streams are long-lived.
		IdleTimeout: 120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("stream server listening", "port", port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down stream server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func (s *StreamServer) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	snapshot := metrics.Snapshot{}
	if s.collector != nil {
		snapshot = s.collector.Snapshot()
	}
	if err := json.NewEncoder(w).Encode(snapshot); err != nil {
		s.logger.Warn("metrics encode failed", "error", err)
	}
}

// handleWS upgrades the connection, reads one run request, streams the
// debate's events as JSON frames and closes.
func (s *StreamServer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	var req RunRequest
	if err := conn.ReadJSON(&req); err != nil {
		s.logger.Warn("invalid run request", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The read loop only watches for client disconnect; a read error
	// cancels the running debate.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	s.serveDebate(ctx, conn, req)
}

func (s *StreamServer) serveDebate(ctx context.Context, conn *websocket.Conn, req RunRequest) {
	writer := newFrameWriter(conn)

	council, participants, err := s.catalog.ResolveCouncil(req.Council)
	if err != nil {
		writer.event(debate.Event{Type: debate.EventError, Message: err.Error()})
		writer.event(debate.Event{Type: debate.EventStreamEnd})
		return
	}
	if req.Rounds != 0 {
		council.Rounds = config.ClampRounds(req.Rounds)
	}

	s.logger.Info("debate requested",
		"council", council.ID,
		"rounds", council.Rounds,
		"question_len", len(req.Question))

	session, err := s.runner.Run(ctx, debate.RunInput{
		Question:     req.Question,
		Council:      council,
		Participants: participants,
		Emit:         writer.event,
	})
	if err != nil {
		// The orchestrator already emitted the error frame; just log.
		s.logger.Error("debate failed", "error", err)
	}

	if session != nil && s.store != nil {
		storeCtx, cancelStore := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancelStore()
		if err := s.store.CreateSession(storeCtx, session); err != nil {
			s.logger.Error("session persist failed", "session", session.ID, "error", err)
		}
	}
}

// frameWriter serializes event frames onto one connection. The orchestrator
// emits from a single goroutine, but the mutex also covers the error frame
// written after a failed run.
type frameWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
	dead bool
}

func newFrameWriter(conn *websocket.Conn) *frameWriter {
	return &frameWriter{conn: conn}
}

// event writes one frame. After the first write failure the writer goes
// quiet; the debate's cancellation is handled by the read loop.
func (w *frameWriter) event(e debate.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.dead {
		return
	}
	if err := w.conn.WriteJSON(e); err != nil {
		w.dead = true
	}
}
