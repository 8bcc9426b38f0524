// Package client provides a WebSocket client for a remote quorum server.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lukasreiter/quorum/internal/debate"
)

// ErrServerEvent is wrapped around error frames received from the server.
var ErrServerEvent = errors.New("server error")

// Client runs debates against a remote quorum server.
type Client struct {
	endpoint string
	dialer   websocket.Dialer
}

// New creates a client. If endpoint is empty, uses the QUORUM_SERVER_URL
// env var or defaults to localhost:8585.
func New(endpoint string) *Client {
	if endpoint == "" {
		endpoint = os.Getenv("QUORUM_SERVER_URL")
	}
	if endpoint == "" {
		endpoint = "ws://localhost:8585"
	}
	return &Client{
		endpoint: endpoint,
		dialer: websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
	}
}

// RunRequest is the remote debate request.
type RunRequest struct {
	Question string `json:"question"`
	Council  string `json:"council"`
	Rounds   int    `json:"rounds,omitempty"`
}

// Run starts a remote debate and invokes onEvent for every frame until the
// stream ends. Returning an error from onEvent aborts the stream. An error
// frame from the server terminates the run with ErrServerEvent.
func (c *Client) Run(ctx context.Context, req RunRequest, onEvent func(debate.Event) error) error {
	endpoint := c.endpoint
	endpoint = strings.Replace(endpoint, "http://", "ws://", 1)
	endpoint = strings.Replace(endpoint, "https://", "wss://", 1)

	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("parse endpoint: %w", err)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}

	conn, resp, err := c.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("websocket connect: %w", err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	// Close the connection when the context ends so blocked reads unwind.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	if err := conn.WriteJSON(req); err != nil {
		return fmt.Errorf("send run request: %w", err)
	}

	var serverErr error
	for {
		var event debate.Event
		if err := conn.ReadJSON(&event); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read event: %w", err)
		}

		switch event.Type {
		case debate.EventStreamEnd:
			return serverErr
		case debate.EventError:
			// Keep reading: stream-end still follows an error frame.
			serverErr = fmt.Errorf("%w: %s", ErrServerEvent, event.Message)
		}

		if err := onEvent(event); err != nil {
			return err
		}
	}
}
