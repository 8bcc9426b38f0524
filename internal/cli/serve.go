package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lukasreiter/quorum/internal/server"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve debates over WebSocket",
	Long: `Start the debate stream server: clients connect to /ws, send one run
request and receive the session's event stream. /health and /metrics are
also served. Sessions are persisted when storage is configured.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "listen port (default from QUORUM_SERVER_PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner, err := newRunner(ctx)
	if err != nil {
		return err
	}

	var store server.SessionStore
	if cfg.HasStorage() {
		dbStore, err := openStore(ctx)
		if err != nil {
			return err
		}
		store = dbStore
	} else {
		logger.Warn("session storage not configured, sessions will not be persisted")
	}

	port := servePort
	if port == "" {
		port = cfg.ServerPort
	}

	srv := server.NewStreamServer(runner, cat, store, collector, logger)
	if err := srv.Run(ctx, port); err != nil {
		return fmt.Errorf("stream server: %w", err)
	}
	return nil
}
