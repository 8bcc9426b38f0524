// Package main provides the standalone WebSocket stream server for quorum.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lukasreiter/quorum/internal/catalog"
	"github.com/lukasreiter/quorum/internal/config"
	"github.com/lukasreiter/quorum/internal/db"
	"github.com/lukasreiter/quorum/internal/debate"
	"github.com/lukasreiter/quorum/internal/llm"
	"github.com/lukasreiter/quorum/internal/metrics"
	"github.com/lukasreiter/quorum/internal/server"
)

const version = "0.1.0"

func main() {
	wipeDB := flag.Bool("wipe", false, "wipe all sessions from the database on startup (testing only)")
	port := flag.String("port", "", "listen port (default from QUORUM_SERVER_PORT)")
	flag.Parse()

	cfg := config.Load()

	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer cleanup()
	slog.SetDefault(logger)

	listenPort := *port
	if listenPort == "" {
		listenPort = cfg.ServerPort
	}

	logger.Info("quorum-server starting",
		"version", version,
		"port", listenPort,
		"default_backend", cfg.DefaultBackend,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cat := catalog.Default()
	if cfg.CatalogDir != "" {
		var err error
		cat, err = catalog.LoadDir(cfg.CatalogDir)
		if err != nil {
			logger.Error("failed to load catalog", "dir", cfg.CatalogDir, "error", err)
			os.Exit(1)
		}
	}

	collector := metrics.NewCollector()
	gen, err := llm.FromConfig(ctx, cfg, collector, logger)
	if err != nil {
		logger.Error("failed to initialize backends", "error", err)
		os.Exit(1)
	}

	runner := debate.NewOrchestrator(gen, debate.Options{
		MaxTokens: cfg.MaxTokens,
		Streaming: cfg.Streaming,
		Collector: collector,
		Logger:    logger,
	})

	var store server.SessionStore
	if cfg.HasStorage() {
		dbClient, err := db.NewClient(ctx, db.Config{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
			AuthLevel: cfg.SurrealDBAuthLevel,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer func() {
			logger.Info("closing database connection")
			_ = dbClient.Close(context.Background())
		}()
		if err := dbClient.InitSchema(ctx); err != nil {
			logger.Error("failed to initialize database schema", "error", err)
			os.Exit(1)
		}
		if *wipeDB || os.Getenv("QUORUM_WIPE_DB") == "true" {
			if err := dbClient.WipeData(ctx); err != nil {
				logger.Error("failed to wipe database", "error", err)
				os.Exit(1)
			}
			logger.Warn("wiped all sessions from database")
		}
		store = dbClient
	} else {
		logger.Warn("session storage not configured, sessions will not be persisted")
	}

	srv := server.NewStreamServer(runner, cat, store, collector, logger)
	if err := srv.Run(ctx, listenPort); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("quorum-server stopped")
}
