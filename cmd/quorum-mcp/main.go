// Package main provides the entry point for the quorum MCP server.
package main

import (
	"context"
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
	"github.com/lukasreiter/quorum/internal/tools"
)

const version = "0.1.0"

func main() {
	cfg := config.Load()

	// Dual output: stderr text + file JSON. Stdout carries the MCP
	// transport and must stay clean.
	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer cleanup()

	logger.Info("quorum-mcp starting",
		"version", version,
		"default_backend", cfg.DefaultBackend,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

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
		Collector: collector,
		Logger:    logger,
	})

	deps := &tools.Dependencies{
		Runner:  runner,
		Catalog: cat,
		Logger:  logger,
	}

	// Session storage is optional for the MCP surface.
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
			_ = dbClient.Close(ctx)
		}()
		if err := dbClient.InitSchema(ctx); err != nil {
			logger.Error("failed to initialize database schema", "error", err)
			os.Exit(1)
		}
		deps.Store = dbClient
	} else {
		logger.Warn("session storage not configured, session tools disabled")
	}

	srv := server.NewMCP(version, logger)
	srv.Setup()
	tools.RegisterAll(srv.Underlying(), deps)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("quorum-mcp stopped")
}
