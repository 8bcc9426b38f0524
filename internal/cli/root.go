// Package cli provides the command-line interface for quorum.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lukasreiter/quorum/internal/catalog"
	"github.com/lukasreiter/quorum/internal/config"
	"github.com/lukasreiter/quorum/internal/db"
	"github.com/lukasreiter/quorum/internal/debate"
	"github.com/lukasreiter/quorum/internal/llm"
	"github.com/lukasreiter/quorum/internal/metrics"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Global config, logger and catalog, set in PersistentPreRunE.
	cfg     config.Config
	logger  *slog.Logger
	cat     *catalog.Static
	logDone func() error

	// Lazy-initialized services
	dbClient  *db.Client
	collector = metrics.NewCollector()
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "quorum",
	Short: "Multi-persona debate orchestration",
	Long: `Quorum convenes a council of AI personas to debate a question over
multiple structured rounds and reduce the transcript to a decision record.

Personas argue from configurable viewpoints across different generation
backends; a moderator opens, summarizes each round and synthesizes the
final decision.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()
		if verbose {
			cfg.LogLevel = slog.LevelDebug
		}

		logger, logDone = config.SetupLogger(cfg.LogFile, cfg.LogLevel)
		slog.SetDefault(logger)

		var err error
		cat, err = loadCatalog()
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if dbClient != nil {
			if err := dbClient.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
			}
		}
		if logDone != nil {
			_ = logDone()
		}
	},
}

// loadCatalog returns the builtin catalog, overlaid with the config's
// catalog directory when set.
func loadCatalog() (*catalog.Static, error) {
	if cfg.CatalogDir == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadDir(cfg.CatalogDir)
}

// newRunner builds the debate orchestrator from the configured backends.
func newRunner(ctx context.Context) (debate.Runner, error) {
	gen, err := llm.FromConfig(ctx, cfg, collector, logger)
	if err != nil {
		return nil, fmt.Errorf("init backends: %w", err)
	}
	return debate.NewOrchestrator(gen, debate.Options{
		MaxTokens: cfg.MaxTokens,
		Streaming: cfg.Streaming,
		Collector: collector,
		Logger:    logger,
	}), nil
}

// openStore connects to SurrealDB on first use. Returns an error when
// storage is not configured.
func openStore(ctx context.Context) (*db.Client, error) {
	if !cfg.HasStorage() {
		return nil, fmt.Errorf("session storage is not configured (set SURREALDB_URL)")
	}
	if dbClient != nil {
		return dbClient, nil
	}

	var err error
	dbClient, err = db.NewClient(ctx, db.Config{
		URL:       cfg.SurrealDBURL,
		Namespace: cfg.SurrealDBNamespace,
		Database:  cfg.SurrealDBDatabase,
		Username:  cfg.SurrealDBUser,
		Password:  cfg.SurrealDBPass,
		AuthLevel: cfg.SurrealDBAuthLevel,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := dbClient.InitSchema(ctx); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return dbClient, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(personasCmd)
	rootCmd.AddCommand(councilsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(usageCmd)
}
