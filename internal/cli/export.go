package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lukasreiter/quorum/internal/export"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Export a stored session to a Markdown file",
	Long: `Export a stored session as a Markdown document: transcript grouped by
round, decision record and session metadata.

Examples:
  quorum export 2f1c7b9a-…
  quorum export 2f1c7b9a-… -o decisions/queue-migration.md`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default <session-id>.md)")
}

func runExport(cmd *cobra.Command, args []string) error {
	id := args[0]
	ctx := context.Background()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}

	session, err := store.GetSession(ctx, id)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	path := exportOutput
	if path == "" {
		path = id + ".md"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(export.Markdown(session)), 0644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
