package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lukasreiter/quorum/internal/export"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show a stored debate session",
	Long: `Show a stored session's transcript and decision record.

Examples:
  quorum show 2f1c7b9a-…
  quorum show 2f1c7b9a-… --json`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "emit the raw session as JSON")
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}

	session, err := store.GetSession(ctx, args[0])
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	if showJSON {
		jsonBytes, err := json.MarshalIndent(session, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}
		fmt.Println(string(jsonBytes))
		return nil
	}

	fmt.Print(export.Markdown(session))
	return nil
}
