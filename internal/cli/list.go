package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var listLimit int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored debate sessions",
	Long: `List stored debate sessions, most recent first.

Examples:
  quorum list
  quorum list --limit 50`,
	RunE: runList,
}

func init() {
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "max sessions to show")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}

	summaries, err := store.ListSessions(ctx, listLimit)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	if len(summaries) == 0 {
		fmt.Println("No stored sessions.")
		return nil
	}

	for _, s := range summaries {
		marker := " "
		if s.Truncated {
			marker = warnStyle.Render("!")
		}
		question := s.Question
		if len(question) > 60 {
			question = question[:60] + "…"
		}
		fmt.Printf("%s %s  %s  %-14s  %2d turns  %s\n",
			marker,
			s.StartedAt.Format("2006-01-02 15:04"),
			s.ID,
			s.CouncilID,
			s.TurnCount,
			question)
	}
	return nil
}
