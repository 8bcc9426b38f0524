package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lukasreiter/quorum/internal/metrics"
)

var usageServer string

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show a running server's usage statistics",
	Long: `Fetch runtime statistics from a quorum server: call counts, timings
and token totals per operation.

Examples:
  quorum usage
  quorum usage --server http://debate-host:8585`,
	RunE: runUsage,
}

func init() {
	usageCmd.Flags().StringVar(&usageServer, "server", "", "server base URL (default localhost with QUORUM_SERVER_PORT)")
}

func runUsage(cmd *cobra.Command, args []string) error {
	base := usageServer
	if base == "" {
		base = "http://localhost:" + cfg.ServerPort
	}
	base = strings.TrimSuffix(base, "/")

	httpClient := &http.Client{Timeout: 10 * time.Second}
	resp, err := httpClient.Get(base + "/metrics")
	if err != nil {
		return fmt.Errorf("fetch metrics: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch metrics: server returned %s", resp.Status)
	}

	var snapshot metrics.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return fmt.Errorf("decode metrics: %w", err)
	}

	fmt.Printf("Server uptime: %s\n\n", (time.Duration(snapshot.UptimeSeconds) * time.Second).String())
	printOperation("Buffered generation", snapshot.Generate)
	printOperation("Streamed generation", snapshot.GenerateStream)
	printOperation("Debate sessions", snapshot.Session)
	printOperation("Database queries", snapshot.DBQuery)
	return nil
}

func printOperation(title string, op *metrics.OperationSnapshot) {
	if op == nil {
		return
	}
	fmt.Println(sectionStyle.Render(title))
	fmt.Printf("  calls: %d  avg: %.0fms  min: %dms  max: %dms\n",
		op.Count, op.AvgTimeMs, op.MinTimeMs, op.MaxTimeMs)
	if op.TotalInputTokens != nil || op.TotalOutputTokens != nil {
		in, out := int64(0), int64(0)
		if op.TotalInputTokens != nil {
			in = *op.TotalInputTokens
		}
		if op.TotalOutputTokens != nil {
			out = *op.TotalOutputTokens
		}
		fmt.Printf("  tokens: %d in / %d out\n", in, out)
	}
	fmt.Println()
}
