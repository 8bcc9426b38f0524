package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/lukasreiter/quorum/internal/client"
	"github.com/lukasreiter/quorum/internal/config"
	"github.com/lukasreiter/quorum/internal/debate"
	"github.com/lukasreiter/quorum/internal/export"
	"github.com/lukasreiter/quorum/internal/models"
)

var (
	runCouncil      string
	runRounds       int
	runParticipants []string
	runRemote       string
	runOutputFile   string
	runPlain        bool
	runNoStore      bool
)

var runCmd = &cobra.Command{
	Use:   "run <question>",
	Short: "Convene a council to debate a question",
	Long: `Run a full debate session: the moderator opens, the council's personas
argue over the configured rounds, and the transcript is synthesized into
a decision record.

Examples:
  quorum run "Should we migrate the queue to NATS?"
  quorum run "Adopt feature flags?" --council product-strategy
  quorum run "Kill the legacy API?" --council risk-review --rounds 3
  quorum run "Sharding strategy?" -o decision.md
  quorum run "Rollout plan?" --remote ws://debate-host:8585`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runCouncil, "council", "c", "tech-review", "council to convene")
	runCmd.Flags().IntVarP(&runRounds, "rounds", "r", 0, "override the council's round count (1-3)")
	runCmd.Flags().StringSliceVar(&runParticipants, "participants", nil, "override the council's participant ids")
	runCmd.Flags().StringVar(&runRemote, "remote", "", "run on a remote quorum server (WebSocket URL)")
	runCmd.Flags().StringVarP(&runOutputFile, "output", "o", "", "write the session as Markdown to a file")
	runCmd.Flags().BoolVar(&runPlain, "plain", false, "plain output, no interactive view")
	runCmd.Flags().BoolVar(&runNoStore, "no-store", false, "skip session persistence")
}

func runRun(cmd *cobra.Command, args []string) error {
	question := args[0]

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if runRemote != "" {
		return runRemoteDebate(ctx, question)
	}
	return runLocalDebate(ctx, question)
}

func runLocalDebate(ctx context.Context, question string) error {
	council, participants, err := cat.ResolveCouncil(runCouncil)
	if err != nil {
		return fmt.Errorf("resolve council %q: %w", runCouncil, err)
	}
	if len(runParticipants) > 0 {
		council.Participants = runParticipants
		participants = make([]models.Participant, 0, len(runParticipants))
		for _, id := range runParticipants {
			p, err := cat.Participant(id)
			if err != nil {
				return fmt.Errorf("resolve participant %q: %w", id, err)
			}
			participants = append(participants, p)
		}
	}
	if runRounds != 0 {
		council.Rounds = config.ClampRounds(runRounds)
	} else if cfg.RoundsOverride != 0 {
		council.Rounds = config.ClampRounds(cfg.RoundsOverride)
	}

	runner, err := newRunner(ctx)
	if err != nil {
		return err
	}

	in := debate.RunInput{
		Question:     question,
		Council:      council,
		Participants: participants,
	}

	var session *models.Session
	var runErr error
	if interactive() {
		session, runErr = runLiveDebate(ctx, runner, in)
	} else {
		in.Emit = plainEmitter()
		session, runErr = runner.Run(ctx, in)
	}
	if session == nil {
		return runErr
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Debate truncated: %v\n", runErr)
	}
	printDecision(session)

	if !runNoStore && cfg.HasStorage() {
		storeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		store, err := openStore(storeCtx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		} else if err := store.CreateSession(storeCtx, session); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to store session: %v\n", err)
		} else {
			fmt.Printf("\nStored as session %s\n", session.ID)
		}
	}

	if runOutputFile != "" {
		if err := os.WriteFile(runOutputFile, []byte(export.Markdown(session)), 0644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Printf("Wrote %s\n", runOutputFile)
	}

	return runErr
}

// runRemoteDebate streams a debate from a quorum server instead of running
// backends locally. Remote sessions are persisted server-side.
func runRemoteDebate(ctx context.Context, question string) error {
	c := client.New(runRemote)
	return c.Run(ctx, client.RunRequest{
		Question: question,
		Council:  runCouncil,
		Rounds:   runRounds,
	}, func(e debate.Event) error {
		printEvent(e)
		return nil
	})
}

// interactive reports whether the live view should be used.
func interactive() bool {
	return !runPlain && term.IsTerminal(int(os.Stdout.Fd()))
}

// plainEmitter prints events line-by-line for pipes and logs.
func plainEmitter() debate.EmitFunc {
	return func(e debate.Event) {
		printEvent(e)
	}
}

func printEvent(e debate.Event) {
	switch e.Type {
	case debate.EventTurnStarted:
		if e.Round == 0 {
			fmt.Printf("\n── %s ──\n", e.Speaker)
		} else {
			fmt.Printf("\n── Round %d · %s ──\n", e.Round, e.Speaker)
		}
	case debate.EventToken:
		fmt.Print(e.Text)
	case debate.EventRoundSummary:
		fmt.Printf("\n\n[Round %d summarized]\n", e.Round)
	case debate.EventError:
		fmt.Fprintf(os.Stderr, "\nError: %s\n", e.Message)
	}
}

func printDecision(s *models.Session) {
	d := s.Decision
	if d == nil {
		return
	}

	fmt.Println()
	fmt.Println(decisionHeaderStyle.Render("Decision Record"))
	if d.Degraded {
		fmt.Println(warnStyle.Render("(degraded: see transcript for details)"))
	}
	fmt.Printf("\n%s\n", d.Summary)

	printSection := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Printf("\n%s\n", sectionStyle.Render(title))
		for _, item := range items {
			fmt.Printf("  • %s\n", item)
		}
	}
	printSection("Decisions", d.Decisions)
	printSection("Dissent", d.Dissent)
	printSection("Open questions", d.OpenQuestions)
	printSection("Actions", d.Actions)

	fmt.Printf("\nConfidence: %s · %d turns · %s\n",
		d.Confidence,
		s.Metadata.TurnCount,
		s.Metadata.Duration.Round(time.Second))
}
