// Package export renders completed sessions into human-readable documents.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/lukasreiter/quorum/internal/models"
)

// durationPrecision keeps the metadata footer readable.
const durationPrecision = 100 * time.Millisecond

// Markdown renders a session as a standalone Markdown document: question,
// per-round transcript, decision record, then a metadata footer. Rendering
// is deterministic for a given session.
func Markdown(s *models.Session) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", headline(s))
	fmt.Fprintf(&b, "**Question:** %s\n\n", s.Question)
	if s.Council.Focus != "" {
		fmt.Fprintf(&b, "**Focus:** %s\n\n", s.Council.Focus)
	}

	writeTranscript(&b, s)
	writeDecision(&b, s.Decision)
	writeMetadata(&b, s)

	return b.String()
}

func headline(s *models.Session) string {
	name := s.Council.Name
	if name == "" {
		name = s.Council.ID
	}
	if name == "" {
		return "Debate Session"
	}
	return name + " Session"
}

func writeTranscript(b *strings.Builder, s *models.Session) {
	currentRound := -1
	for _, turn := range s.Transcript {
		if turn.Round != currentRound {
			currentRound = turn.Round
			if currentRound == 0 {
				b.WriteString("## Opening\n\n")
			} else {
				fmt.Fprintf(b, "## Round %d\n\n", currentRound)
			}
		}
		if turn.Role == models.RoleSummary {
			fmt.Fprintf(b, "### Round %d Summary\n\n%s\n\n", turn.Round, turn.Content)
			continue
		}
		fmt.Fprintf(b, "### %s (%s)\n\n%s\n\n", turn.Speaker, turn.Role, turn.Content)
	}
}

func writeDecision(b *strings.Builder, d *models.DecisionRecord) {
	if d == nil {
		return
	}
	b.WriteString("## Decision Record\n\n")
	if d.Degraded {
		b.WriteString("> Degraded: structured synthesis was not available for this session.\n\n")
	}
	fmt.Fprintf(b, "%s\n\n", d.Summary)
	writeList(b, "Decisions", d.Decisions)
	writeList(b, "Dissent", d.Dissent)
	writeList(b, "Open Questions", d.OpenQuestions)
	writeList(b, "Actions", d.Actions)
	fmt.Fprintf(b, "**Confidence:** %s\n\n", d.Confidence)
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}

func writeMetadata(b *strings.Builder, s *models.Session) {
	b.WriteString("---\n\n")
	fmt.Fprintf(b, "- Session: `%s`\n", s.ID)
	fmt.Fprintf(b, "- Started: %s\n", s.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(b, "- Duration: %s\n", s.Metadata.Duration.Round(durationPrecision))
	fmt.Fprintf(b, "- Turns: %d over %d rounds\n", s.Metadata.TurnCount, s.Metadata.RoundCount)
	fmt.Fprintf(b, "- Backend calls: %d\n", s.Metadata.BackendCalls)
	if s.Metadata.Truncated {
		fmt.Fprintf(b, "- Truncated at: %s\n", s.Metadata.FailureStage)
	}
}
