package export

import (
	"strings"
	"testing"
	"time"

	"github.com/lukasreiter/quorum/internal/models"
)

func sampleSession() *models.Session {
	s := &models.Session{
		ID:       "sess-1",
		Question: "Should we migrate the queue?",
		Council: models.Council{
			ID:     "tech-review",
			Name:   "Tech Review",
			Rounds: 2,
			Focus:  "operability",
		},
		StartedAt: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		Decision: &models.DecisionRecord{
			Decisions:     []string{"migrate incrementally"},
			Dissent:       []string{"cost concerns"},
			OpenQuestions: []string{},
			Actions:       []string{"draft runbook"},
			Confidence:    models.ConfidenceHigh,
			Summary:       "Migration approved with staged rollout.",
		},
		Metadata: models.SessionMetadata{
			Duration:     3*time.Minute + 250*time.Millisecond,
			TurnCount:    6,
			RoundCount:   2,
			BackendCalls: 7,
		},
	}
	s.Append("Moderator", models.RoleModerator, "Framing the question.", 0)
	s.Append("Maren", "architect", "First round view.", 1)
	s.Append("Dana", "skeptic", "Counterpoint.", 1)
	s.Append("Moderator", models.RoleSummary, "Round one condensed.", 1)
	s.Append("Maren", "architect", "Second round view.", 2)
	s.Append("Dana", "skeptic", "Final pushback.", 2)
	return s
}

func TestMarkdownGroupsByRound(t *testing.T) {
	out := Markdown(sampleSession())

	for _, heading := range []string{"## Opening", "## Round 1", "## Round 2"} {
		if strings.Count(out, heading+"\n") != 1 {
			t.Errorf("heading %q not rendered exactly once", heading)
		}
	}
	if !strings.Contains(out, "### Round 1 Summary") {
		t.Error("round summary heading missing")
	}
	if !strings.Contains(out, "### Maren (architect)") {
		t.Error("speaker heading missing")
	}

	// Round 1 content precedes round 2 content.
	if strings.Index(out, "First round view.") > strings.Index(out, "Second round view.") {
		t.Error("rounds rendered out of order")
	}
}

func TestMarkdownDecisionRecord(t *testing.T) {
	out := Markdown(sampleSession())

	if !strings.Contains(out, "## Decision Record") {
		t.Fatal("decision record section missing")
	}
	if !strings.Contains(out, "- migrate incrementally") {
		t.Error("decision bullet missing")
	}
	if !strings.Contains(out, "**Confidence:** high") {
		t.Error("confidence line missing")
	}
	if strings.Contains(out, "### Open Questions") {
		t.Error("empty list rendered")
	}
	if strings.Contains(out, "Degraded") {
		t.Error("degraded banner rendered for healthy record")
	}
}

func TestMarkdownDegradedBanner(t *testing.T) {
	s := sampleSession()
	s.Decision.Degraded = true
	s.Metadata.Truncated = true
	s.Metadata.FailureStage = "round 2, skeptic"

	out := Markdown(s)
	if !strings.Contains(out, "> Degraded:") {
		t.Error("degraded banner missing")
	}
	if !strings.Contains(out, "Truncated at: round 2, skeptic") {
		t.Error("truncation note missing from footer")
	}
}

func TestMarkdownDeterministic(t *testing.T) {
	s := sampleSession()
	if Markdown(s) != Markdown(s) {
		t.Error("rendering is not deterministic")
	}
}

func TestMarkdownNilDecision(t *testing.T) {
	s := sampleSession()
	s.Decision = nil
	out := Markdown(s)
	if strings.Contains(out, "## Decision Record") {
		t.Error("decision section rendered without a record")
	}
	if !strings.Contains(out, "Session: `sess-1`") {
		t.Error("metadata footer missing")
	}
}
