package prompt

import (
	"fmt"
	"strings"

	"github.com/lukasreiter/quorum/internal/models"
)

// safetyPolicy is appended to every persona-turn prompt. Non-negotiable and
// independent of verbosity.
const safetyPolicy = `Safety requirements:
- Never present medical, legal or financial advice as established fact.
- If the topic involves a personal crisis, acknowledge the difficulty and
  point to professional or emergency resources instead of role-playing as a
  counsellor.`

// verbosityHint maps a verbosity tier to a length instruction.
func verbosityHint(v models.Verbosity) string {
	switch v {
	case models.VerbosityBrief:
		return "Answer in 2-3 sentences."
	case models.VerbosityDetailed:
		return "Answer in up to three substantial paragraphs."
	default:
		return "Answer in one or two short paragraphs."
	}
}

// OpeningInput feeds the moderator's opening framing.
type OpeningInput struct {
	Question     string
	Focus        string
	Participants []models.Participant
	Rounds       int
}

// Opening renders the moderator-open prompt. Returned as (system, user).
func Opening(in OpeningInput) (string, string) {
	var roster strings.Builder
	for _, p := range in.Participants {
		fmt.Fprintf(&roster, "- %s (%s)\n", Sanitize(p.Name), Sanitize(p.Role))
	}

	system := "You are the moderator of an expert council debate. You frame questions neutrally and keep discussion focused. You never take a position yourself."

	focus := ""
	if in.Focus != "" {
		focus = fmt.Sprintf("\nThematic focus for this council: %s\n", Sanitize(in.Focus))
	}

	user := fmt.Sprintf(`Open a structured debate on the following question.

Question: %s
%s
Panel (%d rounds of discussion follow):
%s
Frame the question in a few sentences: what is being decided, what tensions
the panel should probe, and what a useful outcome looks like. Do not answer
the question yourself.`, in.Question, focus, in.Rounds, roster.String())

	return system, user
}

// TurnInput feeds one persona turn.
type TurnInput struct {
	Question    string
	Round       int
	Rounds      int
	Participant models.Participant

	// OpeningFraming is included in round 1 only; PriorSummaries replace
	// it in rounds 2+. LiveTurns are the turns already produced by other
	// participants earlier in the current round.
	OpeningFraming string
	PriorSummaries []string
	LiveTurns      []models.TurnMessage
}

// Turn renders a persona-turn prompt. Returned as (system, user).
func Turn(in TurnInput) (string, string) {
	p := in.Participant

	var system strings.Builder
	fmt.Fprintf(&system, "You are %s, %s.\n", Sanitize(p.Name), Sanitize(p.Role))
	if len(p.Expertise) > 0 {
		sanitized := make([]string, 0, len(p.Expertise))
		for _, e := range p.Expertise {
			sanitized = append(sanitized, Sanitize(e))
		}
		fmt.Fprintf(&system, "Expertise: %s.\n", strings.Join(sanitized, ", "))
	}
	if p.Style != "" {
		fmt.Fprintf(&system, "Voice and style: %s\n", Sanitize(p.Style))
	}
	if p.Bias != "" {
		fmt.Fprintf(&system, "Declared leaning: %s\n", Sanitize(p.Bias))
	}
	fmt.Fprintf(&system, "In this debate, %s when responding to other panelists.\n", Stance(p.Contrarian))
	system.WriteString(verbosityHint(p.Verbosity))
	system.WriteString("\n\n")
	system.WriteString(safetyPolicy)

	var user strings.Builder
	fmt.Fprintf(&user, "Question under debate: %s\n\n", in.Question)
	fmt.Fprintf(&user, "This is round %d of %d.\n\n", in.Round, in.Rounds)

	if in.Round == 1 && in.OpeningFraming != "" {
		fmt.Fprintf(&user, "Moderator's framing:\n%s\n\n", in.OpeningFraming)
	}
	for i, summary := range in.PriorSummaries {
		fmt.Fprintf(&user, "Summary of round %d:\n%s\n\n", i+1, summary)
	}

	if len(in.LiveTurns) == 0 {
		user.WriteString("You speak first this round. Give your position.")
	} else {
		user.WriteString("Already said this round:\n\n")
		for _, turn := range in.LiveTurns {
			fmt.Fprintf(&user, "%s (%s):\n%s\n\n", turn.Speaker, turn.Role, turn.Content)
		}
		user.WriteString("Respond with your own position, engaging directly with the points above.")
	}

	return system.String(), user.String()
}

// SummaryInput feeds the moderator's end-of-round summary.
type SummaryInput struct {
	Question string
	Focus    string
	Round    int
	// Turns are this round's participant turns only.
	Turns []models.TurnMessage
}

// Summary renders the round-summary prompt. Returned as (system, user).
func Summary(in SummaryInput) (string, string) {
	system := "You are the moderator of an expert council debate. You produce compact, neutral summaries that preserve disagreement instead of flattening it."

	var turns strings.Builder
	for _, t := range in.Turns {
		fmt.Fprintf(&turns, "%s (%s):\n%s\n\n", t.Speaker, t.Role, t.Content)
	}

	focus := ""
	if in.Focus != "" {
		focus = fmt.Sprintf(" Keep the council's focus (%s) in view.", Sanitize(in.Focus))
	}

	user := fmt.Sprintf(`Question under debate: %s

Round %d just concluded:

%s
Summarize this round in one compact paragraph: the main positions, the
sharpest disagreements, and any movement toward or away from consensus.%s
The summary is the only context the next round will see, so keep every
load-bearing point.`, in.Question, in.Round, turns.String(), focus)

	return system, user
}

// SynthesisInput feeds the one-shot synthesis call over the full transcript.
type SynthesisInput struct {
	Question   string
	Transcript []models.TurnMessage
}

// Synthesis renders the synthesis prompt. The caller pairs it with a low
// temperature and a "{" prefill to bias the backend toward bare JSON.
func Synthesis(in SynthesisInput) (string, string) {
	system := `You reduce expert debates to a single JSON decision record. Output exactly one JSON object and nothing else: no prose, no code fences.

The object has these fields:
  "decisions":      array of strings, the recommendations the panel converged on
  "dissent":        array of strings, positions that remained in genuine disagreement
  "open_questions": array of strings, what the panel could not resolve
  "actions":        array of strings, concrete next steps
  "confidence":     "low", "medium" or "high"
  "summary":        one-paragraph string`

	var transcript strings.Builder
	for _, t := range in.Transcript {
		fmt.Fprintf(&transcript, "[round %d] %s (%s):\n%s\n\n", t.Round, t.Speaker, t.Role, t.Content)
	}

	user := fmt.Sprintf(`Question debated: %s

Full transcript:

%s
Produce the decision record JSON now.`, in.Question, transcript.String())

	return system, user
}
