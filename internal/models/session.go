package models

import "time"

// Round markers for turn messages. Round 0 is the moderator opening,
// rounds 1..N are debate rounds, RoundSynthesis is reserved for the
// synthesis step (which is not part of the transcript proper).
const RoundSynthesis = -1

// Speaker roles for turn messages.
const (
	RoleModerator = "moderator"
	RoleSummary   = "moderator-summary"
)

// TurnMessage is one generated contribution to a debate. Turn messages are
// append-only; transcript insertion order is the only ordering guarantee and
// is causally meaningful.
type TurnMessage struct {
	Speaker   string    `json:"speaker"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Round     int       `json:"round"`
	CreatedAt time.Time `json:"created_at"`
}

// Confidence is the decision record's confidence tier.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// DecisionRecord is the structured reduction of a transcript. It is either a
// complete, schema-conformant record or an explicit degraded fallback, never
// nil and never a surfaced parse error.
type DecisionRecord struct {
	Decisions     []string   `json:"decisions"`
	Dissent       []string   `json:"dissent"`
	OpenQuestions []string   `json:"open_questions"`
	Actions       []string   `json:"actions"`
	Confidence    Confidence `json:"confidence"`
	Summary       string     `json:"summary"`

	// Degraded marks a fallback record produced when synthesis failed or
	// the session was truncated.
	Degraded bool `json:"degraded,omitempty"`
}

// SessionMetadata carries timing and accounting for a session.
type SessionMetadata struct {
	Duration     time.Duration     `json:"duration_ns"`
	TurnCount    int               `json:"turn_count"`
	RoundCount   int               `json:"round_count"`
	BackendCalls int               `json:"backend_calls"`
	// ModelsUsed maps participant ID to "backend/model" actually used.
	ModelsUsed map[string]string `json:"models_used,omitempty"`

	// Truncated is set when the session ended before the full schedule
	// completed; FailureStage names where it stopped.
	Truncated    bool   `json:"truncated,omitempty"`
	FailureStage string `json:"failure_stage,omitempty"`
}

// Session is the finished debate artifact: transcript, decision record and
// metadata. Mutated only by appending turns and, once, attaching the
// decision record; immutable thereafter.
type Session struct {
	ID          string          `json:"id"`
	Question    string          `json:"question"`
	Council     Council         `json:"council"`
	Transcript  []TurnMessage   `json:"transcript"`
	Decision    *DecisionRecord `json:"decision,omitempty"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt time.Time       `json:"completed_at"`
	Metadata    SessionMetadata `json:"metadata"`
}

// ExpectedTurns returns the transcript length of a successfully completed
// session: opening + rounds*participants + one summary per non-final round.
func ExpectedTurns(rounds, participants int) int {
	if rounds < 1 {
		return 1
	}
	return 1 + rounds*participants + (rounds - 1)
}

// Append records a turn message with the current time.
func (s *Session) Append(speaker, role, content string, round int) {
	s.Transcript = append(s.Transcript, TurnMessage{
		Speaker:   speaker,
		Role:      role,
		Content:   content,
		Round:     round,
		CreatedAt: time.Now(),
	})
}
