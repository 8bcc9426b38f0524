package debate

import "github.com/lukasreiter/quorum/internal/models"

// EventType identifies one entry in the session event stream.
type EventType string

// Event types, emitted in exactly the order turns occur. Consumers must
// treat the stream as an append-only log.
const (
	EventTurnStarted  EventType = "participant-turn-started"
	EventToken        EventType = "token"
	EventRoundSummary EventType = "round-summary-produced"
	EventDecision     EventType = "decision-record-ready"
	EventError        EventType = "error"
	EventStreamEnd    EventType = "stream-end"
)

// Event is one entry in a session's typed event stream.
type Event struct {
	Type    EventType              `json:"type"`
	Speaker string                 `json:"speaker,omitempty"`
	Role    string                 `json:"role,omitempty"`
	Round   int                    `json:"round,omitempty"`
	Text    string                 `json:"text,omitempty"`
	Record  *models.DecisionRecord `json:"record,omitempty"`
	Message string                 `json:"message,omitempty"`
}

// EmitFunc receives session events. It is called from the session's single
// thread of control and must not block for unbounded time.
type EmitFunc func(Event)
