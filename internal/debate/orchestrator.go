// Package debate drives a council debate session from opening through N
// rounds to synthesis. One orchestrator run is a single logical thread of
// control; all generation calls are issued strictly sequentially because
// each turn causally depends on the turns before it.
package debate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lukasreiter/quorum/internal/config"
	"github.com/lukasreiter/quorum/internal/llm"
	"github.com/lukasreiter/quorum/internal/metrics"
	"github.com/lukasreiter/quorum/internal/models"
	"github.com/lukasreiter/quorum/internal/prompt"
)

// Generation temperatures for moderator calls. Persona turns derive theirs
// from the contrarian level, synthesis uses prompt.SynthesisTemperature.
const (
	openingTemperature = 0.5
	summaryTemperature = 0.3
)

const moderatorName = "Moderator"

// Options configures an Orchestrator.
type Options struct {
	MaxTokens int
	Streaming bool
	Collector *metrics.Collector
	Logger    *slog.Logger
}

// Orchestrator runs debate sessions against a generation client. Safe for
// concurrent use: each Run builds independent session state.
type Orchestrator struct {
	gen       *llm.Client
	maxTokens int
	streaming bool
	collector *metrics.Collector
	logger    *slog.Logger
}

// Runner is the orchestrator contract consumed by the servers and tools.
type Runner interface {
	Run(ctx context.Context, in RunInput) (*models.Session, error)
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(gen *llm.Client, opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Orchestrator{
		gen:       gen,
		maxTokens: maxTokens,
		streaming: opts.Streaming,
		collector: opts.Collector,
		logger:    logger,
	}
}

// RunInput is one session request. Participants must be the resolved
// records for the council's ids, in the council's declared order.
type RunInput struct {
	Question     string
	Council      models.Council
	Participants []models.Participant
	// Emit, when set, receives the session's typed event stream.
	Emit EmitFunc
}

// run carries the mutable state of one session.
type run struct {
	o       *Orchestrator
	in      RunInput
	session *models.Session
	emit    EmitFunc
	// summaries holds one compact text per completed non-final round;
	// they are the only prior-round context later rounds see.
	summaries []string
	opening   string
}

// Run drives one session to completion. On a fatal mid-session error the
// partial session built so far is returned together with the error, tagged
// with a degraded decision record; work already produced is never
// discarded.
func (o *Orchestrator) Run(ctx context.Context, in RunInput) (*models.Session, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	// Backend resolution is a precondition for every scheduled call;
	// resolve all of it before the first call so configuration errors
	// fail without spending any quota.
	modelsUsed := make(map[string]string, len(in.Participants))
	if _, err := o.gen.Resolve(""); err != nil {
		return nil, err
	}
	for _, p := range in.Participants {
		backend, err := o.gen.Resolve(p.Backend)
		if err != nil {
			return nil, fmt.Errorf("participant %q: %w", p.ID, err)
		}
		model := p.Model
		if model == "" {
			model = "default"
		}
		modelsUsed[p.ID] = backend.Name() + "/" + model
	}

	emit := in.Emit
	if emit == nil {
		emit = func(Event) {}
	}

	r := &run{
		o:    o,
		in:   in,
		emit: emit,
		session: &models.Session{
			ID:        uuid.NewString(),
			Question:  in.Question,
			Council:   in.Council,
			StartedAt: time.Now(),
			Metadata: models.SessionMetadata{
				RoundCount: in.Council.Rounds,
				ModelsUsed: modelsUsed,
			},
		},
	}

	err := r.drive(ctx)
	r.finish()
	if err != nil {
		emit(Event{Type: EventError, Message: err.Error()})
	}
	emit(Event{Type: EventStreamEnd})
	return r.session, err
}

func validateInput(in RunInput) error {
	if in.Question == "" {
		return errors.New("question must not be empty")
	}
	n := len(in.Participants)
	if n != len(in.Council.Participants) {
		return fmt.Errorf("resolved %d participants for a council of %d", n, len(in.Council.Participants))
	}
	if n < config.MinParticipants || n > config.MaxParticipants {
		return fmt.Errorf("%d participants outside [%d,%d]", n, config.MinParticipants, config.MaxParticipants)
	}
	if in.Council.Rounds < config.MinRounds || in.Council.Rounds > config.MaxRounds {
		return fmt.Errorf("round count %d outside [%d,%d]", in.Council.Rounds, config.MinRounds, config.MaxRounds)
	}
	return nil
}

// drive executes the schedule: opening, rounds with interleaved summaries,
// then synthesis. Any error aborts the remaining schedule; the caller
// attaches the degraded decision record.
func (r *run) drive(ctx context.Context) error {
	if err := r.openDebate(ctx); err != nil {
		return r.fail("opening", err)
	}

	rounds := r.in.Council.Rounds
	for round := 1; round <= rounds; round++ {
		roundTurns, err := r.runRound(ctx, round)
		if err != nil {
			return err
		}
		if round < rounds {
			if err := r.summarizeRound(ctx, round, roundTurns); err != nil {
				return r.fail(fmt.Sprintf("round %d summary", round), err)
			}
		}
	}

	r.synthesize(ctx)
	return nil
}

func (r *run) openDebate(ctx context.Context) error {
	system, user := prompt.Opening(prompt.OpeningInput{
		Question:     r.in.Question,
		Focus:        r.in.Council.Focus,
		Participants: r.in.Participants,
		Rounds:       r.in.Council.Rounds,
	})

	text, err := r.generate(ctx, moderatorName, models.RoleModerator, 0, llm.Call{
		Request: llm.Request{
			System:      system,
			Prompt:      user,
			MaxTokens:   r.o.maxTokens,
			Temperature: openingTemperature,
		},
	})
	if err != nil {
		return err
	}

	r.opening = text
	r.session.Append(moderatorName, models.RoleModerator, text, 0)
	return nil
}

// runRound lets every participant speak once, in council order. Each
// speaker sees the prior rounds only through their summaries plus the
// verbatim turns already produced earlier in this round.
func (r *run) runRound(ctx context.Context, round int) ([]models.TurnMessage, error) {
	var roundTurns []models.TurnMessage

	for _, p := range r.in.Participants {
		stage := fmt.Sprintf("round %d, %s", round, p.ID)

		turnInput := prompt.TurnInput{
			Question:       r.in.Question,
			Round:          round,
			Rounds:         r.in.Council.Rounds,
			Participant:    p,
			PriorSummaries: r.summaries,
			LiveTurns:      roundTurns,
		}
		if round == 1 {
			turnInput.OpeningFraming = r.opening
		}
		system, user := prompt.Turn(turnInput)

		text, err := r.generate(ctx, p.Name, p.Role, round, llm.Call{
			Backend: p.Backend,
			Request: llm.Request{
				System:      system,
				Prompt:      user,
				Model:       p.Model,
				MaxTokens:   r.o.maxTokens,
				Temperature: prompt.Temperature(p.Contrarian),
			},
		})
		if err != nil {
			return nil, r.fail(stage, err)
		}

		turn := models.TurnMessage{
			Speaker:   p.Name,
			Role:      p.Role,
			Content:   text,
			Round:     round,
			CreatedAt: time.Now(),
		}
		r.session.Transcript = append(r.session.Transcript, turn)
		roundTurns = append(roundTurns, turn)
	}

	return roundTurns, nil
}

// summarizeRound produces the one compact text that carries this round
// into the next. The summary turn joins the transcript with this round's
// marker but is excluded from the next round's live-turn context.
func (r *run) summarizeRound(ctx context.Context, round int, roundTurns []models.TurnMessage) error {
	system, user := prompt.Summary(prompt.SummaryInput{
		Question: r.in.Question,
		Focus:    r.in.Council.Focus,
		Round:    round,
		Turns:    roundTurns,
	})

	text, err := r.generate(ctx, moderatorName, models.RoleSummary, round, llm.Call{
		Request: llm.Request{
			System:      system,
			Prompt:      user,
			MaxTokens:   r.o.maxTokens,
			Temperature: summaryTemperature,
		},
	})
	if err != nil {
		return err
	}

	r.session.Append(moderatorName, models.RoleSummary, text, round)
	r.summaries = append(r.summaries, text)
	r.emit(Event{Type: EventRoundSummary, Speaker: moderatorName, Role: models.RoleSummary, Round: round, Text: text})
	return nil
}

// synthesize reduces the full transcript to a decision record. Synthesis
// failures never abort the session: the transcript is already complete, so
// a backend or parse failure degrades the record instead.
func (r *run) synthesize(ctx context.Context) {
	system, user := prompt.Synthesis(prompt.SynthesisInput{
		Question:   r.in.Question,
		Transcript: r.session.Transcript,
	})

	// Buffered call: synthesis output is parsed as data, never displayed
	// token by token. The "{" prefill biases the backend toward a bare
	// JSON object.
	text, attempts, err := r.o.gen.Generate(ctx, llm.Call{
		Request: llm.Request{
			System:      system,
			Prompt:      user,
			Prefill:     "{",
			MaxTokens:   r.o.maxTokens,
			Temperature: prompt.SynthesisTemperature,
		},
	})
	r.session.Metadata.BackendCalls += attempts

	var record models.DecisionRecord
	if err != nil {
		r.o.logger.Warn("synthesis generation failed", "error", err)
		r.session.Metadata.FailureStage = "synthesis"
		record = Degraded("the synthesis generation call failed")
	} else {
		record = Extract(text)
	}

	r.session.Decision = &record
	r.emit(Event{Type: EventDecision, Record: &record})
}

// generate issues one scheduled call, emitting turn-started and token
// events around it. Cancellation is checked before the call so no further
// calls are issued once the signal is observed.
func (r *run) generate(ctx context.Context, speaker, role string, round int, call llm.Call) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", llm.Classify(err)
	}

	r.emit(Event{Type: EventTurnStarted, Speaker: speaker, Role: role, Round: round})

	if r.o.streaming {
		call.OnToken = func(token string) error {
			r.emit(Event{Type: EventToken, Speaker: speaker, Round: round, Text: token})
			return nil
		}
	}

	text, attempts, err := r.o.gen.Generate(ctx, call)
	r.session.Metadata.BackendCalls += attempts
	if err != nil {
		return "", err
	}

	// Buffered calls still feed event consumers: the whole turn arrives
	// as a single token event.
	if !r.o.streaming {
		r.emit(Event{Type: EventToken, Speaker: speaker, Round: round, Text: text})
	}
	return text, nil
}

// fail marks the session truncated at the given stage and attaches the
// degraded decision record. The accumulated transcript is preserved.
func (r *run) fail(stage string, err error) error {
	r.session.Metadata.Truncated = true
	r.session.Metadata.FailureStage = stage

	reason := "the session was truncated at " + stage
	if errors.Is(err, llm.ErrAborted) {
		reason = "the session was cancelled during " + stage
	}
	record := Degraded(reason)
	r.session.Decision = &record

	r.o.logger.Error("session failed", "stage", stage, "error", err)
	return fmt.Errorf("%s: %w", stage, err)
}

// finish stamps completion metadata.
func (r *run) finish() {
	r.session.CompletedAt = time.Now()
	r.session.Metadata.Duration = r.session.CompletedAt.Sub(r.session.StartedAt)
	r.session.Metadata.TurnCount = len(r.session.Transcript)
	if r.o.collector != nil {
		r.o.collector.RecordTiming(metrics.OpSession, r.session.Metadata.Duration)
	}
}
