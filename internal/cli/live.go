package cli

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"

	"github.com/lukasreiter/quorum/internal/debate"
	"github.com/lukasreiter/quorum/internal/models"
)

// Styles shared by the live view and the plain decision printout.
var (
	speakerStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAFD7")).Bold(true)
	roundStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C6C6C"))
	warnStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF005F"))
	decisionHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00D787")).Bold(true)
	sectionStyle        = lipgloss.NewStyle().Bold(true)
)

// eventMsg wraps a debate event for the bubbletea loop.
type eventMsg debate.Event

// debateDoneMsg signals the orchestrator goroutine finished.
type debateDoneMsg struct{}

// liveModel renders a running debate: spinner, the current speaker and the
// text of the turn in progress.
type liveModel struct {
	spinner  spinner.Model
	events   chan debate.Event
	cancel   context.CancelFunc
	question string

	round    int
	speaker  string
	turnText string
	done     bool
	quitting bool
}

func newLiveModel(question string, events chan debate.Event, cancel context.CancelFunc) liveModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return liveModel{
		spinner:  sp,
		events:   events,
		cancel:   cancel,
		question: question,
	}
}

func (m liveModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.events))
}

func waitForEvent(events chan debate.Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return debateDoneMsg{}
		}
		return eventMsg(e)
	}
}

func (m liveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			m.cancel()
			// Keep draining: the orchestrator emits its final frames
			// before the channel closes.
			return m, waitForEvent(m.events)
		}

	case eventMsg:
		e := debate.Event(msg)
		switch e.Type {
		case debate.EventTurnStarted:
			m.round = e.Round
			m.speaker = e.Speaker
			m.turnText = ""
		case debate.EventToken:
			m.turnText += e.Text
		case debate.EventStreamEnd:
			m.done = true
			return m, tea.Quit
		}
		return m, waitForEvent(m.events)

	case debateDoneMsg:
		m.done = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m liveModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m liveModel) renderContent() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n", m.spinner.View(), m.question)

	if m.speaker != "" {
		stage := "Opening"
		if m.round > 0 {
			stage = fmt.Sprintf("Round %d", m.round)
		}
		fmt.Fprintf(&b, "%s %s\n", roundStyle.Render(stage+" ·"), speakerStyle.Render(m.speaker))

		text := m.turnText
		if len(text) > 600 {
			text = "…" + text[len(text)-600:]
		}
		if text != "" {
			b.WriteString(text)
			b.WriteString("\n")
		}
	}

	if m.quitting {
		b.WriteString(warnStyle.Render("\nCancelling…\n"))
	} else {
		b.WriteString(roundStyle.Render("\nPress q to cancel\n"))
	}
	return b.String()
}

// runLiveDebate drives a debate under the interactive view and returns the
// finished (possibly partial) session.
func runLiveDebate(ctx context.Context, runner debate.Runner, in debate.RunInput) (*models.Session, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan debate.Event, 64)
	in.Emit = func(e debate.Event) { events <- e }

	type result struct {
		session *models.Session
		err     error
	}
	resCh := make(chan result, 1)
	go func() {
		session, err := runner.Run(ctx, in)
		close(events)
		resCh <- result{session, err}
	}()

	p := tea.NewProgram(newLiveModel(in.Question, events, cancel))
	if _, err := p.Run(); err != nil {
		cancel()
		// Drain so the emitting goroutine can finish and close.
		go func() {
			for range events {
			}
		}()
		<-resCh
		return nil, fmt.Errorf("live view error: %w", err)
	}

	res := <-resCh
	return res.session, res.err
}
