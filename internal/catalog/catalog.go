// Package catalog provides validated persona and council records, loaded
// once at startup from the built-in set plus optional user YAML files.
// Malformed records are rejected at load time, not at use time.
package catalog

import (
	"errors"
	"fmt"

	"github.com/lukasreiter/quorum/internal/config"
	"github.com/lukasreiter/quorum/internal/models"
)

// ErrNotFound indicates an unknown participant or council id.
var ErrNotFound = errors.New("not found")

// ParticipantCatalog resolves persona records by id. Read-only,
// synchronous and side-effect-free.
type ParticipantCatalog interface {
	Participant(id string) (models.Participant, error)
	Participants() []models.Participant
}

// CouncilCatalog resolves council records by id.
type CouncilCatalog interface {
	Council(id string) (models.Council, error)
	Councils() []models.Council
}

// Static is an in-memory catalog of validated records. It implements both
// catalog interfaces.
type Static struct {
	participants map[string]models.Participant
	councils     map[string]models.Council
	// order preserves insertion order for listing.
	participantOrder []string
	councilOrder     []string
}

// New builds a catalog from explicit records, validating each. Council
// participant references are checked against the participant set.
func New(participants []models.Participant, councils []models.Council) (*Static, error) {
	s := &Static{
		participants: make(map[string]models.Participant),
		councils:     make(map[string]models.Council),
	}
	for _, p := range participants {
		if err := s.addParticipant(p); err != nil {
			return nil, err
		}
	}
	for _, c := range councils {
		if err := s.addCouncil(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Default returns the built-in catalog.
func Default() *Static {
	s, err := New(defaultParticipants, defaultCouncils)
	if err != nil {
		// The built-in records are validated by tests; a failure here
		// is a programming error.
		panic(fmt.Sprintf("built-in catalog invalid: %v", err))
	}
	return s
}

func validateParticipant(p models.Participant) error {
	if p.ID == "" {
		return errors.New("participant: missing id")
	}
	if p.Name == "" {
		return fmt.Errorf("participant %q: missing name", p.ID)
	}
	if p.Contrarian < 0 || p.Contrarian > 1 {
		return fmt.Errorf("participant %q: contrarian %v outside [0,1]", p.ID, p.Contrarian)
	}
	switch p.Verbosity {
	case models.VerbosityBrief, models.VerbosityMedium, models.VerbosityDetailed:
	case "":
		// filled with the medium default in addParticipant
	default:
		return fmt.Errorf("participant %q: unknown verbosity %q", p.ID, p.Verbosity)
	}
	return nil
}

func (s *Static) addParticipant(p models.Participant) error {
	if err := validateParticipant(p); err != nil {
		return err
	}
	if p.Verbosity == "" {
		p.Verbosity = models.VerbosityMedium
	}
	if _, exists := s.participants[p.ID]; !exists {
		s.participantOrder = append(s.participantOrder, p.ID)
	}
	s.participants[p.ID] = p
	return nil
}

func (s *Static) addCouncil(c models.Council) error {
	if c.ID == "" {
		return errors.New("council: missing id")
	}
	if len(c.Participants) < config.MinParticipants || len(c.Participants) > config.MaxParticipants {
		return fmt.Errorf("council %q: %d participants outside [%d,%d]",
			c.ID, len(c.Participants), config.MinParticipants, config.MaxParticipants)
	}
	seen := make(map[string]bool)
	for _, id := range c.Participants {
		if _, ok := s.participants[id]; !ok {
			return fmt.Errorf("council %q: unknown participant %q", c.ID, id)
		}
		if seen[id] {
			return fmt.Errorf("council %q: duplicate participant %q", c.ID, id)
		}
		seen[id] = true
	}
	c.Rounds = config.ClampRounds(c.Rounds)
	if _, exists := s.councils[c.ID]; !exists {
		s.councilOrder = append(s.councilOrder, c.ID)
	}
	s.councils[c.ID] = c
	return nil
}

// Participant returns the persona with the given id.
func (s *Static) Participant(id string) (models.Participant, error) {
	p, ok := s.participants[id]
	if !ok {
		return models.Participant{}, fmt.Errorf("participant %q: %w", id, ErrNotFound)
	}
	return p, nil
}

// Participants lists all personas in load order.
func (s *Static) Participants() []models.Participant {
	out := make([]models.Participant, 0, len(s.participantOrder))
	for _, id := range s.participantOrder {
		out = append(out, s.participants[id])
	}
	return out
}

// Council returns the council with the given id.
func (s *Static) Council(id string) (models.Council, error) {
	c, ok := s.councils[id]
	if !ok {
		return models.Council{}, fmt.Errorf("council %q: %w", id, ErrNotFound)
	}
	return c, nil
}

// Councils lists all councils in load order.
func (s *Static) Councils() []models.Council {
	out := make([]models.Council, 0, len(s.councilOrder))
	for _, id := range s.councilOrder {
		out = append(out, s.councils[id])
	}
	return out
}

// ResolveCouncil expands a council into its ordered participant records.
func (s *Static) ResolveCouncil(id string) (models.Council, []models.Participant, error) {
	c, err := s.Council(id)
	if err != nil {
		return models.Council{}, nil, err
	}
	participants := make([]models.Participant, 0, len(c.Participants))
	for _, pid := range c.Participants {
		p, err := s.Participant(pid)
		if err != nil {
			return models.Council{}, nil, err
		}
		participants = append(participants, p)
	}
	return c, participants, nil
}
