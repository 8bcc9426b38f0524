// Package models defines the data structures for quorum debate sessions.
package models

// Verbosity controls how long a participant's turns are allowed to be.
type Verbosity string

const (
	VerbosityBrief    Verbosity = "brief"
	VerbosityMedium   Verbosity = "medium"
	VerbosityDetailed Verbosity = "detailed"
)

// Participant is a debate persona. Immutable for the duration of a session;
// owned by the catalog and referenced by ID.
type Participant struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Role      string    `json:"role" yaml:"role"`
	Expertise []string  `json:"expertise" yaml:"expertise"`
	Style     string    `json:"style" yaml:"style"`
	Bias      string    `json:"bias,omitempty" yaml:"bias,omitempty"`
	// Contrarian is a scalar in [0,1]; it maps to both a sampling
	// temperature and a stance instruction, see internal/prompt.
	Contrarian float64   `json:"contrarian" yaml:"contrarian"`
	Verbosity  Verbosity `json:"verbosity" yaml:"verbosity"`

	// Optional per-participant overrides of the session-wide defaults.
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty"`
	Model   string `json:"model,omitempty" yaml:"model,omitempty"`
}

// Council is an ordered set of participants plus a round count and an
// optional thematic focus injected into moderator prompts.
type Council struct {
	ID           string   `json:"id" yaml:"id"`
	Name         string   `json:"name" yaml:"name"`
	Participants []string `json:"participants" yaml:"participants"`
	Rounds       int      `json:"rounds" yaml:"rounds"`
	Focus        string   `json:"focus,omitempty" yaml:"focus,omitempty"`
}
