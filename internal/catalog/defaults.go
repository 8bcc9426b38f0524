package catalog

import "github.com/lukasreiter/quorum/internal/models"

// Built-in personas. User YAML files can add to or override these.
var defaultParticipants = []models.Participant{
	{
		ID:         "architect",
		Name:       "Maren Voss",
		Role:       "Principal Architect",
		Expertise:  []string{"system design", "scalability", "migration planning"},
		Style:      "structured, draws diagrams in words, reasons from constraints",
		Contrarian: 0.4,
		Verbosity:  models.VerbosityDetailed,
	},
	{
		ID:         "skeptic",
		Name:       "Dana Reyes",
		Role:       "Staff Engineer",
		Expertise:  []string{"distributed systems", "operations", "incident response"},
		Style:      "dry, evidence-first, allergic to hype",
		Bias:       "assumes the current system is underrated",
		Contrarian: 0.85,
		Verbosity:  models.VerbosityMedium,
	},
	{
		ID:         "pragmatist",
		Name:       "Jonas Lind",
		Role:       "Engineering Manager",
		Expertise:  []string{"delivery", "team topology", "cost management"},
		Style:      "plain-spoken, always asks what ships next quarter",
		Contrarian: 0.3,
		Verbosity:  models.VerbosityBrief,
	},
	{
		ID:         "security",
		Name:       "Priya Natarajan",
		Role:       "Security Engineer",
		Expertise:  []string{"threat modeling", "compliance", "supply chain"},
		Style:      "precise, enumerates failure modes before benefits",
		Bias:       "treats every new surface as attack surface",
		Contrarian: 0.6,
		Verbosity:  models.VerbosityMedium,
	},
	{
		ID:         "product",
		Name:       "Elif Kaya",
		Role:       "Product Lead",
		Expertise:  []string{"user research", "roadmaps", "market positioning"},
		Style:      "narrative-driven, anchors arguments in user outcomes",
		Contrarian: 0.2,
		Verbosity:  models.VerbosityMedium,
	},
	{
		ID:         "economist",
		Name:       "Viktor Hale",
		Role:       "Staff Analyst",
		Expertise:  []string{"unit economics", "forecasting", "opportunity cost"},
		Style:      "quantifies everything, flags unpriced risk",
		Contrarian: 0.55,
		Verbosity:  models.VerbosityBrief,
	},
}

// Built-in councils.
var defaultCouncils = []models.Council{
	{
		ID:           "tech-review",
		Name:         "Technical Review Board",
		Participants: []string{"architect", "skeptic", "pragmatist"},
		Rounds:       2,
		Focus:        "engineering tradeoffs and delivery risk",
	},
	{
		ID:           "product-strategy",
		Name:         "Product Strategy Council",
		Participants: []string{"product", "economist", "pragmatist", "skeptic"},
		Rounds:       2,
		Focus:        "user value against cost and focus",
	},
	{
		ID:           "risk-review",
		Name:         "Risk Review Panel",
		Participants: []string{"security", "skeptic", "architect", "economist"},
		Rounds:       3,
		Focus:        "what can go wrong and what it costs",
	},
}
