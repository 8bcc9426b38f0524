package debate

import (
	"encoding/json"
	"strings"

	"github.com/lukasreiter/quorum/internal/models"
)

// degradedSummary prefixes every fallback record's summary.
const degradedSummary = "The synthesis step could not produce a structured decision record"

// Extract recovers a decision record from raw generated text. It never
// fails: formatting noise is stripped, missing or wrong-shaped fields are
// replaced with safe defaults, and only an unparseable payload yields the
// fully degraded fallback record.
func Extract(raw string) models.DecisionRecord {
	candidate := jsonCandidate(raw)
	if candidate == "" {
		return Degraded("no JSON object found in the output")
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(candidate), &fields); err != nil {
		return Degraded("the output could not be parsed as JSON")
	}

	record := models.DecisionRecord{
		Decisions:     stringList(fields["decisions"]),
		Dissent:       stringList(fields["dissent"]),
		OpenQuestions: stringList(fields["open_questions"]),
		Actions:       stringList(fields["actions"]),
		Confidence:    confidence(fields["confidence"]),
		Summary:       summary(fields["summary"]),
	}
	return record
}

// Degraded builds the fallback record: empty lists, low confidence, and a
// summary that explains the failure and points the reader at the
// transcript.
func Degraded(reason string) models.DecisionRecord {
	return models.DecisionRecord{
		Decisions:     []string{},
		Dissent:       []string{},
		OpenQuestions: []string{},
		Actions:       []string{},
		Confidence:    models.ConfidenceLow,
		Summary:       degradedSummary + " (" + reason + "). Refer to the transcript for the debate content.",
		Degraded:      true,
	}
}

// jsonCandidate strips code fences and surrounding prose, returning the
// text between the first '{' and the last '}'.
func jsonCandidate(raw string) string {
	s := strings.TrimSpace(raw)

	// Fence markers anywhere are noise; models add them despite
	// instructions.
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return s[start : end+1]
}

// stringList coerces a decoded JSON value into a string slice. Anything
// that is not a list yields the empty list; non-string elements within a
// list are dropped.
func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// confidence normalizes the confidence field, defaulting to medium for
// absent or unrecognized values.
func confidence(v any) models.Confidence {
	s, ok := v.(string)
	if !ok {
		return models.ConfidenceMedium
	}
	switch models.Confidence(strings.ToLower(strings.TrimSpace(s))) {
	case models.ConfidenceLow:
		return models.ConfidenceLow
	case models.ConfidenceHigh:
		return models.ConfidenceHigh
	case models.ConfidenceMedium:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceMedium
	}
}

// summary substitutes a generic summary when the field is absent or not a
// string.
func summary(v any) string {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "The council completed its debate; no machine-readable summary was produced. See the transcript."
	}
	return s
}
