// Package prompt renders the four debate prompt kinds from typed inputs.
// Every builder is a pure function so prompts are testable without a
// backend.
package prompt

import (
	"strings"
	"unicode"
)

// maxFieldRunes caps any persona-sourced field interpolated into an
// instruction string.
const maxFieldRunes = 400

// rolePrefixes are line-leading tokens that could let a persona record
// escape its intended role in the rendered instruction.
var rolePrefixes = []string{"system:", "assistant:", "user:", "human:"}

// Sanitize neutralizes persona-sourced text before interpolation: control
// characters are stripped, code fences are defanged, role-header line
// prefixes are removed and the result is length-capped. Idempotent:
// Sanitize(Sanitize(x)) == Sanitize(x).
func Sanitize(s string) string {
	// Strip control characters, keeping newlines for multi-line styles.
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' {
			b.WriteRune(r)
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	out := b.String()

	out = strings.ReplaceAll(out, "```", "'''")

	lines := strings.Split(out, "\n")
	for i, line := range lines {
		lines[i] = stripRolePrefix(line)
	}
	out = strings.Join(lines, "\n")

	out = strings.TrimSpace(out)

	runes := []rune(out)
	if len(runes) > maxFieldRunes {
		out = strings.TrimSpace(string(runes[:maxFieldRunes]))
	}
	return out
}

// stripRolePrefix removes role-header tokens from the start of a line,
// repeating until none remain so stacked prefixes cannot survive one pass.
func stripRolePrefix(line string) string {
	for {
		trimmed := strings.TrimLeft(line, " \t")
		lower := strings.ToLower(trimmed)
		stripped := false
		for _, p := range rolePrefixes {
			if strings.HasPrefix(lower, p) {
				line = strings.TrimLeft(trimmed[len(p):], " \t")
				stripped = true
				break
			}
		}
		if !stripped {
			return line
		}
	}
}
