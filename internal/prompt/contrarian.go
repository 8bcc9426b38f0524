package prompt

// Stance instructions selected by contrarian-level threshold.
const (
	StanceConsensus  = "seek common ground"
	StanceSelective  = "push back selectively"
	StanceAggressive = "challenge aggressively"
)

// Temperature bounds for persona turns. The contrarian level interpolates
// between them; synthesis uses SynthesisTemperature regardless.
const (
	minTemperature       = 0.4
	maxTemperature       = 0.9
	SynthesisTemperature = 0.2
)

// clampLevel bounds a contrarian level to [0,1].
func clampLevel(level float64) float64 {
	if level < 0 {
		return 0
	}
	if level > 1 {
		return 1
	}
	return level
}

// Temperature maps a contrarian level to a sampling temperature. Higher
// contrarian level yields higher temperature, within safe bounds. This and
// Stance must stay consistent for the same participant: both derive from
// the same scalar.
func Temperature(level float64) float64 {
	t := minTemperature + (maxTemperature-minTemperature)*clampLevel(level)
	if t > maxTemperature {
		return maxTemperature
	}
	return t
}

// Stance maps a contrarian level to one of three discrete instruction
// strings by threshold.
func Stance(level float64) string {
	level = clampLevel(level)
	switch {
	case level < 0.33:
		return StanceConsensus
	case level < 0.66:
		return StanceSelective
	default:
		return StanceAggressive
	}
}
