package engine

import "math"

// LevelStepXP is the experience step of the triangular curve: reaching level
// L takes LevelStepXP * L*(L-1)/2 in total (0, 100, 300, 600, 1000, ...).
const LevelStepXP = 100.0

// ExperienceForLevel returns the total experience threshold of the given level.
// Level 1 (and anything below) requires 0.
func ExperienceForLevel(level int) float64 {
	if level <= 1 {
		return 0
	}
	l := float64(level)
	return LevelStepXP * l * (l - 1) / 2
}

// LevelForExperience inverts ExperienceForLevel. The result is at least 1.
func LevelForExperience(exp float64) int {
	if math.IsNaN(exp) || exp <= 0 {
		return 1
	}
	if math.IsInf(exp, 1) {
		return math.MaxInt32
	}
	level := int(math.Floor((1 + math.Sqrt(1+8*exp/LevelStepXP)) / 2))
	// Nudge across thresholds the square root may have rounded past.
	for ExperienceForLevel(level+1) <= exp {
		level++
	}
	for level > 1 && ExperienceForLevel(level) > exp {
		level--
	}
	if level < 1 {
		return 1
	}
	return level
}

// LevelProgress is the percentage of the way from level to level+1, in [0, 100].
func LevelProgress(exp float64, level int) float64 {
	lo := ExperienceForLevel(level)
	hi := ExperienceForLevel(level + 1)
	den := hi - lo
	if den == 0 {
		return 100
	}
	p := (exp - lo) / den * 100
	switch {
	case math.IsNaN(p):
		return 0
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}
