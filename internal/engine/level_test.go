package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelCurveThresholds(t *testing.T) {
	cases := []struct {
		exp  float64
		want int
	}{
		{0, 1},
		{99.9, 1},
		{100, 2},
		{299, 2},
		{300, 3},
		{600, 4},
		{999, 4},
		{1000, 5},
		{-50, 1},
		{math.NaN(), 1},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, LevelForExperience(c.exp), "exp=%v", c.exp)
	}
}

func TestLevelRoundTripsThresholds(t *testing.T) {
	for level := 1; level <= 200; level++ {
		exp := ExperienceForLevel(level)
		require.Equal(t, level, LevelForExperience(exp), "threshold of level %d", level)
		if level > 1 {
			require.Equal(t, level-1, LevelForExperience(exp-0.001), "just below level %d", level)
		}
	}
}

func TestLevelMonotonic(t *testing.T) {
	prev := LevelForExperience(0)
	for e := 0.0; e <= 50000; e += 7.3 {
		l := LevelForExperience(e)
		require.GreaterOrEqual(t, l, prev, "exp=%v", e)
		prev = l
	}
}

func TestLevelProgressClamped(t *testing.T) {
	assert.Equal(t, 0.0, LevelProgress(0, 1))
	assert.Equal(t, 50.0, LevelProgress(50, 1))
	assert.Equal(t, 50.0, LevelProgress(200, 2))

	// A stale level outside the experience range is clamped, not extrapolated.
	assert.Equal(t, 100.0, LevelProgress(5000, 2))
	assert.Equal(t, 0.0, LevelProgress(0, 5))
	assert.Equal(t, 0.0, LevelProgress(math.NaN(), 1))

	for e := 0.0; e < 3000; e += 13 {
		for l := 0; l < 10; l++ {
			p := LevelProgress(e, l)
			require.True(t, p >= 0 && p <= 100, "progress(%v,%d)=%v", e, l, p)
		}
	}
}
