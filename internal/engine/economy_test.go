package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func pts(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func assertPoints(t *testing.T, want int64, got decimal.Decimal, note ...string) {
	t.Helper()
	assert.Truef(t, got.Equal(pts(want)), "want %d, got %s %v", want, got, note)
}

func TestEconomyOverdraft(t *testing.T) {
	e := NewEconomy(EconomyState{TotalPoints: pts(10)}, false)
	assert.True(t, e.DeductPoints(pts(50)))
	assertPoints(t, -40, e.TotalPoints())
}

func TestEconomyStrictRefusesOverdraft(t *testing.T) {
	e := NewEconomy(EconomyState{TotalPoints: pts(10)}, true)
	assert.False(t, e.DeductPoints(pts(50)))
	assertPoints(t, 10, e.TotalPoints())
	assert.True(t, e.DeductPoints(pts(10)))
	assertPoints(t, 0, e.TotalPoints())
}

func TestEconomyLevelFollowsExperienceOnly(t *testing.T) {
	e := NewEconomy(EconomyState{}, false)
	e.AddPoints(pts(5000))
	assert.Equal(t, 1, e.Level(), "points alone never level up")

	e.AddExperience(pts(300))
	assert.Equal(t, 3, e.Level())
	assertPoints(t, 5000, e.TotalPoints())
}

func TestEconomyCompletionCreditsBoth(t *testing.T) {
	e := NewEconomy(EconomyState{}, false)
	e.HandleTaskCompletion(pts(120))
	assertPoints(t, 120, e.TotalPoints())
	assertPoints(t, 120, e.Experience())
	assert.Equal(t, 2, e.Level())
	assertPoints(t, 20, e.State().CurrentPoints)
}

func TestEconomyRollbackAsymmetry(t *testing.T) {
	e := NewEconomy(EconomyState{TotalPoints: pts(10), Experience: pts(10)}, false)
	e.RemovePoints(pts(30))
	e.RemoveExperience(pts(30))
	assertPoints(t, -20, e.TotalPoints(), "points may go negative")
	assertPoints(t, 0, e.Experience(), "experience is clamped at zero")
	assert.Equal(t, 1, e.Level())
}

func TestEconomyTaskStart(t *testing.T) {
	e := NewEconomy(EconomyState{TotalPoints: pts(3)}, true)
	assert.True(t, e.HandleTaskStart(decimal.Zero))
	assert.False(t, e.HandleTaskStart(pts(5)))
	assertPoints(t, 3, e.TotalPoints())

	lax := NewEconomy(EconomyState{TotalPoints: pts(3)}, false)
	assert.True(t, lax.HandleTaskStart(pts(5)))
	assertPoints(t, -2, lax.TotalPoints())
}

func TestEconomyRecomputesStaleLevel(t *testing.T) {
	e := NewEconomy(EconomyState{Level: 9, Experience: pts(650)}, false)
	assert.Equal(t, 4, e.Level())
}
