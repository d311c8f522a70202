package engine

import "github.com/shopspring/decimal"

// EconomyState is the persisted user document.
type EconomyState struct {
	Level         int             `json:"level"`
	TotalPoints   decimal.Decimal `json:"totalPoints"`
	CurrentPoints decimal.Decimal `json:"currentPoints"`
	Experience    decimal.Decimal `json:"experience"`
}

// Equal compares field by field; decimals with different exponents but the
// same value are equal.
func (s EconomyState) Equal(o EconomyState) bool {
	return s.Level == o.Level &&
		s.TotalPoints.Equal(o.TotalPoints) &&
		s.CurrentPoints.Equal(o.CurrentPoints) &&
		s.Experience.Equal(o.Experience)
}

// Economy owns points, experience and the derived level.
//
// Points and experience move independently: spending never touches
// experience, and the level is always recomputed from experience alone, even
// from AddPoints.
type Economy struct {
	state EconomyState
	// strict rejects deductions that would take the balance below zero.
	strict bool
}

func NewEconomy(state EconomyState, strict bool) *Economy {
	e := &Economy{state: state, strict: strict}
	e.recompute()
	return e
}

func (e *Economy) State() EconomyState { return e.state }

func (e *Economy) TotalPoints() decimal.Decimal { return e.state.TotalPoints }
func (e *Economy) Experience() decimal.Decimal  { return e.state.Experience }
func (e *Economy) Level() int                   { return e.state.Level }

// Progress is the percentage towards the next level.
func (e *Economy) Progress() float64 {
	return LevelProgress(e.state.Experience.InexactFloat64(), e.state.Level)
}

func (e *Economy) AddPoints(amount decimal.Decimal) {
	e.state.TotalPoints = e.state.TotalPoints.Add(amount)
	e.recompute()
}

// DeductPoints always succeeds unless the economy is strict, in which case a
// deduction larger than the balance is refused and nothing changes.
func (e *Economy) DeductPoints(amount decimal.Decimal) bool {
	if e.strict && e.state.TotalPoints.LessThan(amount) {
		return false
	}
	e.state.TotalPoints = e.state.TotalPoints.Sub(amount)
	e.recompute()
	return true
}

func (e *Economy) AddExperience(amount decimal.Decimal) {
	e.state.Experience = e.state.Experience.Add(amount)
	e.recompute()
}

// RemovePoints rolls back points; the balance may go negative.
func (e *Economy) RemovePoints(amount decimal.Decimal) {
	e.state.TotalPoints = e.state.TotalPoints.Sub(amount)
	e.recompute()
}

// RemoveExperience rolls back experience, never below zero.
func (e *Economy) RemoveExperience(amount decimal.Decimal) {
	exp := e.state.Experience.Sub(amount)
	if exp.IsNegative() {
		exp = decimal.Zero
	}
	e.state.Experience = exp
	e.recompute()
}

// HandleTaskStart charges a challenge's entry cost and reports whether the
// caller may proceed.
func (e *Economy) HandleTaskStart(entryCost decimal.Decimal) bool {
	if !entryCost.IsPositive() {
		return true
	}
	return e.DeductPoints(entryCost)
}

// HandleTaskCompletion credits a completion: experience gained always equals
// the points awarded.
func (e *Economy) HandleTaskCompletion(points decimal.Decimal) {
	e.AddPoints(points)
	e.AddExperience(points)
}

func (e *Economy) recompute() {
	e.state.Level = LevelForExperience(e.state.Experience.InexactFloat64())
	// currentPoints is the legacy display balance: total minus 100 per level.
	e.state.CurrentPoints = e.state.TotalPoints.Sub(decimal.NewFromInt(int64(e.state.Level-1) * 100))
}
