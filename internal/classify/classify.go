// Package classify maps per-move evaluation signals to quality labels.
//
// Classification is rule-based: an ordered table of guarded rules is
// evaluated top to bottom and the first match wins. The rules operate on
// win probabilities rather than raw centipawns, so a 100 cp slip in an
// already lost position weighs far less than the same slip in an equal one.
package classify

import "math"

// Label is a move quality classification.
type Label string

// The closed set of labels, strongest first.
const (
	Brilliant  Label = "Brilliant"
	Great      Label = "Great"
	Best       Label = "Best"
	Excellent  Label = "Excellent"
	Good       Label = "Good"
	Book       Label = "Book"
	Inaccuracy Label = "Inaccuracy"
	Mistake    Label = "Mistake"
	Miss       Label = "Miss"
	Blunder    Label = "Blunder"
)

// Labels returns all defined labels.
func Labels() []Label {
	return []Label{
		Brilliant, Great, Best, Excellent, Good,
		Book, Inaccuracy, Mistake, Miss, Blunder,
	}
}

// WinProb maps a centipawn score to a win probability in [0,1] for the
// side the score favors. Centered at 0.5 for cp=0, saturating toward 0
// and 1. Mate scores must be clamped to ±10000 before this transform.
func WinProb(cp int) float64 {
	return 1 / (1 + math.Pow(10, -float64(cp)/400))
}

// Signals holds the derived inputs for classifying one move. All win
// probabilities are oriented to the mover.
type Signals struct {
	// WPStart is the win probability achievable by the best move.
	WPStart float64

	// WPAfter is the win probability actually obtained.
	WPAfter float64

	// IsSacrifice reports whether the mover gave up net material.
	IsSacrifice bool

	// IsOnlyMove reports whether the best move was far stronger than
	// any alternative (win probability gap over the second-best line
	// exceeding 0.25).
	IsOnlyMove bool

	// OpponentBlundered reports whether the previous ply lost more than
	// 160 centipawns for the opponent. It is carried for parity with the
	// established label output; no rule currently consults it.
	OpponentBlundered bool

	// IsBestUCI reports whether the played move equals the engine's top
	// suggestion.
	IsBestUCI bool
}

// Loss returns the win-probability loss: the drop between the best
// available outcome and the one obtained, floored at zero.
func (s Signals) Loss() float64 {
	return math.Max(0, s.WPStart-s.WPAfter)
}

// rule is one guarded entry in the classification table.
type rule struct {
	label Label
	match func(s Signals, wpl float64) bool
}

// cascade is evaluated in order; the first matching rule decides the label.
var cascade = []rule{
	{Brilliant, func(s Signals, wpl float64) bool {
		// A sound sacrifice: not already winning, not losing afterward.
		return s.IsSacrifice && wpl <= 0.03 && s.WPStart < 0.65 && s.WPAfter >= 0.4
	}},
	{Great, func(s Signals, wpl float64) bool {
		losingToEqual := s.WPStart < 0.4 && s.WPAfter >= 0.48
		equalToWinning := s.WPStart < 0.6 && s.WPAfter >= 0.7
		onlyGoodMove := s.IsOnlyMove && wpl <= 0.02 && s.WPStart < 0.6
		return (losingToEqual || equalToWinning || onlyGoodMove) && wpl <= 0.01
	}},
	{Miss, func(s Signals, wpl float64) bool {
		// A winning position thrown away.
		return s.WPStart > 0.65 && s.WPAfter < 0.5 && wpl > 0.1
	}},
	{Best, func(s Signals, wpl float64) bool {
		return wpl < 0.0001 || s.IsBestUCI
	}},
	{Excellent, func(s Signals, wpl float64) bool { return wpl <= 0.02 }},
	{Good, func(s Signals, wpl float64) bool { return wpl <= 0.05 }},
	{Inaccuracy, func(s Signals, wpl float64) bool { return wpl <= 0.10 }},
	{Mistake, func(s Signals, wpl float64) bool { return wpl <= 0.20 }},
}

// Classify returns the label for one move. It is total: every input maps
// to exactly one label, falling through to Blunder.
//
// Book is never produced here; opening-book membership is an override
// applied by the caller after the cascade.
func Classify(s Signals) Label {
	wpl := s.Loss()
	for _, r := range cascade {
		if r.match(s, wpl) {
			return r.label
		}
	}
	return Blunder
}
