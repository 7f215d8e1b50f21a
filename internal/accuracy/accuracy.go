// Package accuracy aggregates per-side win-probability losses into
// accuracy percentages and estimated ratings.
package accuracy

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// decay controls how quickly accuracy falls off with mean loss.
// Tuned so a mean loss around 0.04 lands near 70% accuracy.
const decay = 8.5

// Tracker accumulates win-probability losses for one side.
// Book moves are not observed; they are exempt from quality judgment.
// The zero value is ready to use.
type Tracker struct {
	losses []float64
}

// Observe records the win-probability loss of one non-book move.
func (t *Tracker) Observe(wpl float64) {
	t.losses = append(t.losses, wpl)
}

// Count returns the number of observed moves.
func (t *Tracker) Count() int {
	return len(t.losses)
}

// Accuracy returns the side's accuracy in [0,100].
//
// With no observed moves the result is exactly 100.0 by convention:
// a side that played only book moves has nothing to be inaccurate about.
func (t *Tracker) Accuracy() float64 {
	if len(t.losses) == 0 {
		return 100.0
	}
	acc := 100.0 * math.Exp(-decay*stat.Mean(t.losses, nil))
	return math.Max(0.0, math.Min(100.0, acc))
}

// EstimateRating maps an accuracy percentage to an estimated Elo rating
// using a piecewise-linear curve.
func EstimateRating(acc float64) int {
	switch {
	case acc >= 95:
		return int(2200 + (acc-95)*120)
	case acc >= 85:
		return int(1500 + (acc-85)*70)
	case acc >= 70:
		return int(850 + (acc-70)*44)
	case acc >= 50:
		return int(400 + (acc-50)*22.5)
	default:
		return int(acc * 8)
	}
}

// Overall returns the unweighted mean of both sides' accuracies.
func Overall(white, black float64) float64 {
	return (white + black) / 2
}
