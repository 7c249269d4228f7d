// Package sm2 implements the SuperMemo-2 quality-to-interval calculation.
//
// The calculation is a pure function of its four inputs: identical inputs
// always produce identical outputs, so a rating can be recomputed safely
// after a crash between computation and commit.
package sm2

import (
	"errors"
	"math"
)

// ErrInvalidRating is returned when an input violates the engine contract.
// Use errors.Is to check.
var ErrInvalidRating = errors.New("sm2: invalid rating")

// Quality rating scale. Ratings at or above QualityHard count as a pass;
// ratings below reset progress.
const (
	QualityForgot    = 1 // total failure
	QualityAlmost    = 2 // wrong, but the answer felt familiar
	QualityHard      = 3 // correct with significant effort
	QualityHesitated = 4 // correct after some hesitation
	QualityPerfect   = 5 // perfect recall
)

const (
	// MinEasiness is the hard lower bound on the easiness factor.
	MinEasiness = 1.3
	// DefaultEasiness is the easiness assigned on first exposure.
	DefaultEasiness = 2.5
)

// Result holds the scheduling state produced by one rating.
type Result struct {
	Repetitions  int
	Easiness     float64
	IntervalDays int
}

// Engine computes SM-2 transitions. It is stateless and safe for concurrent
// use.
type Engine struct{}

// NewEngine returns a score engine.
func NewEngine() *Engine {
	return &Engine{}
}

// ComputeNext maps a quality rating and the prior (repetitions, easiness,
// interval) state to the next state.
//
// quality must be in [1, 5], repetitions >= 0, easiness >= 1.3 and
// intervalDays >= 0; anything else is a caller contract violation reported
// as ErrInvalidRating.
//
// A failing rating (quality <= 2) resets repetitions to zero and schedules
// the word for the next day without eroding easiness. A passing rating
// updates easiness by the SM-2 formula (clamped at 1.3, rounded to two
// decimals) and grows the interval: 1 day after the first success, 6 days
// after the second, interval x easiness after that.
func (e *Engine) ComputeNext(quality, repetitions int, easiness float64, intervalDays int) (Result, error) {
	if quality < QualityForgot || quality > QualityPerfect {
		return Result{}, ErrInvalidRating
	}
	if repetitions < 0 || intervalDays < 0 || easiness < MinEasiness {
		return Result{}, ErrInvalidRating
	}

	if quality <= QualityAlmost {
		// Failed recall: start over tomorrow. Easiness is left untouched so
		// repeated failures stay idempotent.
		return Result{
			Repetitions:  0,
			Easiness:     easiness,
			IntervalDays: 1,
		}, nil
	}

	q := float64(quality)
	next := easiness + 0.1 - (5-q)*(0.08+(5-q)*0.02)
	next = math.Max(MinEasiness, next)
	next = roundTo2(next)

	var interval int
	switch repetitions {
	case 0:
		interval = 1
	case 1:
		interval = 6
	default:
		interval = int(math.Round(float64(intervalDays) * next))
	}

	return Result{
		Repetitions:  repetitions + 1,
		Easiness:     next,
		IntervalDays: interval,
	}, nil
}

// roundTo2 rounds half away from zero to two decimal places.
func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
