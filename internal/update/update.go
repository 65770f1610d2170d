package update

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrIterationsLeft is returned when fewer than one iteration remains.
	ErrIterationsLeft = errors.New("iterations left must be at least 1")
	// ErrDimension is returned when vector lengths disagree.
	ErrDimension = errors.New("vector dimension mismatch")
)

// #region iteration-point
// IterationPoint moves from zPrev toward f by 1/itn of the way:
//
//	z_next = ((itn-1)/itn) * z_prev + (1/itn) * f
//
// With itn == 1 the result equals f exactly.
func IterationPoint(itn int, zPrev, f []float64) ([]float64, error) {
	if itn < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrIterationsLeft, itn)
	}
	if len(zPrev) != len(f) {
		return nil, fmt.Errorf("%w: z has %d entries, f has %d", ErrDimension, len(zPrev), len(f))
	}
	k := float64(itn)
	z := make([]float64, len(zPrev))
	floats.ScaleTo(z, (k-1)/k, zPrev)
	floats.AddScaled(z, 1/k, f)
	return z, nil
}

// ShortStep returns the halfway point between the current and the previous
// iteration point.
func ShortStep(zCur, zPrev []float64) ([]float64, error) {
	if len(zCur) != len(zPrev) {
		return nil, fmt.Errorf("%w: current has %d entries, previous has %d", ErrDimension, len(zCur), len(zPrev))
	}
	z := make([]float64, len(zCur))
	floats.ScaleTo(z, 0.5, zCur)
	floats.AddScaled(z, 0.5, zPrev)
	return z, nil
}

// #endregion iteration-point

// #region distance
// Distance is the percentage of the way travelled from the nadir toward f:
//
//	100 * ||z - nadir|| / ||f - nadir||
//
// When f coincides with the nadir there is nothing left to travel and the
// distance is 100.
func Distance(z, nadir, f []float64) (float64, error) {
	if len(z) != len(nadir) || len(f) != len(nadir) {
		return 0, fmt.Errorf("%w: z=%d nadir=%d f=%d", ErrDimension, len(z), len(nadir), len(f))
	}
	den := floats.Distance(f, nadir, 2)
	if den == 0 {
		return 100, nil
	}
	return 100 * floats.Distance(z, nadir, 2) / den, nil
}

// #endregion distance

// #region step
// Step is a pure function computing the next full iteration point and its
// distance from the nadir.
func Step(itn int, zPrev, f, nadir []float64) (Result, error) {
	z, err := IterationPoint(itn, zPrev, f)
	if err != nil {
		return Result{}, err
	}
	return measure(StepFull, z, zPrev, f, nadir)
}

// Short is the short-step counterpart of Step.
func Short(zCur, zPrev, f, nadir []float64) (Result, error) {
	z, err := ShortStep(zCur, zPrev)
	if err != nil {
		return Result{}, err
	}
	return measure(StepShort, z, zCur, f, nadir)
}

func measure(kind StepKind, z, from, f, nadir []float64) (Result, error) {
	d, err := Distance(z, nadir, f)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Point: z,
		Metrics: Metrics{
			Kind:      kind,
			StepNorm:  floats.Distance(z, from, 2),
			Distance:  d,
			Remaining: floats.Distance(f, z, 2),
		},
	}, nil
}

// #endregion step
