package solver

import (
	"context"
	"fmt"
	"math"

	"github.com/danielpatrickdp/nautilus-navigator/internal/problem"
)

// startFractions place restart points inside doubly bounded variables.
var startFractions = []float64{0.25, 0.75, 0.1, 0.9}

// #region retry
// Retrying restarts an unsuccessful minimization from alternate start
// points. Hard errors are returned at once.
type Retrying struct {
	inner   Optimizer
	retries int
}

// WithRetry wraps inner; retries <= 0 disables restarts.
func WithRetry(inner Optimizer, retries int) *Retrying {
	if retries < 0 {
		retries = 0
	}
	return &Retrying{inner: inner, retries: retries}
}

// Minimize implements Optimizer.
func (r *Retrying) Minimize(ctx context.Context, task Task, x0 []float64) (Result, error) {
	res, err := r.inner.Minimize(ctx, task, x0)
	if err != nil || res.Success {
		return res, err
	}

	evals := res.Evaluations
	best := res
	for attempt := 1; attempt <= r.retries; attempt++ {
		next, err := r.inner.Minimize(ctx, task, restart(task.Bounds, x0, attempt))
		if err != nil {
			return Result{}, err
		}
		evals += next.Evaluations
		if next.Success {
			next.Evaluations = evals
			return next, nil
		}
		if next.Violation < best.Violation {
			best = next
		}
	}

	best.Evaluations = evals
	if r.retries > 0 {
		best.Message = fmt.Sprintf("%s (after %d attempts)", best.Message, r.retries+1)
	}
	return best, nil
}

// #endregion retry

// restart returns the start point for a retry attempt.
func restart(bounds []problem.Bound, x0 []float64, attempt int) []float64 {
	frac := startFractions[(attempt-1)%len(startFractions)]
	x := make([]float64, len(x0))
	for i, v := range x0 {
		b := bounds[i]
		lo, hi := !math.IsInf(b.Lower, 0), !math.IsInf(b.Upper, 0)
		switch {
		case lo && hi:
			x[i] = b.Lower + frac*(b.Upper-b.Lower)
		case lo:
			x[i] = v + float64(attempt)
		default:
			x[i] = v - float64(attempt)
		}
	}
	return x
}
