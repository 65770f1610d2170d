package problem

import "math"

// #region bound
// Bound is the closed interval a single decision variable may take.
// Infinite ends are allowed.
type Bound struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Unbounded returns a bound covering the whole real line.
func Unbounded() Bound {
	return Bound{Lower: math.Inf(-1), Upper: math.Inf(1)}
}

// #endregion bound

// #region evaluation
// Evaluation is the result of evaluating one decision vector.
// A constraint is satisfied when its value is >= 0.
type Evaluation struct {
	Objectives  []float64
	Constraints []float64
}

// #endregion evaluation

// #region problem
// Problem is a multi-objective problem with all objectives minimized.
// Evaluate must be safe for concurrent use.
type Problem interface {
	NumObjectives() int
	Bounds() []Bound
	Evaluate(x []float64) (Evaluation, error)
}

// #endregion problem
