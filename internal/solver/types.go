package solver

import (
	"context"

	"github.com/danielpatrickdp/nautilus-navigator/internal/problem"
)

// #region task
// ObjectiveFunc returns the scalar value to minimize at x.
type ObjectiveFunc func(x []float64) (float64, error)

// ConstraintFunc returns constraint values at x; each is satisfied when >= 0.
type ConstraintFunc func(x []float64) ([]float64, error)

// Task is one scalar minimization handed to an Optimizer.
type Task struct {
	Name        string // for logs, e.g. "asf" or "epsilon[1]"
	Objective   ObjectiveFunc
	Constraints ConstraintFunc // nil when unconstrained
	Bounds      []problem.Bound
}

// #endregion task

// #region result
// Result mirrors the usual scalar minimizer record. Callers must not use X
// to advance any state when Success is false.
type Result struct {
	X           []float64
	Fun         float64
	Success     bool
	Message     string
	Evaluations int
	Violation   float64 // largest constraint violation at X
}

// #endregion result

// #region optimizer
// Optimizer minimizes a scalar Task from a start vector. Implementations
// must honour ctx cancellation and be safe for concurrent use.
type Optimizer interface {
	Minimize(ctx context.Context, task Task, x0 []float64) (Result, error)
}

// #endregion optimizer

// #region config
// Config holds the penalty Nelder-Mead parameters.
type Config struct {
	MaxEvaluations int     `yaml:"max_evaluations" json:"max_evaluations"` // per penalty round
	PenaltyRounds  int     `yaml:"penalty_rounds" json:"penalty_rounds"`
	InitialPenalty float64 `yaml:"initial_penalty" json:"initial_penalty"`
	PenaltyGrowth  float64 `yaml:"penalty_growth" json:"penalty_growth"`
	FeasibilityTol float64 `yaml:"feasibility_tol" json:"feasibility_tol"`
	SimplexSize    float64 `yaml:"simplex_size" json:"simplex_size"` // in unit-box coordinates
	FunctionTol    float64 `yaml:"function_tol" json:"function_tol"`
	Retries        int     `yaml:"retries" json:"retries"` // restarts after an unsuccessful run
}

// DefaultConfig returns settings that work for small, well scaled problems.
func DefaultConfig() Config {
	return Config{
		MaxEvaluations: 20000,
		PenaltyRounds:  6,
		InitialPenalty: 10,
		PenaltyGrowth:  100,
		FeasibilityTol: 1e-4,
		SimplexSize:    0.1,
		FunctionTol:    1e-12,
		Retries:        2,
	}
}

// #endregion config
