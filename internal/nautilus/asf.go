package nautilus

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/danielpatrickdp/nautilus-navigator/internal/problem"
	"github.com/danielpatrickdp/nautilus-navigator/internal/solver"
)

// #region scalarizer
// AchievementScalarizer is the augmented reference point ASF
//
//	s(f) = max_i w_i (f_i - q_i) + rho * sum_i w_i (f_i - q_i)
type AchievementScalarizer struct {
	Factors   []float64
	Reference []float64
	Rho       float64
}

// Value evaluates the ASF at objective vector f.
func (a AchievementScalarizer) Value(f []float64) (float64, error) {
	if len(f) != len(a.Factors) || len(a.Reference) != len(a.Factors) {
		return 0, misconfigured("asf: f=%d factors=%d reference=%d", len(f), len(a.Factors), len(a.Reference))
	}
	worst := math.Inf(-1)
	var sum float64
	for i := range f {
		d := a.Factors[i] * (f[i] - a.Reference[i])
		worst = math.Max(worst, d)
		sum += d
	}
	return worst + a.Rho*sum, nil
}

// #endregion scalarizer

// #region reference-solver
// ReferenceSolver projects a reference point onto the Pareto front by
// minimizing the ASF over the decision space.
type ReferenceSolver struct {
	prob    problem.Problem
	opt     solver.Optimizer
	rho     float64
	timeout time.Duration
	log     *slog.Logger
}

// NewReferenceSolver wires the problem to an optimizer.
func NewReferenceSolver(p problem.Problem, opt solver.Optimizer, rho float64, timeout time.Duration, log *slog.Logger) *ReferenceSolver {
	if log == nil {
		log = slog.Default()
	}
	return &ReferenceSolver{prob: p, opt: opt, rho: rho, timeout: timeout, log: log}
}

// Solve returns the minimizing decision vector and its objective vector.
func (r *ReferenceSolver) Solve(ctx context.Context, ref, x0, factors []float64) ([]float64, []float64, error) {
	n := r.prob.NumObjectives()
	if len(ref) != n || len(factors) != n {
		return nil, nil, misconfigured("asf: reference=%d factors=%d objectives=%d", len(ref), len(factors), n)
	}
	asf := AchievementScalarizer{Factors: factors, Reference: ref, Rho: r.rho}

	task := solver.Task{
		Name: "asf",
		Objective: func(x []float64) (float64, error) {
			ev, err := r.prob.Evaluate(x)
			if err != nil {
				return 0, err
			}
			return asf.Value(ev.Objectives)
		},
		Constraints: problemConstraints(r.prob),
		Bounds:      r.prob.Bounds(),
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := r.opt.Minimize(ctx, task, x0)
	if err != nil {
		return nil, nil, solveError(task.Name, err)
	}
	r.log.Debug("sub-solve finished", "task", task.Name, "success", res.Success, "fun", res.Fun,
		"evaluations", res.Evaluations, "elapsed", time.Since(start))
	if !res.Success {
		return nil, nil, &SolverFailure{Task: task.Name, Reason: res.Message}
	}

	ev, err := r.prob.Evaluate(res.X)
	if err != nil {
		return nil, nil, &SolverFailure{Task: task.Name, Reason: "evaluate minimizer", Err: err}
	}
	if len(ev.Objectives) != n {
		return nil, nil, misconfigured("problem returned %d objectives, want %d", len(ev.Objectives), n)
	}
	return res.X, ev.Objectives, nil
}

// #endregion reference-solver

// #region helpers
// problemConstraints exposes the problem's own constraints to an optimizer.
func problemConstraints(p problem.Problem) solver.ConstraintFunc {
	return func(x []float64) ([]float64, error) {
		ev, err := p.Evaluate(x)
		if err != nil {
			return nil, err
		}
		return ev.Constraints, nil
	}
}

// solveError keeps configuration faults distinct and reports everything
// else as a recoverable solver failure.
func solveError(task string, err error) error {
	if KindOf(err) == KindConfiguration {
		return err
	}
	return &SolverFailure{Task: task, Err: err}
}

func clone(v []float64) []float64 {
	return append([]float64(nil), v...)
}

func without(v []float64, skip int) []float64 {
	out := make([]float64, 0, len(v)-1)
	for i, x := range v {
		if i != skip {
			out = append(out, x)
		}
	}
	return out
}

func describe(v []float64) string {
	return fmt.Sprintf("%.6g", v)
}

// #endregion helpers
