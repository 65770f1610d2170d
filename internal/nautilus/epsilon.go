package nautilus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/nautilus-navigator/internal/problem"
	"github.com/danielpatrickdp/nautilus-navigator/internal/solver"
)

// #region epsilon-constraint
// EpsilonConstraint minimizes objective Index while every other objective j
// is capped by its epsilon: f_j(x) <= eps_j, expressed as the constraint
// -(f_j(x) - eps_j) >= 0. Epsilons holds the n-1 caps in objective order
// with Index left out.
type EpsilonConstraint struct {
	prob     problem.Problem
	Index    int
	Epsilons []float64
}

// NewEpsilonConstraint fails fast when the caps do not number n-1.
func NewEpsilonConstraint(p problem.Problem, index int, epsilons []float64) (*EpsilonConstraint, error) {
	n := p.NumObjectives()
	if index < 0 || index >= n {
		return nil, misconfigured("objective index %d outside [0, %d)", index, n)
	}
	if len(epsilons) != n-1 {
		return nil, misconfigured("epsilon vector has %d entries, must match the number of objectives - 1 (%d)", len(epsilons), n-1)
	}
	return &EpsilonConstraint{prob: p, Index: index, Epsilons: epsilons}, nil
}

// Objective returns f_Index(x).
func (e *EpsilonConstraint) Objective(x []float64) (float64, error) {
	ev, err := e.prob.Evaluate(x)
	if err != nil {
		return 0, err
	}
	if e.Index >= len(ev.Objectives) {
		return 0, misconfigured("problem returned %d objectives", len(ev.Objectives))
	}
	return ev.Objectives[e.Index], nil
}

// Constraints returns the problem's constraints followed by the epsilon
// constraints; all are satisfied when >= 0.
func (e *EpsilonConstraint) Constraints(x []float64) ([]float64, error) {
	ev, err := e.prob.Evaluate(x)
	if err != nil {
		return nil, err
	}
	if len(ev.Objectives)-1 != len(e.Epsilons) {
		return nil, misconfigured("epsilon vector has %d entries, must match the number of objectives - 1 (%d)",
			len(e.Epsilons), len(ev.Objectives)-1)
	}
	out := make([]float64, 0, len(ev.Constraints)+len(e.Epsilons))
	out = append(out, ev.Constraints...)
	k := 0
	for j, f := range ev.Objectives {
		if j == e.Index {
			continue
		}
		out = append(out, -(f - e.Epsilons[k]))
		k++
	}
	return out, nil
}

// Task packages the subproblem for an optimizer.
func (e *EpsilonConstraint) Task() solver.Task {
	return solver.Task{
		Name:        fmt.Sprintf("epsilon[%d]", e.Index),
		Objective:   e.Objective,
		Constraints: e.Constraints,
		Bounds:      e.prob.Bounds(),
	}
}

// #endregion epsilon-constraint

// #region bounds-estimator
// BoundsEstimator computes the lower bounds of the reachable region, one
// epsilon-constraint sub-solve per objective. The sub-solves are
// independent and run on a bounded worker pool.
type BoundsEstimator struct {
	prob    problem.Problem
	opt     solver.Optimizer
	workers int
	timeout time.Duration
	log     *slog.Logger
}

// NewBoundsEstimator creates an estimator; workers <= 0 means one worker
// per objective.
func NewBoundsEstimator(p problem.Problem, opt solver.Optimizer, workers int, timeout time.Duration, log *slog.Logger) *BoundsEstimator {
	if workers <= 0 {
		workers = p.NumObjectives()
	}
	if log == nil {
		log = slog.Default()
	}
	return &BoundsEstimator{prob: p, opt: opt, workers: workers, timeout: timeout, log: log}
}

// Estimate returns lower bound i = min f_i(x) subject to f_j(x) <= epsilons_j
// for all j != i. epsilons is the previous iteration point (n entries).
func (b *BoundsEstimator) Estimate(ctx context.Context, x0, epsilons []float64) ([]float64, error) {
	n := b.prob.NumObjectives()
	if len(epsilons) != n {
		return nil, misconfigured("epsilons have %d entries for %d objectives", len(epsilons), n)
	}

	lower := make([]float64, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			v, err := b.solveOne(gctx, i, x0, without(epsilons, i))
			if err != nil {
				return err
			}
			lower[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lower, nil
}

func (b *BoundsEstimator) solveOne(ctx context.Context, i int, x0, eps []float64) (float64, error) {
	ec, err := NewEpsilonConstraint(b.prob, i, eps)
	if err != nil {
		return 0, err
	}
	task := ec.Task()

	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := b.opt.Minimize(ctx, task, x0)
	if err != nil {
		return 0, solveError(task.Name, err)
	}
	b.log.Debug("sub-solve finished", "task", task.Name, "success", res.Success, "fun", res.Fun,
		"violation", res.Violation, "evaluations", res.Evaluations, "elapsed", time.Since(start))
	if !res.Success {
		return 0, &SolverFailure{Task: task.Name, Reason: res.Message}
	}

	ev, err := b.prob.Evaluate(res.X)
	if err != nil {
		return 0, &SolverFailure{Task: task.Name, Reason: "evaluate minimizer", Err: err}
	}
	if len(ev.Objectives) != b.prob.NumObjectives() {
		return 0, misconfigured("problem returned %d objectives, want %d", len(ev.Objectives), b.prob.NumObjectives())
	}
	return ev.Objectives[i], nil
}

// #endregion bounds-estimator
