package nautilus

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/nautilus-navigator/internal/problem"
	"github.com/danielpatrickdp/nautilus-navigator/internal/solver"
)

// gridOptimizer minimizes small tasks by exhaustive search over a regular
// grid, so expected values can be derived by hand.
type gridOptimizer struct {
	points int // intervals per variable
}

func (g gridOptimizer) Minimize(ctx context.Context, task solver.Task, x0 []float64) (solver.Result, error) {
	dim := len(task.Bounds)
	if dim == 0 || dim > 2 {
		return solver.Result{}, errors.New("grid optimizer handles one or two variables")
	}
	if err := ctx.Err(); err != nil {
		return solver.Result{}, err
	}
	best, evals := math.Inf(1), 0
	var bestX []float64
	idx := make([]int, dim)
	for {
		x := make([]float64, dim)
		for d, k := range idx {
			lo, hi := task.Bounds[d].Lower, task.Bounds[d].Upper
			x[d] = lo + (hi-lo)*float64(k)/float64(g.points)
		}
		evals++
		f, ok, err := gridPoint(task, x)
		if err != nil {
			return solver.Result{}, err
		}
		if ok && f < best {
			best, bestX = f, x
		}

		d := 0
		for d < dim {
			idx[d]++
			if idx[d] <= g.points {
				break
			}
			idx[d] = 0
			d++
		}
		if d == dim {
			break
		}
	}
	if bestX == nil {
		return solver.Result{Success: false, Message: "no feasible grid point", Evaluations: evals}, nil
	}
	return solver.Result{X: bestX, Fun: best, Success: true, Message: "grid", Evaluations: evals}, nil
}

func gridPoint(task solver.Task, x []float64) (float64, bool, error) {
	f, err := task.Objective(x)
	if err != nil {
		return 0, false, err
	}
	if task.Constraints == nil {
		return f, true, nil
	}
	c, err := task.Constraints(x)
	if err != nil {
		return 0, false, err
	}
	for _, v := range c {
		if v < -1e-12 {
			return f, false, nil
		}
	}
	return f, true, nil
}

// countingOptimizer records how often each task kind was solved.
type countingOptimizer struct {
	inner solver.Optimizer

	mu    sync.Mutex
	calls map[string]int
}

func newCounting(inner solver.Optimizer) *countingOptimizer {
	return &countingOptimizer{inner: inner, calls: map[string]int{}}
}

func (c *countingOptimizer) Minimize(ctx context.Context, task solver.Task, x0 []float64) (solver.Result, error) {
	c.mu.Lock()
	c.calls[task.Name]++
	c.mu.Unlock()
	return c.inner.Minimize(ctx, task, x0)
}

func (c *countingOptimizer) count(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[name]
}

// failingOptimizer reports non-convergence for one task name while armed.
type failingOptimizer struct {
	inner solver.Optimizer
	task  string

	mu    sync.Mutex
	armed bool
}

func (f *failingOptimizer) arm(on bool) {
	f.mu.Lock()
	f.armed = on
	f.mu.Unlock()
}

func (f *failingOptimizer) Minimize(ctx context.Context, task solver.Task, x0 []float64) (solver.Result, error) {
	f.mu.Lock()
	armed := f.armed
	f.mu.Unlock()
	if armed && task.Name == f.task {
		return solver.Result{Success: false, Message: "iteration limit reached"}, nil
	}
	return f.inner.Minimize(ctx, task, x0)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func linearNavigator(t *testing.T, opt solver.Optimizer) *Navigator {
	t.Helper()
	p := problem.Linear()
	nav, err := NewNavigator(p, opt, p.Ideal, p.Nadir, Options{SessionID: "test", Logger: quietLogger()})
	require.NoError(t, err)
	return nav
}

func grid() gridOptimizer { return gridOptimizer{points: 10000} }
