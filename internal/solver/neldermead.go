package solver

import (
	"context"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/danielpatrickdp/nautilus-navigator/internal/problem"
)

// boxWeight scales the pull back into the variable box.
const boxWeight = 1e3

// #region nelder-mead
// NelderMead minimizes bound- and inequality-constrained scalar tasks with
// gonum's Nelder-Mead simplex on a quadratic penalty. Variables with two
// finite bounds are searched in unit-box coordinates.
type NelderMead struct {
	cfg Config
}

// NewNelderMead creates the optimizer; zero fields fall back to DefaultConfig.
func NewNelderMead(cfg Config) *NelderMead {
	def := DefaultConfig()
	if cfg.MaxEvaluations <= 0 {
		cfg.MaxEvaluations = def.MaxEvaluations
	}
	if cfg.PenaltyRounds <= 0 {
		cfg.PenaltyRounds = def.PenaltyRounds
	}
	if cfg.InitialPenalty <= 0 {
		cfg.InitialPenalty = def.InitialPenalty
	}
	if cfg.PenaltyGrowth <= 1 {
		cfg.PenaltyGrowth = def.PenaltyGrowth
	}
	if cfg.FeasibilityTol <= 0 {
		cfg.FeasibilityTol = def.FeasibilityTol
	}
	if cfg.SimplexSize <= 0 {
		cfg.SimplexSize = def.SimplexSize
	}
	if cfg.FunctionTol <= 0 {
		cfg.FunctionTol = def.FunctionTol
	}
	return &NelderMead{cfg: cfg}
}

// Minimize runs penalty rounds until the iterate is feasible or the rounds
// are exhausted. Evaluation errors and ctx cancellation are returned as
// errors; plain non-convergence is reported through Result.Success.
func (nm *NelderMead) Minimize(ctx context.Context, task Task, x0 []float64) (Result, error) {
	if task.Objective == nil {
		return Result{}, fmt.Errorf("minimize %s: nil objective", task.Name)
	}
	if len(x0) == 0 {
		return Result{}, fmt.Errorf("minimize %s: empty start vector", task.Name)
	}
	if len(x0) != len(task.Bounds) {
		return Result{}, fmt.Errorf("minimize %s: start has %d variables, bounds have %d", task.Name, len(x0), len(task.Bounds))
	}

	box := newUnitBox(task.Bounds)
	u := box.toUnit(x0)

	var (
		evalErr error
		evals   int
		mu      = nm.cfg.InitialPenalty
		status  optimize.Status
		message string
	)

	penalized := func(u []float64) float64 {
		if evalErr != nil || ctx.Err() != nil {
			return math.Inf(1)
		}
		evals++
		x, outside := box.toX(u)
		f, sq, _, err := evaluate(task, x)
		if err != nil {
			evalErr = err
			return math.Inf(1)
		}
		if math.IsNaN(f) {
			return math.Inf(1)
		}
		return f + mu*sq + boxWeight*(1+math.Abs(f))*outside
	}

	rounds := nm.cfg.PenaltyRounds
	if task.Constraints == nil {
		rounds = 1
	}

	for round := 0; round < rounds; round++ {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("minimize %s: %w", task.Name, err)
		}
		settings := &optimize.Settings{
			FuncEvaluations: nm.cfg.MaxEvaluations,
			Converger: &ctxConverger{
				ctx: ctx,
				inner: &optimize.FunctionConverge{
					Absolute:   nm.cfg.FunctionTol,
					Relative:   nm.cfg.FunctionTol,
					Iterations: 200,
				},
			},
		}
		if dl, ok := ctx.Deadline(); ok {
			settings.Runtime = time.Until(dl)
		}

		res, err := optimize.Minimize(optimize.Problem{Func: penalized}, u, settings, &optimize.NelderMead{SimplexSize: nm.cfg.SimplexSize})
		if evalErr != nil {
			return Result{}, fmt.Errorf("minimize %s: %w", task.Name, evalErr)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, fmt.Errorf("minimize %s: %w", task.Name, ctxErr)
		}
		if err != nil {
			return Result{Success: false, Message: err.Error(), Evaluations: evals}, nil
		}
		u = res.X
		status = res.Status

		x, _ := box.toX(u)
		f, _, worst, err := evaluate(task, x)
		if err != nil {
			return Result{}, fmt.Errorf("minimize %s: %w", task.Name, err)
		}
		if worst <= nm.cfg.FeasibilityTol*(1+math.Abs(f)) {
			break
		}
		mu *= nm.cfg.PenaltyGrowth
	}

	x, _ := box.toX(u)
	f, _, worst, err := evaluate(task, x)
	if err != nil {
		return Result{}, fmt.Errorf("minimize %s: %w", task.Name, err)
	}

	success := true
	message = status.String()
	switch {
	case status == optimize.Failure || status == optimize.RuntimeLimit:
		success = false
	case math.IsNaN(f) || math.IsInf(f, 0):
		success = false
		message = "non-finite objective at minimizer"
	case worst > nm.cfg.FeasibilityTol*(1+math.Abs(f)):
		success = false
		message = fmt.Sprintf("infeasible: constraint violation %.3g", worst)
	}

	return Result{
		X:           x,
		Fun:         f,
		Success:     success,
		Message:     message,
		Evaluations: evals,
		Violation:   worst,
	}, nil
}

// #endregion nelder-mead

// #region helpers
// evaluate returns the objective, the sum of squared violations and the
// largest single violation at x.
func evaluate(task Task, x []float64) (f, sq, worst float64, err error) {
	f, err = task.Objective(x)
	if err != nil {
		return 0, 0, 0, err
	}
	if task.Constraints == nil {
		return f, 0, 0, nil
	}
	g, err := task.Constraints(x)
	if err != nil {
		return 0, 0, 0, err
	}
	for _, v := range g {
		if math.IsNaN(v) {
			return f, math.Inf(1), math.Inf(1), nil
		}
		if v < 0 {
			sq += v * v
			worst = math.Max(worst, -v)
		}
	}
	return f, sq, worst, nil
}

// ctxConverger stops a gonum run once ctx is done.
type ctxConverger struct {
	ctx   context.Context
	inner optimize.Converger
}

func (c *ctxConverger) Init(dim int) {
	c.inner.Init(dim)
}

func (c *ctxConverger) Converged(loc *optimize.Location) optimize.Status {
	if c.ctx.Err() != nil {
		return optimize.RuntimeLimit
	}
	return c.inner.Converged(loc)
}

// unitBox maps doubly bounded variables to [0, 1]; others pass through.
type unitBox struct {
	bounds []problem.Bound
	scaled []bool
}

func newUnitBox(bounds []problem.Bound) unitBox {
	scaled := make([]bool, len(bounds))
	for i, b := range bounds {
		scaled[i] = !math.IsInf(b.Lower, 0) && !math.IsInf(b.Upper, 0) && b.Upper > b.Lower
	}
	return unitBox{bounds: bounds, scaled: scaled}
}

func (b unitBox) toUnit(x []float64) []float64 {
	u := make([]float64, len(x))
	for i, v := range x {
		if b.scaled[i] {
			u[i] = (v - b.bounds[i].Lower) / (b.bounds[i].Upper - b.bounds[i].Lower)
		} else {
			u[i] = v
		}
	}
	return u
}

// toX maps back, clamps into the bounds and returns the squared distance
// that had to be clamped away.
func (b unitBox) toX(u []float64) ([]float64, float64) {
	x := make([]float64, len(u))
	var outside float64
	for i, v := range u {
		bd := b.bounds[i]
		if b.scaled[i] {
			c := math.Min(math.Max(v, 0), 1)
			outside += (v - c) * (v - c)
			x[i] = bd.Lower + c*(bd.Upper-bd.Lower)
			continue
		}
		c := math.Min(math.Max(v, bd.Lower), bd.Upper)
		outside += (v - c) * (v - c)
		x[i] = c
	}
	return x, outside
}

// #endregion helpers
