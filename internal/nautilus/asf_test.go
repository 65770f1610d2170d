package nautilus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/nautilus-navigator/internal/problem"
)

func TestAchievementScalarizer(t *testing.T) {
	a := AchievementScalarizer{Factors: []float64{1, 2}, Reference: []float64{1, 1}, Rho: 0.1}
	v, err := a.Value([]float64{0.5, 0.25})
	require.NoError(t, err)
	// terms -0.5 and -1.5
	assert.InDelta(t, -0.5+0.1*(-2), v, 1e-12)

	_, err = a.Value([]float64{1})
	assert.Equal(t, KindConfiguration, KindOf(err))
}

func TestReferenceSolverLinear(t *testing.T) {
	p := problem.Linear()
	rs := NewReferenceSolver(p, grid(), 1e-6, 0, quietLogger())

	x, f, err := rs.Solve(context.Background(), []float64{1, 1}, []float64{0.5}, []float64{1, 3})
	require.NoError(t, err)
	// x - 1 = 3(-x) at x = 1/4
	assert.InDelta(t, 0.25, x[0], 1e-9)
	assert.InDeltaSlice(t, []float64{0.25, 0.75}, f, 1e-9)

	_, _, err = rs.Solve(context.Background(), []float64{1}, []float64{0.5}, []float64{1, 3})
	assert.Equal(t, KindConfiguration, KindOf(err))
}

func TestReferenceSolverFailure(t *testing.T) {
	p := problem.Linear()
	rs := NewReferenceSolver(p, &failingOptimizer{inner: grid(), task: "asf", armed: true}, 1e-6, 0, quietLogger())
	_, _, err := rs.Solve(context.Background(), []float64{1, 1}, []float64{0.5}, []float64{1, 1})
	require.Error(t, err)
	assert.Equal(t, KindSolver, KindOf(err))
	assert.Contains(t, err.Error(), "iteration limit reached")
}
