package solver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/nautilus-navigator/internal/problem"
)

// scripted returns the queued results in order and records start points.
type scripted struct {
	results []Result
	errs    []error
	starts  [][]float64
}

func (s *scripted) Minimize(_ context.Context, _ Task, x0 []float64) (Result, error) {
	i := len(s.starts)
	s.starts = append(s.starts, append([]float64(nil), x0...))
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	return s.results[i], err
}

var unitTask = Task{
	Name:      "unit",
	Objective: func(x []float64) (float64, error) { return x[0], nil },
	Bounds:    []problem.Bound{{Lower: 0, Upper: 4}, {Lower: 1, Upper: problem.Unbounded().Upper}},
}

func TestRetryFirstAttemptSucceeds(t *testing.T) {
	inner := &scripted{results: []Result{{Success: true, Evaluations: 5}}}
	res, err := WithRetry(inner, 2).Minimize(context.Background(), unitTask, []float64{2, 1})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Len(t, inner.starts, 1)
}

func TestRetryRestartsFromAlternatePoints(t *testing.T) {
	inner := &scripted{results: []Result{
		{Success: false, Message: "infeasible", Violation: 1, Evaluations: 10},
		{Success: true, X: []float64{1, 2}, Evaluations: 7},
	}}
	res, err := WithRetry(inner, 2).Minimize(context.Background(), unitTask, []float64{2, 1})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 17, res.Evaluations)
	require.Len(t, inner.starts, 2)
	assert.Equal(t, []float64{1, 2}, inner.starts[1])
}

func TestRetryKeepsLeastViolatingFailure(t *testing.T) {
	inner := &scripted{results: []Result{
		{Message: "a", Violation: 0.5, Evaluations: 1},
		{Message: "b", Violation: 0.1, Evaluations: 1},
		{Message: "c", Violation: 0.3, Evaluations: 1},
	}}
	res, err := WithRetry(inner, 2).Minimize(context.Background(), unitTask, []float64{2, 1})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "b (after 3 attempts)", res.Message)
	assert.Equal(t, 3, res.Evaluations)
	assert.Equal(t, []float64{3, 3}, inner.starts[2])
}

func TestRetryStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	inner := &scripted{
		results: []Result{{Message: "no"}, {}},
		errs:    []error{nil, boom},
	}
	_, err := WithRetry(inner, 3).Minimize(context.Background(), unitTask, []float64{2, 1})
	require.ErrorIs(t, err, boom)
	assert.Len(t, inner.starts, 2)
}

func TestRetryDisabled(t *testing.T) {
	inner := &scripted{results: []Result{{Message: "stalled"}}}
	res, err := WithRetry(inner, -1).Minimize(context.Background(), unitTask, []float64{2, 1})
	require.NoError(t, err)
	assert.Equal(t, "stalled", res.Message)
	assert.Len(t, inner.starts, 1)
}
