package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/danielpatrickdp/nautilus-navigator/internal/nautilus"
)

// distanceTol is the slack allowed when comparing recorded distances.
const distanceTol = 1e-3

// #region types
// Result captures the outcome of replaying one DM response.
type Result struct {
	Turn      int
	Kind      nautilus.RequestKind // empty when the turn failed
	ErrorKind nautilus.ErrorKind
	Reason    string

	// Set for iteration requests
	Distance       float64
	Step           int
	IterationsLeft int

	Request nautilus.Request
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	TotalTurns          int
	Commits             int
	ValidationErrors    int
	ConfigurationErrors int
	SolverFailures      int
	OtherErrors         int
	Stops               int
	Terminated          bool
	Final               *nautilus.StopRequest
}

// #endregion types

// #region replay
// Replay feeds the responses to nav in order through the raw-JSON turn API.
// Failed turns are recorded and the run continues, as a DM would resubmit.
func Replay(ctx context.Context, nav *nautilus.Navigator, responses []json.RawMessage) []Result {
	results := make([]Result, 0, len(responses))
	for i, raw := range responses {
		req, err := nav.Iterate(ctx, raw)
		r := Result{Turn: i + 1}
		if err != nil {
			r.ErrorKind = nautilus.KindOf(err)
			r.Reason = err.Error()
			results = append(results, r)
			continue
		}
		r.Kind = req.Kind()
		r.Request = req
		if it, ok := req.(*nautilus.IterationRequest); ok {
			r.Distance = it.Distance
			r.Step = it.Step
			r.IterationsLeft = it.IterationsLeft
		}
		results = append(results, r)
	}
	return results
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []Result) Summary {
	s := Summary{TotalTurns: len(results)}
	for _, r := range results {
		switch r.ErrorKind {
		case nautilus.KindValidation:
			s.ValidationErrors++
		case nautilus.KindConfiguration:
			s.ConfigurationErrors++
		case nautilus.KindSolver:
			s.SolverFailures++
		case nautilus.KindNone:
			if r.Kind == nautilus.KindStop {
				s.Stops++
				s.Terminated = true
				s.Final, _ = r.Request.(*nautilus.StopRequest)
			} else {
				s.Commits++
			}
		default:
			s.OtherErrors++
		}
	}
	return s
}

// Check compares results against expectations and returns one line per
// mismatch.
func Check(results []Result, expected []FixtureExpectedResult) []string {
	var diffs []string
	if len(results) != len(expected) {
		diffs = append(diffs, fmt.Sprintf("expected %d results, got %d", len(expected), len(results)))
	}
	for i := 0; i < len(results) && i < len(expected); i++ {
		got, want := results[i], expected[i]
		if string(got.Kind) != want.Kind {
			diffs = append(diffs, fmt.Sprintf("turn %d: expected kind=%q, got %q (%s)", got.Turn, want.Kind, got.Kind, got.Reason))
		}
		if string(got.ErrorKind) != want.Error {
			diffs = append(diffs, fmt.Sprintf("turn %d: expected error=%q, got %q", got.Turn, want.Error, got.ErrorKind))
		}
		if want.Distance != nil && math.Abs(got.Distance-*want.Distance) > distanceTol {
			diffs = append(diffs, fmt.Sprintf("turn %d: expected distance=%.4f, got %.4f", got.Turn, *want.Distance, got.Distance))
		}
		if want.IterationsLeft != nil && got.IterationsLeft != *want.IterationsLeft {
			diffs = append(diffs, fmt.Sprintf("turn %d: expected iterations_left=%d, got %d", got.Turn, *want.IterationsLeft, got.IterationsLeft))
		}
		if want.Step != nil && got.Step != *want.Step {
			diffs = append(diffs, fmt.Sprintf("turn %d: expected step=%d, got %d", got.Turn, *want.Step, got.Step))
		}
	}
	return diffs
}

// #endregion replay
