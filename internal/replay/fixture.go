package replay

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/danielpatrickdp/nautilus-navigator/internal/nautilus"
	"github.com/danielpatrickdp/nautilus-navigator/internal/problem"
	"github.com/danielpatrickdp/nautilus-navigator/internal/solver"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description     string                  `json:"description"`
	Problem         string                  `json:"problem"`
	Ideal           []float64               `json:"ideal,omitempty"` // defaults to the catalog's
	Nadir           []float64               `json:"nadir,omitempty"`
	Options         FixtureOptions          `json:"options"`
	Responses       []json.RawMessage       `json:"responses"`
	ExpectedResults []FixtureExpectedResult `json:"expected_results"`
}

// FixtureOptions mirrors the navigator options with JSON tags.
type FixtureOptions struct {
	UtopianEpsilon float64       `json:"utopian_epsilon"`
	Rho            float64       `json:"rho"`
	Workers        int           `json:"workers"`
	SolveTimeoutMS int           `json:"solve_timeout_ms"`
	Solver         solver.Config `json:"solver"`
}

// FixtureExpectedResult captures the expected outcome per response.
type FixtureExpectedResult struct {
	Kind           string   `json:"kind"`            // request kind, empty when the turn failed
	Error          string   `json:"error,omitempty"` // error kind
	Distance       *float64 `json:"distance,omitempty"`
	IterationsLeft *int     `json:"iterations_left,omitempty"`
	Step           *int     `json:"step,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ReferencePoints returns the fixture's ideal and nadir, falling back to the
// catalog values of its problem.
func (f *Fixture) ReferencePoints() (*problem.Func, []float64, []float64, error) {
	p, err := problem.Lookup(f.Problem)
	if err != nil {
		return nil, nil, nil, err
	}
	ideal, nadir := f.Ideal, f.Nadir
	if ideal == nil {
		ideal = p.Ideal
	}
	if nadir == nil {
		nadir = p.Nadir
	}
	return p, ideal, nadir, nil
}

// ToOptions converts FixtureOptions to navigator options.
func (fo *FixtureOptions) ToOptions(names []string, log *slog.Logger) nautilus.Options {
	return nautilus.Options{
		ObjectiveNames: names,
		UtopianEpsilon: fo.UtopianEpsilon,
		Rho:            fo.Rho,
		Workers:        fo.Workers,
		SolveTimeout:   time.Duration(fo.SolveTimeoutMS) * time.Millisecond,
		Logger:         log,
	}
}

// Navigator builds a fresh navigator for the fixture. A nil optimizer
// selects Nelder-Mead with the fixture's solver and retry settings.
func (f *Fixture) Navigator(opt solver.Optimizer, log *slog.Logger) (*nautilus.Navigator, error) {
	p, ideal, nadir, err := f.ReferencePoints()
	if err != nil {
		return nil, err
	}
	if opt == nil {
		opt = solver.WithRetry(solver.NewNelderMead(f.Options.Solver), f.Options.Solver.Retries)
	}
	return nautilus.NewNavigator(p, opt, ideal, nadir, f.Options.ToOptions(p.ObjectiveNames, log))
}

// #endregion fixture-loader
