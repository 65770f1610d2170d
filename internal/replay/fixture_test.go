package replay

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// #region fixture-tests

// runFixture replays a fixture through a fresh navigator and reports every
// mismatch against its expected results.
func runFixture(t *testing.T, name string) []Result {
	t.Helper()
	f, err := LoadFixture(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	nav, err := f.Navigator(nil, quiet())
	if err != nil {
		t.Fatalf("Navigator: %v", err)
	}

	results := Replay(context.Background(), nav, f.Responses)
	for _, d := range Check(results, f.ExpectedResults) {
		t.Error(d)
	}
	return results
}

// TestFixture_LinearSession is the primary regression test: the linear
// problem's distances do not depend on solver accuracy, so drift in the
// iteration point or step-back logic shows up here.
func TestFixture_LinearSession(t *testing.T) {
	results := runFixture(t, "linear_session.json")

	s := Summarize(results)
	if !s.Terminated || s.Final == nil {
		t.Fatal("expected the session to terminate")
	}
	if len(s.Final.Solution) != 1 || len(s.Final.ObjectiveVector) != 2 {
		t.Fatalf("unexpected final payload %+v", s.Final)
	}
	if s.Commits != 4 || s.ValidationErrors != 1 {
		t.Errorf("expected 4 commits and 1 validation error, got %+v", s)
	}
}

// TestFixture_CylinderSession drives the cylinder problem with Nelder-Mead.
func TestFixture_CylinderSession(t *testing.T) {
	if testing.Short() {
		t.Skip("runs the Nelder-Mead optimizer")
	}
	results := runFixture(t, "cylinder_session.json")
	if s := Summarize(results); !s.Terminated {
		t.Errorf("expected stop, got %+v", s)
	}
}

func TestLoadFixture_NotFound(t *testing.T) {
	_, err := LoadFixture(filepath.Join("testdata", "nonexistent.json"))
	if err == nil {
		t.Fatal("expected error for missing fixture")
	}
}

func TestLoadFixture_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"problem": `), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFixture(path); err == nil {
		t.Fatal("expected error for malformed fixture")
	}
}

func TestFixture_UnknownProblem(t *testing.T) {
	f := &Fixture{Problem: "torus"}
	if _, err := f.Navigator(nil, quiet()); err == nil {
		t.Fatal("expected error for unknown problem")
	}
}

func TestFixture_ReferencePointDefaults(t *testing.T) {
	f := &Fixture{Problem: "plane", Nadir: []float64{2, 2, 3}}
	p, ideal, nadir, err := f.ReferencePoints()
	if err != nil {
		t.Fatalf("ReferencePoints: %v", err)
	}
	if len(ideal) != 3 || ideal[2] != p.Ideal[2] {
		t.Errorf("expected catalog ideal, got %v", ideal)
	}
	if nadir[0] != 2 {
		t.Errorf("expected fixture nadir, got %v", nadir)
	}
}

// #endregion fixture-tests
