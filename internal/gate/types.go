package gate

// #region veto-type
// VetoType enumerates hard veto categories.
type VetoType string

const (
	VetoNonFinite VetoType = "non_finite"
	VetoDimension VetoType = "dimension"
)

// #endregion veto-type

// #region veto-signal
// VetoSignal represents a detected hard veto condition.
type VetoSignal struct {
	Type   VetoType
	Reason string
}

// #endregion veto-signal

// #region gate-config
// Config holds tolerances for the soft checks.
type Config struct {
	BoundTol    float64 `yaml:"bound_tol"`    // allowed lower - upper overshoot, relative to |upper|
	DistanceTol float64 `yaml:"distance_tol"` // allowed overshoot of [0, 100], in percent points
}

// DefaultConfig returns tolerances loose enough for penalty-method solvers.
func DefaultConfig() Config {
	return Config{
		BoundTol:    1e-6,
		DistanceTol: 1e-6,
	}
}

// #endregion gate-config

// #region candidate
// Candidate is a computed navigation step awaiting commit.
type Candidate struct {
	X        []float64
	F        []float64
	Z        []float64
	Lower    []float64
	Upper    []float64
	Distance float64
}

// #endregion candidate

// #region gate-decision
// Decision is the output of the gate evaluation.
type Decision struct {
	Action      string // "commit" | "reject"
	Reason      string
	Vetoed      bool
	VetoSignals []VetoSignal
	Warnings    []string // soft findings, logged but not blocking
}

// #endregion gate-decision
