package update

// #region step-kind
// StepKind names how an iteration point was produced.
type StepKind string

const (
	StepFull  StepKind = "full"  // convex-combination step, consumes an iteration
	StepShort StepKind = "short" // halfway point, consumes nothing
)

// #endregion step-kind

// #region metrics
// Metrics captures telemetry for one iteration-point update.
type Metrics struct {
	Kind      StepKind
	StepNorm  float64 // ||z_next - z_prev||
	Distance  float64 // percent of the way from the nadir
	Remaining float64 // ||f - z_next||
}

// #endregion metrics

// #region update-result
// Result bundles the new iteration point with its metrics.
type Result struct {
	Point   []float64
	Metrics Metrics
}

// #endregion update-result
