package logging

import "time"

// Outcome values recorded for each DM turn.
const (
	OutcomeCommit             = "commit"
	OutcomeValidationError    = "validation_error"
	OutcomeConfigurationError = "configuration_error"
	OutcomeSolverFailure      = "solver_failure"
	OutcomeTerminated         = "terminated"
)

// #region turn-entry
// TurnEntry is a single row in the turn_log table.
type TurnEntry struct {
	ID           int64
	SessionID    string
	Phase        string // phase the response was received in
	Intent       string // "initial" | "continue" | "short_step" | "step_back" | "new_preference" | "stop"
	ResponseJSON string // raw DM response
	Outcome      string
	Reason       string
	RecordJSON   string // TurnRecord for committed turns
	CreatedAt    time.Time
}
// #endregion turn-entry

// #region turn-record
// TurnRecord captures what a committed turn produced. Serialized as JSON
// into turn_log.record_json so a session can be audited without the
// steps table.
type TurnRecord struct {
	Step           int       `json:"step"`
	Horizon        int       `json:"horizon,omitempty"` // n_iterations change requested on this turn
	NIterations    int       `json:"n_iterations"`
	IterationsLeft int       `json:"iterations_left"`
	Distance       float64   `json:"distance"`
	LowerBounds    []float64 `json:"lower_bounds"`
	UpperBounds    []float64 `json:"upper_bounds"`

	// Final solution, set when the turn ended the session
	Solution        []float64 `json:"solution,omitempty"`
	ObjectiveVector []float64 `json:"objective_vector,omitempty"`
}
// #endregion turn-record
