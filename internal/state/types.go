package state

import "time"

// #region session-record
// SessionRecord is the journal row of one navigation session.
type SessionRecord struct {
	SessionID       string
	Problem         string
	ObjectiveNames  []string
	Ideal           []float64
	Nadir           []float64
	Phase           string // "awaiting_initial_preferences" | "iterating" | "terminated"
	NIterations     int
	IterationsLeft  int
	Solution        []float64 // set once terminated
	ObjectiveVector []float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
// #endregion session-record

// #region step-record
// StepRecord is a committed navigation step. A step-back rewrites the row
// of the same step number.
type StepRecord struct {
	SessionID      string
	Step           int
	Intent         string
	X              []float64
	F              []float64
	Z              []float64
	Lower          []float64
	Upper          []float64
	Distance       float64
	NIterations    int
	IterationsLeft int
	CommittedAt    time.Time
}
// #endregion step-record

// #region session-summary
// SessionSummary pairs a session with its step count for listings.
type SessionSummary struct {
	SessionRecord
	Steps int
}
// #endregion session-summary
