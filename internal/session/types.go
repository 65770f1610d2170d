package session

import (
	"log/slog"

	"github.com/danielpatrickdp/nautilus-navigator/internal/nautilus"
	"github.com/danielpatrickdp/nautilus-navigator/internal/state"
)

// #region journal
// Journal is the subset of the state store a Driver writes to. A nil
// Journal disables persistence.
type Journal interface {
	CreateSession(id, problem string, names []string, ideal, nadir []float64) (state.SessionRecord, error)
	CommitStep(rec state.StepRecord) error
	MarkTerminated(id string, solution, objectives []float64) error
}

// TurnLogger records every DM turn, committed or not.
type TurnLogger interface {
	LogTurn(entry TurnLog) error
}

// PreferenceRecorder keeps the preferences behind committed steps.
type PreferenceRecorder interface {
	Add(rec state.PreferenceRecord) error
}

// #endregion journal

// #region turn-log
// TurnLog is the driver's view of one logged turn.
type TurnLog struct {
	SessionID string
	Phase     nautilus.Phase
	Intent    string
	Response  []byte
	Outcome   string
	Reason    string
	Record    *TurnRecord

	Preference *nautilus.Preference // set when the response carried new preferences
}

// TurnRecord summarizes what a successful turn produced.
type TurnRecord struct {
	Step           int
	Horizon        int
	NIterations    int
	IterationsLeft int
	Distance       float64
	Lower          []float64
	Upper          []float64
	Solution       []float64
	Objectives     []float64
}

// #endregion turn-log

// #region config
// Config wires a Driver.
type Config struct {
	Problem     string // catalog name, recorded in the journal
	Journal     Journal
	Turns       TurnLogger
	Preferences PreferenceRecorder
	Logger      *slog.Logger
}

// #endregion config
