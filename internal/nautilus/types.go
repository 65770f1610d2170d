package nautilus

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/danielpatrickdp/nautilus-navigator/internal/gate"
)

// #region method
// Method selects how the DM expresses preferences.
type Method int

const (
	MethodRank       Method = 1 // one importance rank per objective, 1 = most important
	MethodPercentage Method = 2 // desired improvement split, summing to 100
)

func (m Method) String() string {
	switch m {
	case MethodRank:
		return "rank"
	case MethodPercentage:
		return "percentage"
	}
	return fmt.Sprintf("method(%d)", int(m))
}

// #endregion method

// #region preference
// Preference is validated DM preference information.
type Preference struct {
	Method Method    `json:"preference_method"`
	Info   []float64 `json:"preference_info"`
}

// #endregion preference

// #region phase
// Phase is the navigator's lifecycle state.
type Phase string

const (
	PhaseAwaitingInitial Phase = "awaiting_initial_preferences"
	PhaseIterating       Phase = "iterating"
	PhaseTerminated      Phase = "terminated"
)

// #endregion phase

// #region step-record
// StepRecord is one fully computed navigation step. Lower and Upper bound
// the reachable region offered for the next step; Upper is the iteration
// point Z itself.
type StepRecord struct {
	Step     int       `json:"step"`
	X        []float64 `json:"x"`
	F        []float64 `json:"f"`
	Z        []float64 `json:"z"`
	Lower    []float64 `json:"lower_bounds"`
	Upper    []float64 `json:"upper_bounds"`
	Distance float64   `json:"distance"`
}

// #endregion step-record

// #region snapshot
// Snapshot is a read-only view of the session counters and flags.
type Snapshot struct {
	Phase          Phase
	Step           int
	NIterations    int
	IterationsLeft int
	Preference     Preference
	StepBack       bool
	ShortStep      bool
	HistoryLen     int
}

// #endregion snapshot

// #region options
// Options tunes a Navigator. Zero values select defaults.
type Options struct {
	SessionID      string
	ObjectiveNames []string
	UtopianEpsilon float64       // default 1e-6
	Rho            float64       // ASF augmentation, must be positive; 0 = default 1e-6
	Workers        int           // bounds sub-solves in flight, 0 = one per objective
	SolveTimeout   time.Duration // per sub-solve, 0 = none
	Gate           gate.Config
	Logger         *slog.Logger
}

const (
	defaultUtopianEpsilon = 1e-6
	defaultRho            = 1e-6
)

// #endregion options
