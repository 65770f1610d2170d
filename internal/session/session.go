package session

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"github.com/danielpatrickdp/nautilus-navigator/internal/logging"
	"github.com/danielpatrickdp/nautilus-navigator/internal/nautilus"
	"github.com/danielpatrickdp/nautilus-navigator/internal/state"
)

// #region driver

// Driver runs DM turns against a Navigator and journals what each turn
// did. The navigator stays the only owner of session state; the journal
// only mirrors committed steps. Turns are serialized so each journal row
// sees the phase its turn was applied in.
type Driver struct {
	mu    sync.Mutex
	nav   *nautilus.Navigator
	cfg   Config
	log   *slog.Logger
	id    string
	turns int
}

// NewDriver registers the session in the journal, if any.
func NewDriver(nav *nautilus.Navigator, cfg Config) (*Driver, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	d := &Driver{nav: nav, cfg: cfg, log: log, id: nav.ID()}
	if cfg.Journal != nil {
		start := nav.Start()
		rec, err := cfg.Journal.CreateSession(d.id, cfg.Problem, start.ObjectiveNames, start.Ideal, start.Nadir)
		if err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
		d.id = rec.SessionID
	}
	return d, nil
}

// ID returns the journal session id.
func (d *Driver) ID() string { return d.id }

// Navigator returns the driven navigator.
func (d *Driver) Navigator() *nautilus.Navigator { return d.nav }

// Turns returns the number of responses handled so far.
func (d *Driver) Turns() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.turns
}

// #endregion driver

// #region turn

// Turn validates and applies one raw DM response. Journal failures are
// logged and do not undo the navigator's commit.
func (d *Driver) Turn(ctx context.Context, raw []byte) (nautilus.Request, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.turns++
	phase := d.nav.Phase()
	entry := TurnLog{SessionID: d.id, Phase: phase, Response: raw}

	if phase == nautilus.PhaseTerminated {
		final, _ := d.nav.Final()
		entry.Outcome = logging.OutcomeTerminated
		entry.Reason = "session already terminated"
		d.logTurn(entry)
		return final, nil
	}

	req, horizon, err := d.apply(ctx, phase, raw, &entry)
	if err != nil {
		entry.Outcome = outcomeOf(err)
		entry.Reason = err.Error()
		d.logTurn(entry)
		return nil, err
	}

	switch r := req.(type) {
	case *nautilus.IterationRequest:
		entry.Outcome = logging.OutcomeCommit
		entry.Record = &TurnRecord{
			Step:           r.Step,
			Horizon:        horizon,
			NIterations:    r.NIterations,
			IterationsLeft: r.IterationsLeft,
			Distance:       r.Distance,
			Lower:          r.LowerBounds,
			Upper:          r.UpperBounds,
		}
		d.journalStep(entry.Intent, r)
		d.recordPreference(entry, r.Step)
	case *nautilus.StopRequest:
		entry.Outcome = logging.OutcomeTerminated
		entry.Record = &TurnRecord{Solution: r.Solution, Objectives: r.ObjectiveVector}
		if d.cfg.Journal != nil {
			if err := d.cfg.Journal.MarkTerminated(d.id, r.Solution, r.ObjectiveVector); err != nil {
				d.log.Error("journal error", "op", "mark_terminated", "err", err)
			}
		}
	}
	d.logTurn(entry)
	return req, nil
}

func (d *Driver) apply(ctx context.Context, phase nautilus.Phase, raw []byte, entry *TurnLog) (nautilus.Request, int, error) {
	k := d.nav.NumObjectives()
	if phase == nautilus.PhaseAwaitingInitial {
		entry.Intent = "initial"
		in, err := nautilus.ValidateInitial(k, raw)
		if err != nil {
			return nil, 0, err
		}
		entry.Preference = &in.Preference
		req, err := d.nav.Begin(ctx, in)
		return req, in.Iterations, err
	}

	turn, err := nautilus.ValidateIteration(k, raw)
	if err != nil {
		return nil, 0, err
	}
	entry.Intent = nautilus.IntentName(turn.Intent)
	entry.Preference = preferenceOf(turn.Intent)
	req, err := d.nav.Apply(ctx, turn)
	return req, turn.Horizon, err
}

func (d *Driver) journalStep(intent string, r *nautilus.IterationRequest) {
	if d.cfg.Journal == nil {
		return
	}
	rec, err := d.nav.Latest()
	if err != nil {
		d.log.Error("journal error", "op", "latest", "err", err)
		return
	}
	err = d.cfg.Journal.CommitStep(state.StepRecord{
		SessionID:      d.id,
		Step:           rec.Step,
		Intent:         intent,
		X:              rec.X,
		F:              rec.F,
		Z:              rec.Z,
		Lower:          rec.Lower,
		Upper:          rec.Upper,
		Distance:       rec.Distance,
		NIterations:    r.NIterations,
		IterationsLeft: r.IterationsLeft,
	})
	if err != nil {
		d.log.Error("journal error", "op", "commit_step", "step", rec.Step, "err", err)
	}
}

func (d *Driver) recordPreference(entry TurnLog, step int) {
	if d.cfg.Preferences == nil || entry.Preference == nil {
		return
	}
	err := d.cfg.Preferences.Add(state.PreferenceRecord{
		SessionID: d.id,
		Step:      step,
		Source:    entry.Intent,
		Method:    int(entry.Preference.Method),
		Info:      entry.Preference.Info,
		Factors:   d.nav.Factors(),
	})
	if err != nil {
		d.log.Error("journal error", "op", "add_preference", "step", step, "err", err)
	}
}

// preferenceOf returns the preferences an intent carries, if any.
func preferenceOf(in nautilus.Intent) *nautilus.Preference {
	switch v := in.(type) {
	case nautilus.NewPreference:
		return &v.Preference
	case nautilus.StepBack:
		if !v.Short {
			return v.Preference
		}
	}
	return nil
}

func (d *Driver) logTurn(entry TurnLog) {
	if d.cfg.Turns == nil {
		return
	}
	if err := d.cfg.Turns.LogTurn(entry); err != nil {
		d.log.Error("turn log error", "err", err)
	}
}

// #endregion turn

// #region outcome

func outcomeOf(err error) string {
	switch nautilus.KindOf(err) {
	case nautilus.KindValidation:
		return logging.OutcomeValidationError
	case nautilus.KindConfiguration:
		return logging.OutcomeConfigurationError
	}
	return logging.OutcomeSolverFailure
}

// #endregion outcome

// #region sql-turn-logger

// SQLTurnLogger writes turns to the turn_log table of a state store.
type SQLTurnLogger struct {
	DB *sql.DB
}

// LogTurn implements TurnLogger.
func (l SQLTurnLogger) LogTurn(entry TurnLog) error {
	var recordJSON string
	if entry.Record != nil {
		var err error
		recordJSON, err = logging.EncodeRecord(logging.TurnRecord{
			Step:            entry.Record.Step,
			Horizon:         entry.Record.Horizon,
			NIterations:     entry.Record.NIterations,
			IterationsLeft:  entry.Record.IterationsLeft,
			Distance:        entry.Record.Distance,
			LowerBounds:     entry.Record.Lower,
			UpperBounds:     entry.Record.Upper,
			Solution:        entry.Record.Solution,
			ObjectiveVector: entry.Record.Objectives,
		})
		if err != nil {
			return err
		}
	}
	return logging.LogTurn(l.DB, logging.TurnEntry{
		SessionID:    entry.SessionID,
		Phase:        string(entry.Phase),
		Intent:       entry.Intent,
		ResponseJSON: string(entry.Response),
		Outcome:      entry.Outcome,
		Reason:       entry.Reason,
		RecordJSON:   recordJSON,
	})
}

// Persistent wires a Config to a state store: the store journals steps and
// its database receives the turn log and the preference history.
func Persistent(problem string, store *state.Store, log *slog.Logger) (Config, error) {
	prefs, err := state.NewPreferenceStore(store.DB())
	if err != nil {
		return Config{}, err
	}
	return Config{
		Problem:     problem,
		Journal:     store,
		Turns:       SQLTurnLogger{DB: store.DB()},
		Preferences: prefs,
		Logger:      log,
	}, nil
}

// #endregion sql-turn-logger
