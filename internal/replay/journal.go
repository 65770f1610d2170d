package replay

import (
	"encoding/json"
	"fmt"

	"github.com/danielpatrickdp/nautilus-navigator/internal/logging"
	"github.com/danielpatrickdp/nautilus-navigator/internal/nautilus"
	"github.com/danielpatrickdp/nautilus-navigator/internal/state"
)

// #region journal-fixture

// FromJournal rebuilds a fixture from a journaled session and its turn log,
// so a recorded session can be replayed against the current code.
func FromJournal(sess state.SessionRecord, turns []logging.TurnEntry) (*Fixture, error) {
	f := &Fixture{
		Description: fmt.Sprintf("journaled session %s", sess.SessionID),
		Problem:     sess.Problem,
		Ideal:       sess.Ideal,
		Nadir:       sess.Nadir,
	}
	for _, t := range turns {
		if t.ResponseJSON == "" {
			continue
		}
		f.Responses = append(f.Responses, json.RawMessage(t.ResponseJSON))

		exp, err := expectedFromTurn(t)
		if err != nil {
			return nil, fmt.Errorf("turn %d: %w", t.ID, err)
		}
		f.ExpectedResults = append(f.ExpectedResults, exp)
	}
	return f, nil
}

func expectedFromTurn(t logging.TurnEntry) (FixtureExpectedResult, error) {
	var exp FixtureExpectedResult
	switch t.Outcome {
	case logging.OutcomeCommit:
		exp.Kind = string(nautilus.KindIteration)
		if t.RecordJSON != "" {
			rec, err := logging.DecodeRecord(t.RecordJSON)
			if err != nil {
				return exp, err
			}
			d, left, step := rec.Distance, rec.IterationsLeft, rec.Step
			exp.Distance, exp.IterationsLeft, exp.Step = &d, &left, &step
		}
	case logging.OutcomeTerminated:
		exp.Kind = string(nautilus.KindStop)
	case logging.OutcomeValidationError:
		exp.Error = string(nautilus.KindValidation)
	case logging.OutcomeConfigurationError:
		exp.Error = string(nautilus.KindConfiguration)
	case logging.OutcomeSolverFailure:
		exp.Error = string(nautilus.KindSolver)
	default:
		return exp, fmt.Errorf("unknown outcome %q", t.Outcome)
	}
	return exp, nil
}

// #endregion journal-fixture
