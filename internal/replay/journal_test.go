package replay

import (
	"context"
	"testing"

	"github.com/danielpatrickdp/nautilus-navigator/internal/logging"
	"github.com/danielpatrickdp/nautilus-navigator/internal/state"
)

func TestFromJournal(t *testing.T) {
	rec, err := logging.EncodeRecord(logging.TurnRecord{Step: 1, NIterations: 2, IterationsLeft: 2, Distance: 50})
	if err != nil {
		t.Fatalf("EncodeRecord: %v", err)
	}
	sess := state.SessionRecord{
		SessionID: "s1",
		Problem:   "linear",
		Ideal:     []float64{0, 0},
		Nadir:     []float64{1, 1},
	}
	turns := []logging.TurnEntry{
		{ID: 1, ResponseJSON: `{"n_iterations": 2}`, Outcome: logging.OutcomeValidationError},
		{ID: 2, ResponseJSON: `{"n_iterations": 2, "preference_method": 1, "preference_info": [1, 1]}`, Outcome: logging.OutcomeCommit, RecordJSON: rec},
		{ID: 3, ResponseJSON: `{"step_back": false, "use_previous_preference": true}`, Outcome: logging.OutcomeCommit},
		{ID: 4, ResponseJSON: `{"step_back": false, "use_previous_preference": true}`, Outcome: logging.OutcomeTerminated},
		{ID: 5, Outcome: logging.OutcomeTerminated},
	}

	f, err := FromJournal(sess, turns)
	if err != nil {
		t.Fatalf("FromJournal: %v", err)
	}
	if len(f.Responses) != 4 || len(f.ExpectedResults) != 4 {
		t.Fatalf("expected 4 responses, got %d/%d", len(f.Responses), len(f.ExpectedResults))
	}
	if f.ExpectedResults[0].Error != "validation" || f.ExpectedResults[3].Kind != "stop" {
		t.Errorf("unexpected expectations %+v", f.ExpectedResults)
	}
	if d := f.ExpectedResults[1].Distance; d == nil || *d != 50 {
		t.Errorf("expected recorded distance, got %v", d)
	}

	nav, err := f.Navigator(nil, quiet())
	if err != nil {
		t.Fatalf("Navigator: %v", err)
	}
	results := Replay(context.Background(), nav, f.Responses)
	for _, d := range Check(results, f.ExpectedResults) {
		t.Error(d)
	}
}

func TestFromJournal_UnknownOutcome(t *testing.T) {
	_, err := FromJournal(state.SessionRecord{Problem: "linear"}, []logging.TurnEntry{
		{ID: 1, ResponseJSON: `{}`, Outcome: "exploded"},
	})
	if err == nil {
		t.Fatal("expected error for unknown outcome")
	}
}
