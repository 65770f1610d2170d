package logging

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// #region helpers
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	_, err = db.Exec(`CREATE TABLE turn_log (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id    TEXT NOT NULL,
		phase         TEXT NOT NULL,
		intent        TEXT,
		response_json TEXT,
		outcome       TEXT NOT NULL,
		reason        TEXT,
		record_json   TEXT,
		created_at    TEXT NOT NULL
	)`)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

// #endregion helpers

// #region log-turn-tests
func TestLogTurn_Success(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	rec, err := EncodeRecord(TurnRecord{
		Step: 1, NIterations: 11, IterationsLeft: 11, Distance: 9.09,
		LowerBounds: []float64{196.35, -2375.93}, UpperBounds: []float64{32000, -300},
	})
	if err != nil {
		t.Fatalf("EncodeRecord: %v", err)
	}

	entry := TurnEntry{
		SessionID:    "s1",
		Phase:        "awaiting_initial_preferences",
		Intent:       "initial",
		ResponseJSON: `{"n_iterations":11,"preference_method":1,"preference_info":[1,2]}`,
		Outcome:      OutcomeCommit,
		RecordJSON:   rec,
		CreatedAt:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := LogTurn(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	turns, err := ListTurns(db, "s1")
	if err != nil {
		t.Fatalf("ListTurns: %v", err)
	}
	if len(turns) != 1 {
		t.Fatalf("expected 1 row, got %d", len(turns))
	}
	got := turns[0]
	if got.Intent != "initial" || got.Outcome != OutcomeCommit || got.Reason != "" {
		t.Errorf("unexpected entry %+v", got)
	}
	if !got.CreatedAt.Equal(entry.CreatedAt) {
		t.Errorf("created_at: %v", got.CreatedAt)
	}

	decoded, err := DecodeRecord(got.RecordJSON)
	if err != nil {
		t.Fatalf("DecodeRecord: %v", err)
	}
	if decoded.Step != 1 || decoded.IterationsLeft != 11 || len(decoded.LowerBounds) != 2 {
		t.Errorf("unexpected record %+v", decoded)
	}
}

func TestLogTurn_ZeroCreatedAt(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	before := time.Now().UTC().Add(-time.Second)
	err := LogTurn(db, TurnEntry{
		SessionID: "s1",
		Phase:     "iterating",
		Intent:    "continue",
		Outcome:   OutcomeSolverFailure,
		Reason:    "solver failure in epsilon[1]: iteration limit reached",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	turns, _ := ListTurns(db, "s1")
	if len(turns) != 1 {
		t.Fatalf("expected 1 row, got %d", len(turns))
	}
	if turns[0].CreatedAt.Before(before) {
		t.Errorf("created_at not defaulted: %v", turns[0].CreatedAt)
	}
	if turns[0].RecordJSON != "" || turns[0].ResponseJSON != "" {
		t.Errorf("expected empty optional fields, got %+v", turns[0])
	}
}

func TestListTurns_OrderAndFilter(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	for _, e := range []TurnEntry{
		{SessionID: "a", Phase: "iterating", Intent: "continue", Outcome: OutcomeCommit},
		{SessionID: "b", Phase: "iterating", Intent: "stop", Outcome: OutcomeTerminated},
		{SessionID: "a", Phase: "iterating", Outcome: OutcomeValidationError, Reason: "invalid step_back: missing"},
	} {
		if err := LogTurn(db, e); err != nil {
			t.Fatalf("LogTurn: %v", err)
		}
	}

	turns, err := ListTurns(db, "a")
	if err != nil {
		t.Fatalf("ListTurns: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(turns))
	}
	if turns[0].Outcome != OutcomeCommit || turns[1].Outcome != OutcomeValidationError {
		t.Errorf("unexpected order: %s, %s", turns[0].Outcome, turns[1].Outcome)
	}
	if turns[1].Intent != "" {
		t.Errorf("expected empty intent, got %q", turns[1].Intent)
	}
}

func TestLogTurn_Error(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := LogTurn(db, TurnEntry{SessionID: "s1", Outcome: OutcomeCommit}); err == nil {
		t.Fatal("expected error for missing table")
	}
}

func TestDecodeRecord_Invalid(t *testing.T) {
	if _, err := DecodeRecord("{"); err == nil {
		t.Fatal("expected error")
	}
}

func TestNullIfEmpty(t *testing.T) {
	if nullIfEmpty("") != nil {
		t.Error("expected nil for empty string")
	}
	if nullIfEmpty("x") != "x" {
		t.Error("expected value for non-empty string")
	}
}
// #endregion log-turn-tests
