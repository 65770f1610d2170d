package state

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	session_id       TEXT PRIMARY KEY,
	problem          TEXT NOT NULL,
	objective_names  TEXT NOT NULL,
	ideal            BLOB NOT NULL,
	nadir            BLOB NOT NULL,
	phase            TEXT NOT NULL,
	n_iterations     INTEGER NOT NULL DEFAULT 0,
	iterations_left  INTEGER NOT NULL DEFAULT 0,
	solution         BLOB,
	objective_vector BLOB,
	created_at       TEXT NOT NULL,
	updated_at       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS steps (
	session_id      TEXT NOT NULL,
	step            INTEGER NOT NULL,
	intent          TEXT NOT NULL,
	x               BLOB NOT NULL,
	f               BLOB NOT NULL,
	z               BLOB NOT NULL,
	lower_bounds    BLOB NOT NULL,
	upper_bounds    BLOB NOT NULL,
	distance        REAL NOT NULL,
	n_iterations    INTEGER NOT NULL,
	iterations_left INTEGER NOT NULL,
	committed_at    TEXT NOT NULL,
	PRIMARY KEY (session_id, step),
	FOREIGN KEY (session_id) REFERENCES sessions(session_id)
);

CREATE TABLE IF NOT EXISTS turn_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id    TEXT NOT NULL,
	phase         TEXT NOT NULL,
	intent        TEXT,
	response_json TEXT,
	outcome       TEXT NOT NULL,
	reason        TEXT,
	record_json   TEXT,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (session_id) REFERENCES sessions(session_id)
);
`
// #endregion schema

const (
	phaseAwaiting   = "awaiting_initial_preferences"
	phaseIterating  = "iterating"
	phaseTerminated = "terminated"
)

// #region store-struct
// Store journals navigation sessions in SQLite.
type Store struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}
// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}
// #endregion db-accessor

// #region create-session
// CreateSession registers a new session awaiting its initial preferences.
// An empty id draws a fresh UUID.
func (s *Store) CreateSession(id, problem string, names []string, ideal, nadir []float64) (SessionRecord, error) {
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()
	rec := SessionRecord{
		SessionID:      id,
		Problem:        problem,
		ObjectiveNames: names,
		Ideal:          ideal,
		Nadir:          nadir,
		Phase:          phaseAwaiting,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	namesJSON, err := json.Marshal(names)
	if err != nil {
		return SessionRecord{}, fmt.Errorf("marshal objective names: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO sessions (session_id, problem, objective_names, ideal, nadir, phase, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, problem, string(namesJSON), encodeVector(ideal), encodeVector(nadir), phaseAwaiting,
		now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return SessionRecord{}, fmt.Errorf("insert session: %w", err)
	}
	return rec, nil
}
// #endregion create-session

// #region commit-step
// CommitStep upserts a step row and advances the session counters atomically.
func (s *Store) CommitStep(rec StepRecord) error {
	if rec.CommittedAt.IsZero() {
		rec.CommittedAt = time.Now().UTC()
	}
	ts := rec.CommittedAt.Format(time.RFC3339Nano)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO steps (session_id, step, intent, x, f, z, lower_bounds, upper_bounds, distance,
		                    n_iterations, iterations_left, committed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(session_id, step) DO UPDATE SET
			intent = excluded.intent,
			x = excluded.x,
			f = excluded.f,
			z = excluded.z,
			lower_bounds = excluded.lower_bounds,
			upper_bounds = excluded.upper_bounds,
			distance = excluded.distance,
			n_iterations = excluded.n_iterations,
			iterations_left = excluded.iterations_left,
			committed_at = excluded.committed_at`,
		rec.SessionID, rec.Step, rec.Intent, encodeVector(rec.X), encodeVector(rec.F), encodeVector(rec.Z),
		encodeVector(rec.Lower), encodeVector(rec.Upper), rec.Distance,
		rec.NIterations, rec.IterationsLeft, ts,
	)
	if err != nil {
		return fmt.Errorf("upsert step: %w", err)
	}

	res, err := tx.Exec(
		`UPDATE sessions SET phase = ?, n_iterations = ?, iterations_left = ?, updated_at = ?
		 WHERE session_id = ?`,
		phaseIterating, rec.NIterations, rec.IterationsLeft, ts, rec.SessionID,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("session %s not found", rec.SessionID)
	}

	return tx.Commit()
}
// #endregion commit-step

// #region mark-terminated
// MarkTerminated records the final solution of a session.
func (s *Store) MarkTerminated(id string, solution, objectives []float64) error {
	res, err := s.db.Exec(
		`UPDATE sessions SET phase = ?, iterations_left = 0, solution = ?, objective_vector = ?, updated_at = ?
		 WHERE session_id = ?`,
		phaseTerminated, encodeVector(solution), encodeVector(objectives),
		time.Now().UTC().Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return fmt.Errorf("mark terminated: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("session %s not found", id)
	}
	return nil
}
// #endregion mark-terminated

// #region get-session
const sessionColumns = `session_id, problem, objective_names, ideal, nadir, phase, n_iterations,
	iterations_left, solution, objective_vector, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (SessionRecord, error) {
	var rec SessionRecord
	var namesJSON, createdStr, updatedStr string
	var ideal, nadir, solution, objectives []byte

	err := row.Scan(&rec.SessionID, &rec.Problem, &namesJSON, &ideal, &nadir, &rec.Phase,
		&rec.NIterations, &rec.IterationsLeft, &solution, &objectives, &createdStr, &updatedStr)
	if err != nil {
		return SessionRecord{}, err
	}
	if err := json.Unmarshal([]byte(namesJSON), &rec.ObjectiveNames); err != nil {
		return SessionRecord{}, fmt.Errorf("unmarshal objective names: %w", err)
	}
	rec.Ideal = decodeVector(ideal)
	rec.Nadir = decodeVector(nadir)
	rec.Solution = decodeVector(solution)
	rec.ObjectiveVector = decodeVector(objectives)
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedStr)
	return rec, nil
}

// GetSession retrieves a session by ID.
func (s *Store) GetSession(id string) (SessionRecord, error) {
	rec, err := scanSession(s.db.QueryRow(
		`SELECT `+sessionColumns+` FROM sessions WHERE session_id = ?`, id,
	))
	if err != nil {
		return SessionRecord{}, fmt.Errorf("get session %s: %w", id, err)
	}
	return rec, nil
}
// #endregion get-session

// #region list-sessions
// ListSessions returns the most recently updated sessions with step counts.
func (s *Store) ListSessions(limit int) ([]SessionSummary, error) {
	rows, err := s.db.Query(
		`SELECT `+sessionColumns+`,
		        (SELECT COUNT(*) FROM steps WHERE steps.session_id = sessions.session_id)
		 FROM sessions ORDER BY updated_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var sum SessionSummary
		rec, err := scanSession(withTail(rows, &sum.Steps))
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		sum.SessionRecord = rec
		out = append(out, sum)
	}
	return out, rows.Err()
}

// tailScanner appends extra destinations after the session columns.
type tailScanner struct {
	row  scanner
	tail []any
}

func withTail(row scanner, tail ...any) scanner {
	return tailScanner{row: row, tail: tail}
}

func (t tailScanner) Scan(dest ...any) error {
	return t.row.Scan(append(dest, t.tail...)...)
}
// #endregion list-sessions

// #region list-steps
// ListSteps returns a session's committed steps in step order.
func (s *Store) ListSteps(sessionID string) ([]StepRecord, error) {
	rows, err := s.db.Query(
		`SELECT session_id, step, intent, x, f, z, lower_bounds, upper_bounds, distance,
		        n_iterations, iterations_left, committed_at
		 FROM steps WHERE session_id = ? ORDER BY step`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	defer rows.Close()

	var out []StepRecord
	for rows.Next() {
		var rec StepRecord
		var x, f, z, lower, upper []byte
		var committedStr string
		if err := rows.Scan(&rec.SessionID, &rec.Step, &rec.Intent, &x, &f, &z, &lower, &upper,
			&rec.Distance, &rec.NIterations, &rec.IterationsLeft, &committedStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		rec.X = decodeVector(x)
		rec.F = decodeVector(f)
		rec.Z = decodeVector(z)
		rec.Lower = decodeVector(lower)
		rec.Upper = decodeVector(upper)
		rec.CommittedAt, _ = time.Parse(time.RFC3339Nano, committedStr)
		out = append(out, rec)
	}
	return out, rows.Err()
}
// #endregion list-steps

// #region vector-encoding
func encodeVector(v []float64) []byte {
	if v == nil {
		return nil
	}
	buf := make([]byte, len(v)*8)
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

func decodeVector(b []byte) []float64 {
	if b == nil {
		return nil
	}
	v := make([]float64, len(b)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return v
}
// #endregion vector-encoding
