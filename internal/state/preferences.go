package state

import (
	"database/sql"
	"fmt"
	"time"
)

// #region types
// PreferenceRecord is one set of DM preferences that produced a committed
// step.
type PreferenceRecord struct {
	ID        int64
	SessionID string
	Step      int
	Source    string // "initial" | "new_preference" | "step_back"
	Method    int    // 1 = ranks, 2 = percentages
	Info      []float64
	Factors   []float64
	CreatedAt time.Time
}
// #endregion types

// #region preference-store
// PreferenceStore keeps the preference history of each session.
type PreferenceStore struct {
	db *sql.DB
}

// NewPreferenceStore creates the preferences table if needed and returns a store.
func NewPreferenceStore(db *sql.DB) (*PreferenceStore, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS preferences (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		step       INTEGER NOT NULL,
		source     TEXT NOT NULL,
		method     INTEGER NOT NULL,
		info       BLOB NOT NULL,
		factors    BLOB NOT NULL,
		created_at TEXT NOT NULL,
		FOREIGN KEY (session_id) REFERENCES sessions(session_id)
	)`)
	if err != nil {
		return nil, fmt.Errorf("create preferences table: %w", err)
	}
	return &PreferenceStore{db: db}, nil
}

// Add stores a preference record. A record identical to the latest one for
// the same session and step is skipped.
func (s *PreferenceStore) Add(rec PreferenceRecord) error {
	info, factors := encodeVector(rec.Info), encodeVector(rec.Factors)

	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM preferences
		 WHERE session_id = ? AND step = ? AND method = ? AND info = ?
		   AND id = (SELECT MAX(id) FROM preferences WHERE session_id = ?)`,
		rec.SessionID, rec.Step, rec.Method, info, rec.SessionID,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("check duplicate preference: %w", err)
	}
	if count > 0 {
		return nil
	}

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err = s.db.Exec(
		`INSERT INTO preferences (session_id, step, source, method, info, factors, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID, rec.Step, rec.Source, rec.Method, info, factors,
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert preference: %w", err)
	}
	return nil
}

// List returns the preference history of a session, oldest first.
func (s *PreferenceStore) List(sessionID string) ([]PreferenceRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, step, source, method, info, factors, created_at
		 FROM preferences WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}
	defer rows.Close()

	var prefs []PreferenceRecord
	for rows.Next() {
		var p PreferenceRecord
		var info, factors []byte
		var ts string
		if err := rows.Scan(&p.ID, &p.SessionID, &p.Step, &p.Source, &p.Method, &info, &factors, &ts); err != nil {
			return nil, fmt.Errorf("scan preference: %w", err)
		}
		p.Info, p.Factors = decodeVector(info), decodeVector(factors)
		p.CreatedAt, _ = time.Parse(time.RFC3339Nano, ts)
		prefs = append(prefs, p)
	}
	return prefs, rows.Err()
}
// #endregion preference-store
