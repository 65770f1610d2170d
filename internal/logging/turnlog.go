package logging

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// #region log-turn
// LogTurn writes a turn entry to the turn_log table.
func LogTurn(db *sql.DB, entry TurnEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO turn_log (session_id, phase, intent, response_json, outcome, reason, record_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.SessionID,
		entry.Phase,
		nullIfEmpty(entry.Intent),
		nullIfEmpty(entry.ResponseJSON),
		entry.Outcome,
		nullIfEmpty(entry.Reason),
		nullIfEmpty(entry.RecordJSON),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log turn: %w", err)
	}
	return nil
}
// #endregion log-turn

// #region encode-record
// EncodeRecord serializes a TurnRecord for TurnEntry.RecordJSON.
func EncodeRecord(rec TurnRecord) (string, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal turn record: %w", err)
	}
	return string(b), nil
}

// DecodeRecord parses TurnEntry.RecordJSON.
func DecodeRecord(s string) (TurnRecord, error) {
	var rec TurnRecord
	if err := json.Unmarshal([]byte(s), &rec); err != nil {
		return TurnRecord{}, fmt.Errorf("unmarshal turn record: %w", err)
	}
	return rec, nil
}
// #endregion encode-record

// #region list-turns
// ListTurns returns a session's turns in the order they were logged.
func ListTurns(db *sql.DB, sessionID string) ([]TurnEntry, error) {
	rows, err := db.Query(
		`SELECT id, session_id, phase, intent, response_json, outcome, reason, record_json, created_at
		 FROM turn_log WHERE session_id = ? ORDER BY id`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	defer rows.Close()

	var out []TurnEntry
	for rows.Next() {
		var e TurnEntry
		var intent, response, reason, record sql.NullString
		var createdStr string
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Phase, &intent, &response, &e.Outcome,
			&reason, &record, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		e.Intent = intent.String
		e.ResponseJSON = response.String
		e.Reason = reason.String
		e.RecordJSON = record.String
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, e)
	}
	return out, rows.Err()
}
// #endregion list-turns

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
// #endregion helpers
