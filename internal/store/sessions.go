package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const sessionColumns = `id, name, swimmer_id, exercise_id, pool_length_m, started_at, sample_count, analyzed`

// CreateSession inserts a new session
func (db *DB) CreateSession(s *Session) error {
	_, err := db.Exec(`
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		s.ID, s.Name, s.SwimmerID, s.ExerciseID, s.PoolLengthMeters,
		s.StartedAt.UTC().Format(time.RFC3339Nano), s.SampleCount, boolToInt(s.Analyzed),
	)
	if err != nil {
		return fmt.Errorf("inserting session %s: %w", s.ID, err)
	}
	return nil
}

// GetSession retrieves a session by ID
func (db *DB) GetSession(id string) (*Session, error) {
	row := db.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListSessions returns sessions newest first
func (db *DB) ListSessions(limit, offset int) ([]Session, error) {
	rows, err := db.Query(`
		SELECT `+sessionColumns+`
		FROM sessions
		ORDER BY started_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSessions(rows)
}

// CountSessions returns the number of stored sessions
func (db *DB) CountSessions() (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&n)
	return n, err
}

// SessionsNeedingAnalysis returns sessions with samples but no stored result, oldest first
func (db *DB) SessionsNeedingAnalysis(limit int) ([]Session, error) {
	rows, err := db.Query(`
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE analyzed = 0 AND sample_count > 0
		ORDER BY started_at ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSessions(rows)
}

// DeleteSession removes a session with its samples and results
func (db *DB) DeleteSession(id string) error {
	result, err := db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrSessionNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*Session, error) {
	var s Session
	var startedAt string
	var analyzed int
	err := row.Scan(
		&s.ID, &s.Name, &s.SwimmerID, &s.ExerciseID, &s.PoolLengthMeters,
		&startedAt, &s.SampleCount, &analyzed,
	)
	if err != nil {
		return nil, err
	}
	s.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing started_at for %s: %w", s.ID, err)
	}
	s.Analyzed = analyzed != 0
	return &s, nil
}

func scanSessions(rows *sql.Rows) ([]Session, error) {
	var sessions []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}
