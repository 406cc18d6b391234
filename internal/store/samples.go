package store

import (
	"fmt"

	"github.com/daniellalimbag/dory-app-sub000/internal/analysis"
)

// SaveSamples replaces the samples of a session and marks it for re-analysis
func (db *DB) SaveSamples(sessionID string, samples []analysis.Sample) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		UPDATE sessions SET sample_count = ?, analyzed = 0 WHERE id = ?
	`, len(samples), sessionID)
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}
	if rows, err := result.RowsAffected(); err != nil {
		return err
	} else if rows == 0 {
		return ErrSessionNotFound
	}

	if _, err := tx.Exec("DELETE FROM samples WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("deleting existing samples: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO samples (
			session_id, seq, timestamp_ms, accel_x, accel_y, accel_z,
			gyro_x, gyro_y, gyro_z, heart_rate, stroke_type
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, s := range samples {
		_, err := stmt.Exec(
			sessionID, i, s.Timestamp, s.AccelX, s.AccelY, s.AccelZ,
			s.GyroX, s.GyroY, s.GyroZ, s.HeartRate, s.StrokeType,
		)
		if err != nil {
			return fmt.Errorf("inserting sample %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetSamples returns the samples of a session in recording order
func (db *DB) GetSamples(sessionID string) ([]analysis.Sample, error) {
	rows, err := db.Query(`
		SELECT timestamp_ms, accel_x, accel_y, accel_z,
			gyro_x, gyro_y, gyro_z, heart_rate, stroke_type
		FROM samples
		WHERE session_id = ?
		ORDER BY seq
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []analysis.Sample
	for rows.Next() {
		var s analysis.Sample
		err := rows.Scan(
			&s.Timestamp, &s.AccelX, &s.AccelY, &s.AccelZ,
			&s.GyroX, &s.GyroY, &s.GyroZ, &s.HeartRate, &s.StrokeType,
		)
		if err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}
