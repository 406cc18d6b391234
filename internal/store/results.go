package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/daniellalimbag/dory-app-sub000/internal/analysis"
)

// SaveResult stores the summary and laps of a session, replacing any
// previous analysis, and marks the session analyzed
func (db *DB) SaveResult(r *SessionResult, laps []analysis.LapMetrics) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO session_results (
			session_id, source, lap_count, stroke_count, avg_lap_time_s, avg_stroke_count,
			avg_velocity_m_per_s, avg_stroke_rate_hz, avg_stroke_length_m, avg_stroke_index,
			total_distance_m, sampling_rate_hz, hr_first, hr_last, hr_avg, hr_max, analyzed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			source = excluded.source,
			lap_count = excluded.lap_count,
			stroke_count = excluded.stroke_count,
			avg_lap_time_s = excluded.avg_lap_time_s,
			avg_stroke_count = excluded.avg_stroke_count,
			avg_velocity_m_per_s = excluded.avg_velocity_m_per_s,
			avg_stroke_rate_hz = excluded.avg_stroke_rate_hz,
			avg_stroke_length_m = excluded.avg_stroke_length_m,
			avg_stroke_index = excluded.avg_stroke_index,
			total_distance_m = excluded.total_distance_m,
			sampling_rate_hz = excluded.sampling_rate_hz,
			hr_first = excluded.hr_first,
			hr_last = excluded.hr_last,
			hr_avg = excluded.hr_avg,
			hr_max = excluded.hr_max,
			analyzed_at = excluded.analyzed_at
	`,
		r.SessionID, r.Source, r.LapCount, r.StrokeCount, r.AvgLapTimeSeconds, r.AvgStrokeCount,
		r.AvgVelocity, r.AvgStrokeRate, r.AvgStrokeLength, r.AvgStrokeIndex,
		r.TotalDistanceMeters, r.SamplingRateHz,
		r.HeartRate.First, r.HeartRate.Last, r.HeartRate.Avg, r.HeartRate.Max,
		r.AnalyzedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving session result: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM lap_results WHERE session_id = ?", r.SessionID); err != nil {
		return fmt.Errorf("deleting existing laps: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO lap_results (
			session_id, lap_number, start_ms, end_ms, lap_time_s, stroke_count,
			stroke_rate_hz, stroke_rate_spm, stroke_length_m, velocity_m_per_s,
			stroke_index, stroke_type
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, l := range laps {
		_, err := stmt.Exec(
			r.SessionID, l.LapNumber, l.StartMs, l.EndMs, l.LapTimeSeconds, l.StrokeCount,
			l.StrokeRatePerSecond, l.StrokeRateSpm, l.StrokeLengthMeters, l.VelocityMetersPerSecond,
			l.StrokeIndex, l.StrokeType,
		)
		if err != nil {
			return fmt.Errorf("inserting lap %d: %w", l.LapNumber, err)
		}
	}

	if _, err := tx.Exec(`UPDATE sessions SET analyzed = 1 WHERE id = ?`, r.SessionID); err != nil {
		return fmt.Errorf("marking session analyzed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetResult retrieves the stored summary of a session
func (db *DB) GetResult(sessionID string) (*SessionResult, error) {
	row := db.QueryRow(`
		SELECT session_id, source, lap_count, stroke_count, avg_lap_time_s, avg_stroke_count,
			avg_velocity_m_per_s, avg_stroke_rate_hz, avg_stroke_length_m, avg_stroke_index,
			total_distance_m, sampling_rate_hz, hr_first, hr_last, hr_avg, hr_max, analyzed_at
		FROM session_results
		WHERE session_id = ?
	`, sessionID)

	var r SessionResult
	var analyzedAt string
	err := row.Scan(
		&r.SessionID, &r.Source, &r.LapCount, &r.StrokeCount, &r.AvgLapTimeSeconds, &r.AvgStrokeCount,
		&r.AvgVelocity, &r.AvgStrokeRate, &r.AvgStrokeLength, &r.AvgStrokeIndex,
		&r.TotalDistanceMeters, &r.SamplingRateHz,
		&r.HeartRate.First, &r.HeartRate.Last, &r.HeartRate.Avg, &r.HeartRate.Max,
		&analyzedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrResultNotFound
	}
	if err != nil {
		return nil, err
	}

	r.AnalyzedAt, err = time.Parse(time.RFC3339, analyzedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing analyzed_at for %s: %w", sessionID, err)
	}
	return &r, nil
}

// GetLaps returns the stored laps of a session in lap order
func (db *DB) GetLaps(sessionID string) ([]analysis.LapMetrics, error) {
	rows, err := db.Query(`
		SELECT lap_number, start_ms, end_ms, lap_time_s, stroke_count,
			stroke_rate_hz, stroke_rate_spm, stroke_length_m, velocity_m_per_s,
			stroke_index, stroke_type
		FROM lap_results
		WHERE session_id = ?
		ORDER BY lap_number
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	laps := []analysis.LapMetrics{}
	for rows.Next() {
		var l analysis.LapMetrics
		err := rows.Scan(
			&l.LapNumber, &l.StartMs, &l.EndMs, &l.LapTimeSeconds, &l.StrokeCount,
			&l.StrokeRatePerSecond, &l.StrokeRateSpm, &l.StrokeLengthMeters, &l.VelocityMetersPerSecond,
			&l.StrokeIndex, &l.StrokeType,
		)
		if err != nil {
			return nil, err
		}
		laps = append(laps, l)
	}
	return laps, rows.Err()
}
